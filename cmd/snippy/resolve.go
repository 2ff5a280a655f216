package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakif/snippy/internal/client"
	"github.com/sakif/snippy/internal/model"
)

// resolvePrefix picks the one snippet whose ID starts with prefix.
func resolvePrefix(snippets []model.Snippet, prefix string) (model.Snippet, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return model.Snippet{}, fmt.Errorf("snippet ID prefix is required")
	}

	var matches []model.Snippet
	for _, s := range snippets {
		if s.ID == prefix {
			return s, nil
		}
		if strings.HasPrefix(s.ID, prefix) {
			matches = append(matches, s)
		}
	}

	switch len(matches) {
	case 0:
		return model.Snippet{}, fmt.Errorf("no snippet matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = shortID(m.ID)
		}
		return model.Snippet{}, fmt.Errorf("prefix %q is ambiguous: %s", prefix, strings.Join(ids, ", "))
	}
}

// findSnippet loads the list and resolves prefix against it.
func findSnippet(ctx context.Context, list *client.ListState, prefix string) (model.Snippet, error) {
	snippets, err := list.Ensure(ctx)
	if err != nil {
		return model.Snippet{}, fmt.Errorf("failed to load snippets: %w", err)
	}
	return resolvePrefix(snippets, prefix)
}
