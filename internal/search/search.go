// Package search narrows a snippet list to the entries matching a query.
package search

import (
	"strings"

	"github.com/sakif/snippy/internal/model"
)

// Filter returns the snippets whose title, content or language contains
// query, ignoring case. The query is trimmed first; an empty or blank query
// returns snippets unchanged. Order is preserved and the input is never
// modified.
func Filter(snippets []model.Snippet, query string) []model.Snippet {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return snippets
	}

	out := make([]model.Snippet, 0, len(snippets))
	for _, s := range snippets {
		if Matches(s, q) {
			out = append(out, s)
		}
	}
	return out
}

// Matches reports whether s matches an already trimmed, lower-cased query.
func Matches(s model.Snippet, q string) bool {
	if strings.Contains(strings.ToLower(s.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(s.Content), q) {
		return true
	}
	return s.Language != nil && strings.Contains(strings.ToLower(*s.Language), q)
}
