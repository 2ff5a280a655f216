package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sakif/snippy/internal/model"
)

func snip(title, content, lang string) model.Snippet {
	return model.Snippet{Title: title, Content: content, Language: model.StringPtr(lang)}
}

func TestFilter(t *testing.T) {
	foo := snip("Foo", "", "")
	bar := snip("Bar", "", "")
	goSnip := snip("http server", "func main() {}", "go")
	plain := snip("notes", "remember the milk", "")

	list := []model.Snippet{foo, bar, goSnip, plain}

	tests := []struct {
		name  string
		query string
		want  []model.Snippet
	}{
		{"title is case-insensitive", "foo", []model.Snippet{foo}},
		{"empty query returns input", "", list},
		{"blank query returns input", "   ", list},
		{"query is trimmed", "  BAR ", []model.Snippet{bar}},
		{"content matches", "MAIN()", []model.Snippet{goSnip}},
		{"language matches", "go", []model.Snippet{goSnip}},
		{"nil language is skipped", "milk", []model.Snippet{plain}},
		{"no match", "zzz", []model.Snippet{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(list, tt.query)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestFilter_PreservesOrderAndInput(t *testing.T) {
	a := snip("alpha one", "", "")
	b := snip("beta", "", "")
	c := snip("alpha two", "", "")
	list := []model.Snippet{a, b, c}
	before := append([]model.Snippet(nil), list...)

	got := Filter(list, "alpha")
	if diff := cmp.Diff([]model.Snippet{a, c}, got); diff != "" {
		t.Errorf("order not preserved (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, list); diff != "" {
		t.Errorf("input modified (-before +after):\n%s", diff)
	}
}
