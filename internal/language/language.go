// Package language is the static table of snippet languages offered by the
// editor, with the syntax mode used to highlight each one.
package language

import "strings"

// Language is one selectable tag. Mode is the editor syntax mode, empty
// when the editor has none and content is shown as plain text.
type Language struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Mode  string `json:"mode,omitempty"`
}

var all = []Language{
	{Value: "javascript", Label: "JavaScript", Mode: "javascript"},
	{Value: "typescript", Label: "TypeScript", Mode: "javascript"},
	{Value: "python", Label: "Python", Mode: "python"},
	{Value: "java", Label: "Java", Mode: "java"},
	{Value: "cpp", Label: "C++", Mode: "cpp"},
	{Value: "rust", Label: "Rust", Mode: "rust"},
	{Value: "go", Label: "Go", Mode: "go"},
	{Value: "php", Label: "PHP"},
	{Value: "ruby", Label: "Ruby"},
	{Value: "swift", Label: "Swift"},
	{Value: "html", Label: "HTML", Mode: "html"},
	{Value: "css", Label: "CSS", Mode: "css"},
	{Value: "json", Label: "JSON", Mode: "json"},
	{Value: "sql", Label: "SQL", Mode: "sql"},
	{Value: "markdown", Label: "Markdown", Mode: "markdown"},
}

// All returns a copy of the table in display order.
func All() []Language {
	out := make([]Language, len(all))
	copy(out, all)
	return out
}

// Lookup finds a language by value, ignoring case.
func Lookup(value string) (Language, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, l := range all {
		if l.Value == value {
			return l, true
		}
	}
	return Language{}, false
}

// Default is the language preselected for a new snippet.
func Default() Language {
	return all[0]
}
