package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/sakif/snippy/internal/language"
	"github.com/sakif/snippy/internal/model"
)

const idPrefixLen = 8

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func shortID(id string) string {
	if len(id) > idPrefixLen {
		return id[:idPrefixLen]
	}
	return id
}

func languageLabel(s model.Snippet) string {
	lang := s.LanguageOrEmpty()
	if lang == "" {
		return ""
	}
	if l, ok := language.Lookup(lang); ok {
		return l.Label
	}
	return lang
}

func formatListItem(s model.Snippet) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s  %s", faint(shortID(s.ID)), bold(s.Title)))
	if label := languageLabel(s); label != "" {
		sb.WriteString("  " + cyan(label))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("            %s %s\n",
		faint("Updated:"),
		faint(s.UpdatedAt.Local().Format("2006-01-02 15:04"))))
	return sb.String()
}

func formatHeader(s model.Snippet) string {
	var sb strings.Builder
	sb.WriteString(bold(s.Title) + "\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(s.ID)))
	if label := languageLabel(s); label != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint("Language:"), cyan(label)))
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Created:"), faint(s.CreatedAt.Local().Format("2006-01-02 15:04"))))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Updated:"), faint(s.UpdatedAt.Local().Format("2006-01-02 15:04"))))
	sb.WriteString(faint(strings.Repeat("─", 50)) + "\n")
	return sb.String()
}

// codeBlock wraps content in a markdown fence tagged with the language so
// glamour highlights it. The fence grows past any backtick run in content.
func codeBlock(s model.Snippet) string {
	fence := "```"
	for strings.Contains(s.Content, fence) {
		fence += "`"
	}
	return fence + s.LanguageOrEmpty() + "\n" + strings.TrimRight(s.Content, "\n") + "\n" + fence + "\n"
}

// formatContent renders the snippet's code with glamour, falling back to
// the raw text when the renderer fails.
func formatContent(s model.Snippet) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return s.Content
	}
	out, err := renderer.Render(codeBlock(s))
	if err != nil {
		return s.Content
	}
	return out
}

func success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func errorLine(err error) string {
	return color.New(color.FgRed).Sprint("✗ ") + err.Error()
}
