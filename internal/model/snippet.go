// Package model defines the data structures used throughout the application.
package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/snippy/internal/apperror"
)

// MaxTitleLength is the longest title accepted, counted in characters after
// surrounding whitespace is trimmed.
const MaxTitleLength = 200

// Snippet is a saved piece of text owned by exactly one user.
//
// The JSON names match the row columns so a row and its wire form read the
// same. Language is a pointer because "no language" is a real state and is
// stored as NULL, not as the empty string.
type Snippet struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Language  *string   `json:"language"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LanguageOrEmpty returns the language tag or "" when the snippet has none.
func (s Snippet) LanguageOrEmpty() string {
	if s.Language == nil {
		return ""
	}
	return *s.Language
}

// SnippetInput carries the user-editable fields of a snippet. The same value
// is validated by the form controller before dispatch and again by the
// service, which is the authoritative check.
type SnippetInput struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Language *string `json:"language,omitempty"`
}

// Normalize trims the title and language and turns an empty language into
// nil. Content is left exactly as typed.
func (in SnippetInput) Normalize() SnippetInput {
	out := SnippetInput{
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
	}
	if in.Language != nil {
		if lang := strings.TrimSpace(*in.Language); lang != "" {
			out.Language = &lang
		}
	}
	return out
}

// Validate checks the normalised input. It returns an *apperror.AppError
// wrapping apperror.ErrValidation that names the first offending field.
func (in SnippetInput) Validate() error {
	n := in.Normalize()
	if n.Title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(n.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title", "title is too long (max 200 characters)")
	}
	if n.Content == "" {
		return apperror.ValidationFailed("content", "content is required")
	}
	return nil
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
