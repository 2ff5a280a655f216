package client

import (
	"context"
	"errors"
	"sync"

	"github.com/sakif/snippy/internal/language"
	"github.com/sakif/snippy/internal/model"
)

// ErrSubmitInFlight is returned when a second submission starts while the
// first is still waiting for the server.
var ErrSubmitInFlight = errors.New("client: a submission is already in progress")

// Mode says whether the form will create a new snippet or update one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// FormController is the state behind the snippet editor dialog: the fields,
// create or edit mode and the single in-flight submission.
//
// Local validation only saves a round trip; the action layer validates
// again and its verdict is final.
type FormController struct {
	actions Actions
	list    *ListState

	mu         sync.Mutex
	mode       Mode
	editingID  string
	input      model.SnippetInput
	submitting bool
}

// NewFormController starts in create mode. list may be nil when nothing
// caches the snippet list.
func NewFormController(actions Actions, list *ListState) *FormController {
	f := &FormController{actions: actions, list: list}
	f.resetLocked()
	return f
}

// Edit switches to edit mode with the fields of s.
func (f *FormController) Edit(s model.Snippet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = ModeEdit
	f.editingID = s.ID
	f.input = model.SnippetInput{
		Title:    s.Title,
		Content:  s.Content,
		Language: model.StringPtr(s.LanguageOrEmpty()),
	}
}

// Reset returns to an empty create form.
func (f *FormController) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *FormController) resetLocked() {
	f.mode = ModeCreate
	f.editingID = ""
	f.input = model.SnippetInput{Language: model.StringPtr(language.Default().Value)}
}

func (f *FormController) SetTitle(title string) {
	f.mu.Lock()
	f.input.Title = title
	f.mu.Unlock()
}

func (f *FormController) SetContent(content string) {
	f.mu.Lock()
	f.input.Content = content
	f.mu.Unlock()
}

// SetLanguage sets the language tag; "" clears it.
func (f *FormController) SetLanguage(lang string) {
	f.mu.Lock()
	f.input.Language = model.StringPtr(lang)
	f.mu.Unlock()
}

func (f *FormController) Input() model.SnippetInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

func (f *FormController) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// EditingID is the snippet being edited, "" in create mode.
func (f *FormController) EditingID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editingID
}

func (f *FormController) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Validate runs the shared input rules on the current fields.
func (f *FormController) Validate() error {
	return f.Input().Validate()
}

// Submit validates and dispatches a create or update. On success the form
// resets to create mode, the list is invalidated and refetched, and the
// stored snippet is returned. On failure the form and the list are left as
// they were and the error is returned unchanged.
func (f *FormController) Submit(ctx context.Context) (*model.Snippet, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	input, mode, id := f.input, f.mode, f.editingID
	if err := input.Validate(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.submitting = true
	f.mu.Unlock()

	var (
		s   *model.Snippet
		err error
	)
	if mode == ModeEdit {
		s, err = f.actions.Update(ctx, id, input)
	} else {
		s, err = f.actions.Create(ctx, input)
	}

	f.mu.Lock()
	f.submitting = false
	if err == nil {
		f.resetLocked()
	}
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	f.refetch(ctx)
	return s, nil
}

// Delete removes a snippet, as confirmed in the delete dialog. It shares
// the in-flight guard with Submit. If the deleted snippet was being edited
// the form resets.
func (f *FormController) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.submitting = true
	f.mu.Unlock()

	err := f.actions.Delete(ctx, id)

	f.mu.Lock()
	f.submitting = false
	if err == nil && f.mode == ModeEdit && f.editingID == id {
		f.resetLocked()
	}
	f.mu.Unlock()

	if err != nil {
		return err
	}
	f.refetch(ctx)
	return nil
}

// refetch invalidates the list and reloads it. A failed reload does not
// undo the mutation; it leaves the list Errored with the stale cache.
func (f *FormController) refetch(ctx context.Context) {
	if f.list == nil {
		return
	}
	f.list.Invalidate()
	_, _ = f.list.Refresh(ctx)
}
