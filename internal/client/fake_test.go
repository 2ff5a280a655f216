package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/model"
)

// fakeActions is an in-memory Actions for a single owner.
type fakeActions struct {
	mu       sync.Mutex
	snippets []model.Snippet // newest first
	nextID   int

	listCalls atomic.Int32
	listErr   error
	listGate  chan struct{}          // when set, List blocks until it is closed
	onList    func(call int32) error // when set, a non-nil result fails that List call
	mutateErr error
	gate      chan struct{} // when set, Create/Update block until it is closed
}

func (f *fakeActions) Create(ctx context.Context, input model.SnippetInput) (*model.Snippet, error) {
	f.wait(func() chan struct{} { return f.gate })
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	n := input.Normalize()
	f.nextID++
	s := model.Snippet{ID: fmt.Sprintf("s%d", f.nextID), Title: n.Title, Content: n.Content, Language: n.Language, UserID: "me"}
	f.snippets = append([]model.Snippet{s}, f.snippets...)
	return &s, nil
}

func (f *fakeActions) Update(ctx context.Context, id string, input model.SnippetInput) (*model.Snippet, error) {
	f.wait(func() chan struct{} { return f.gate })
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	n := input.Normalize()
	for i := range f.snippets {
		if f.snippets[i].ID == id {
			f.snippets[i].Title, f.snippets[i].Content, f.snippets[i].Language = n.Title, n.Content, n.Language
			s := f.snippets[i]
			return &s, nil
		}
	}
	return nil, apperror.NotFound("snippet", id)
}

func (f *fakeActions) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return f.mutateErr
	}
	for i := range f.snippets {
		if f.snippets[i].ID == id {
			f.snippets = append(f.snippets[:i], f.snippets[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("snippet", id)
}

// release unblocks everything waiting on gate and clears it.
func (f *fakeActions) release(gate *chan struct{}) {
	f.mu.Lock()
	close(*gate)
	*gate = nil
	f.mu.Unlock()
}

func (f *fakeActions) List(ctx context.Context) ([]model.Snippet, error) {
	call := f.listCalls.Add(1)
	f.wait(func() chan struct{} { return f.listGate })
	if f.onList != nil {
		if err := f.onList(call); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Snippet, len(f.snippets))
	copy(out, f.snippets)
	return out, nil
}

func (f *fakeActions) wait(gate func() chan struct{}) {
	f.mu.Lock()
	g := gate()
	f.mu.Unlock()
	if g != nil {
		<-g
	}
}
