package client

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/search"
)

// State is the lifecycle of a ListState.
type State int

const (
	Idle State = iota
	Loading
	Populated
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	case Errored:
		return "errored"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// ListState caches the signed-in user's snippets and the applied search
// query. It is safe for concurrent use.
//
// Concurrent refreshes share one List call. Invalidate bumps a generation
// number, so a fetch that started before a mutation can neither clear the
// stale flag nor be joined by a refresh issued after it.
type ListState struct {
	actions Actions
	flight  singleflight.Group

	mu       sync.RWMutex
	state    State
	snippets []model.Snippet
	err      error
	stale    bool
	gen      uint64 // bumped by Invalidate
	loaded   uint64 // gen the cached snippets were fetched at
	query    string
}

func NewListState(actions Actions) *ListState {
	return &ListState{actions: actions}
}

// Refresh fetches the list and replaces the cache. On failure the previous
// snippets stay available, the state becomes Errored and the cache is
// marked stale. Joined callers share the first caller's ctx.
func (l *ListState) Refresh(ctx context.Context) ([]model.Snippet, error) {
	l.mu.Lock()
	gen := l.gen
	l.state = Loading
	l.mu.Unlock()

	v, err, _ := l.flight.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		snippets, err := l.actions.List(ctx)
		if snippets == nil && err == nil {
			snippets = []model.Snippet{}
		}
		return snippets, err
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		// A newer fetch already succeeded; its list and state stand.
		if gen < l.loaded {
			return l.copyLocked(), err
		}
		l.err = err
		l.stale = true
		l.state = Errored
		return l.copyLocked(), err
	}

	// An older fetch finishing late must not overwrite a newer list.
	if gen >= l.loaded {
		l.snippets = v.([]model.Snippet)
		l.loaded = gen
	}
	l.err = nil
	l.state = Populated
	if gen == l.gen {
		l.stale = false
	}
	return l.copyLocked(), nil
}

// Invalidate marks the cache stale after a mutation. The cached snippets
// remain readable until the next refresh replaces them. FormController
// follows every successful mutation with Invalidate and Refresh.
func (l *ListState) Invalidate() {
	l.mu.Lock()
	l.gen++
	l.stale = true
	l.mu.Unlock()
}

// Ensure refreshes when nothing has been loaded yet or the cache is stale,
// and otherwise returns the cached snippets without a round trip.
func (l *ListState) Ensure(ctx context.Context) ([]model.Snippet, error) {
	l.mu.RLock()
	fresh := l.state != Idle && !l.stale
	l.mu.RUnlock()

	if fresh {
		return l.Snippets(), nil
	}
	return l.Refresh(ctx)
}

// Snippets returns a copy of the cached list, newest first.
func (l *ListState) Snippets() []model.Snippet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.copyLocked()
}

// Visible is the cached list narrowed by the applied query.
func (l *ListState) Visible() []model.Snippet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return search.Filter(l.copyLocked(), l.query)
}

// SetQuery applies a search query to Visible.
func (l *ListState) SetQuery(q string) {
	l.mu.Lock()
	l.query = q
	l.mu.Unlock()
}

func (l *ListState) Query() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query
}

func (l *ListState) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err is the error of the last failed refresh, nil after a success.
func (l *ListState) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *ListState) Stale() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stale
}

func (l *ListState) copyLocked() []model.Snippet {
	if l.snippets == nil {
		return nil
	}
	out := make([]model.Snippet, len(l.snippets))
	copy(out, l.snippets)
	return out
}
