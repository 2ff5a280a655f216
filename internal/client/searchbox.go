package client

import (
	"time"

	"github.com/sakif/snippy/internal/debounce"
	"github.com/sakif/snippy/internal/model"
)

// SearchBox debounces keystrokes into ListState.SetQuery. onApply, when
// set, receives the visible list each time a query is applied.
type SearchBox struct {
	list *ListState
	deb  *debounce.Debouncer[string]
}

// NewSearchBox binds a debouncer to list. A non-positive delay selects
// debounce.DefaultDelay.
func NewSearchBox(list *ListState, delay time.Duration, onApply func([]model.Snippet)) *SearchBox {
	b := &SearchBox{list: list}
	b.deb = debounce.New(delay, func(q string) {
		list.SetQuery(q)
		if onApply != nil {
			onApply(list.Visible())
		}
	})
	return b
}

// Type records the current text of the box. Only the last text typed
// within the delay is applied.
func (b *SearchBox) Type(q string) {
	b.deb.Trigger(q)
}

// Submit applies any pending text immediately, as on Enter.
func (b *SearchBox) Submit() bool {
	return b.deb.Flush()
}

// Close cancels a pending query and waits for a running callback.
func (b *SearchBox) Close() {
	b.deb.Stop()
}
