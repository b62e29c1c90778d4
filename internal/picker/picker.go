// Package picker implements the manager autocomplete: a debounced
// search-as-you-type lookup with an explicit cancelable timer.
package picker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alecgard/roster/internal/api"
	"github.com/alecgard/roster/internal/httpx"
)

// MinQueryLen is the minimum trimmed input length before a lookup is sent.
const MinQueryLen = 2

// DefaultDebounce is the idle window collapsing rapid keystrokes into a
// single lookup.
const DefaultDebounce = 300 * time.Millisecond

// DefaultLimit is the number of suggestions requested per lookup.
const DefaultLimit = 15

// LookupAPI is the slice of the gateway the picker needs.
type LookupAPI interface {
	LookupEmployees(ctx context.Context, search string, limit int) (*httpx.Result[[]api.LookupEntry], error)
}

// MetricsRecorder is an optional hook counting debounce fires.
type MetricsRecorder interface {
	IncLookupFire()
}

// Picker drives the manager lookup. Each input change resets the debounce
// timer, so only the last pending query within the idle window is actually
// sent. Queries below MinQueryLen are suppressed entirely. Every issued
// lookup carries a generation number; a response that arrives after newer
// input is dropped, and an unfired timer is canceled by newer input or by
// Close.
type Picker struct {
	mu    sync.Mutex
	api   LookupAPI
	delay time.Duration
	limit int

	text        string
	suggestions []api.LookupEntry
	selectedID  *string
	loading     bool

	timer    *time.Timer
	gen      uint64
	closed   bool
	metrics  MetricsRecorder
	onUpdate func()
}

// New creates a Picker. delay <= 0 falls back to DefaultDebounce and
// limit <= 0 to DefaultLimit.
func New(lookupAPI LookupAPI, delay time.Duration, limit int) *Picker {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Picker{api: lookupAPI, delay: delay, limit: limit}
}

// SetMetrics sets the optional metrics recorder.
func (p *Picker) SetMetrics(m MetricsRecorder) {
	p.mu.Lock()
	p.metrics = m
	p.mu.Unlock()
}

// SetOnUpdate registers a callback invoked when suggestions arrive
// asynchronously.
func (p *Picker) SetOnUpdate(fn func()) {
	p.mu.Lock()
	p.onUpdate = fn
	p.mu.Unlock()
}

// SetText records new input text. Any pending timer is canceled and any
// in-flight lookup is superseded; input of fewer than MinQueryLen trimmed
// characters clears the suggestions without querying.
func (p *Picker) SetText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.text = text
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinQueryLen {
		p.suggestions = nil
		p.loading = false
		return
	}

	gen := p.gen
	p.timer = time.AfterFunc(p.delay, func() {
		p.fire(gen, trimmed)
	})
}

// fire runs after the idle window with no newer input.
func (p *Picker) fire(gen uint64, query string) {
	p.mu.Lock()
	if p.closed || gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.loading = true
	m := p.metrics
	p.mu.Unlock()

	if m != nil {
		m.IncLookupFire()
	}

	res, err := p.api.LookupEmployees(context.Background(), query, p.limit)

	p.mu.Lock()
	if p.closed || gen != p.gen {
		// Superseded while in flight; suppress the stale result.
		p.mu.Unlock()
		return
	}
	p.loading = false
	if err == nil && res.Success && res.Data != nil {
		p.suggestions = *res.Data
	} else {
		p.suggestions = nil
	}
	cb := p.onUpdate
	p.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Select commits the suggestion at idx: its id becomes the committed
// value, its display name replaces the input text and the suggestion list
// is cleared. No follow-up lookup is issued for the replaced text.
func (p *Picker) Select(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx < 0 || idx >= len(p.suggestions) {
		return
	}
	entry := p.suggestions[idx]
	id := entry.ID
	p.selectedID = &id
	p.text = entry.FullName
	p.suggestions = nil
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// ClearSelection nulls the committed value without altering the text field.
func (p *Picker) ClearSelection() {
	p.mu.Lock()
	p.selectedID = nil
	p.mu.Unlock()
}

// Close cancels any pending timer and suppresses in-flight results.
func (p *Picker) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Text returns the current input text.
func (p *Picker) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

// Suggestions returns the current suggestion list.
func (p *Picker) Suggestions() []api.LookupEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]api.LookupEntry, len(p.suggestions))
	copy(out, p.suggestions)
	return out
}

// SelectedID returns the committed manager id, or nil.
func (p *Picker) SelectedID() *string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectedID
}

// Loading reports whether a lookup is in flight.
func (p *Picker) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}
