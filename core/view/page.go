// Package view builds the page payloads: it fetches the related entities in parallel,
// joins them by foreign key and computes the page statistics.
package view

import (
	"context"
	"sync"
)

// Page states
const (
	StateLoading = "loading"
	StateReady   = "ready"
	StateError   = "error"
)

// Status is the observable state of a Page.
type Status struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// Page is a Loading -> Ready | Error state machine around a loader.
// A failed page is re-entered through Retry.
type Page[T any] struct {
	mu     sync.RWMutex
	state  string
	data   T
	err    error
	loader func(ctx context.Context) (T, error)
}

func NewPage[T any](loader func(ctx context.Context) (T, error)) *Page[T] {
	return &Page[T]{state: StateLoading, loader: loader}
}

// Load runs the loader; the page ends Ready with the data or Error with the failure.
func (p *Page[T]) Load(ctx context.Context) (T, error) {
	p.mu.Lock()
	p.state = StateLoading
	p.err = nil
	p.mu.Unlock()

	data, err := p.loader(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		var zero T
		p.state, p.data, p.err = StateError, zero, err
		return zero, err
	}
	p.state, p.data = StateReady, data
	return data, nil
}

// Retry reloads the page.
func (p *Page[T]) Retry(ctx context.Context) (T, error) {
	return p.Load(ctx)
}

func (p *Page[T]) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	st := Status{State: p.state}
	if p.err != nil {
		st.Error = p.err.Error()
	}
	return st
}

// Data returns the last loaded data (zero unless Ready).
func (p *Page[T]) Data() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data
}

func (p *Page[T]) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}
