// Package fetch versions asynchronous requests so that late responses for a
// superseded input are dropped, and bounds slow work with a fallback.
package fetch

import (
	"context"
	"sync"
	"time"
)

// Token identifies one request issued by a Tracker.
type Token uint64

// Tracker issues increasing tokens. Beginning a request cancels the one
// before it.
type Tracker struct {
	mu     sync.Mutex
	cur    Token
	cancel context.CancelFunc
}

// Begin starts a new request and returns its token and a context that is
// cancelled when the next request begins or Cancel is called.
func (t *Tracker) Begin(parent context.Context) (Token, context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.cur++
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	return t.cur, ctx
}

// Current reports whether tok belongs to the latest request.
func (t *Tracker) Current(tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tok == t.cur
}

// Latest returns the most recently issued token.
func (t *Tracker) Latest() Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur
}

// Cancel aborts the in-flight request without issuing a new token.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Invalidate cancels the in-flight request and advances the token so any
// response still in flight is treated as stale.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.cur++
}

// WithTimeout runs fn bounded by d. It returns fn's value and true, or
// fallback and false when fn fails, d elapses, or parent is cancelled first.
// fn receives a context that is cancelled in all of those cases.
func WithTimeout[T any](parent context.Context, d time.Duration, fn func(context.Context) (T, error), fallback T) (T, bool) {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return fallback, false
		}
		return r.v, true
	case <-ctx.Done():
		return fallback, false
	}
}
