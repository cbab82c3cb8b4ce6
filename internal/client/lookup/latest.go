// Package lookup implements last-request-wins reads: every new request
// cancels the one before it, and a response that arrives after it was
// superseded is dropped.
package lookup

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned to a request that a newer one replaced.
var ErrSuperseded = errors.New("request superseded by a newer one")

// Latest tracks the current request id of one logical operation.
// The zero value is ready to use.
type Latest struct {
	cancel context.CancelFunc
	id     uint64
	mu     sync.Mutex
}

// Begin starts a new request and cancels the previous one. The returned
// done func must be called when the request finishes.
func (l *Latest) Begin(parent context.Context) (ctx context.Context, id uint64, done func()) {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.id++
	id = l.id
	l.cancel = cancel
	l.mu.Unlock()

	return ctx, id, func() {
		cancel()
		l.mu.Lock()
		if l.id == id {
			l.cancel = nil
		}
		l.mu.Unlock()
	}
}

// Current reports whether id belongs to the newest request.
func (l *Latest) Current(id uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id == id
}

// Cancel aborts the current request, if any.
func (l *Latest) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	// Следующий ответ уже не будет текущим
	l.id++
}

// Run executes fn as a new request of l. If another request begins before
// fn returns, the result is dropped and ErrSuperseded is returned.
func Run[T any](ctx context.Context, l *Latest, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	reqCtx, id, done := l.Begin(ctx)
	defer done()

	res, err := fn(reqCtx)
	if !l.Current(id) {
		return zero, ErrSuperseded
	}
	if err != nil {
		return zero, err
	}
	return res, nil
}
