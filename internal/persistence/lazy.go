package persistence

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by Lazy.Get after Close.
var ErrClosed = errors.New("persistence: handle closed")

// Lazy opens a shared handle on first use and reuses it until Close.
// Concurrent first callers share a single open call; a failed open is not
// cached, so the next caller retries.
type Lazy[T any] struct {
	open    func(ctx context.Context) (T, error)
	release func(T)

	group  singleflight.Group
	mu     sync.RWMutex
	value  T
	ready  bool
	closed bool
}

// NewLazy builds a Lazy handle. release may be nil.
func NewLazy[T any](open func(ctx context.Context) (T, error), release func(T)) *Lazy[T] {
	return &Lazy[T]{open: open, release: release}
}

// Get returns the shared handle, opening it if needed.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if value, ok, err := l.current(); ok || err != nil {
		return value, err
	}

	result, err, _ := l.group.Do("open", func() (interface{}, error) {
		if value, ok, err := l.current(); ok || err != nil {
			return value, err
		}

		value, err := l.open(ctx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed {
			if l.release != nil {
				l.release(value)
			}
			return nil, ErrClosed
		}
		l.value = value
		l.ready = true
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Close releases the handle if it was opened. Later Get calls fail with ErrClosed.
func (l *Lazy[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	if l.ready && l.release != nil {
		l.release(l.value)
	}
	var zero T
	l.value = zero
	l.ready = false
}

func (l *Lazy[T]) current() (T, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		var zero T
		return zero, false, ErrClosed
	}
	return l.value, l.ready, nil
}
