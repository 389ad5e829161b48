// Package dispatch provides the single execution context that owns UI state.
// Network completions post closures here instead of touching shared state
// from their own goroutines.
package dispatch

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned by Do when the loop is no longer running.
var ErrStopped = errors.New("dispatch loop stopped")

// ErrAlreadyRun is returned by Run when the loop has been started before.
var ErrAlreadyRun = errors.New("dispatch loop already run")

// Dispatcher marshals work onto the main context.
type Dispatcher interface {
	Post(fn func())
}

// Immediate runs posted work inline on the caller's goroutine.
type Immediate struct{}

func (Immediate) Post(fn func()) {
	if fn != nil {
		fn()
	}
}

// Loop runs posted funcs one at a time, in post order, on the goroutine that calls Run.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool
	running bool
}

// NewLoop returns an idle loop; call Run to start draining it.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. It never blocks; work posted after the loop stops is dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do posts fn and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled. Work still queued at that point is discarded.
// A loop runs once; later calls return ErrAlreadyRun.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running || l.stopped {
		l.mu.Unlock()
		return ErrAlreadyRun
	}
	l.running = true
	l.mu.Unlock()
	defer l.stop()
	for {
		for _, fn := range l.take() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fn()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}

func (l *Loop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.queue = nil
	l.mu.Unlock()
	close(l.done)
}
