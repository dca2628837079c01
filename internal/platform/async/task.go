// Package async runs fire-and-forget work that callers can still await.
package async

import (
	"context"
	"fmt"
	"sync"

	apperrors "sleeptrack/internal/platform/errors"
)

// Task is the handle for one unit of background work.
type Task struct {
	done chan struct{}
	err  error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

// Done returns an already finished task carrying err.
func Done(err error) *Task {
	t := newTask()
	t.finish(err)
	return t
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Done is closed when the work has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the work returns or ctx ends, whichever is first.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scope owns the goroutines started on behalf of one component. Closing it
// cancels their context; their results are abandoned.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Go runs fn on its own goroutine with the scope context.
func (s *Scope) Go(fn func(ctx context.Context) error) *Task {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Done(fmt.Errorf("schedule task: %w", apperrors.ErrClosed))
	}
	s.wg.Add(1)
	s.mu.Unlock()

	t := newTask()
	go func() {
		defer s.wg.Done()
		t.finish(fn(s.ctx))
	}()
	return t
}

// Close cancels the scope and waits for running work to return.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}
