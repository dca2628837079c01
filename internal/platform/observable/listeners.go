// Package observable provides the state containers the UI subscribes to:
// Value for persistent state and Event for one-shot triggers.
package observable

import "sync"

// Listeners is a registry of callbacks notified synchronously, in
// registration order, on the goroutine that calls Notify.
type Listeners[T any] struct {
	mu    sync.Mutex
	next  int
	order []int
	fns   map[int]func(T)
}

// Add registers fn and returns a function that removes it. The returned
// function is safe to call more than once.
func (l *Listeners[T]) Add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = map[int]func(T){}
	}
	key := l.next
	l.next++
	l.fns[key] = fn
	l.order = append(l.order, key)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.fns[key]; !ok {
			return
		}
		delete(l.fns, key)
		for i, k := range l.order {
			if k == key {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
	}
}

// Notify calls every registered listener with v. Listeners run outside the
// registry lock so they may subscribe or unsubscribe.
func (l *Listeners[T]) Notify(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.order))
	for _, k := range l.order {
		fns = append(fns, l.fns[k])
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// Len reports the number of registered listeners.
func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}
