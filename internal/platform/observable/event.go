package observable

import "sync"

// Event is a one-shot slot. Raise makes a payload pending; Consume takes it
// and clears the slot so a re-render cannot trigger it twice. Subscribers
// are told about both transitions.
type Event[T any] struct {
	mu        sync.Mutex
	payload   T
	pending   bool
	listeners Listeners[EventState[T]]
}

// EventState is what subscribers observe after each transition.
type EventState[T any] struct {
	Payload T
	Pending bool
}

func NewEvent[T any]() *Event[T] {
	return &Event[T]{}
}

// Raise replaces any pending payload with v.
func (e *Event[T]) Raise(v T) {
	e.mu.Lock()
	e.payload = v
	e.pending = true
	e.mu.Unlock()
	e.listeners.Notify(EventState[T]{Payload: v, Pending: true})
}

// Pending reports the payload without consuming it.
func (e *Event[T]) Pending() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.payload, e.pending
}

// Consume clears the slot and returns what was pending. Consuming an empty
// slot is a no-op and does not notify.
func (e *Event[T]) Consume() (T, bool) {
	e.mu.Lock()
	var zero T
	payload, was := e.payload, e.pending
	e.payload = zero
	e.pending = false
	e.mu.Unlock()
	if was {
		e.listeners.Notify(EventState[T]{})
	}
	return payload, was
}

func (e *Event[T]) Subscribe(fn func(EventState[T])) func() {
	return e.listeners.Add(fn)
}
