package observable

import "sync"

// Value is a named observable slot holding the latest T.
type Value[T any] struct {
	mu        sync.RWMutex
	v         T
	listeners Listeners[T]
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

func (o *Value[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v
}

// Set stores v and then notifies subscribers with it.
func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	o.v = v
	o.mu.Unlock()
	o.listeners.Notify(v)
}

func (o *Value[T]) Subscribe(fn func(T)) func() {
	return o.listeners.Add(fn)
}
