// Package optimistic applies state changes locally before they are persisted and
// rolls them back when persistence fails.
package optimistic

import "sync"

// Holder is a session-scoped state container. Reads and writes copy through clone so
// callers never share a snapshot with the holder.
type Holder[T any] struct {
	mu    sync.Mutex
	value T
	gen   uint64
	clone func(T) T
}

// NewHolder creates a holder. clone may be nil for value types.
func NewHolder[T any](initial T, clone func(T) T) *Holder[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Holder[T]{value: clone(initial), clone: clone}
}

func (h *Holder[T]) Get() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clone(h.value)
}

func (h *Holder[T]) Set(v T) {
	h.mu.Lock()
	h.value = h.clone(v)
	h.mu.Unlock()
}

// Reset replaces the value and starts a new generation. Results of work started
// before the reset are discarded.
func (h *Holder[T]) Reset(v T) {
	h.mu.Lock()
	h.value = h.clone(v)
	h.gen++
	h.mu.Unlock()
}

// Generation identifies the current session of the holder.
func (h *Holder[T]) Generation() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gen
}

// SetIf stores v only if no Reset happened since gen was read.
func (h *Holder[T]) SetIf(gen uint64, v T) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gen != gen {
		return false
	}
	h.value = h.clone(v)
	return true
}

// update runs reduce against the current value under the lock.
func (h *Holder[T]) update(reduce func(prev T) (T, error)) (prev, next T, gen uint64, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev = h.clone(h.value)
	next, err = reduce(h.clone(h.value))
	if err != nil {
		return prev, next, h.gen, err
	}
	h.value = h.clone(next)
	return prev, h.clone(next), h.gen, nil
}
