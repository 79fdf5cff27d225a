// Package lazy provides an indexed table whose elements are built on first access.
package lazy

import (
	"iter"
	"sync"

	"github.com/pkg/errors"
)

// ErrIndexOutOfRange is returned by Get for an index outside [0, Len()).
var ErrIndexOutOfRange = errors.New("lazy: index out of range")

// A Factory builds the element stored at index i.
type Factory[T any] func(i int) (T, error)

type slot[T any] struct {
	mu   sync.Mutex
	done bool
	val  T
	err  error
}

// A Table is a fixed-length sequence whose slots are filled at most once,
// the first time each is requested. A failed build is remembered as well;
// the factory never runs twice for the same index.
//
// Table is safe for concurrent use. Callers racing on one slot block on
// that slot only.
type Table[T any] struct {
	slots   []slot[T]
	factory Factory[T]
}

// New returns a table of n empty slots filled by factory.
func New[T any](n int, factory Factory[T]) *Table[T] {
	if n < 0 {
		n = 0
	}
	return &Table[T]{
		slots:   make([]slot[T], n),
		factory: factory,
	}
}

// Len returns the number of slots.
func (t *Table[T]) Len() int { return len(t.slots) }

// Get returns the element at i, building it if needed.
func (t *Table[T]) Get(i int) (T, error) {
	if i < 0 || i >= len(t.slots) {
		var zero T
		return zero, errors.Wrapf(ErrIndexOutOfRange, "index %d (len %d)", i, len(t.slots))
	}
	s := &t.slots[i]
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.val, s.err = t.factory(i)
		s.done = true
	}
	return s.val, s.err
}

// Loaded reports whether slot i has been built (successfully or not).
func (t *Table[T]) Loaded(i int) bool {
	if i < 0 || i >= len(t.slots) {
		return false
	}
	s := &t.slots[i]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// All iterates the table in index order, building slots on the way.
// Each call starts over from index 0; built slots are reused.
func (t *Table[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for i := range t.slots {
			if !yield(t.Get(i)) {
				return
			}
		}
	}
}
