// Package lazylist provides a restartable, lazily-materialized ordered
// sequence backed by a pull-based producer.
//
// A List caches every element it has pulled from its producer, so iterating
// it twice from the start replays the cached prefix without re-invoking the
// producer. The producer is only resumed when an access (At, Slice, All,
// iterator advance) needs elements beyond the materialized prefix.
//
// Lists are safe for concurrent use; all materialization happens under an
// internal lock.
package lazylist

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfRange is returned by At when the producer is exhausted before the
// requested index is reached.
var ErrOutOfRange = errors.New("lazylist: index out of range")

// Producer yields the next element of the sequence. It returns ok=false when
// the sequence is exhausted. A returned error is terminal: the list keeps the
// elements produced so far but will not call the producer again.
type Producer[T any] func() (item T, ok bool, err error)

// List is a lazily-extended view over a Producer.
type List[T any] struct {
	mu    sync.Mutex
	items []T
	next  Producer[T]
	done  bool
	err   error
}

// New creates a List over the given producer. The producer is not invoked
// until an element past the materialized prefix is requested.
func New[T any](next Producer[T]) *List[T] {
	return &List[T]{next: next}
}

// FromSlice creates a fully-materialized List.
func FromSlice[T any](items []T) *List[T] {
	return &List[T]{items: items, done: true}
}

// Materialize pulls from the producer until at least n elements are cached,
// the producer is exhausted, or the producer fails. It returns the producer's
// error only once materialization has to cross the failure point; elements
// cached before the failure remain accessible.
func (l *List[T]) Materialize(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.materialize(n)
}

func (l *List[T]) materialize(n int) error {
	for len(l.items) < n {
		if l.done {
			if l.err != nil {
				return l.err
			}
			return nil
		}
		item, ok, err := l.next()
		if err != nil {
			l.done = true
			l.err = err
			return err
		}
		if !ok {
			l.done = true
			return nil
		}
		l.items = append(l.items, item)
	}
	return nil
}

// At returns the i-th element, materializing as needed. It returns
// ErrOutOfRange if the producer is exhausted before index i, or the
// producer's error if materialization hits a failure first.
func (l *List[T]) At(i int) (T, error) {
	var zero T
	if i < 0 {
		return zero, fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.materialize(i + 1); err != nil {
		if i < len(l.items) {
			return l.items[i], nil
		}
		return zero, err
	}
	if i >= len(l.items) {
		return zero, fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}
	return l.items[i], nil
}

// Slice returns elements [i, j), materializing as needed.
func (l *List[T]) Slice(i, j int) ([]T, error) {
	if i < 0 || j < i {
		return nil, fmt.Errorf("%w: [%d:%d]", ErrOutOfRange, i, j)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.materialize(j); err != nil {
		return nil, err
	}
	if j > len(l.items) {
		return nil, fmt.Errorf("%w: [%d:%d]", ErrOutOfRange, i, j)
	}
	out := make([]T, j-i)
	copy(out, l.items[i:j])
	return out, nil
}

// All forces full materialization and returns a copy of every element.
// Callers must not use All on an unbounded producer.
func (l *List[T]) All() ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for !l.done {
		if err := l.materialize(len(l.items) + 1); err != nil {
			return nil, err
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out, nil
}

// Known reports how many elements have been materialized so far, without
// invoking the producer.
func (l *List[T]) Known() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Exhausted reports whether the producer has finished, either by running out
// of elements or by failing.
func (l *List[T]) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// Iter returns a cursor positioned before the first element. Every cursor
// starts from the beginning: cached elements are replayed and the producer is
// resumed only past the materialized prefix.
func (l *List[T]) Iter() *Iterator[T] {
	return &Iterator[T]{list: l}
}

// Iterator is a restartable cursor over a List.
type Iterator[T any] struct {
	list *List[T]
	pos  int
	cur  T
	err  error
}

// Next advances the cursor. It returns false when the sequence is exhausted
// or the producer failed; check Err afterwards to distinguish the two.
func (it *Iterator[T]) Next() bool {
	item, err := it.list.At(it.pos)
	if err != nil {
		if !errors.Is(err, ErrOutOfRange) {
			it.err = err
		}
		return false
	}
	it.cur = item
	it.pos++
	return true
}

// Value returns the element the cursor currently points at.
func (it *Iterator[T]) Value() T { return it.cur }

// Err returns the producer error that stopped iteration, if any.
func (it *Iterator[T]) Err() error { return it.err }
