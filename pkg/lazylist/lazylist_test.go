package lazylist

import (
	"errors"
	"fmt"
	"testing"
)

// countingProducer returns a producer yielding 0..n-1 and a pointer to the
// number of times the producer was invoked for a new element.
func countingProducer(n int) (Producer[int], *int) {
	calls := 0
	i := 0
	return func() (int, bool, error) {
		calls++
		if i >= n {
			return 0, false, nil
		}
		v := i
		i++
		return v, true, nil
	}, &calls
}

func TestList_At(t *testing.T) {
	next, _ := countingProducer(5)
	l := New(next)

	v, err := l.At(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3 {
		t.Errorf("expected 3, got %d", v)
	}
	if got := l.Known(); got != 4 {
		t.Errorf("expected 4 materialized, got %d", got)
	}

	// Past the end.
	if _, err := l.At(10); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := l.At(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for negative index, got %v", err)
	}
}

func TestList_All(t *testing.T) {
	next, calls := countingProducer(4)
	l := New(next)

	items, err := l.All()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	for i, v := range items {
		if v != i {
			t.Errorf("expected items[%d] = %d, got %d", i, i, v)
		}
	}

	// A second All must not touch the producer again.
	before := *calls
	if _, err := l.All(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *calls != before {
		t.Errorf("expected no further producer calls, got %d more", *calls-before)
	}
}

func TestList_RestartWithoutReinvoke(t *testing.T) {
	next, calls := countingProducer(5)
	l := New(next)

	it := l.Iter()
	for i := 0; i < 3; i++ {
		if !it.Next() {
			t.Fatalf("expected element %d", i)
		}
		if it.Value() != i {
			t.Errorf("expected %d, got %d", i, it.Value())
		}
	}
	callsAfterFirst := *calls

	// Restarting replays indices 0-2 from the cache.
	it2 := l.Iter()
	for i := 0; i < 3; i++ {
		if !it2.Next() {
			t.Fatalf("expected element %d on restart", i)
		}
		if it2.Value() != i {
			t.Errorf("restart: expected %d, got %d", i, it2.Value())
		}
	}
	if *calls != callsAfterFirst {
		t.Errorf("producer re-invoked on restart: %d extra calls", *calls-callsAfterFirst)
	}

	// Continuing past the prefix resumes the producer.
	if !it2.Next() {
		t.Fatal("expected element 3")
	}
	if *calls <= callsAfterFirst {
		t.Error("expected producer to resume past the cached prefix")
	}
}

func TestList_ProducerFailure(t *testing.T) {
	failAt := 3
	i := 0
	boom := fmt.Errorf("producer exploded")
	l := New(func() (int, bool, error) {
		if i == failAt {
			return 0, false, boom
		}
		v := i
		i++
		return v, true, nil
	})

	// The prefix before the failure stays valid.
	for idx := 0; idx < failAt; idx++ {
		v, err := l.At(idx)
		if err != nil {
			t.Fatalf("unexpected error at %d: %v", idx, err)
		}
		if v != idx {
			t.Errorf("expected %d, got %d", idx, v)
		}
	}

	// Crossing the failure point surfaces the error.
	if _, err := l.At(failAt); !errors.Is(err, boom) {
		t.Errorf("expected producer error, got %v", err)
	}

	// Cached elements remain accessible after the failure.
	if v, err := l.At(1); err != nil || v != 1 {
		t.Errorf("expected cached element 1, got %d (err %v)", v, err)
	}

	if _, err := l.All(); !errors.Is(err, boom) {
		t.Errorf("expected producer error from All, got %v", err)
	}

	it := l.Iter()
	n := 0
	for it.Next() {
		n++
	}
	if n != failAt {
		t.Errorf("expected iterator to stop after %d elements, got %d", failAt, n)
	}
	if !errors.Is(it.Err(), boom) {
		t.Errorf("expected iterator error, got %v", it.Err())
	}
}

func TestList_Slice(t *testing.T) {
	next, calls := countingProducer(10)
	l := New(next)

	s, err := l.Slice(2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 3 || s[0] != 2 || s[2] != 4 {
		t.Errorf("unexpected slice: %v", s)
	}
	// Slicing must not force full materialization.
	if *calls > 5 {
		t.Errorf("expected at most 5 producer calls, got %d", *calls)
	}

	if _, err := l.Slice(8, 20); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestFromSlice(t *testing.T) {
	l := FromSlice([]string{"a", "b"})
	if !l.Exhausted() {
		t.Error("expected FromSlice list to be exhausted")
	}
	v, err := l.At(1)
	if err != nil || v != "b" {
		t.Errorf("expected b, got %q (err %v)", v, err)
	}
}
