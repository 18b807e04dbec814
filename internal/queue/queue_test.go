package queue

import (
	"sync"
	"testing"
)

type frame struct {
	Seq  int
	From string
}

func seqs(items []frame) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Seq
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueue_DrainKeepsArrivalOrder(t *testing.T) {
	q := New[frame]()
	if !q.Empty() {
		t.Fatal("expected empty queue")
	}

	q.Push(frame{Seq: 1, From: "p1"})
	q.Push(frame{Seq: 2}, frame{Seq: 3})
	if q.Len() != 3 {
		t.Fatalf("expected length 3, got %d", q.Len())
	}

	got := seqs(q.Drain())
	if !equalInts(got, []int{1, 2, 3}) {
		t.Errorf("unexpected order %v", got)
	}
	if !q.Empty() {
		t.Error("expected empty queue after Drain")
	}
	if n := len(q.Drain()); n != 0 {
		t.Errorf("expected nothing on second drain, got %d", n)
	}
}

func TestQueue_BoundedDropsOldest(t *testing.T) {
	q := NewBounded[frame](3)

	if n := q.Push(frame{Seq: 1}, frame{Seq: 2}); n != 0 {
		t.Errorf("expected no drops, got %d", n)
	}
	if n := q.Push(frame{Seq: 3}, frame{Seq: 4}, frame{Seq: 5}); n != 2 {
		t.Errorf("expected 2 drops, got %d", n)
	}
	if q.Dropped() != 2 {
		t.Errorf("expected Dropped 2, got %d", q.Dropped())
	}

	got := seqs(q.Drain())
	if !equalInts(got, []int{3, 4, 5}) {
		t.Errorf("expected newest three, got %v", got)
	}
}

func TestQueue_NegativeLimitIsUnbounded(t *testing.T) {
	q := NewBounded[frame](-1)
	for i := 0; i < 100; i++ {
		q.Push(frame{Seq: i})
	}
	if q.Len() != 100 || q.Dropped() != 0 {
		t.Errorf("expected 100 items and no drops, got %d and %d", q.Len(), q.Dropped())
	}
}

func TestQueue_RequeueGoesFirst(t *testing.T) {
	q := New[frame]()
	q.Push(frame{Seq: 1}, frame{Seq: 2})
	batch := q.Drain()

	q.Push(frame{Seq: 3})
	q.Requeue(batch)

	got := seqs(q.Drain())
	if !equalInts(got, []int{1, 2, 3}) {
		t.Errorf("expected failed batch ahead of newer items, got %v", got)
	}

	if n := q.Requeue(nil); n != 0 || !q.Empty() {
		t.Error("requeueing nothing should be a no-op")
	}
}

func TestQueue_RequeueOverLimit(t *testing.T) {
	q := NewBounded[frame](2)
	q.Push(frame{Seq: 3})

	if n := q.Requeue([]frame{{Seq: 1}, {Seq: 2}}); n != 1 {
		t.Errorf("expected 1 drop, got %d", n)
	}
	got := seqs(q.Drain())
	if !equalInts(got, []int{2, 3}) {
		t.Errorf("expected oldest requeued item dropped, got %v", got)
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[frame]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			q.Push(frame{Seq: seq})
		}(i)
	}

	drained := 0
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := len(q.Drain())
			mu.Lock()
			drained += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	drained += len(q.Drain())
	if drained != 100 {
		t.Errorf("expected 100 items drained in total, got %d", drained)
	}
}
