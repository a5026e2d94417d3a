package ringbuf

import (
	"sync"
	"testing"
	"time"
)

type quote struct {
	ticker string
	price  float64
}

func TestRing_BasicPushPop(t *testing.T) {
	r := New[quote](4)

	if !r.Push(quote{ticker: "PETR4", price: 32.5}) {
		t.Fatal("first push should succeed")
	}
	if !r.Push(quote{ticker: "VALE3", price: 61.2}) {
		t.Fatal("second push should succeed")
	}
	if r.Len() != 2 {
		t.Fatalf("expected len=2, got %d", r.Len())
	}

	got, ok := r.Pop()
	if !ok || got.ticker != "PETR4" {
		t.Fatalf("expected PETR4, got %v ok=%v", got.ticker, ok)
	}
	got, ok = r.Pop()
	if !ok || got.ticker != "VALE3" {
		t.Fatalf("expected VALE3, got %v ok=%v", got.ticker, ok)
	}
	if _, ok = r.Pop(); ok {
		t.Fatal("pop from empty should return false")
	}
}

func TestRing_FullDropsAndCounts(t *testing.T) {
	r := New[int](2)

	r.Push(1)
	r.Push(2)

	if r.Push(3) {
		t.Fatal("push to full buffer should return false")
	}
	if r.Dropped() != 1 {
		t.Fatalf("expected dropped=1, got %d", r.Dropped())
	}

	// Draining one slot makes room again.
	r.Pop()
	if !r.Push(3) {
		t.Fatal("push after drain should succeed")
	}
}

func TestRing_Wraparound(t *testing.T) {
	r := New[int](4)

	for round := 0; round < 5; round++ {
		for i := 0; i < 4; i++ {
			if !r.Push(round*10 + i) {
				t.Fatalf("round %d push %d failed", round, i)
			}
		}
		for i := 0; i < 4; i++ {
			v, ok := r.Pop()
			if !ok {
				t.Fatalf("round %d pop %d failed", round, i)
			}
			if v != round*10+i {
				t.Fatalf("round %d pop %d: expected %d, got %d", round, i, round*10+i, v)
			}
		}
	}
}

func TestRing_SPSC_Concurrent(t *testing.T) {
	const count = 100_000
	r := New[int](1024)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < count; i++ {
			for !r.Push(i) {
				// spin-wait (busy loop for test only)
			}
		}
	}()

	received := make([]int, 0, count)
	go func() {
		defer wg.Done()
		for len(received) < count {
			if v, ok := r.Pop(); ok {
				received = append(received, v)
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("SPSC test timed out")
	}

	for i, v := range received {
		if v != i {
			t.Fatalf("at index %d: expected %d, got %d", i, i, v)
		}
	}
}

func TestRing_NextPow2(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {7, 8}, {8, 8}, {9, 16}, {1023, 1024},
	}
	for _, tc := range cases {
		if got := nextPow2(tc.in); got != tc.want {
			t.Errorf("nextPow2(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
