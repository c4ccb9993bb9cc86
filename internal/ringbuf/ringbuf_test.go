package ringbuf

import (
	"sync"
	"testing"
)

func TestPushPopOrder(t *testing.T) {
	p, c := New[int](4)
	for i := 0; i < 4; i++ {
		if !p.Push(i) {
			t.Fatalf("push %d failed", i)
		}
	}
	if p.Push(99) {
		t.Fatal("push into full queue should fail")
	}
	for i := 0; i < 4; i++ {
		v, ok := c.Pop()
		if !ok || v != i {
			t.Fatalf("pop = %v,%v want %d,true", v, ok, i)
		}
	}
	if _, ok := c.Pop(); ok {
		t.Fatal("pop from empty queue should fail")
	}
}

func TestCapacityRoundsUp(t *testing.T) {
	p, _ := New[byte](5)
	if p.Cap() != 8 {
		t.Fatalf("cap = %d, want 8", p.Cap())
	}
}

func TestWrapAround(t *testing.T) {
	p, c := New[int](2)
	for i := 0; i < 100; i++ {
		p.Push(i)
		v, ok := c.Pop()
		if !ok || v != i {
			t.Fatalf("iteration %d: pop = %v,%v", i, v, ok)
		}
	}
	if c.Len() != 0 {
		t.Fatalf("len = %d, want 0", c.Len())
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	const n = 10000
	p, c := New[int](64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for !p.Push(i) {
			}
		}
	}()
	next := 0
	for next < n {
		if v, ok := c.Pop(); ok {
			if v != next {
				t.Fatalf("pop = %d, want %d", v, next)
			}
			next++
		}
	}
	wg.Wait()
}

func TestPopDoesNotAllocate(t *testing.T) {
	p, c := New[int](16)
	allocs := testing.AllocsPerRun(100, func() {
		p.Push(1)
		c.Pop()
	})
	if allocs != 0 {
		t.Fatalf("allocs = %v, want 0", allocs)
	}
}
