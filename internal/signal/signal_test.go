package signal

import "testing"

func TestSetRaisesFlagOnce(t *testing.T) {
	b := NewBus([]float64{0})
	b.Consume(0)

	b.Set(0, 0.5)
	b.Set(0, 0.5)

	calls := 0
	b.IfUpdated(0, func(v float64) {
		calls++
		if v != 0.5 {
			t.Fatalf("value = %v, want 0.5", v)
		}
	})
	b.IfUpdated(0, func(float64) { calls++ })
	if calls != 1 {
		t.Fatalf("IfUpdated fired %d times, want 1", calls)
	}
}

func TestSameValueIsStillAWrite(t *testing.T) {
	b := NewBus([]float64{1})
	b.Consume(0)
	b.Set(0, 1)
	if !b.Updated(0) {
		t.Fatal("writing the current value should raise the changed flag")
	}
}

func TestNewBusStartsWritten(t *testing.T) {
	b := NewBus([]float64{0.25, 1})
	for ref := Ref(0); ref < 2; ref++ {
		if !b.Updated(ref) {
			t.Fatalf("slot %d should start as written", ref)
		}
	}
	if got := b.Get(1); got != 1 {
		t.Fatalf("initial value = %v, want 1", got)
	}
}

func TestResetRestoresInitialValues(t *testing.T) {
	b := NewBus([]float64{0, 3})
	b.Set(0, 9)
	b.Set(1, 9)
	b.Consume(0)
	b.Reset()
	if b.Get(0) != 0 || b.Get(1) != 3 {
		t.Fatalf("reset values = %v,%v want 0,3", b.Get(0), b.Get(1))
	}
	if !b.Updated(0) {
		t.Fatal("reset should mark slots written")
	}
}

func TestCursorsSeeEachWriteIndependently(t *testing.T) {
	b := NewBus([]float64{0})
	a, c := NewCursor(0), NewCursor(0)

	if _, ok := a.Changed(b); !ok {
		t.Fatal("fresh cursor should see the initial write")
	}
	if _, ok := a.Changed(b); ok {
		t.Fatal("cursor should not see the same write twice")
	}

	b.Set(0, 2)
	if v, ok := a.Changed(b); !ok || v != 2 {
		t.Fatalf("cursor a = %v,%v want 2,true", v, ok)
	}
	if v, ok := c.Changed(b); !ok || v != 2 {
		t.Fatalf("cursor c = %v,%v want 2,true", v, ok)
	}
	if !b.Updated(0) {
		t.Fatal("cursor reads must not consume the bus flag")
	}

	a.Reset()
	if _, ok := a.Changed(b); !ok {
		t.Fatal("reset cursor should report a change")
	}
}

func TestOutOfRangeRefPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a ref outside the bus")
		}
	}()
	b := NewBus([]float64{0})
	b.Get(5)
}
