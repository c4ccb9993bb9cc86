// Package signal holds the per-sample values that connect blocks in a program.
package signal

// Ref addresses one slot of the Bus it was allocated for. A Ref is only
// meaningful for buses created from the same program.
type Ref int

// Signal is a value plus a changed flag. Every Set raises the flag, even when
// the value is unchanged; consuming reads clear it.
type Signal struct {
	value   float64
	updated bool
	version uint64
}

func (s *Signal) Get() float64 { return s.value }

func (s *Signal) Set(v float64) {
	s.value = v
	s.updated = true
	s.version++
}

// Updated reports whether the signal was written since the last consuming read.
func (s *Signal) Updated() bool { return s.updated }

// Consume returns the value and whether it was written since the last
// consuming read, clearing the flag.
func (s *Signal) Consume() (float64, bool) {
	if !s.updated {
		return s.value, false
	}
	s.updated = false
	return s.value, true
}

// IfUpdated calls fn with the value only if the signal changed, then clears
// the flag.
func (s *Signal) IfUpdated(fn func(float64)) {
	if v, ok := s.Consume(); ok {
		fn(v)
	}
}

// Bus is flat storage for a fixed number of signals. Indexing with a Ref from
// another program panics.
type Bus struct {
	signals []Signal
	initial []float64
}

// NewBus creates a bus with one slot per initial value. Every slot starts as
// written so readers pick up initial values on their first cycle.
func NewBus(initial []float64) *Bus {
	b := &Bus{
		signals: make([]Signal, len(initial)),
		initial: append([]float64(nil), initial...),
	}
	b.Reset()
	return b
}

func (b *Bus) Len() int { return len(b.signals) }

func (b *Bus) Signal(ref Ref) *Signal { return &b.signals[ref] }

func (b *Bus) Get(ref Ref) float64 { return b.signals[ref].value }

func (b *Bus) Set(ref Ref, v float64) { b.signals[ref].Set(v) }

func (b *Bus) Updated(ref Ref) bool { return b.signals[ref].updated }

func (b *Bus) Consume(ref Ref) (float64, bool) { return b.signals[ref].Consume() }

func (b *Bus) IfUpdated(ref Ref, fn func(float64)) { b.signals[ref].IfUpdated(fn) }

// Reset rewrites every slot with its initial value.
func (b *Bus) Reset() {
	for i := range b.signals {
		b.signals[i].Set(b.initial[i])
	}
}

// Cursor tracks one reader's view of a slot, so a signal read by several
// blocks is seen as changed exactly once per write by each of them.
type Cursor struct {
	ref  Ref
	seen uint64
}

func NewCursor(ref Ref) Cursor { return Cursor{ref: ref} }

func (c *Cursor) Ref() Ref { return c.ref }

// Changed returns the current value and whether it was written since this
// cursor last looked.
func (c *Cursor) Changed(b *Bus) (float64, bool) {
	s := &b.signals[c.ref]
	if s.version == c.seen {
		return s.value, false
	}
	c.seen = s.version
	return s.value, true
}

// Reset makes the next Changed call report the slot as changed.
func (c *Cursor) Reset() { c.seen = 0 }
