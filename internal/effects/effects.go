// Package effects holds master-bus stages applied to the synth's
// interleaved stereo output.
package effects

// Stage processes interleaved stereo frames in place. Process must not
// allocate; it runs on the audio thread.
type Stage interface {
	Process(buf []float32)
	Reset()
}

// Chain runs stages in order. A nil or empty Chain passes audio through.
type Chain []Stage

func (c Chain) Process(buf []float32) {
	for _, s := range c {
		s.Process(buf)
	}
}

func (c Chain) Reset() {
	for _, s := range c {
		s.Reset()
	}
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

// ring is a fixed-length sample delay line.
type ring struct {
	buf []float32
	pos int
}

func newRing(n int) ring {
	return ring{buf: make([]float32, max(n, 1))}
}

// tap returns the oldest sample and stores in in its place.
func (r *ring) tap(in float32) float32 {
	out := r.buf[r.pos]
	r.buf[r.pos] = in
	if r.pos++; r.pos == len(r.buf) {
		r.pos = 0
	}
	return out
}

func (r *ring) peek() float32 { return r.buf[r.pos] }

func (r *ring) clear() {
	clear(r.buf)
	r.pos = 0
}
