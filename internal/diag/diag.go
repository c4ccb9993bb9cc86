// Package diag carries diagnostic records out of the audio context without
// blocking it. Records that do not fit are counted and dropped.
package diag

import (
	"fmt"
	"sync/atomic"

	"github.com/cbegin/kirosynth-go/internal/program"
	"github.com/cbegin/kirosynth-go/internal/ringbuf"
)

type Kind uint8

const (
	NoteOn Kind = iota
	NoteOff
	NoteDropped
	VoiceFreed
	ParamValue
	ModulationUpdated
	ModulationDeleted
	Rejected
)

var kindNames = [...]string{"note-on", "note-off", "note-dropped", "voice-freed", "param-value", "modulation-updated", "modulation-deleted", "rejected"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Record describes one thing the synth did or refused to do. Err is always a
// sentinel error so building a record never allocates.
type Record struct {
	Kind   Kind
	Voice  int
	Key    uint8
	NoteID uint64
	Active int
	Param  program.ParamRef
	Source program.SourceRef
	Value  float64
	Err    error
}

func (r Record) String() string {
	switch r.Kind {
	case NoteOn, NoteOff, VoiceFreed:
		return fmt.Sprintf("%s voice=%d key=%d note=%d active=%d", r.Kind, r.Voice, r.Key, r.NoteID, r.Active)
	case NoteDropped:
		return fmt.Sprintf("%s key=%d active=%d", r.Kind, r.Key, r.Active)
	case ParamValue:
		return fmt.Sprintf("%s param=%d value=%g", r.Kind, r.Param, r.Value)
	case ModulationUpdated, ModulationDeleted:
		return fmt.Sprintf("%s source=%d param=%d amount=%g", r.Kind, r.Source, r.Param, r.Value)
	default:
		return fmt.Sprintf("%s param=%d source=%d: %v", r.Kind, r.Param, r.Source, r.Err)
	}
}

// Writer is the audio-context half. A nil Writer discards records.
type Writer struct {
	out     *ringbuf.Producer[Record]
	dropped atomic.Uint64
}

// Reader is the control-context half.
type Reader struct {
	in *ringbuf.Consumer[Record]
	w  *Writer
}

func New(capacity int) (*Writer, *Reader) {
	p, c := ringbuf.New[Record](capacity)
	w := &Writer{out: p}
	return w, &Reader{in: c, w: w}
}

func (w *Writer) Report(r Record) {
	if w == nil {
		return
	}
	if !w.out.Push(r) {
		w.dropped.Add(1)
	}
}

// Drain calls fn for every pending record and returns how many it saw.
func (r *Reader) Drain(fn func(Record)) int {
	n := 0
	for {
		rec, ok := r.in.Pop()
		if !ok {
			return n
		}
		fn(rec)
		n++
	}
}

// Dropped is the number of records lost because the ring was full.
func (r *Reader) Dropped() uint64 { return r.w.dropped.Load() }
