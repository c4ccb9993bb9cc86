// Package event defines the messages the control context sends to the synth
// and the queue they travel on.
package event

import (
	"fmt"

	"github.com/cbegin/kirosynth-go/internal/program"
	"github.com/cbegin/kirosynth-go/internal/ringbuf"
)

type Kind uint8

const (
	KindNoteOn Kind = iota
	KindNoteOff
	KindParamValue
	KindParamChange
	KindModulationUpdate
	KindModulationDelete
)

var kindNames = [...]string{"note-on", "note-off", "param-value", "param-change", "modulation-update", "modulation-delete"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Message is a flat tagged value so it can be copied through the queue
// without boxing. Fields not used by Kind are zero.
type Message struct {
	Kind     Kind
	Key      uint8
	Velocity float64
	Param    program.ParamRef
	Source   program.SourceRef
	Value    float64 // absolute value, delta or modulation amount
}

// Event is a message stamped by the producer. Timestamps are informational.
type Event struct {
	Timestamp uint64
	Message   Message
}

func NoteOn(key uint8, velocity float64) Message {
	return Message{Kind: KindNoteOn, Key: key, Velocity: velocity}
}

func NoteOff(key uint8, velocity float64) Message {
	return Message{Kind: KindNoteOff, Key: key, Velocity: velocity}
}

// ParamValue sets a param; the value is clamped to its bounds.
func ParamValue(param program.ParamRef, value float64) Message {
	return Message{Kind: KindParamValue, Param: param, Value: value}
}

// ParamChange moves a param by delta; the result is clamped to its bounds.
func ParamChange(param program.ParamRef, delta float64) Message {
	return Message{Kind: KindParamChange, Param: param, Value: delta}
}

func ModulationUpdate(source program.SourceRef, param program.ParamRef, amount float64) Message {
	return Message{Kind: KindModulationUpdate, Source: source, Param: param, Value: amount}
}

func ModulationDelete(source program.SourceRef, param program.ParamRef) Message {
	return Message{Kind: KindModulationDelete, Source: source, Param: param}
}

func (m Message) String() string {
	switch m.Kind {
	case KindNoteOn, KindNoteOff:
		return fmt.Sprintf("%s key=%d vel=%.3f", m.Kind, m.Key, m.Velocity)
	case KindParamValue, KindParamChange:
		return fmt.Sprintf("%s param=%d value=%g", m.Kind, m.Param, m.Value)
	default:
		return fmt.Sprintf("%s source=%d param=%d amount=%g", m.Kind, m.Source, m.Param, m.Value)
	}
}

type (
	Producer = ringbuf.Producer[Event]
	Consumer = ringbuf.Consumer[Event]
)

// NewQueue creates the event channel between the control and audio contexts.
func NewQueue(capacity int) (*Producer, *Consumer) {
	return ringbuf.New[Event](capacity)
}
