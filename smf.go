package kirosynth

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var ErrTimeFormat = errors.New("unsupported SMF time format")

const defaultBPM = 120.0

// LoadSMF reads a Standard MIDI File and converts every track into a single
// timeline of events at this player's sample rate. It returns the events and
// the frame of the last one. Tempo changes are honored; messages the
// instrument has no mapping for are skipped.
func (p *Player) LoadSMF(r io.Reader) ([]TimedEvent, int64, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read smf: %w", err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, 0, ErrTimeFormat
	}

	type tickEvent struct {
		tick  uint64
		track int
		msg   smf.Message
	}
	var all []tickEvent
	for i, track := range s.Tracks {
		var abs uint64
		for _, ev := range track {
			abs += uint64(ev.Delta)
			all = append(all, tickEvent{tick: abs, track: i, msg: ev.Message})
		}
	}
	slices.SortStableFunc(all, func(a, b tickEvent) int {
		if c := cmp.Compare(a.tick, b.tick); c != 0 {
			return c
		}
		return cmp.Compare(a.track, b.track)
	})

	perTick := 60.0 / (defaultBPM * float64(ticks.Ticks4th()))
	var (
		out      []TimedEvent
		seconds  float64
		lastTick uint64
		lastFrm  int64
	)
	for _, te := range all {
		seconds += float64(te.tick-lastTick) * perTick
		lastTick = te.tick
		frame := int64(math.Round(seconds * float64(p.sampleRate)))
		lastFrm = frame

		var bpm float64
		if te.msg.GetMetaTempo(&bpm) && bpm > 0 {
			perTick = 60.0 / (bpm * float64(ticks.Ticks4th()))
			continue
		}
		ev, ok := p.midi.Translate(midi.Message(te.msg))
		if !ok {
			continue
		}
		out = append(out, TimedEvent{Frame: frame, Message: ev})
	}
	return out, lastFrm, nil
}
