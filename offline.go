package kirosynth

import (
	"cmp"
	"errors"
	"io"
	"slices"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/kirosynth-go/internal/event"
)

// DefaultBlockSize is the number of frames rendered per processing cycle
// when rendering offline. Events take effect at cycle boundaries.
const DefaultBlockSize = 256

var ErrRunning = errors.New("player is running")

// TimedEvent is a message scheduled at an absolute frame.
type TimedEvent struct {
	Frame   int64
	Message Message
}

func NoteOnAt(frame int64, key uint8, velocity float64) TimedEvent {
	return TimedEvent{Frame: frame, Message: event.NoteOn(key, velocity)}
}

func NoteOffAt(frame int64, key uint8) TimedEvent {
	return TimedEvent{Frame: frame, Message: event.NoteOff(key, 0)}
}

// RenderEvents renders frames of stereo audio, applying each event at the
// start of the block containing its frame. Events past the end are ignored;
// a negative frame count renders nothing.
func (p *Player) RenderEvents(events []TimedEvent, frames int64, blockSize int) ([]float32, error) {
	p.mu.Lock()
	running := p.audio != nil
	p.mu.Unlock()
	if running {
		return nil, ErrRunning
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	frames = max(frames, 0)
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b TimedEvent) int { return cmp.Compare(a.Frame, b.Frame) })

	out := make([]float32, frames*2)
	next := 0
	for start := int64(0); start < frames; start += int64(blockSize) {
		end := min(start+int64(blockSize), frames)
		for next < len(sorted) && sorted[next].Frame < end {
			// A full queue is drained by an empty cycle; no audio is lost.
			for errors.Is(p.Send(sorted[next].Message), ErrQueueFull) {
				p.synth.Prepare()
			}
			next++
		}
		p.Render(out[start*2 : end*2])
	}
	p.flushDiagnostics()
	return out, nil
}

// demoPhrase is a two bar arpeggio with a filter sweep.
func demoPhrase(p *Player) ([]TimedEvent, int64) {
	sr := int64(p.sampleRate)
	step := sr / 8
	keys := []uint8{48, 55, 60, 64, 67, 72, 67, 64, 60, 55, 52, 55, 60, 64, 67, 64}
	var evs []TimedEvent
	cutoff, _ := p.ParamRef("filt1-freq")
	for i, k := range keys {
		at := int64(i) * step
		evs = append(evs,
			NoteOnAt(at, k, 0.8),
			NoteOffAt(at+step*3/4, k),
			TimedEvent{Frame: at, Message: event.ParamValue(cutoff, 400+float64(i)*300)},
		)
	}
	return evs, int64(len(keys))*step + 2*sr
}

// RenderDemo renders the demo phrase with the default instrument.
func RenderDemo(sampleRate int, opts ...PlayerOption) ([]float32, error) {
	p, err := NewPlayer(sampleRate, opts...)
	if err != nil {
		return nil, err
	}
	evs, frames := demoPhrase(p)
	return p.RenderEvents(evs, frames, DefaultBlockSize)
}

// WriteWAV encodes interleaved stereo float samples as 16-bit PCM.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(clamp(float64(s), -1, 1) * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
