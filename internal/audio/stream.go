package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// SampleSource fills dst with interleaved stereo float32 frames.
type SampleSource interface {
	Render(dst []float32)
}

// StreamReader pulls frames from a SampleSource and encodes them as
// float32 little endian, the layout both backends consume.
type StreamReader struct {
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Render(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

const (
	BackendEbiten = "ebiten"
	BackendOto    = "oto"
)

var ErrUnknownBackend = errors.New("unknown audio backend")

// Backend is a live output device pulling from a SampleSource.
type Backend interface {
	Play()
	Pause()
	IsPlaying() bool
	Stop() error
}

// Open starts the named backend. An empty name selects ebiten.
func Open(name string, sampleRate int, source SampleSource) (Backend, error) {
	switch name {
	case "", BackendEbiten:
		return NewPlayer(sampleRate, source)
	case BackendOto:
		return NewOtoPlayer(sampleRate, source)
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownBackend)
	}
}
