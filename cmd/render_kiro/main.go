package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/cbegin/kirosynth-go"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		out        = flag.String("out", "kiro.wav", "output WAV path")
		smfPath    = flag.String("smf", "", "Standard MIDI File to render instead of the demo phrase")
		tail       = flag.Float64("tail", 2, "seconds rendered after the last event")
		polyphony  = flag.Int("polyphony", 32, "number of voices")
		reverb     = flag.Float64("reverb", 0, "reverb wet mix (0 disables)")
		delayMs    = flag.Float64("delay", 0, "delay time in ms (0 disables)")
	)
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	opts := append(effectOptions(*reverb, *delayMs), kirosynth.WithPolyphony(*polyphony))

	begin := time.Now()
	var (
		samples []float32
		err     error
	)
	if *smfPath == "" {
		samples, err = kirosynth.RenderDemo(*sampleRate, opts...)
	} else {
		samples, err = renderSMF(*smfPath, *sampleRate, *tail, opts)
	}
	if err != nil {
		log.Fatal(err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	if err := kirosynth.WriteWAV(f, samples, *sampleRate); err != nil {
		f.Close()
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	frames := len(samples) / 2
	logger.Info("rendered",
		"out", *out,
		"frames", frames,
		"seconds", float64(frames)/float64(*sampleRate),
		"elapsed", time.Since(begin).Round(time.Millisecond),
	)
}

func renderSMF(path string, sampleRate int, tail float64, opts []kirosynth.PlayerOption) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pl, err := kirosynth.NewPlayer(sampleRate, opts...)
	if err != nil {
		return nil, err
	}
	events, end, err := pl.LoadSMF(f)
	if err != nil {
		return nil, err
	}
	frames := end + int64(tail*float64(sampleRate))
	return pl.RenderEvents(events, frames, kirosynth.DefaultBlockSize)
}

func effectOptions(reverb, delayMs float64) []kirosynth.PlayerOption {
	var opts []kirosynth.PlayerOption
	if delayMs > 0 {
		opts = append(opts, kirosynth.WithDelay(kirosynth.DelayConfig{TimeMs: delayMs, Feedback: 0.35, Cross: 0.5, Wet: 0.3}))
	}
	if reverb > 0 {
		opts = append(opts, kirosynth.WithReverb(kirosynth.ReverbConfig{Room: 0.6, Decay: 0.8, Wet: float32(reverb)}))
	}
	return opts
}
