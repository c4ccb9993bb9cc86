package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/gomidi/midi/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cbegin/kirosynth-go"
	"github.com/cbegin/kirosynth-go/internal/control"
)

const help = `keys: a w s e d f t g y h u j k o l p ; play (toggle)
      z/x octave  space release all
      [/] cutoff  {/} resonance  ,/. lfo1 rate  m lfo1->cutoff on/off
      q quit`

// crlf rewrites \n to \r\n; raw mode disables the terminal's own translation.
type crlf struct{ w io.Writer }

func (c crlf) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		backend    = flag.String("backend", "ebiten", "audio backend: ebiten|oto")
		polyphony  = flag.Int("polyphony", 32, "number of voices")
		velocity   = flag.Int("velocity", 100, "note velocity (1..127)")
		verbose    = flag.Bool("v", false, "log every diagnostic record")
		reverb     = flag.Float64("reverb", 0, "reverb wet mix (0 disables)")
		delayMs    = flag.Float64("delay", 0, "delay time in ms (0 disables)")
		midiIn     = flag.String("midi-in", "", "MIDI input port to play from (build with -tags rtmidi)")
		listMIDI   = flag.Bool("list-midi", false, "list MIDI input ports and exit")
	)
	flag.Parse()

	if *listMIDI {
		ports, err := control.InPorts()
		if err != nil {
			log.Fatal(err)
		}
		for _, name := range ports {
			fmt.Println(name)
		}
		return
	}

	opts := append(effectOptions(*reverb, *delayMs),
		kirosynth.WithBackend(*backend),
		kirosynth.WithPolyphony(*polyphony),
	)
	pl, err := kirosynth.NewPlayer(*sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}
	diags := pl.Watch()
	if err := pl.Start(); err != nil {
		log.Fatal(err)
	}
	defer pl.Stop()

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		log.Fatal("stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatal(err)
	}
	defer term.Restore(fd, oldState)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(crlf{os.Stderr}, &slog.HandlerOptions{Level: level}))
	fmt.Fprint(crlf{os.Stdout}, help+"\n")

	if *midiIn != "" {
		stopMIDI, err := control.ListenPort(*midiIn, func(msg midi.Message) {
			if err := pl.SendMIDI(msg); err != nil {
				logger.Warn("midi", "msg", msg.String(), "err", err)
			}
		})
		if err != nil {
			term.Restore(fd, oldState)
			log.Fatal(err)
		}
		defer stopMIDI()
		logger.Info("listening", "port", *midiIn)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keys := make(chan rune, 16)
	// Stdin reads cannot be interrupted; the reader is left behind on exit.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(keys)
				return
			}
			if n == 1 {
				keys <- rune(buf[0])
			}
		}
	}()

	kb := control.NewKeyboard()
	kb.Velocity = uint8(min(max(*velocity, 1), 127))
	cutoffRouted := true

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case rec := <-diags:
				switch rec.Kind {
				case kirosynth.DiagRejected:
					logger.Warn("rejected", "param", rec.Param, "source", rec.Source, "err", rec.Err)
				case kirosynth.DiagNoteDropped:
					logger.Warn("note dropped", "key", rec.Key, "active", rec.Active)
				default:
					logger.Debug(rec.Kind.String(), "voice", rec.Voice, "key", rec.Key, "note", rec.NoteID, "active", rec.Active)
				}
			}
		}
	})
	g.Go(func() error {
		defer stop()
		for {
			var r rune
			select {
			case <-ctx.Done():
				return nil
			case k, ok := <-keys:
				if !ok {
					return nil
				}
				r = k
			}
			var err error
			switch r {
			case 'q', 3: // ctrl-c arrives as a byte in raw mode
				return nil
			case '[':
				err = pl.ChangeParam("filt1-freq", -200)
			case ']':
				err = pl.ChangeParam("filt1-freq", 200)
			case '{':
				err = pl.ChangeParam("filt1-q", -0.25)
			case '}':
				err = pl.ChangeParam("filt1-q", 0.25)
			case ',':
				err = pl.ChangeParam("lfo1-rate", -0.25)
			case '.':
				err = pl.ChangeParam("lfo1-rate", 0.25)
			case 'm':
				if cutoffRouted {
					err = pl.DeleteModulation("lfo1", "filt1-freq")
				} else {
					err = pl.UpdateModulation("lfo1", "filt1-freq", 800)
				}
				cutoffRouted = !cutoffRouted
				logger.Info("lfo1 -> filt1-freq", "on", cutoffRouted)
			case 'z', 'x':
				kb.Press(r)
				logger.Info("octave", "octave", kb.Octave())
			default:
				for _, msg := range kb.Press(r) {
					if err = pl.SendMIDI(msg); err != nil {
						break
					}
				}
			}
			if errors.Is(err, kirosynth.ErrQueueFull) {
				logger.Warn("event queue full", "key", string(r))
			} else if err != nil {
				return err
			}
		}
	})
	if err := g.Wait(); err != nil {
		logger.Error("player", "err", err)
	}
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
