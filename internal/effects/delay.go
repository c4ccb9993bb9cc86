package effects

// DelayConfig describes a stereo feedback delay. Cross moves that share of
// the feedback to the opposite channel, so Cross 1 ping-pongs.
type DelayConfig struct {
	TimeMs   float64
	Feedback float32
	Cross    float32
	Wet      float32
}

type Delay struct {
	l, r     ring
	feedback float32
	cross    float32
	wet      float32
}

func NewDelay(sampleRate int, cfg DelayConfig) *Delay {
	n := int(cfg.TimeMs * float64(sampleRate) / 1000)
	return &Delay{
		l:        newRing(n),
		r:        newRing(n),
		feedback: clamp(cfg.Feedback, 0, 0.95),
		cross:    clamp(cfg.Cross, 0, 1),
		wet:      clamp(cfg.Wet, 0, 1),
	}
}

func (d *Delay) Process(buf []float32) {
	straight := d.feedback * (1 - d.cross)
	crossed := d.feedback * d.cross
	for i := 0; i+1 < len(buf); i += 2 {
		dl, dr := d.l.peek(), d.r.peek()
		d.l.tap(buf[i] + dl*straight + dr*crossed)
		d.r.tap(buf[i+1] + dr*straight + dl*crossed)
		buf[i] = buf[i]*(1-d.wet) + dl*d.wet
		buf[i+1] = buf[i+1]*(1-d.wet) + dr*d.wet
	}
}

func (d *Delay) Reset() {
	d.l.clear()
	d.r.clear()
}
