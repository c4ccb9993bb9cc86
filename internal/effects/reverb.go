package effects

// ReverbConfig describes a Schroeder reverb. Room scales the delay lengths
// (0..1) and Decay is the comb feedback.
type ReverbConfig struct {
	Room  float32
	Decay float32
	Wet   float32
}

// Reverb sums four parallel combs of the mono input and diffuses them through
// two allpasses. The wet signal is identical on both channels.
type Reverb struct {
	combs   [4]ring
	allpass [2]ring
	decay   float32
	wet     float32
}

var (
	combRatios    = [4]int{1000, 1117, 1271, 1437}
	allpassRatios = [2]int{347, 213}
)

const allpassGain = 0.5

func NewReverb(sampleRate int, cfg ReverbConfig) *Reverb {
	base := max(int(float32(sampleRate)*clamp(cfg.Room, 0, 1)*0.05), 10)
	r := &Reverb{decay: clamp(cfg.Decay, 0, 0.95), wet: clamp(cfg.Wet, 0, 1)}
	for i, ratio := range combRatios {
		r.combs[i] = newRing(base * ratio / 1000)
	}
	for i, ratio := range allpassRatios {
		r.allpass[i] = newRing(base * ratio / 1000)
	}
	return r
}

func (r *Reverb) Process(buf []float32) {
	for i := 0; i+1 < len(buf); i += 2 {
		mono := (buf[i] + buf[i+1]) * 0.5
		var out float32
		for c := range r.combs {
			y := r.combs[c].peek()
			r.combs[c].tap(mono + y*r.decay)
			out += y
		}
		out *= 0.25
		for a := range r.allpass {
			y := r.allpass[a].peek()
			r.allpass[a].tap(out + y*allpassGain)
			out = y - out
		}
		buf[i] = buf[i]*(1-r.wet) + out*r.wet
		buf[i+1] = buf[i+1]*(1-r.wet) + out*r.wet
	}
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].clear()
	}
	for i := range r.allpass {
		r.allpass[i].clear()
	}
}
