package envgen

import (
	"fmt"
	"math"
)

// SilenceThreshold is the release level at which the envelope is considered off.
const SilenceThreshold = 0.0001

type State int

const (
	StateIdle State = iota
	StateAttack
	StateDecay
	StateSustain
	StateRelease
	StateOff
)

var stateNames = [...]string{"idle", "attack", "decay", "sustain", "release", "off"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Mode selects the curve shape: analog curves are exponential with overshoot
// targets, digital curves are close to linear.
type Mode int

const (
	ModeAnalog Mode = iota
	ModeDigital
)

const (
	analogAttackTCO  = 0.22313016014842982 // exp(-1.5)
	analogDecayTCO   = 0.0070834089290521185
	digitalAttackTCO = 0.99999
	digitalDecayTCO  = 0.000015867965 // exp(-11.05)
)

// EnvGen is an ADSR envelope producing values in [0,1].
type EnvGen struct {
	sampleRate  float64
	mode        Mode
	attackSec   float64
	decaySec    float64
	sustain     float64
	releaseSec  float64
	legato      bool
	resetToZero bool

	state  State
	output float64

	attackTCO, decayTCO, releaseTCO       float64
	attackCoeff, decayCoeff, releaseCoeff float64
	attackOffset, decayOffset, releaseOff float64
}

func New(sampleRate float64) *EnvGen {
	e := &EnvGen{
		sampleRate: sampleRate,
		attackSec:  0.02,
		decaySec:   0.1,
		sustain:    1.0,
		releaseSec: 1.5,
	}
	e.SetMode(ModeAnalog)
	return e
}

func (e *EnvGen) State() State { return e.state }

func (e *EnvGen) SetMode(mode Mode) {
	e.mode = mode
	if mode == ModeDigital {
		e.attackTCO = digitalAttackTCO
		e.decayTCO = digitalDecayTCO
	} else {
		e.attackTCO = analogAttackTCO
		e.decayTCO = analogDecayTCO
	}
	e.releaseTCO = e.decayTCO
	e.calcAttack()
	e.calcDecay()
	e.calcRelease()
}

func (e *EnvGen) SetAttackTimeSec(sec float64) {
	e.attackSec = math.Max(sec, 0)
	e.calcAttack()
}

func (e *EnvGen) SetDecayTimeSec(sec float64) {
	e.decaySec = math.Max(sec, 0)
	e.calcDecay()
}

func (e *EnvGen) SetSustainLevel(level float64) {
	e.sustain = clamp(level, 0, 1)
	e.calcDecay()
	if e.state != StateRelease {
		e.calcRelease()
	}
}

func (e *EnvGen) SetReleaseTimeSec(sec float64) {
	e.releaseSec = math.Max(sec, 0)
	e.calcRelease()
}

// SetLegato makes Start continue the current stage instead of restarting
// the attack while the envelope is still sounding.
func (e *EnvGen) SetLegato(on bool) { e.legato = on }

// SetResetToZero makes Start restart the attack from silence instead of from
// the current level.
func (e *EnvGen) SetResetToZero(on bool) { e.resetToZero = on }

// Start (re)triggers the attack. Without reset-to-zero the attack starts from
// the current output so retriggering is click free.
func (e *EnvGen) Start() {
	if e.legato && e.state != StateIdle && e.state != StateOff {
		return
	}
	if e.resetToZero {
		e.output = 0
	}
	e.state = StateAttack
}

// NoteOff moves any sounding stage to release. A release from zero output
// reaches Off on the next Generate.
func (e *EnvGen) NoteOff() {
	switch e.state {
	case StateIdle, StateOff, StateRelease:
		return
	}
	e.state = StateRelease
}

// Generate advances the envelope by one sample and returns its output.
func (e *EnvGen) Generate() float64 {
	switch e.state {
	case StateIdle, StateOff:
		e.output = 0
	case StateAttack:
		e.output = e.attackOffset + e.output*e.attackCoeff
		if e.output >= 1 || e.attackSec <= 0 {
			e.output = 1
			e.state = StateDecay
		}
	case StateDecay:
		e.output = e.decayOffset + e.output*e.decayCoeff
		if e.output <= e.sustain || e.decaySec <= 0 {
			e.output = e.sustain
			e.state = StateSustain
		}
	case StateSustain:
		e.output = e.sustain
	case StateRelease:
		e.output = e.releaseOff + e.output*e.releaseCoeff
		if e.output <= SilenceThreshold || e.releaseSec <= 0 {
			e.output = 0
			e.state = StateOff
		}
	}
	return e.output
}

func (e *EnvGen) Output() float64 { return e.output }

// BiasedOutput is the output shifted down by the sustain level, so it is
// zero during sustain.
func (e *EnvGen) BiasedOutput() float64 { return e.output - e.sustain }

func (e *EnvGen) IsOff() bool { return e.state == StateOff }

// Reset returns to idle at zero output, keeping the curve settings.
func (e *EnvGen) Reset() {
	e.state = StateIdle
	e.output = 0
}

func (e *EnvGen) calcAttack() {
	samples := e.sampleRate * e.attackSec
	e.attackCoeff = coeff(samples, e.attackTCO)
	e.attackOffset = (1 + e.attackTCO) * (1 - e.attackCoeff)
}

func (e *EnvGen) calcDecay() {
	samples := e.sampleRate * e.decaySec
	e.decayCoeff = coeff(samples, e.decayTCO)
	e.decayOffset = (e.sustain - e.decayTCO) * (1 - e.decayCoeff)
}

func (e *EnvGen) calcRelease() {
	samples := e.sampleRate * e.releaseSec
	e.releaseCoeff = coeff(samples, e.releaseTCO)
	e.releaseOff = -e.releaseTCO * (1 - e.releaseCoeff)
}

func coeff(samples, tco float64) float64 {
	if samples <= 0 {
		return 0
	}
	return math.Exp(-math.Log((1+tco)/tco) / samples)
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
