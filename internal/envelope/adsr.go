// Package envelope implements the per-trigger ADSR amplitude generator.
package envelope

// Params holds the four ADSR settings shared by every voice on a channel.
type Params struct {
	Attack  float64 // seconds, 0 -> 1
	Decay   float64 // seconds, 1 -> Sustain
	Sustain float64 // level 0..1
	Release float64 // seconds, current level -> 0
}

// DefaultParams returns a short pluck-style envelope.
func DefaultParams() Params {
	return Params{
		Attack:  0.005,
		Decay:   0.15,
		Sustain: 0.65,
		Release: 0.20,
	}
}

func (p Params) clamped() Params {
	if p.Attack < 0 {
		p.Attack = 0
	}
	if p.Decay < 0 {
		p.Decay = 0
	}
	if p.Release < 0 {
		p.Release = 0
	}
	if p.Sustain < 0 {
		p.Sustain = 0
	}
	if p.Sustain > 1 {
		p.Sustain = 1
	}
	return p
}

type stage int

const (
	stageIdle stage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// ADSR is the four-state amplitude machine. Trigger resets to Attack; Release
// ramps from the current level so retriggered or early-released notes do not
// click.
type ADSR struct {
	params      Params
	sampleRate  float64
	stage       stage
	level       float64
	releaseFrom float64
	releaseStep float64
}

// New creates an envelope at the given sample rate.
func New(sampleRate float64, params Params) *ADSR {
	return &ADSR{
		params:     params.clamped(),
		sampleRate: sampleRate,
	}
}

// SetParams replaces the ADSR settings. Takes effect on the next stage change.
func (e *ADSR) SetParams(p Params) {
	e.params = p.clamped()
}

// Trigger restarts the envelope from the attack stage.
func (e *ADSR) Trigger() {
	e.stage = stageAttack
	e.level = 0
}

// Release moves to the release stage from any active stage, preserving the
// current level.
func (e *ADSR) Release() {
	if e.stage == stageIdle || e.stage == stageRelease {
		return
	}
	e.stage = stageRelease
	e.releaseFrom = e.level
	if e.params.Release <= 0 {
		e.releaseStep = 1
		return
	}
	e.releaseStep = e.releaseFrom / (e.params.Release * e.sampleRate)
}

// Next advances one sample and returns the current gain in [0, 1].
func (e *ADSR) Next() float64 {
	switch e.stage {
	case stageAttack:
		if e.params.Attack <= 0 {
			e.level = 1
			e.stage = stageDecay
			return e.level
		}
		e.level += 1 / (e.params.Attack * e.sampleRate)
		if e.level >= 1 {
			e.level = 1
			e.stage = stageDecay
		}
	case stageDecay:
		if e.params.Decay <= 0 {
			e.level = e.params.Sustain
			e.stage = stageSustain
			return e.level
		}
		e.level -= (1 - e.params.Sustain) / (e.params.Decay * e.sampleRate)
		if e.level <= e.params.Sustain {
			e.level = e.params.Sustain
			e.stage = stageSustain
		}
	case stageSustain:
		e.level = e.params.Sustain
	case stageRelease:
		e.level -= e.releaseStep
		if e.level <= 0 {
			e.level = 0
			e.stage = stageIdle
		}
	default:
		e.level = 0
	}
	return e.level
}

// Level returns the current gain without advancing.
func (e *ADSR) Level() float64 { return e.level }

// Active reports whether the envelope is producing gain (any stage but idle).
func (e *ADSR) Active() bool { return e.stage != stageIdle }

// Finished reports that a released envelope has reached silence and the
// voice slot can be reused.
func (e *ADSR) Finished() bool { return e.stage == stageIdle }
