// Package lfo provides the low-frequency modulators used by vibrato and the
// time-based effect stages (chorus, phaser, tremolo).
package lfo

import "math"

// Shape selects the modulation waveform.
type Shape int

const (
	Sine Shape = iota
	Triangle
)

// LFO produces a per-sample modulation value in [-depth, +depth].
type LFO struct {
	depth  float64
	rateHz float64
	shape  Shape
	phase  float64 // [0, 1)
}

// Set configures depth and rate. A zero depth or rate silences the LFO.
func (l *LFO) Set(depth, rateHz float64, shape Shape) {
	l.depth = depth
	l.rateHz = rateHz
	l.shape = shape
}

// Sample advances one sample at the given rate and returns the current value.
func (l *LFO) Sample(sampleRate float64) float64 {
	if l.depth == 0 || l.rateHz == 0 || sampleRate == 0 {
		return 0
	}
	var v float64
	switch l.shape {
	case Triangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}
	l.phase += l.rateHz / sampleRate
	for l.phase >= 1 {
		l.phase -= 1
	}
	return v * l.depth
}

// Active reports whether the LFO produces modulation.
func (l *LFO) Active() bool { return l.depth != 0 && l.rateHz != 0 }

// Reset zeros the phase.
func (l *LFO) Reset() { l.phase = 0 }
