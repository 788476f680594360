// Package voice implements the procedural voice renderers. Every voice type
// renders as a pure function of (type, time, config) so that offline export
// reproduces real-time playback sample for sample.
package voice

import "math"

const twoPi = math.Pi * 2

// Type tags one of the voice rendering algorithms.
type Type int

const (
	// Basic waveforms.
	Pulse Type = iota
	Square
	Triangle
	Saw
	Sine
	Noise

	// Layered synth presets.
	SynthSaw3
	SynthSaw5
	SynthSaw7
	SynthSquare2
	SynthSquare4
	SynthPWM
	SynthOctave
	SynthFifth
	SynthSub
	SynthBell
	SynthOrgan
	SynthBrass
	SynthStrings
	SynthChoir
	SynthGlass
	SynthMetal
	SynthReed
	SynthBass
	SynthHollow
	SynthBuzz
	SynthThin
	SynthWide
	SynthDrone
	SynthAiry
	SynthPhase
	SynthHarmonic
	SynthSoft

	// Percussion presets.
	Kick
	KickHard
	KickSub
	Kick808
	Snare
	SnareTight
	Clap
	Rimshot
	TomLow
	TomMid
	TomHigh
	HatClosed
	HatOpen
	HatPedal
	Crash
	Ride
	Cowbell
	Clave
	Shaker
	Tambourine
	Zap
	Laser
	Blip
	NoiseBurst
	Conga
	Bongo
	Woodblock
	TriangleHit

	typeCount
)

// Config carries the tunable oscillator parameters. A channel owns one Config;
// a note's own voice type override keeps the channel's width/slope/detune.
type Config struct {
	Freq          float64 // base frequency in Hz
	PulseWidth    float64 // pulse duty cycle 0..1
	TriangleSlope float64 // peak position 0..1 (0.5 = symmetric)
	DetuneCents   float64 // layered-preset detune spread in cents
	NoiseShort    bool    // short/metallic LFSR period
}

// DefaultConfig returns a config with neutral oscillator parameters.
func DefaultConfig() Config {
	return Config{
		Freq:          440,
		PulseWidth:    0.5,
		TriangleSlope: 0.5,
	}
}

// RenderFunc produces one sample for a voice type at the given local time.
type RenderFunc func(sec float64, cfg Config) float64

var renderers [typeCount]RenderFunc

func init() {
	renderers[Pulse] = renderPulse
	renderers[Square] = func(sec float64, cfg Config) float64 {
		cfg.PulseWidth = 0.5
		return renderPulse(sec, cfg)
	}
	renderers[Triangle] = renderTriangle
	renderers[Saw] = renderSaw
	renderers[Sine] = renderSine
	renderers[Noise] = renderNoise
	for t, ls := range synthLayers {
		renderers[t] = layeredRenderer(ls)
	}
	for t, d := range drumSpecs {
		renderers[t] = drumRenderer(d)
	}
}

// Render dispatches to the voice type's render function. Unknown types are
// silent. Output is clamped to [-1, 1].
func Render(t Type, sec float64, cfg Config) float64 {
	if t < 0 || t >= typeCount {
		return 0
	}
	s := renderers[t](sec, cfg)
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// Valid reports whether t names a known voice type.
func Valid(t Type) bool { return t >= 0 && t < typeCount }

// Count returns the number of voice types.
func Count() int { return int(typeCount) }

func phaseOf(sec, freq float64) float64 {
	p := sec * freq
	return p - math.Floor(p)
}

func renderPulse(sec float64, cfg Config) float64 {
	duty := cfg.PulseWidth
	if duty <= 0 || duty >= 1 {
		duty = 0.5
	}
	if phaseOf(sec, cfg.Freq) < duty {
		return 1
	}
	return -1
}

func renderTriangle(sec float64, cfg Config) float64 {
	slope := cfg.TriangleSlope
	if slope <= 0 || slope >= 1 {
		slope = 0.5
	}
	p := phaseOf(sec, cfg.Freq)
	if p < slope {
		return 2*p/slope - 1
	}
	return 1 - 2*(p-slope)/(1-slope)
}

func renderSaw(sec float64, cfg Config) float64 {
	return 2*phaseOf(sec, cfg.Freq) - 1
}

func renderSine(sec float64, cfg Config) float64 {
	return math.Sin(twoPi * phaseOf(sec, cfg.Freq))
}

// renderNoise is band-limited sample-and-hold noise. The held value is a hash
// of the step index, so identical calls yield identical samples. Short mode
// repeats every 93 steps for the metallic timbre of short-LFSR chips.
func renderNoise(sec float64, cfg Config) float64 {
	rate := cfg.Freq * 16
	if rate <= 0 {
		rate = 7040
	}
	step := int64(sec * rate)
	if cfg.NoiseShort {
		step %= 93
	}
	return hashNoise(step)
}

// hashNoise maps an integer step to a deterministic value in [-1, 1).
func hashNoise(step int64) float64 {
	x := uint64(step) * 0x9E3779B97F4A7C15
	x ^= x >> 29
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 32
	return float64(x&0xFFFFFF)/float64(1<<23) - 1
}

func centsRatio(cents float64) float64 {
	return math.Pow(2, cents/1200)
}

func semisRatio(semis float64) float64 {
	return math.Pow(2, semis/12)
}
