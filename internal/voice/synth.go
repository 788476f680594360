package voice

import "math"

// Layered synth presets sum 2-7 detuned copies of a base waveform with fixed
// relative offsets. The per-layer cents values are scaled by the channel's
// DetuneCents so the spread stays adjustable without changing the preset's
// character.

type baseWave int

const (
	baseSaw baseWave = iota
	basePulse
	baseTri
	baseSine
)

type layer struct {
	wave  baseWave
	semis float64 // interval offset in semitones
	cents float64 // fixed fine detune in cents
	gain  float64
}

var synthLayers = map[Type][]layer{
	SynthSaw3: {
		{baseSaw, 0, -7, 1},
		{baseSaw, 0, 0, 1},
		{baseSaw, 0, 7, 1},
	},
	SynthSaw5: {
		{baseSaw, 0, -14, 0.8},
		{baseSaw, 0, -7, 1},
		{baseSaw, 0, 0, 1},
		{baseSaw, 0, 7, 1},
		{baseSaw, 0, 14, 0.8},
	},
	SynthSaw7: {
		{baseSaw, 0, -21, 0.6},
		{baseSaw, 0, -14, 0.8},
		{baseSaw, 0, -7, 1},
		{baseSaw, 0, 0, 1},
		{baseSaw, 0, 7, 1},
		{baseSaw, 0, 14, 0.8},
		{baseSaw, 0, 21, 0.6},
	},
	SynthSquare2: {
		{basePulse, 0, -5, 1},
		{basePulse, 0, 5, 1},
	},
	SynthSquare4: {
		{basePulse, 0, -12, 0.8},
		{basePulse, 0, -4, 1},
		{basePulse, 0, 4, 1},
		{basePulse, 0, 12, 0.8},
	},
	SynthPWM: {
		{basePulse, 0, 0, 1},
		{basePulse, 0, 9, 0.9},
	},
	SynthOctave: {
		{baseSaw, 0, 0, 1},
		{baseSaw, 12, 3, 0.7},
	},
	SynthFifth: {
		{baseSaw, 0, 0, 1},
		{baseSaw, 7, 4, 0.8},
	},
	SynthSub: {
		{basePulse, 0, 0, 1},
		{baseSine, -12, 0, 0.9},
	},
	SynthBell: {
		{baseSine, 0, 0, 1},
		{baseSine, 19, 0, 0.5},
		{baseSine, 28, 0, 0.3},
	},
	SynthOrgan: {
		{baseSine, -12, 0, 0.8},
		{baseSine, 0, 0, 1},
		{baseSine, 12, 0, 0.7},
		{baseSine, 19, 0, 0.5},
		{baseSine, 24, 0, 0.4},
	},
	SynthBrass: {
		{baseSaw, 0, 0, 1},
		{baseSaw, 0, 8, 0.9},
		{basePulse, -12, 0, 0.5},
	},
	SynthStrings: {
		{baseSaw, 0, -10, 0.8},
		{baseSaw, 0, -3, 1},
		{baseSaw, 0, 3, 1},
		{baseSaw, 0, 10, 0.8},
		{baseSaw, 12, 0, 0.4},
	},
	SynthChoir: {
		{baseSine, 0, -6, 1},
		{baseSine, 0, 6, 1},
		{baseTri, 12, 0, 0.5},
	},
	SynthGlass: {
		{baseSine, 0, 0, 1},
		{baseSine, 24, 2, 0.6},
		{baseSine, 36, -2, 0.3},
	},
	SynthMetal: {
		{basePulse, 0, 0, 1},
		{basePulse, 13, 0, 0.6},
		{basePulse, 27, 0, 0.4},
	},
	SynthReed: {
		{basePulse, 0, 0, 1},
		{baseTri, 0, 5, 0.8},
	},
	SynthBass: {
		{baseSaw, 0, 0, 1},
		{baseSaw, 0, 6, 0.9},
		{baseSine, -12, 0, 1},
	},
	SynthHollow: {
		{baseTri, 0, -5, 1},
		{baseTri, 0, 5, 1},
	},
	SynthBuzz: {
		{baseSaw, 0, 0, 1},
		{basePulse, 0, 3, 0.9},
		{baseSaw, 0, -3, 0.9},
	},
	SynthThin: {
		{basePulse, 0, -4, 1},
		{basePulse, 12, 4, 0.6},
	},
	SynthWide: {
		{baseSaw, 0, -18, 1},
		{baseSaw, 0, 18, 1},
		{baseSine, -12, 0, 0.6},
	},
	SynthDrone: {
		{baseSaw, -12, -8, 0.9},
		{baseSaw, 0, 0, 1},
		{baseSaw, 0, 8, 0.9},
		{baseSaw, 7, 0, 0.5},
	},
	SynthAiry: {
		{baseTri, 0, -7, 1},
		{baseTri, 0, 7, 1},
		{baseSine, 24, 0, 0.3},
	},
	SynthPhase: {
		{baseSaw, 0, 0, 1},
		{baseSaw, 0, 1, -1},
		{baseSaw, 0, 12, 0.8},
	},
	SynthHarmonic: {
		{baseSine, 0, 0, 1},
		{baseSine, 12, 0, 0.7},
		{baseSine, 19, 0, 0.5},
		{baseSine, 24, 0, 0.4},
		{baseSine, 28, 0, 0.3},
		{baseSine, 31, 0, 0.25},
		{baseSine, 34, 0, 0.2},
	},
	SynthSoft: {
		{baseTri, 0, -3, 1},
		{baseSine, 0, 3, 0.9},
	},
}

func layeredRenderer(layers []layer) RenderFunc {
	var norm float64
	for _, l := range layers {
		norm += math.Abs(l.gain)
	}
	if norm == 0 {
		norm = 1
	}
	return func(sec float64, cfg Config) float64 {
		spread := 1.0
		if cfg.DetuneCents != 0 {
			// DetuneCents widens or narrows the preset's built-in spread.
			spread = cfg.DetuneCents / 10
		}
		var sum float64
		for _, l := range layers {
			freq := cfg.Freq * semisRatio(l.semis) * centsRatio(l.cents*spread)
			lc := cfg
			lc.Freq = freq
			var s float64
			switch l.wave {
			case baseSaw:
				s = renderSaw(sec, lc)
			case basePulse:
				s = renderPulse(sec, lc)
			case baseTri:
				s = renderTriangle(sec, lc)
			default:
				s = renderSine(sec, lc)
			}
			sum += s * l.gain
		}
		return sum / norm
	}
}
