package fx

import "math"

// SidechainSettings configure cross-channel ducking. Source is the channel
// index whose output envelope drives the gain reduction.
type SidechainSettings struct {
	Enabled   bool
	Threshold float64 // source level above which ducking engages
	Amount    float64 // 0..1 depth of the duck
	Attack    float64 // seconds to reach the duck target
	Release   float64 // seconds to recover
	Source    int
}

// Sidechain ducks this channel's signal in response to another channel's
// envelope level. The source level arrives through a probe supplied by the
// mixer; a missing probe, a self-referencing source, or a silent source all
// degrade to unity gain.
type Sidechain struct {
	settings    SidechainSettings
	attackCoef  float64
	releaseCoef float64
	gain        float64
}

func (s *Sidechain) configure(cfg SidechainSettings, sampleRate float64) {
	cfg.Amount = clamp01(cfg.Amount)
	if cfg.Threshold < 0 {
		cfg.Threshold = 0
	}
	s.settings = cfg
	s.attackCoef = rampCoef(cfg.Attack, sampleRate)
	s.releaseCoef = rampCoef(cfg.Release, sampleRate)
	if s.gain == 0 {
		s.gain = 1
	}
}

// rampCoef converts a time constant into a one-pole smoothing coefficient.
func rampCoef(seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return 1 - math.Exp(-1/(seconds*sampleRate))
}

// Process ducks x given the source channel's current envelope level.
func (s *Sidechain) Process(x, sourceLevel float64) float64 {
	target := 1.0
	if sourceLevel > s.settings.Threshold {
		target = 1 - s.settings.Amount
	}
	if target < s.gain {
		s.gain += s.attackCoef * (target - s.gain)
	} else {
		s.gain += s.releaseCoef * (target - s.gain)
	}
	if s.gain < 0 {
		s.gain = 0
	}
	if s.gain > 1 {
		s.gain = 1
	}
	return x * s.gain
}

// Gain exposes the current reduction factor, for tests and metering.
func (s *Sidechain) Gain() float64 { return s.gain }

func (s *Sidechain) Reset() { s.gain = 1 }
