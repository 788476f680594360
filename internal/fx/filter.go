package fx

import "math"

// FilterKind selects the resonant filter response.
type FilterKind int

const (
	FilterLowPass FilterKind = iota
	FilterHighPass
	FilterBandPass
)

// FilterSettings configure the state-variable filter.
type FilterSettings struct {
	Enabled   bool
	Kind      FilterKind
	Cutoff    float64 // Hz
	Resonance float64 // 0..1, higher = sharper peak
}

// Filter is a Chamberlin state-variable filter with low/high/band outputs.
type Filter struct {
	settings FilterSettings
	f        float64 // frequency coefficient
	q        float64 // damping
	low      float64
	band     float64
}

func (fl *Filter) configure(s FilterSettings, sampleRate float64) {
	if s.Cutoff < 20 {
		s.Cutoff = 20
	}
	if s.Cutoff > sampleRate/2 {
		s.Cutoff = sampleRate / 2
	}
	s.Resonance = clamp01(s.Resonance)
	fl.settings = s
	fl.f = 2 * math.Sin(math.Pi*s.Cutoff/sampleRate)
	if fl.f > 1 {
		fl.f = 1
	}
	// Damping runs from 2 (no resonance) down to a small positive floor.
	fl.q = 2 - 1.9*s.Resonance
}

func (fl *Filter) Process(x float64) float64 {
	high := x - fl.low - fl.q*fl.band
	fl.band += fl.f * high
	fl.low += fl.f * fl.band
	switch fl.settings.Kind {
	case FilterHighPass:
		return high
	case FilterBandPass:
		return fl.band
	default:
		return fl.low
	}
}

func (fl *Filter) Reset() {
	fl.low = 0
	fl.band = 0
}
