package fx

import "math"

// RingModSettings configure ring modulation.
type RingModSettings struct {
	Enabled bool
	Freq    float64 // carrier frequency in Hz
	Mix     float64 // wet/dry 0..1
}

// RingMod multiplies the signal with a sine carrier.
type RingMod struct {
	settings   RingModSettings
	sampleRate float64
	phase      float64
}

func (r *RingMod) configure(s RingModSettings, sampleRate float64) {
	if s.Freq < 0 {
		s.Freq = 0
	}
	s.Mix = clamp01(s.Mix)
	r.settings = s
	r.sampleRate = sampleRate
}

func (r *RingMod) Process(x float64) float64 {
	carrier := math.Sin(2 * math.Pi * r.phase)
	r.phase += r.settings.Freq / r.sampleRate
	for r.phase >= 1 {
		r.phase -= 1
	}
	return x*(1-r.settings.Mix) + x*carrier*r.settings.Mix
}

func (r *RingMod) Reset() { r.phase = 0 }
