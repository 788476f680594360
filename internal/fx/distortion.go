package fx

import "math"

// DistAlgo selects the distortion transfer function.
type DistAlgo int

const (
	DistSoft DistAlgo = iota // tanh saturation
	DistHard                 // hard clip
	DistFoldback
	DistAsymmetric
)

// DistortionSettings configure the waveshaper.
type DistortionSettings struct {
	Enabled   bool
	Algorithm DistAlgo
	Drive     float64 // input gain, >= 1 for audible effect
	Mix       float64 // wet/dry 0..1
}

// Distortion applies one of four transfer functions. Stateless aside from
// its settings, so identical input always yields identical output.
type Distortion struct {
	settings DistortionSettings
}

func (d *Distortion) configure(s DistortionSettings) {
	if s.Drive < 0 {
		s.Drive = 0
	}
	s.Mix = clamp01(s.Mix)
	d.settings = s
}

func (d *Distortion) Process(x float64) float64 {
	driven := x * (1 + d.settings.Drive)
	var shaped float64
	switch d.settings.Algorithm {
	case DistHard:
		shaped = math.Max(-1, math.Min(1, driven))
	case DistFoldback:
		shaped = foldback(driven)
	case DistAsymmetric:
		if driven >= 0 {
			shaped = math.Tanh(driven)
		} else {
			shaped = math.Tanh(driven * 3)
		}
	default:
		shaped = math.Tanh(driven)
	}
	return x*(1-d.settings.Mix) + shaped*d.settings.Mix
}

// foldback reflects the signal back into [-1, 1] instead of clipping.
func foldback(x float64) float64 {
	for x > 1 || x < -1 {
		if x > 1 {
			x = 2 - x
		}
		if x < -1 {
			x = -2 - x
		}
	}
	return x
}

func (d *Distortion) Reset() {}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
