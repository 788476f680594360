package voice

import "math"

// Percussion presets are time-shaped generators: a pitch that decays
// exponentially from a start frequency toward a floor, mixed with hashed
// noise, under the preset's own decay envelope. A drum's audible length is
// intrinsic to the preset (DecayTime), independent of the channel envelope.

type drumSpec struct {
	startHz   float64
	endHz     float64
	sweepSec  float64 // pitch sweep time constant
	decaySec  float64 // intrinsic decay time; silent beyond it
	tone      baseWave
	toneGain  float64
	noiseGain float64
	noiseRate float64 // sample-and-hold rate for the noise component
	click     float64 // transient click level at t=0
}

var drumSpecs = map[Type]drumSpec{
	Kick:        {startHz: 160, endHz: 45, sweepSec: 0.035, decaySec: 0.30, tone: baseSine, toneGain: 1, click: 0.4},
	KickHard:    {startHz: 220, endHz: 50, sweepSec: 0.020, decaySec: 0.22, tone: baseSine, toneGain: 1, click: 0.7},
	KickSub:     {startHz: 100, endHz: 38, sweepSec: 0.050, decaySec: 0.45, tone: baseSine, toneGain: 1},
	Kick808:     {startHz: 140, endHz: 42, sweepSec: 0.060, decaySec: 0.60, tone: baseSine, toneGain: 1, click: 0.2},
	Snare:       {startHz: 190, endHz: 120, sweepSec: 0.030, decaySec: 0.20, tone: baseTri, toneGain: 0.5, noiseGain: 0.8, noiseRate: 9000},
	SnareTight:  {startHz: 220, endHz: 150, sweepSec: 0.020, decaySec: 0.12, tone: baseTri, toneGain: 0.4, noiseGain: 0.9, noiseRate: 11000},
	Clap:        {decaySec: 0.18, noiseGain: 1, noiseRate: 7000},
	Rimshot:     {startHz: 480, endHz: 330, sweepSec: 0.005, decaySec: 0.06, tone: basePulse, toneGain: 0.8, noiseGain: 0.3, noiseRate: 6000},
	TomLow:      {startHz: 120, endHz: 70, sweepSec: 0.060, decaySec: 0.35, tone: baseSine, toneGain: 1, noiseGain: 0.1, noiseRate: 3000},
	TomMid:      {startHz: 170, endHz: 100, sweepSec: 0.050, decaySec: 0.30, tone: baseSine, toneGain: 1, noiseGain: 0.1, noiseRate: 3500},
	TomHigh:     {startHz: 240, endHz: 150, sweepSec: 0.040, decaySec: 0.25, tone: baseSine, toneGain: 1, noiseGain: 0.1, noiseRate: 4000},
	HatClosed:   {decaySec: 0.06, noiseGain: 1, noiseRate: 16000},
	HatOpen:     {decaySec: 0.35, noiseGain: 1, noiseRate: 16000},
	HatPedal:    {decaySec: 0.10, noiseGain: 0.8, noiseRate: 14000},
	Crash:       {decaySec: 1.20, noiseGain: 1, noiseRate: 12000},
	Ride:        {startHz: 520, endHz: 520, decaySec: 0.90, tone: basePulse, toneGain: 0.25, noiseGain: 0.6, noiseRate: 13000},
	Cowbell:     {startHz: 560, endHz: 560, decaySec: 0.25, tone: basePulse, toneGain: 1},
	Clave:       {startHz: 1100, endHz: 1100, decaySec: 0.08, tone: baseSine, toneGain: 1},
	Shaker:      {decaySec: 0.12, noiseGain: 0.9, noiseRate: 18000},
	Tambourine:  {decaySec: 0.22, noiseGain: 0.8, noiseRate: 15000, click: 0.3},
	Zap:         {startHz: 2400, endHz: 60, sweepSec: 0.040, decaySec: 0.25, tone: baseSaw, toneGain: 1},
	Laser:       {startHz: 3600, endHz: 220, sweepSec: 0.080, decaySec: 0.30, tone: basePulse, toneGain: 1},
	Blip:        {startHz: 880, endHz: 880, decaySec: 0.05, tone: basePulse, toneGain: 1},
	NoiseBurst:  {decaySec: 0.15, noiseGain: 1, noiseRate: 20000},
	Conga:       {startHz: 210, endHz: 180, sweepSec: 0.020, decaySec: 0.25, tone: baseSine, toneGain: 1},
	Bongo:       {startHz: 320, endHz: 280, sweepSec: 0.015, decaySec: 0.18, tone: baseSine, toneGain: 1},
	Woodblock:   {startHz: 800, endHz: 760, sweepSec: 0.010, decaySec: 0.07, tone: baseTri, toneGain: 1},
	TriangleHit: {startHz: 1760, endHz: 1760, decaySec: 0.80, tone: baseSine, toneGain: 0.9},
}

// DurationMultiplier is the discrete per-note length preset chosen at
// note-creation time for percussion voices.
type DurationMultiplier float64

const (
	DurationHalf   DurationMultiplier = 0.5
	DurationNormal DurationMultiplier = 1.0
	DurationDouble DurationMultiplier = 2.0
)

// IsPercussion reports whether t is a percussion preset.
func IsPercussion(t Type) bool {
	_, ok := drumSpecs[t]
	return ok
}

// DecayTime returns the intrinsic decay time in seconds for a percussion
// type, or 0 for tonal types.
func DecayTime(t Type) float64 {
	return drumSpecs[t].decaySec
}

// DurationBeats derives a percussion note's duration in beats at the given
// tempo. Tonal types return 0 (their duration is note-controlled).
func DurationBeats(t Type, bpm float64, mult DurationMultiplier) float64 {
	d, ok := drumSpecs[t]
	if !ok || bpm <= 0 {
		return 0
	}
	if mult != DurationHalf && mult != DurationNormal && mult != DurationDouble {
		mult = DurationNormal
	}
	return d.decaySec * (bpm / 60) * float64(mult)
}

func drumRenderer(d drumSpec) RenderFunc {
	return func(sec float64, cfg Config) float64 {
		if sec < 0 || sec >= d.decaySec {
			return 0
		}
		env := math.Exp(-5 * sec / d.decaySec)
		var out float64
		if d.toneGain != 0 {
			// Closed-form phase integral of the exponential sweep keeps the
			// renderer a pure function of sec.
			var ph float64
			if d.sweepSec > 0 && d.startHz != d.endHz {
				ph = d.endHz*sec + (d.startHz-d.endHz)*d.sweepSec*(1-math.Exp(-sec/d.sweepSec))
			} else {
				ph = d.startHz * sec
			}
			p := ph - math.Floor(ph)
			var s float64
			switch d.tone {
			case basePulse:
				if p < 0.5 {
					s = 1
				} else {
					s = -1
				}
			case baseTri:
				if p < 0.5 {
					s = 4*p - 1
				} else {
					s = 3 - 4*p
				}
			case baseSaw:
				s = 2*p - 1
			default:
				s = math.Sin(twoPi * p)
			}
			out += s * d.toneGain
		}
		if d.noiseGain != 0 {
			out += hashNoise(int64(sec*d.noiseRate)) * d.noiseGain
		}
		if d.click > 0 && sec < 0.004 {
			out += d.click * (1 - sec/0.004)
		}
		return out * env
	}
}
