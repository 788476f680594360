package fx

import "github.com/padsynth/tracker-go/internal/lfo"

// TremoloSettings configure amplitude modulation.
type TremoloSettings struct {
	Enabled bool
	Rate    float64 // Hz
	Depth   float64 // 0..1
}

// Tremolo modulates gain between 1-depth and 1 with a sine LFO.
type Tremolo struct {
	settings   TremoloSettings
	sampleRate float64
	mod        lfo.LFO
}

func (t *Tremolo) configure(s TremoloSettings, sampleRate float64) {
	s.Depth = clamp01(s.Depth)
	t.settings = s
	t.sampleRate = sampleRate
	t.mod.Set(s.Depth/2, s.Rate, lfo.Sine)
}

func (t *Tremolo) Process(x float64) float64 {
	gain := 1 - t.settings.Depth/2 + t.mod.Sample(t.sampleRate)
	return x * gain
}

func (t *Tremolo) Reset() { t.mod.Reset() }
