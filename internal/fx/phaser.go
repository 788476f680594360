package fx

import (
	"math"

	"github.com/padsynth/tracker-go/internal/lfo"
)

// PhaserSettings configure the swept all-pass phaser.
type PhaserSettings struct {
	Enabled  bool
	Rate     float64 // sweep rate in Hz
	Depth    float64 // 0..1
	Feedback float64 // 0..0.9
}

const phaserStages = 4

// Phaser runs the signal through four first-order all-pass stages whose
// center frequency is swept by an LFO, then mixes back with the dry path.
type Phaser struct {
	settings   PhaserSettings
	sampleRate float64
	mod        lfo.LFO
	zm1        [phaserStages]float64
	last       float64
}

func (p *Phaser) configure(s PhaserSettings, sampleRate float64) {
	s.Depth = clamp01(s.Depth)
	if s.Feedback < 0 {
		s.Feedback = 0
	}
	if s.Feedback > 0.9 {
		s.Feedback = 0.9
	}
	p.settings = s
	p.sampleRate = sampleRate
	p.mod.Set(1, s.Rate, lfo.Sine)
}

func (p *Phaser) Process(x float64) float64 {
	// Sweep between 400 Hz and 1600 Hz, widened by depth.
	sweep := p.mod.Sample(p.sampleRate) * p.settings.Depth
	freq := 1000 + 600*sweep
	a := (math.Tan(math.Pi*freq/p.sampleRate) - 1) / (math.Tan(math.Pi*freq/p.sampleRate) + 1)
	in := x + p.last*p.settings.Feedback
	for i := 0; i < phaserStages; i++ {
		out := a*in + p.zm1[i]
		p.zm1[i] = in - a*out
		in = out
	}
	p.last = in
	return (x + in*p.settings.Depth) / (1 + p.settings.Depth)
}

func (p *Phaser) Reset() {
	for i := range p.zm1 {
		p.zm1[i] = 0
	}
	p.last = 0
	p.mod.Reset()
}
