package fx

import "github.com/padsynth/tracker-go/internal/lfo"

// ChorusSettings configure the modulated-delay chorus.
type ChorusSettings struct {
	Enabled bool
	Rate    float64 // LFO rate in Hz
	Depth   float64 // modulation depth 0..1
	Mix     float64 // wet/dry 0..1
}

const chorusBaseMs = 18.0
const chorusDepthMs = 6.0

// Chorus reads the input through a short delay whose length is swept by a
// sine LFO, with linear interpolation between taps.
type Chorus struct {
	settings   ChorusSettings
	sampleRate float64
	buf        []float64
	pos        int
	mod        lfo.LFO
}

func (c *Chorus) configure(s ChorusSettings, sampleRate float64) {
	s.Depth = clamp01(s.Depth)
	s.Mix = clamp01(s.Mix)
	c.settings = s
	c.sampleRate = sampleRate
	size := int((chorusBaseMs+chorusDepthMs)*sampleRate/1000) + 2
	if len(c.buf) != size {
		c.buf = make([]float64, size)
		c.pos = 0
	}
	c.mod.Set(s.Depth*chorusDepthMs*sampleRate/1000/2, s.Rate, lfo.Sine)
}

func (c *Chorus) Process(x float64) float64 {
	c.buf[c.pos] = x
	base := chorusBaseMs * c.sampleRate / 1000
	delay := base + c.mod.Sample(c.sampleRate)
	readPos := float64(c.pos) - delay
	for readPos < 0 {
		readPos += float64(len(c.buf))
	}
	idx := int(readPos)
	frac := readPos - float64(idx)
	idx2 := idx + 1
	if idx2 >= len(c.buf) {
		idx2 = 0
	}
	wet := c.buf[idx]*(1-frac) + c.buf[idx2]*frac
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return x*(1-c.settings.Mix) + wet*c.settings.Mix
}

func (c *Chorus) Reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
	c.mod.Reset()
}
