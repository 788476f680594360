package fx

// DelaySettings configure the feedback delay line.
type DelaySettings struct {
	Enabled  bool
	Time     float64 // seconds
	Feedback float64 // 0..0.95
	Mix      float64 // wet/dry 0..1
}

// Delay is a mono feedback delay. The line persists across calls for the
// channel's lifetime; reconfiguring with a new time reallocates it.
type Delay struct {
	settings DelaySettings
	buf      []float64
	pos      int
}

func (d *Delay) configure(s DelaySettings, sampleRate float64) {
	if s.Feedback < 0 {
		s.Feedback = 0
	}
	if s.Feedback > 0.95 {
		s.Feedback = 0.95
	}
	s.Mix = clamp01(s.Mix)
	samples := int(s.Time * sampleRate)
	if samples < 1 {
		samples = 1
	}
	if len(d.buf) != samples {
		d.buf = make([]float64, samples)
		d.pos = 0
	}
	d.settings = s
}

func (d *Delay) Process(x float64) float64 {
	out := d.buf[d.pos]
	d.buf[d.pos] = x + out*d.settings.Feedback
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
	return x*(1-d.settings.Mix) + out*d.settings.Mix
}

func (d *Delay) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}
