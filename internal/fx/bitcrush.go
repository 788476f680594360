package fx

import "math"

// BitcrusherSettings reduce sample resolution and rate.
type BitcrusherSettings struct {
	Enabled bool
	Bits    int // output bit depth, 1..16
	RateDiv int // hold each sample for this many input samples
}

// Bitcrusher quantizes the signal to a bit depth and decimates the sample
// rate with a sample-and-hold divider.
type Bitcrusher struct {
	settings BitcrusherSettings
	held     float64
	counter  int
}

func (b *Bitcrusher) configure(s BitcrusherSettings) {
	if s.Bits < 1 {
		s.Bits = 1
	}
	if s.Bits > 16 {
		s.Bits = 16
	}
	if s.RateDiv < 1 {
		s.RateDiv = 1
	}
	b.settings = s
}

func (b *Bitcrusher) Process(x float64) float64 {
	if b.counter <= 0 {
		steps := math.Pow(2, float64(b.settings.Bits)) - 1
		b.held = math.Round((x+1)/2*steps)/steps*2 - 1
		b.counter = b.settings.RateDiv
	}
	b.counter--
	return b.held
}

func (b *Bitcrusher) Reset() {
	b.held = 0
	b.counter = 0
}
