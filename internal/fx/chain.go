// Package fx implements the per-channel effects chain. Stages run in a
// fixed order and each is skipped entirely when disabled.
package fx

// Settings aggregates every stage's enable flag and parameters. It is a
// plain value so the control plane can publish internally-consistent copies
// to the render context.
type Settings struct {
	Bitcrusher BitcrusherSettings
	Distortion DistortionSettings
	Filter     FilterSettings
	Delay      DelaySettings
	Chorus     ChorusSettings
	Phaser     PhaserSettings
	Tremolo    TremoloSettings
	RingMod    RingModSettings
	Sidechain  SidechainSettings
}

// DefaultSettings returns a chain with every stage disabled and usable
// starting parameters.
func DefaultSettings() Settings {
	return Settings{
		Bitcrusher: BitcrusherSettings{Bits: 8, RateDiv: 4},
		Distortion: DistortionSettings{Algorithm: DistSoft, Drive: 2, Mix: 1},
		Filter:     FilterSettings{Kind: FilterLowPass, Cutoff: 8000, Resonance: 0.2},
		Delay:      DelaySettings{Time: 0.25, Feedback: 0.35, Mix: 0.3},
		Chorus:     ChorusSettings{Rate: 1.5, Depth: 0.4, Mix: 0.4},
		Phaser:     PhaserSettings{Rate: 0.5, Depth: 0.6, Feedback: 0.3},
		Tremolo:    TremoloSettings{Rate: 5, Depth: 0.5},
		RingMod:    RingModSettings{Freq: 440, Mix: 0.5},
		Sidechain:  SidechainSettings{Threshold: 0.2, Amount: 0.8, Attack: 0.01, Release: 0.15, Source: -1},
	}
}

// SourceProbe reports another channel's current output envelope level.
type SourceProbe func(channel int) float64

// Chain is one channel's ordered effect stack:
// bitcrusher -> distortion -> filter -> delay -> chorus -> phaser ->
// tremolo -> ring-mod -> sidechain.
type Chain struct {
	sampleRate float64
	owner      int // this channel's index, for self-reference detection
	settings   Settings

	bitcrusher Bitcrusher
	distortion Distortion
	filter     Filter
	delay      Delay
	chorus     Chorus
	phaser     Phaser
	tremolo    Tremolo
	ringMod    RingMod
	sidechain  Sidechain

	probe SourceProbe
}

// NewChain creates a chain for the channel at index owner.
func NewChain(sampleRate int, owner int) *Chain {
	c := &Chain{
		sampleRate: float64(sampleRate),
		owner:      owner,
	}
	c.Configure(DefaultSettings())
	return c
}

// Configure applies a complete settings snapshot to every stage.
func (c *Chain) Configure(s Settings) {
	c.settings = s
	c.bitcrusher.configure(s.Bitcrusher)
	c.distortion.configure(s.Distortion)
	c.filter.configure(s.Filter, c.sampleRate)
	c.delay.configure(s.Delay, c.sampleRate)
	c.chorus.configure(s.Chorus, c.sampleRate)
	c.phaser.configure(s.Phaser, c.sampleRate)
	c.tremolo.configure(s.Tremolo, c.sampleRate)
	c.ringMod.configure(s.RingMod, c.sampleRate)
	c.sidechain.configure(s.Sidechain, c.sampleRate)
}

// Settings returns the chain's current settings snapshot.
func (c *Chain) Settings() Settings { return c.settings }

// SetSourceProbe installs the mixer's cross-channel envelope probe.
func (c *Chain) SetSourceProbe(p SourceProbe) { c.probe = p }

// Process runs one sample through every enabled stage.
func (c *Chain) Process(x float64) float64 {
	s := &c.settings
	if s.Bitcrusher.Enabled {
		x = c.bitcrusher.Process(x)
	}
	if s.Distortion.Enabled {
		x = c.distortion.Process(x)
	}
	if s.Filter.Enabled {
		x = c.filter.Process(x)
	}
	if s.Delay.Enabled {
		x = c.delay.Process(x)
	}
	if s.Chorus.Enabled {
		x = c.chorus.Process(x)
	}
	if s.Phaser.Enabled {
		x = c.phaser.Process(x)
	}
	if s.Tremolo.Enabled {
		x = c.tremolo.Process(x)
	}
	if s.RingMod.Enabled {
		x = c.ringMod.Process(x)
	}
	if s.Sidechain.Enabled {
		x = c.sidechain.Process(x, c.sourceLevel())
	}
	return x
}

// sourceLevel resolves the sidechain source's envelope, degrading to zero
// (no ducking) for self-references or missing sources.
func (c *Chain) sourceLevel() float64 {
	src := c.settings.Sidechain.Source
	if c.probe == nil || src < 0 || src == c.owner {
		return 0
	}
	return c.probe(src)
}

// SidechainGain exposes the current duck factor for metering and tests.
func (c *Chain) SidechainGain() float64 { return c.sidechain.Gain() }

// Reset clears all stage state (delay lines, filter memories, LFO phases).
func (c *Chain) Reset() {
	c.bitcrusher.Reset()
	c.distortion.Reset()
	c.filter.Reset()
	c.delay.Reset()
	c.chorus.Reset()
	c.phaser.Reset()
	c.tremolo.Reset()
	c.ringMod.Reset()
	c.sidechain.Reset()
}
