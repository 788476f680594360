// Package synth is the per-channel voice runtime: it composes the pure
// waveform renderers with ADSR envelopes, per-note modulation, and the
// channel's effect chain into a one-sample-at-a-time mono render loop.
package synth

import (
	"math"

	"github.com/padsynth/tracker-go/internal/envelope"
	"github.com/padsynth/tracker-go/internal/fx"
	"github.com/padsynth/tracker-go/internal/lfo"
	"github.com/padsynth/tracker-go/internal/song"
	"github.com/padsynth/tracker-go/internal/voice"
)

// maxVoices is the polyphony per channel. Eight channels at eight voices
// each covers the whole scheduler worst case.
const maxVoices = 8

const (
	vibratoRateHz   = 5.5
	vibratoSemis    = 0.5  // depth 1.0 = half-semitone swing
	slideGlideSec   = 0.12 // time for the slide offset to reach zero
	arpStepsPerSec  = 15.0
	followerRampSec = 0.01
)

// NoteMods carries a note's per-trigger modulation into the channel.
// Times are in seconds; the scheduler converts from beats.
type NoteMods struct {
	Vibrato     float64 // 0..1 depth
	Slide       float64 // starting pitch offset in semitones, glides to 0
	ArpFirst    int     // semitone intervals cycled while the note holds
	ArpSecond   int
	FadeIn      float64 // seconds
	FadeOut     float64 // seconds, positioned against Duration
	Duration    float64 // seconds; 0 = held until release
	DetuneCents float64 // overrides the channel detune when nonzero
}

type chanVoice struct {
	active   bool
	id       int
	age      int
	vtype    voice.Type
	cfg      voice.Config
	baseFreq float64
	velocity float64
	env      envelope.ADSR
	mods     NoteMods
	elapsed  float64 // seconds since trigger
	warped   float64 // modulation-warped time fed to the renderer
	vib      lfo.LFO
	released bool
}

// Channel is one of the eight fixed instrument slots at render time. It is
// owned by the render goroutine; configuration arrives through Configure
// with complete value snapshots.
type Channel struct {
	index      int
	sampleRate float64
	dt         float64

	volume float64
	pan    float64
	osc    song.OscConfig
	envPar envelope.Params

	voices [maxVoices]chanVoice
	nextID int

	chain        *fx.Chain
	follower     float64
	followerCoef float64
}

// NewChannel creates a silent channel. index is the channel's slot, used by
// the effect chain to refuse sidechain self-reference.
func NewChannel(sampleRate, index int) *Channel {
	c := &Channel{
		index:        index,
		sampleRate:   float64(sampleRate),
		dt:           1.0 / float64(sampleRate),
		volume:       0.8,
		osc:          song.DefaultOscConfig(),
		envPar:       envelope.DefaultParams(),
		chain:        fx.NewChain(sampleRate, index),
		followerCoef: 1 - math.Exp(-1/(followerRampSec*float64(sampleRate))),
	}
	return c
}

// Index returns the channel's slot number.
func (c *Channel) Index() int { return c.index }

// Configure applies a complete channel configuration snapshot. Sounding
// voices keep their envelope parameters; new triggers pick up the change.
func (c *Channel) Configure(cfg song.ChannelConfig) {
	c.volume = clamp(cfg.Volume, 0, 1)
	c.pan = clamp(cfg.Pan, -1, 1)
	c.osc = cfg.Osc
	c.envPar = cfg.Env
	c.chain.Configure(cfg.FX)
}

// SetSourceProbe wires the mixer's cross-channel level lookup into the
// sidechain stage.
func (c *Channel) SetSourceProbe(probe fx.SourceProbe) { c.chain.SetSourceProbe(probe) }

// Volume returns the configured channel volume.
func (c *Channel) Volume() float64 { return c.volume }

// Pan returns the configured stereo position, -1 left to +1 right.
func (c *Channel) Pan() float64 { return c.pan }

// Level returns the channel's envelope-follower output, the signal other
// channels' sidechains duck against.
func (c *Channel) Level() float64 { return c.follower }

// Trigger starts a note and returns its id for a later ReleaseNote. A note
// voice type of song.VoiceDefault uses the channel's oscillator; an explicit
// type overrides it but keeps the channel's width, slope, and noise mode.
func (c *Channel) Trigger(pitch int, velocity float64, vt voice.Type, mods NoteMods) int {
	slot := c.stealVoice()
	id := c.nextID
	c.nextID++

	t := c.osc.Type
	if vt != song.VoiceDefault && voice.Valid(vt) {
		t = vt
	}
	cfg := voice.Config{
		Freq:          midiToFreq(pitch),
		PulseWidth:    c.osc.PulseWidth,
		TriangleSlope: c.osc.TriangleSlope,
		DetuneCents:   c.osc.DetuneCents,
		NoiseShort:    c.osc.NoiseShort,
	}
	if mods.DetuneCents != 0 {
		cfg.DetuneCents = mods.DetuneCents
	}

	v := &c.voices[slot]
	*v = chanVoice{
		active:   true,
		id:       id,
		vtype:    t,
		cfg:      cfg,
		baseFreq: cfg.Freq,
		velocity: clamp(velocity, 0, 1),
		env:      *envelope.New(c.sampleRate, c.envPar),
		mods:     mods,
	}
	v.env.Trigger()
	if mods.Vibrato > 0 {
		v.vib.Set(mods.Vibrato*vibratoSemis, vibratoRateHz, lfo.Sine)
	}
	return id
}

// ReleaseNote enters the release stage for the voice with the given id.
// Unknown ids no-op.
func (c *Channel) ReleaseNote(id int) {
	for i := range c.voices {
		v := &c.voices[i]
		if v.active && v.id == id && !v.released {
			v.released = true
			v.env.Release()
		}
	}
}

// ReleaseAll releases every sounding voice.
func (c *Channel) ReleaseAll() {
	for i := range c.voices {
		if c.voices[i].active && !c.voices[i].released {
			c.voices[i].released = true
			c.voices[i].env.Release()
		}
	}
}

// Silence hard-stops every voice and clears the effect tails.
func (c *Channel) Silence() {
	for i := range c.voices {
		c.voices[i] = chanVoice{}
	}
	c.chain.Reset()
	c.follower = 0
}

// ActiveVoices counts voices still sounding, release tails included.
func (c *Channel) ActiveVoices() int {
	n := 0
	for i := range c.voices {
		if c.voices[i].active {
			n++
		}
	}
	return n
}

// Render produces one mono sample: sum of voices, channel volume, then the
// effect chain. The envelope follower tracks the post-fx signal.
func (c *Channel) Render() float64 {
	var sum float64
	for i := range c.voices {
		v := &c.voices[i]
		if !v.active {
			continue
		}
		v.age++
		sum += c.renderVoice(v)
	}
	out := c.chain.Process(sum * c.volume)
	mag := math.Abs(out)
	c.follower += c.followerCoef * (mag - c.follower)
	return out
}

func (c *Channel) renderVoice(v *chanVoice) float64 {
	if voice.IsPercussion(v.vtype) {
		return c.renderDrum(v)
	}

	// Warp time so the pure renderer sees the modulated frequency: the
	// warped clock runs at effFreq/baseFreq relative to real time.
	ratio := 1.0
	if off := v.slideOffset() + v.arpOffset(); off != 0 {
		ratio = math.Pow(2, off/12)
	}
	if v.mods.Vibrato > 0 {
		ratio *= math.Pow(2, v.vib.Sample(c.sampleRate)/12)
	}
	sample := voice.Render(v.vtype, v.warped, v.cfg)
	v.warped += ratio * c.dt
	v.elapsed += c.dt

	gain := v.env.Next() * v.velocity * v.fadeGain()
	if v.env.Finished() {
		v.active = false
	}
	return sample * gain
}

func (c *Channel) renderDrum(v *chanVoice) float64 {
	// Drums carry their own intrinsic envelope; the ADSR is bypassed and
	// the voice ends when the preset's decay runs out.
	sample := voice.Render(v.vtype, v.elapsed, v.cfg)
	v.elapsed += c.dt
	if v.elapsed >= voice.DecayTime(v.vtype) {
		v.active = false
	}
	return sample * v.velocity
}

func (v *chanVoice) slideOffset() float64 {
	if v.mods.Slide == 0 || v.elapsed >= slideGlideSec {
		return 0
	}
	return v.mods.Slide * (1 - v.elapsed/slideGlideSec)
}

func (v *chanVoice) arpOffset() float64 {
	if v.mods.ArpFirst == 0 && v.mods.ArpSecond == 0 {
		return 0
	}
	switch int(v.elapsed*arpStepsPerSec) % 3 {
	case 1:
		return float64(v.mods.ArpFirst)
	case 2:
		return float64(v.mods.ArpSecond)
	}
	return 0
}

func (v *chanVoice) fadeGain() float64 {
	g := 1.0
	if v.mods.FadeIn > 0 && v.elapsed < v.mods.FadeIn {
		g = v.elapsed / v.mods.FadeIn
	}
	if v.mods.FadeOut > 0 && v.mods.Duration > 0 {
		fadeStart := v.mods.Duration - v.mods.FadeOut
		if v.elapsed > fadeStart {
			f := 1 - (v.elapsed-fadeStart)/v.mods.FadeOut
			if f < 0 {
				f = 0
			}
			g *= f
		}
	}
	return g
}

// stealVoice prefers a free slot, then the oldest releasing voice, then the
// oldest voice outright.
func (c *Channel) stealVoice() int {
	for i := range c.voices {
		if !c.voices[i].active {
			return i
		}
	}
	oldestRelease, oldestReleaseAge := -1, -1
	oldestActive, oldestActiveAge := 0, -1
	for i := range c.voices {
		v := &c.voices[i]
		if v.released && v.age > oldestReleaseAge {
			oldestRelease = i
			oldestReleaseAge = v.age
		}
		if v.age > oldestActiveAge {
			oldestActive = i
			oldestActiveAge = v.age
		}
	}
	if oldestRelease >= 0 {
		return oldestRelease
	}
	return oldestActive
}

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
