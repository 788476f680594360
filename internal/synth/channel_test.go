package synth

import (
	"math"
	"testing"

	"github.com/padsynth/tracker-go/internal/envelope"
	"github.com/padsynth/tracker-go/internal/fx"
	"github.com/padsynth/tracker-go/internal/song"
	"github.com/padsynth/tracker-go/internal/voice"
)

const testRate = 44100

func testConfig() song.ChannelConfig {
	return song.ChannelConfig{
		Volume: 1,
		Osc:    song.DefaultOscConfig(),
		Env:    envelope.DefaultParams(),
		FX:     fx.DefaultSettings(),
	}
}

func TestSilentChannelRendersZero(t *testing.T) {
	c := NewChannel(testRate, 0)
	c.Configure(testConfig())
	for i := 0; i < 100; i++ {
		if s := c.Render(); s != 0 {
			t.Fatalf("idle channel produced %v at sample %d", s, i)
		}
	}
}

func TestTriggerProducesSignal(t *testing.T) {
	c := NewChannel(testRate, 0)
	c.Configure(testConfig())
	c.Trigger(69, 1, song.VoiceDefault, NoteMods{})
	var energy float64
	for i := 0; i < testRate/10; i++ {
		s := c.Render()
		if math.Abs(s) > 2 {
			t.Fatalf("sample %d out of range: %v", i, s)
		}
		energy += s * s
	}
	if energy == 0 {
		t.Fatal("triggered note produced no signal")
	}
}

func TestReleaseFadesToSilence(t *testing.T) {
	cfg := testConfig()
	cfg.Env = envelope.Params{Attack: 0.001, Decay: 0.01, Sustain: 0.8, Release: 0.05}
	c := NewChannel(testRate, 0)
	c.Configure(cfg)
	id := c.Trigger(60, 1, song.VoiceDefault, NoteMods{})
	for i := 0; i < testRate/20; i++ {
		c.Render()
	}
	c.ReleaseNote(id)
	// Render past the release tail.
	for i := 0; i < testRate/5; i++ {
		c.Render()
	}
	if n := c.ActiveVoices(); n != 0 {
		t.Fatalf("voices still active after release tail: %d", n)
	}
	if s := c.Render(); s != 0 {
		t.Fatalf("released channel still sounding: %v", s)
	}
}

func TestDrumEndsAtDecayTime(t *testing.T) {
	c := NewChannel(testRate, 0)
	c.Configure(testConfig())
	c.Trigger(60, 1, voice.Kick, NoteMods{})
	frames := int(voice.DecayTime(voice.Kick)*testRate) + 2
	for i := 0; i < frames; i++ {
		c.Render()
	}
	if n := c.ActiveVoices(); n != 0 {
		t.Fatalf("drum voice still active past decay: %d", n)
	}
}

func TestVoiceOverrideKeepsChannelTimbre(t *testing.T) {
	cfg := testConfig()
	cfg.Osc.Type = voice.Sine
	cfg.Osc.PulseWidth = 0.25
	c := NewChannel(testRate, 0)
	c.Configure(cfg)
	c.Trigger(60, 1, voice.Pulse, NoteMods{})
	// The override switches the waveform; a pulse at 25% duty spends a
	// quarter of each period positive.
	pos, total := 0, testRate/10
	for i := 0; i < total; i++ {
		if c.Render() > 0 {
			pos++
		}
	}
	duty := float64(pos) / float64(total)
	if duty < 0.15 || duty > 0.35 {
		t.Fatalf("pulse duty = %v, channel width was not preserved", duty)
	}
}

func TestPolyphonyAndStealing(t *testing.T) {
	c := NewChannel(testRate, 0)
	c.Configure(testConfig())
	for i := 0; i < maxVoices+4; i++ {
		c.Trigger(40+i, 1, song.VoiceDefault, NoteMods{})
		c.Render()
	}
	if n := c.ActiveVoices(); n != maxVoices {
		t.Fatalf("active voices = %d, want %d", n, maxVoices)
	}
}

func TestSilenceStopsEverything(t *testing.T) {
	c := NewChannel(testRate, 0)
	c.Configure(testConfig())
	c.Trigger(60, 1, song.VoiceDefault, NoteMods{})
	c.Render()
	c.Silence()
	if c.ActiveVoices() != 0 || c.Render() != 0 || c.Level() != 0 {
		t.Fatal("Silence left residual state")
	}
}

func TestFollowerTracksSignal(t *testing.T) {
	c := NewChannel(testRate, 0)
	c.Configure(testConfig())
	c.Trigger(69, 1, song.VoiceDefault, NoteMods{})
	for i := 0; i < testRate/10; i++ {
		c.Render()
	}
	if c.Level() <= 0 {
		t.Fatalf("follower level = %v, want > 0 while sounding", c.Level())
	}
}

func TestFadeInStartsQuiet(t *testing.T) {
	cfg := testConfig()
	cfg.Env = envelope.Params{Attack: 0, Decay: 0, Sustain: 1, Release: 0.01}
	c := NewChannel(testRate, 0)
	c.Configure(cfg)
	c.Trigger(69, 1, song.VoiceDefault, NoteMods{FadeIn: 0.1})
	var early float64
	for i := 0; i < 50; i++ {
		early = math.Max(early, math.Abs(c.Render()))
	}
	if early > 0.05 {
		t.Fatalf("fade-in note too loud at onset: %v", early)
	}
}

func TestVibratoChangesWaveform(t *testing.T) {
	render := func(mods NoteMods) []float64 {
		c := NewChannel(testRate, 0)
		cfg := testConfig()
		cfg.Osc.Type = voice.Sine
		c.Configure(cfg)
		c.Trigger(69, 1, song.VoiceDefault, mods)
		out := make([]float64, testRate/5)
		for i := range out {
			out[i] = c.Render()
		}
		return out
	}
	plain := render(NoteMods{})
	modded := render(NoteMods{Vibrato: 1})
	diff := 0.0
	for i := range plain {
		diff += math.Abs(plain[i] - modded[i])
	}
	if diff < 1 {
		t.Fatalf("vibrato made no audible difference (diff %v)", diff)
	}
}
