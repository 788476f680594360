package song

import (
	"github.com/padsynth/tracker-go/internal/envelope"
	"github.com/padsynth/tracker-go/internal/fx"
	"github.com/padsynth/tracker-go/internal/voice"
)

// NumChannels is the fixed channel count per project.
const NumChannels = 8

// PreviewChannel is reserved by convention for live-preview and performance
// audition.
const PreviewChannel = 7

// OscConfig is a channel's oscillator setup. A note's own voice type
// overrides Type at trigger time but keeps the width/slope/detune fields.
type OscConfig struct {
	Type          voice.Type
	PulseWidth    float64
	TriangleSlope float64
	DetuneCents   float64
	NoiseShort    bool
}

// DefaultOscConfig returns a plain pulse oscillator.
func DefaultOscConfig() OscConfig {
	return OscConfig{
		Type:          voice.Pulse,
		PulseWidth:    0.5,
		TriangleSlope: 0.5,
	}
}

// ChannelConfig is the editable state of one instrument slot.
type ChannelConfig struct {
	Name   string
	Volume float64 // 0..1
	Pan    float64 // -1 (left) .. +1 (right)
	Muted  bool
	Solo   bool
	Osc    OscConfig
	Env    envelope.Params
	FX     fx.Settings
}

// Clip places a pattern on a channel at a song position. Overlapping clips
// on one channel resolve last-write-wins during scheduling.
type Clip struct {
	Channel int
	Pattern int
	Start   float64 // beats
	Length  float64 // beats
}

// Project is the whole editable document.
type Project struct {
	BPM              float64
	BeatsPerMeasure  int
	SongLength       float64 // beats
	MasterVolume     float64
	Swing            float64 // 0..1
	SwingGrid        int     // grid denominator, e.g. 8 for eighth-note swing
	Humanize         bool
	HumanizeAmount   float64 // seconds of timing jitter
	HumanizeVelocity float64 // 0..1 velocity jitter
	Channels         [NumChannels]ChannelConfig
	Patterns         []*Pattern
	Clips            []Clip
}

// NewProject returns a fresh project with one empty pattern and default
// channel settings.
func NewProject() *Project {
	p := &Project{
		BPM:             120,
		BeatsPerMeasure: 4,
		SongLength:      64,
		MasterVolume:    0.8,
		SwingGrid:       8,
	}
	for i := range p.Channels {
		p.Channels[i] = ChannelConfig{
			Name:   channelName(i),
			Volume: 0.8,
			Osc:    DefaultOscConfig(),
			Env:    envelope.DefaultParams(),
			FX:     fx.DefaultSettings(),
		}
	}
	p.Patterns = append(p.Patterns, NewPattern("Pattern 1", p.BeatsPerMeasure))
	return p
}

func channelName(i int) string {
	if i == PreviewChannel {
		return "Preview"
	}
	return "Channel " + string(rune('1'+i))
}

// Pattern returns the pattern at index i, or nil when out of range.
func (p *Project) Pattern(i int) *Pattern {
	if i < 0 || i >= len(p.Patterns) {
		return nil
	}
	return p.Patterns[i]
}

// ValidChannel reports whether i names one of the fixed channels.
func (p *Project) ValidChannel(i int) bool { return i >= 0 && i < NumChannels }

// SetBPM changes the tempo and eagerly rewrites every percussion note's
// duration project-wide; downstream code assumes Duration is already in
// beats, so this is a bulk side effect rather than a derived value.
func (p *Project) SetBPM(bpm float64) {
	if bpm < 20 {
		bpm = 20
	}
	if bpm > 400 {
		bpm = 400
	}
	p.BPM = bpm
	for _, pat := range p.Patterns {
		for i := range pat.Notes {
			n := &pat.Notes[i]
			if n.IsPercussion() {
				n.Duration = voice.DurationBeats(n.Voice, bpm, n.DurMult)
			}
		}
		pat.Extend(p.BeatsPerMeasure)
	}
}

// SoloActive reports whether any channel has solo engaged.
func (p *Project) SoloActive() bool {
	for i := range p.Channels {
		if p.Channels[i].Solo {
			return true
		}
	}
	return false
}

// ChannelAudible resolves mute/solo state for channel i.
func (p *Project) ChannelAudible(i int) bool {
	if !p.ValidChannel(i) {
		return false
	}
	ch := &p.Channels[i]
	if ch.Muted {
		return false
	}
	if p.SoloActive() && !ch.Solo {
		return false
	}
	return true
}
