// Package song holds the pattern/note data model, the project, and the
// snapshot-based edit history.
package song

import "github.com/padsynth/tracker-go/internal/voice"

// VoiceDefault marks a note that uses its channel's oscillator type.
const VoiceDefault voice.Type = -1

// Arp is a pair of independent interval offsets cycled while a note sounds.
// Each interval is limited to 0..12 semitones.
type Arp struct {
	First  int
	Second int
}

// NewArp clamps both intervals into the 0..12 range.
func NewArp(first, second int) Arp {
	return Arp{First: clampInt(first, 0, 12), Second: clampInt(second, 0, 12)}
}

// Active reports whether the arpeggio moves the pitch at all.
func (a Arp) Active() bool { return a.First != 0 || a.Second != 0 }

// Note is one timed event inside a pattern. All fields are clamped at
// creation/edit time so playback never sees malformed values.
type Note struct {
	Pitch    int        // semitone code (MIDI numbering)
	Start    float64    // beats from pattern start
	Duration float64    // beats
	Velocity float64    // 0..1
	Voice    voice.Type // overrides the channel type; VoiceDefault keeps it
	FadeIn   float64    // beats, at most half the duration
	FadeOut  float64    // beats, at most half the duration
	Vibrato  float64    // 0..1 depth
	Slide    float64    // starting pitch offset in semitones
	Arp      Arp
	DurMult  voice.DurationMultiplier // percussion length preset
}

// NewNote builds a clamped note. Percussion types derive their duration from
// the preset's decay time at the given tempo and ignore the passed duration.
func NewNote(pitch int, start, duration, velocity float64, vt voice.Type, bpm float64) Note {
	n := Note{
		Pitch:    pitch,
		Start:    start,
		Duration: duration,
		Velocity: velocity,
		Voice:    vt,
		DurMult:  voice.DurationNormal,
	}
	if vt != VoiceDefault && voice.IsPercussion(vt) {
		n.Duration = voice.DurationBeats(vt, bpm, n.DurMult)
	}
	n.Clamp()
	return n
}

// IsPercussion reports whether the note's own voice type is a drum preset.
func (n *Note) IsPercussion() bool {
	return n.Voice != VoiceDefault && voice.IsPercussion(n.Voice)
}

// Clamp forces every field into its valid range.
func (n *Note) Clamp() {
	n.Pitch = clampInt(n.Pitch, 0, 127)
	if n.Start < 0 {
		n.Start = 0
	}
	if n.Duration <= 0 {
		n.Duration = minNoteDuration
	}
	n.Velocity = clampFloat(n.Velocity, 0, 1)
	n.Vibrato = clampFloat(n.Vibrato, 0, 1)
	n.Slide = clampFloat(n.Slide, -24, 24)
	n.Arp = NewArp(n.Arp.First, n.Arp.Second)
	half := n.Duration / 2
	n.FadeIn = clampFloat(n.FadeIn, 0, half)
	n.FadeOut = clampFloat(n.FadeOut, 0, half)
}

// End returns the note's end position in beats.
func (n *Note) End() float64 { return n.Start + n.Duration }

const minNoteDuration = 1.0 / 64

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
