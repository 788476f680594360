package song

import (
	"math"
	"testing"

	"github.com/padsynth/tracker-go/internal/voice"
)

func TestNoteClamping(t *testing.T) {
	n := NewNote(200, -1, -0.5, 1.7, voice.Saw, 120)
	if n.Pitch != 127 {
		t.Fatalf("pitch = %d, want 127", n.Pitch)
	}
	if n.Start != 0 {
		t.Fatalf("start = %v, want 0", n.Start)
	}
	if n.Duration <= 0 {
		t.Fatalf("duration must be positive, got %v", n.Duration)
	}
	if n.Velocity != 1 {
		t.Fatalf("velocity = %v, want 1", n.Velocity)
	}
}

func TestFadesLimitedToHalfDuration(t *testing.T) {
	n := NewNote(60, 0, 2, 1, voice.Sine, 120)
	n.FadeIn = 5
	n.FadeOut = 5
	n.Clamp()
	if n.FadeIn != 1 || n.FadeOut != 1 {
		t.Fatalf("fades = %v/%v, want 1/1", n.FadeIn, n.FadeOut)
	}
}

func TestArpRange(t *testing.T) {
	a := NewArp(-3, 40)
	if a.First != 0 || a.Second != 12 {
		t.Fatalf("arp = %+v, want {0 12}", a)
	}
}

func TestPercussionNoteDerivesDuration(t *testing.T) {
	n := NewNote(60, 0, 4, 1, voice.Kick, 120)
	want := voice.DurationBeats(voice.Kick, 120, voice.DurationNormal)
	if math.Abs(n.Duration-want) > 1e-9 {
		t.Fatalf("drum duration = %v, want %v", n.Duration, want)
	}
}

func TestPatternLengthInvariant(t *testing.T) {
	p := NewPattern("test", 4)
	if p.Length != 4 {
		t.Fatalf("empty pattern length = %v, want 4", p.Length)
	}
	p.Add(NewNote(60, 6.5, 1, 1, VoiceDefault, 120), 4)
	// Note ends at 7.5, next measure boundary is 8.
	if p.Length != 8 {
		t.Fatalf("length = %v, want 8", p.Length)
	}
	for i := range p.Notes {
		if p.Notes[i].End() > p.Length {
			t.Fatalf("note %d ends past pattern length", i)
		}
	}
	// Length never shrinks.
	p.Remove(0)
	p.Extend(4)
	if p.Length != 8 {
		t.Fatalf("length shrank to %v", p.Length)
	}
}

func TestSetBPMRewritesDrumDurations(t *testing.T) {
	proj := NewProject()
	pat := proj.Patterns[0]
	pat.Add(NewNote(60, 0, 0, 1, voice.Kick, proj.BPM), proj.BeatsPerMeasure)
	pat.Add(NewNote(64, 1, 2, 1, voice.Saw, proj.BPM), proj.BeatsPerMeasure)
	at120 := pat.Notes[0].Duration
	tonal := pat.Notes[1].Duration

	proj.SetBPM(240)
	if math.Abs(pat.Notes[0].Duration-2*at120) > 1e-9 {
		t.Fatalf("drum duration at 240 = %v, want %v", pat.Notes[0].Duration, 2*at120)
	}
	if pat.Notes[1].Duration != tonal {
		t.Fatalf("tonal duration changed: %v -> %v", tonal, pat.Notes[1].Duration)
	}
}

func TestSetBPMClamps(t *testing.T) {
	proj := NewProject()
	proj.SetBPM(1)
	if proj.BPM != 20 {
		t.Fatalf("bpm = %v, want 20", proj.BPM)
	}
	proj.SetBPM(9999)
	if proj.BPM != 400 {
		t.Fatalf("bpm = %v, want 400", proj.BPM)
	}
}

func TestChannelAudibleMuteSolo(t *testing.T) {
	proj := NewProject()
	if !proj.ChannelAudible(0) {
		t.Fatal("fresh channel should be audible")
	}
	proj.Channels[0].Muted = true
	if proj.ChannelAudible(0) {
		t.Fatal("muted channel should be silent")
	}
	proj.Channels[0].Muted = false
	proj.Channels[2].Solo = true
	if proj.ChannelAudible(0) {
		t.Fatal("non-solo channel should be silent while another solos")
	}
	if !proj.ChannelAudible(2) {
		t.Fatal("solo channel should be audible")
	}
	if proj.ChannelAudible(-1) || proj.ChannelAudible(NumChannels) {
		t.Fatal("out-of-range channels are never audible")
	}
}

func TestPatternOutOfRangeIsNil(t *testing.T) {
	proj := NewProject()
	if proj.Pattern(-1) != nil || proj.Pattern(99) != nil {
		t.Fatal("out-of-range pattern lookup should return nil")
	}
}
