package voice

import (
	"math"
	"testing"
)

func TestRenderIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Freq = 220
	cfg.DetuneCents = 12
	for vt := Type(0); vt < typeCount; vt++ {
		for _, sec := range []float64{0, 0.001, 0.0137, 0.1, 0.25, 0.999} {
			a := Render(vt, sec, cfg)
			b := Render(vt, sec, cfg)
			if a != b {
				t.Fatalf("type %d at t=%v: %v != %v", vt, sec, a, b)
			}
		}
	}
}

func TestRenderBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Freq = 330
	for vt := Type(0); vt < typeCount; vt++ {
		for i := 0; i < 500; i++ {
			sec := float64(i) / 4800
			s := Render(vt, sec, cfg)
			if s < -1 || s > 1 || math.IsNaN(s) {
				t.Fatalf("type %d at t=%v out of range: %v", vt, sec, s)
			}
		}
	}
}

func TestUnknownTypeIsSilent(t *testing.T) {
	if s := Render(Type(-1), 0.1, DefaultConfig()); s != 0 {
		t.Fatalf("negative type produced %v", s)
	}
	if s := Render(typeCount, 0.1, DefaultConfig()); s != 0 {
		t.Fatalf("out-of-range type produced %v", s)
	}
}

func TestPercussionHasIntrinsicDuration(t *testing.T) {
	for vt := Type(0); vt < typeCount; vt++ {
		if IsPercussion(vt) {
			if DecayTime(vt) <= 0 {
				t.Fatalf("percussion type %d has no decay time", vt)
			}
			// Silent beyond the intrinsic decay.
			cfg := DefaultConfig()
			if s := Render(vt, DecayTime(vt)+0.01, cfg); s != 0 {
				t.Fatalf("percussion type %d sounds past decay: %v", vt, s)
			}
		} else if DecayTime(vt) != 0 {
			t.Fatalf("tonal type %d reports decay time", vt)
		}
	}
}

func TestDurationBeatsScalesWithBPM(t *testing.T) {
	// decayTime=0.3s, multiplier 1.0: duration_beats = 0.3 * bpm/60.
	at120 := DurationBeats(Kick, 120, DurationNormal)
	at240 := DurationBeats(Kick, 240, DurationNormal)
	want120 := DecayTime(Kick) * 2
	if math.Abs(at120-want120) > 1e-9 {
		t.Fatalf("duration at 120 BPM = %v, want %v", at120, want120)
	}
	if math.Abs(at240-2*at120) > 1e-9 {
		t.Fatalf("doubling BPM should double beat duration: %v vs %v", at240, at120)
	}
	if d := DurationBeats(Kick, 120, DurationHalf); math.Abs(d-at120/2) > 1e-9 {
		t.Fatalf("half multiplier = %v, want %v", d, at120/2)
	}
	if DurationBeats(Sine, 120, DurationNormal) != 0 {
		t.Fatal("tonal type should have no derived duration")
	}
}

func TestPulseDutyCycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Freq = 1 // one cycle per second makes phase == sec
	cfg.PulseWidth = 0.25
	if s := Render(Pulse, 0.1, cfg); s != 1 {
		t.Fatalf("expected high within duty, got %v", s)
	}
	if s := Render(Pulse, 0.5, cfg); s != -1 {
		t.Fatalf("expected low past duty, got %v", s)
	}
}

func TestTriangleSlope(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Freq = 1
	cfg.TriangleSlope = 0.25
	if s := Render(Triangle, 0.25, cfg); math.Abs(s-1) > 1e-9 {
		t.Fatalf("peak should sit at the slope position, got %v", s)
	}
}

func TestNoiseShortModeRepeats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Freq = 440
	cfg.NoiseShort = true
	rate := cfg.Freq * 16
	// Sample mid-step so float truncation lands on the intended step index.
	secFor := func(step int) float64 { return (float64(step) + 0.5) / rate }
	a := Render(Noise, secFor(100), cfg)
	b := Render(Noise, secFor(100+93), cfg)
	if a != b {
		t.Fatalf("short noise should repeat every 93 steps: %v != %v", a, b)
	}
}
