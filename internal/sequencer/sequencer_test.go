package sequencer

import (
	"math"
	"testing"
	"time"

	"github.com/padsynth/tracker-go/internal/song"
)

const testRate = 8000

// framesForBeats returns the frame count covering the given span at the
// project tempo.
func framesForBeats(beats, bpm float64) int {
	return int(beats * 60 / bpm * testRate)
}

func TestLoopTriggersOncePerPass(t *testing.T) {
	proj := song.NewProject()
	pat := proj.Patterns[0]
	pat.Add(song.NewNote(60, 1, 0.5, 1, song.VoiceDefault, proj.BPM), proj.BeatsPerMeasure)

	triggers := 0
	seq := New(proj, testRate, Options{OnTrigger: func(int, song.Note) { triggers++ }})
	seq.SetPreviewPattern(pat, 0)
	seq.SetLoopEnabled(true)
	seq.Play()

	dst := make([]float32, 2*framesForBeats(8, proj.BPM))
	seq.Process(dst)

	if triggers != 2 {
		t.Fatalf("note triggered %d times over two loop passes, want 2", triggers)
	}
}

func TestMutedChannelNeverTriggers(t *testing.T) {
	proj := song.NewProject()
	pat := proj.Patterns[0]
	pat.Add(song.NewNote(60, 0, 1, 1, song.VoiceDefault, proj.BPM), proj.BeatsPerMeasure)
	proj.Channels[0].Muted = true

	triggers := 0
	seq := New(proj, testRate, Options{OnTrigger: func(int, song.Note) { triggers++ }})
	seq.SetPreviewPattern(pat, 0)
	seq.Play()
	dst := make([]float32, 2*framesForBeats(2, proj.BPM))
	seq.Process(dst)

	if triggers != 0 {
		t.Fatalf("muted channel triggered %d times", triggers)
	}
}

func TestStopSilencesAndRewinds(t *testing.T) {
	proj := song.NewProject()
	pat := proj.Patterns[0]
	pat.Add(song.NewNote(60, 0, 4, 1, song.VoiceDefault, proj.BPM), proj.BeatsPerMeasure)

	seq := New(proj, testRate, Options{})
	seq.SetPreviewPattern(pat, 0)
	seq.Play()
	dst := make([]float32, 2*framesForBeats(1, proj.BPM))
	seq.Process(dst)
	if seq.Channel(0).ActiveVoices() == 0 {
		t.Fatal("expected a sounding voice before stop")
	}

	seq.Stop()
	if seq.IsPlaying() {
		t.Fatal("still playing after stop")
	}
	if seq.CurrentBeat() != 0 {
		t.Fatalf("position after stop = %v, want 0", seq.CurrentBeat())
	}
	if seq.Channel(0).ActiveVoices() != 0 {
		t.Fatal("voices survive stop")
	}
	seq.Process(dst)
	for i, s := range dst {
		if s != 0 {
			t.Fatalf("stopped sequencer produced output at %d: %v", i, s)
		}
	}
}

func TestRepublishRunsOffRenderLock(t *testing.T) {
	// A big arrangement makes each recompile expensive. The render path
	// must keep producing blocks while snapshots are republished from
	// another goroutine, and must end up on the latest one.
	proj := song.NewProject()
	pat := proj.Patterns[0]
	for i := 0; i < 64; i++ {
		pat.Add(song.NewNote(36+i%24, float64(i)*0.25, 0.25, 1, song.VoiceDefault, proj.BPM), proj.BeatsPerMeasure)
	}
	proj.SongLength = 512
	for i := 0; i < 32; i++ {
		proj.Clips = append(proj.Clips, song.Clip{Channel: i % song.NumChannels, Pattern: 0, Start: float64(i * 16), Length: 16})
	}

	seq := New(proj, testRate, Options{})
	seq.Play()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			seq.UpdateChannelConfigs()
		}
	}()

	dst := make([]float32, 2*128)
	deadline := time.After(10 * time.Second)
	for {
		select {
		case <-done:
			seq.Process(dst)
			return
		case <-deadline:
			t.Fatal("render path stalled while snapshots were being republished")
		default:
			seq.Process(dst)
		}
	}
}

func TestPublishedSnapshotReachesRender(t *testing.T) {
	// Muting a channel and republishing must take effect with no transport
	// call in between: the snapshot alone carries the change.
	proj := song.NewProject()
	pat := proj.Patterns[0]
	pat.Add(song.NewNote(60, 0, 1, 1, song.VoiceDefault, proj.BPM), proj.BeatsPerMeasure)
	pat.Add(song.NewNote(60, 2, 1, 1, song.VoiceDefault, proj.BPM), proj.BeatsPerMeasure)

	triggers := 0
	seq := New(proj, testRate, Options{OnTrigger: func(int, song.Note) { triggers++ }})
	seq.SetPreviewPattern(pat, 0)
	seq.Play()

	dst := make([]float32, 2*framesForBeats(1, proj.BPM))
	seq.Process(dst)
	if triggers != 1 {
		t.Fatalf("first note triggered %d times, want 1", triggers)
	}

	proj.Channels[0].Muted = true
	seq.UpdateChannelConfigs()
	seq.Process(dst)
	seq.Process(dst)
	if triggers != 1 {
		t.Fatalf("muted channel still triggered: %d total", triggers)
	}
}

func TestPreviewNoteSoundsOnPreviewChannel(t *testing.T) {
	proj := song.NewProject()
	seq := New(proj, testRate, Options{})
	seq.PreviewNote(69, 1, song.VoiceDefault, 1)
	dst := make([]float32, 2*64)
	seq.Process(dst)
	if seq.Channel(song.PreviewChannel).ActiveVoices() == 0 {
		t.Fatal("preview note did not sound on the preview channel")
	}
	var energy float64
	for _, s := range dst {
		energy += float64(s) * float64(s)
	}
	if energy == 0 {
		t.Fatal("preview note produced no output")
	}
}

func TestPreviewNoteDuration(t *testing.T) {
	proj := song.NewProject()
	short := New(proj, testRate, Options{})
	short.PreviewNote(60, 1, song.VoiceDefault, 0) // default length
	long := New(proj, testRate, Options{})
	long.PreviewNote(60, 1, song.VoiceDefault, 4)

	// One beat past the trigger plus the release tail: the default-length
	// note is done, the four-beat note still holds.
	env := proj.Channels[song.PreviewChannel].Env
	frames := framesForBeats(1, proj.BPM) + int((env.Release+0.1)*testRate)
	dst := make([]float32, 2*frames)
	short.Process(dst)
	long.Process(dst)
	if n := short.Channel(song.PreviewChannel).ActiveVoices(); n != 0 {
		t.Fatalf("default-length preview still holds %d voices", n)
	}
	if long.Channel(song.PreviewChannel).ActiveVoices() == 0 {
		t.Fatal("explicit preview duration was ignored")
	}
}

func TestPlaybackEndedFiresOnce(t *testing.T) {
	proj := song.NewProject()
	proj.SongLength = 1
	pat := proj.Patterns[0]
	pat.Add(song.NewNote(60, 0, 0.25, 1, song.VoiceDefault, proj.BPM), proj.BeatsPerMeasure)
	proj.Clips = append(proj.Clips, song.Clip{Channel: 0, Pattern: 0, Start: 0, Length: 1})

	ended := 0
	seq := New(proj, testRate, Options{OnEvent: func(k EventKind) {
		if k == EventPlaybackEnded {
			ended++
		}
	}})
	seq.Play()
	dst := make([]float32, 2*framesForBeats(1, proj.BPM))
	// Render well past the song end so release tails finish.
	for i := 0; i < 6; i++ {
		seq.Process(dst)
	}
	if ended != 1 {
		t.Fatalf("playback-ended fired %d times, want 1", ended)
	}
	if seq.IsPlaying() {
		t.Fatal("transport still running after the song ended")
	}
}

func TestSwingDelaysOffbeatOnly(t *testing.T) {
	// Eighth-note grid: step 0.5 beats. Downbeats stay put, offbeats move
	// late by swing*step/2.
	if got := swungBeat(0, 0.6, 8); got != 0 {
		t.Fatalf("downbeat moved to %v", got)
	}
	if got := swungBeat(1, 0.6, 8); got != 1 {
		t.Fatalf("beat 1 moved to %v", got)
	}
	want := 0.5 + 0.6*0.5/2
	if got := swungBeat(0.5, 0.6, 8); math.Abs(got-want) > 1e-9 {
		t.Fatalf("offbeat swung to %v, want %v", got, want)
	}
	// Applying swing to an already-swung downbeat changes nothing.
	if got := swungBeat(swungBeat(2, 0.6, 8), 0.6, 8); got != 2 {
		t.Fatalf("double-swung downbeat = %v", got)
	}
	// Positions off the grid entirely are left alone.
	if got := swungBeat(0.37, 0.6, 8); got != 0.37 {
		t.Fatalf("off-grid position moved to %v", got)
	}
}

func TestClockLatencyCompensation(t *testing.T) {
	c := NewClock(testRate)
	c.SetBPM(120)
	c.SetPosition(4)
	c.SetLatency(0.5) // 0.5s at 120 BPM = 1 beat
	if got := c.DisplayBeat(); math.Abs(got-3) > 1e-9 {
		t.Fatalf("compensated beat = %v, want 3", got)
	}
	c.SetLatency(0)
	if got := c.DisplayBeat(); got != 4 {
		t.Fatalf("uncompensated beat = %v, want 4", got)
	}
}

func TestClockLoopWrap(t *testing.T) {
	c := NewClock(testRate)
	c.SetBPM(120)
	c.SetLoop(true)
	c.SetLength(4)
	frames := framesForBeats(4, 120)
	for i := 0; i < frames; i++ {
		c.Advance()
	}
	if c.Pos() >= 4 || c.Pos() < 0 {
		t.Fatalf("clock did not wrap: pos %v", c.Pos())
	}
}

func TestSetPositionReleasesNotes(t *testing.T) {
	proj := song.NewProject()
	pat := proj.Patterns[0]
	pat.Add(song.NewNote(60, 0, 4, 1, song.VoiceDefault, proj.BPM), proj.BeatsPerMeasure)

	seq := New(proj, testRate, Options{})
	seq.SetPreviewPattern(pat, 0)
	seq.Play()
	dst := make([]float32, 2*framesForBeats(0.5, proj.BPM))
	seq.Process(dst)
	seq.SetPosition(2)
	// The held note must be releasing, not hanging at full sustain.
	env := proj.Channels[0].Env
	tail := make([]float32, 2*int((env.Release+0.1)*testRate))
	seq.Process(tail)
	if n := seq.Channel(0).ActiveVoices(); n != 0 {
		t.Fatalf("%d voices hanging after seek", n)
	}
}
