package sequencer

import (
	"math"

	"github.com/padsynth/tracker-go/internal/song"
	"github.com/padsynth/tracker-go/internal/voice"
)

// Recorder captures timestamped live input and commits it to a pattern as
// one undoable batch, optionally snapped to a quantize grid.
type Recorder struct {
	armed bool
	open  []openNote
	taken []song.Note
}

type openNote struct {
	pitch    int
	beat     float64
	velocity float64
	voice    voice.Type
}

// NewRecorder returns a disarmed recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Arm clears any previous take and forces the transport into a clean state:
// playback stops and every channel is silenced before capture begins.
func (r *Recorder) Arm(seq *Sequencer) {
	if seq != nil {
		seq.Stop()
	}
	r.armed = true
	r.open = r.open[:0]
	r.taken = r.taken[:0]
}

// Disarm stops capturing without discarding the take.
func (r *Recorder) Disarm() { r.armed = false }

// Armed reports whether input is being captured.
func (r *Recorder) Armed() bool { return r.armed }

// NoteOn records the start of a held note at the given beat position.
func (r *Recorder) NoteOn(beat float64, pitch int, velocity float64, vt voice.Type) {
	if !r.armed {
		return
	}
	r.open = append(r.open, openNote{pitch: pitch, beat: beat, velocity: velocity, voice: vt})
}

// NoteOff closes the earliest open note with the given pitch. An off with
// no matching on is ignored.
func (r *Recorder) NoteOff(beat float64, pitch int, bpm float64) {
	if !r.armed {
		return
	}
	for i, o := range r.open {
		if o.pitch == pitch {
			r.taken = append(r.taken, song.NewNote(o.pitch, o.beat, beat-o.beat, o.velocity, o.voice, bpm))
			r.open = append(r.open[:i], r.open[i+1:]...)
			return
		}
	}
}

// Pending reports how many events the take holds, open notes included.
func (r *Recorder) Pending() int { return len(r.taken) + len(r.open) }

// Commit quantizes the take and draws it into the target pattern through
// the session as a single undoable operation. Notes still held are closed
// at endBeat. An empty take is a no-op. The recorder disarms afterwards.
func (r *Recorder) Commit(sess *song.Session, patternIndex int, quantizeRes, endBeat float64) int {
	r.armed = false
	bpm := sess.Project().BPM
	for _, o := range r.open {
		dur := endBeat - o.beat
		if dur <= 0 {
			dur = 0.25
		}
		r.taken = append(r.taken, song.NewNote(o.pitch, o.beat, dur, o.velocity, o.voice, bpm))
	}
	r.open = r.open[:0]
	if len(r.taken) == 0 {
		return 0
	}
	notes := make([]song.Note, len(r.taken))
	copy(notes, r.taken)
	if quantizeRes > 0 {
		for i := range notes {
			notes[i].Start = quantizeBeat(notes[i].Start, quantizeRes)
		}
	}
	sess.DrawNotes(patternIndex, notes)
	n := len(notes)
	r.taken = r.taken[:0]
	return n
}

// quantizeBeat snaps t to the nearest multiple of the resolution.
func quantizeBeat(t, res float64) float64 {
	if res <= 0 {
		return t
	}
	q := math.Round(t/res) * res
	if q < 0 {
		return 0
	}
	return q
}
