package sequencer

import (
	"math"
	"testing"

	"github.com/padsynth/tracker-go/internal/song"
)

func TestRecorderCommitQuantizes(t *testing.T) {
	proj := song.NewProject()
	sess := song.NewSession(proj)
	rec := NewRecorder()
	rec.Arm(nil)

	rec.NoteOn(0.93, 60, 1, song.VoiceDefault)
	rec.NoteOff(1.4, 60, proj.BPM)
	rec.NoteOn(2.12, 64, 0.8, song.VoiceDefault)
	rec.NoteOff(2.6, 64, proj.BPM)

	n := rec.Commit(sess, 0, 0.25, 4)
	if n != 2 {
		t.Fatalf("committed %d notes, want 2", n)
	}
	pat := proj.Patterns[0]
	if len(pat.Notes) != 2 {
		t.Fatalf("pattern has %d notes, want 2", len(pat.Notes))
	}
	if math.Abs(pat.Notes[0].Start-1.0) > 1e-9 {
		t.Fatalf("first start = %v, want 1.0", pat.Notes[0].Start)
	}
	if math.Abs(pat.Notes[1].Start-2.0) > 1e-9 {
		t.Fatalf("second start = %v, want 2.0", pat.Notes[1].Start)
	}
	if rec.Armed() {
		t.Fatal("recorder still armed after commit")
	}
}

func TestRecorderCommitIsOneUndoStep(t *testing.T) {
	proj := song.NewProject()
	sess := song.NewSession(proj)
	rec := NewRecorder()
	rec.Arm(nil)
	rec.NoteOn(0, 60, 1, song.VoiceDefault)
	rec.NoteOff(0.5, 60, proj.BPM)
	rec.NoteOn(1, 62, 1, song.VoiceDefault)
	rec.NoteOff(1.5, 62, proj.BPM)
	rec.Commit(sess, 0, 0, 4)

	if len(proj.Patterns[0].Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(proj.Patterns[0].Notes))
	}
	if !sess.Undo() {
		t.Fatal("undo failed")
	}
	if len(proj.Patterns[0].Notes) != 0 {
		t.Fatal("one undo should remove the whole take")
	}
	if sess.Undo() {
		t.Fatal("no further undo steps should exist")
	}
}

func TestRecorderEmptyCommitIsNoop(t *testing.T) {
	proj := song.NewProject()
	sess := song.NewSession(proj)
	rec := NewRecorder()
	rec.Arm(nil)
	if n := rec.Commit(sess, 0, 0.25, 4); n != 0 {
		t.Fatalf("empty commit wrote %d notes", n)
	}
	if sess.History().CanUndo() {
		t.Fatal("empty commit must not record history")
	}
}

func TestRecorderClosesOpenNotesAtCommit(t *testing.T) {
	proj := song.NewProject()
	sess := song.NewSession(proj)
	rec := NewRecorder()
	rec.Arm(nil)
	rec.NoteOn(1, 60, 1, song.VoiceDefault)
	// Never released; commit closes it at the end beat.
	rec.Commit(sess, 0, 0, 3)
	pat := proj.Patterns[0]
	if len(pat.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(pat.Notes))
	}
	if math.Abs(pat.Notes[0].Duration-2) > 1e-9 {
		t.Fatalf("open note duration = %v, want 2", pat.Notes[0].Duration)
	}
}

func TestRecorderArmForcesStop(t *testing.T) {
	proj := song.NewProject()
	pat := proj.Patterns[0]
	pat.Add(song.NewNote(60, 0, 4, 1, song.VoiceDefault, proj.BPM), proj.BeatsPerMeasure)
	seq := New(proj, testRate, Options{})
	seq.SetPreviewPattern(pat, 0)
	seq.Play()
	dst := make([]float32, 2*framesForBeats(0.5, proj.BPM))
	seq.Process(dst)

	rec := NewRecorder()
	rec.Arm(seq)
	if seq.IsPlaying() {
		t.Fatal("arming must stop the transport")
	}
	if seq.Channel(0).ActiveVoices() != 0 {
		t.Fatal("arming must silence sounding voices")
	}
	if !rec.Armed() {
		t.Fatal("recorder not armed")
	}
}

func TestIgnoresInputWhenDisarmed(t *testing.T) {
	rec := NewRecorder()
	rec.NoteOn(0, 60, 1, song.VoiceDefault)
	if rec.Pending() != 0 {
		t.Fatal("disarmed recorder captured input")
	}
}
