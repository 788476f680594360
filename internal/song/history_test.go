package song

import (
	"reflect"
	"testing"

	"github.com/padsynth/tracker-go/internal/voice"
)

func TestUndoRedoRoundTrip(t *testing.T) {
	proj := NewProject()
	sess := NewSession(proj)
	pat := proj.Patterns[0]

	original := pat.CopyNotes()
	const edits = 5
	for i := 0; i < edits; i++ {
		sess.DrawNote(0, NewNote(60+i, float64(i), 1, 1, voice.Square, proj.BPM))
	}
	afterEdits := pat.CopyNotes()
	if len(afterEdits) != edits {
		t.Fatalf("expected %d notes, got %d", edits, len(afterEdits))
	}

	for i := 0; i < edits; i++ {
		if !sess.Undo() {
			t.Fatalf("undo %d failed", i)
		}
	}
	if !reflect.DeepEqual(pat.Notes, original) {
		t.Fatalf("undo did not restore original: %#v", pat.Notes)
	}

	for i := 0; i < edits; i++ {
		if !sess.Redo() {
			t.Fatalf("redo %d failed", i)
		}
	}
	if !reflect.DeepEqual(pat.Notes, afterEdits) {
		t.Fatalf("redo did not restore edits: %#v", pat.Notes)
	}
}

func TestUndoEmptyStackIsNoop(t *testing.T) {
	sess := NewSession(NewProject())
	if sess.Undo() {
		t.Fatal("undo on empty stack should report false")
	}
	if sess.Redo() {
		t.Fatal("redo on empty stack should report false")
	}
}

func TestEditClearsRedo(t *testing.T) {
	proj := NewProject()
	sess := NewSession(proj)
	sess.DrawNote(0, NewNote(60, 0, 1, 1, VoiceDefault, proj.BPM))
	sess.Undo()
	if !sess.History().CanRedo() {
		t.Fatal("redo should be available after undo")
	}
	sess.DrawNote(0, NewNote(62, 0, 1, 1, VoiceDefault, proj.BPM))
	if sess.History().CanRedo() {
		t.Fatal("a new edit must clear the redo stack")
	}
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3)
	p := NewPattern("x", 4)
	for i := 0; i < 10; i++ {
		h.SaveState(p, 0)
	}
	n := 0
	for {
		if _, ok := h.Undo(func(int) *Pattern { return p }); !ok {
			break
		}
		n++
	}
	if n != 3 {
		t.Fatalf("expected 3 undo levels, got %d", n)
	}
}

func TestResizeRejectsPercussion(t *testing.T) {
	proj := NewProject()
	sess := NewSession(proj)
	idx := sess.DrawNote(0, NewNote(60, 0, 0, 1, voice.Snare, proj.BPM))
	before := proj.Patterns[0].Notes[idx].Duration
	sess.ResizeNote(0, idx, 8)
	if proj.Patterns[0].Notes[idx].Duration != before {
		t.Fatal("drum note duration must reject external resize")
	}
}

func TestCopyPaste(t *testing.T) {
	proj := NewProject()
	sess := NewSession(proj)
	sess.DrawNote(0, NewNote(60, 1, 1, 1, VoiceDefault, proj.BPM))
	sess.DrawNote(0, NewNote(64, 2, 1, 1, VoiceDefault, proj.BPM))
	sess.Copy(0, 0, 1)
	sess.Paste(0, 8)
	pat := proj.Patterns[0]
	if len(pat.Notes) != 4 {
		t.Fatalf("expected 4 notes after paste, got %d", len(pat.Notes))
	}
	// Pasted notes keep their relative offset, shifted to the paste point.
	if pat.Notes[2].Start != 8 || pat.Notes[3].Start != 9 {
		t.Fatalf("paste starts = %v, %v; want 8, 9", pat.Notes[2].Start, pat.Notes[3].Start)
	}
	if pat.Length < 10 {
		t.Fatalf("pattern should auto-extend past pasted notes, length %v", pat.Length)
	}
}

func TestCutRemovesAndCopies(t *testing.T) {
	proj := NewProject()
	sess := NewSession(proj)
	sess.DrawNote(0, NewNote(60, 0, 1, 1, VoiceDefault, proj.BPM))
	sess.DrawNote(0, NewNote(62, 1, 1, 1, VoiceDefault, proj.BPM))
	sess.Cut(0, 0)
	pat := proj.Patterns[0]
	if len(pat.Notes) != 1 || pat.Notes[0].Pitch != 62 {
		t.Fatalf("cut left wrong notes: %#v", pat.Notes)
	}
	sess.Paste(0, 4)
	if len(pat.Notes) != 2 || pat.Notes[1].Pitch != 60 {
		t.Fatalf("paste after cut wrong: %#v", pat.Notes)
	}
	if !sess.Undo() || len(pat.Notes) != 1 {
		t.Fatalf("undo paste failed: %#v", pat.Notes)
	}
	if !sess.Undo() || len(pat.Notes) != 2 {
		t.Fatalf("undo cut failed: %#v", pat.Notes)
	}
}
