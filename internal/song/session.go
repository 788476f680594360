package song

import "github.com/padsynth/tracker-go/internal/voice"

// Session is the explicit editing-session context: undo history, clipboard,
// and selection, owned by the application and threaded through every edit
// operation instead of living in package-level state. Every mutating
// operation snapshots the pre-mutation pattern first.
type Session struct {
	project   *Project
	history   *History
	clipboard []Note
	selection []int // note indices within the active pattern
}

// NewSession creates an editing session over the given project.
func NewSession(p *Project) *Session {
	return &Session{project: p, history: NewHistory(DefaultHistoryDepth)}
}

// Project returns the session's document.
func (s *Session) Project() *Project { return s.project }

// History exposes the undo/redo stacks.
func (s *Session) History() *History { return s.history }

func (s *Session) pattern(idx int) *Pattern { return s.project.Pattern(idx) }

// DrawNote appends a clamped note to the pattern. Returns the note's index,
// or -1 for an invalid pattern.
func (s *Session) DrawNote(patternIndex int, n Note) int {
	pat := s.pattern(patternIndex)
	if pat == nil {
		return -1
	}
	s.history.SaveState(pat, patternIndex)
	pat.Add(n, s.project.BeatsPerMeasure)
	return len(pat.Notes) - 1
}

// DrawNotes appends a batch of notes as one undoable operation. Used by the
// recorder when committing a take.
func (s *Session) DrawNotes(patternIndex int, notes []Note) {
	pat := s.pattern(patternIndex)
	if pat == nil || len(notes) == 0 {
		return
	}
	s.history.SaveState(pat, patternIndex)
	for _, n := range notes {
		n.Clamp()
		pat.Notes = append(pat.Notes, n)
	}
	pat.Extend(s.project.BeatsPerMeasure)
}

// EraseNote removes the note at noteIndex. Out-of-range indices no-op
// without recording history.
func (s *Session) EraseNote(patternIndex, noteIndex int) {
	pat := s.pattern(patternIndex)
	if pat == nil || noteIndex < 0 || noteIndex >= len(pat.Notes) {
		return
	}
	s.history.SaveState(pat, patternIndex)
	pat.Remove(noteIndex)
}

// MoveNote repositions a note in time and pitch.
func (s *Session) MoveNote(patternIndex, noteIndex int, newStart float64, newPitch int) {
	pat := s.pattern(patternIndex)
	if pat == nil || noteIndex < 0 || noteIndex >= len(pat.Notes) {
		return
	}
	s.history.SaveState(pat, patternIndex)
	n := &pat.Notes[noteIndex]
	n.Start = newStart
	n.Pitch = newPitch
	n.Clamp()
	pat.Extend(s.project.BeatsPerMeasure)
}

// ResizeNote changes a note's duration. Percussion notes derive their
// duration from the preset and reject external resizes.
func (s *Session) ResizeNote(patternIndex, noteIndex int, newDuration float64) {
	pat := s.pattern(patternIndex)
	if pat == nil || noteIndex < 0 || noteIndex >= len(pat.Notes) {
		return
	}
	if pat.Notes[noteIndex].IsPercussion() {
		return
	}
	s.history.SaveState(pat, patternIndex)
	n := &pat.Notes[noteIndex]
	n.Duration = newDuration
	n.Clamp()
	pat.Extend(s.project.BeatsPerMeasure)
}

// SetDrumMultiplier switches a percussion note's discrete length preset and
// re-derives its duration at the current tempo.
func (s *Session) SetDrumMultiplier(patternIndex, noteIndex int, mult voice.DurationMultiplier) {
	pat := s.pattern(patternIndex)
	if pat == nil || noteIndex < 0 || noteIndex >= len(pat.Notes) {
		return
	}
	n := &pat.Notes[noteIndex]
	if !n.IsPercussion() {
		return
	}
	s.history.SaveState(pat, patternIndex)
	n.DurMult = mult
	n.Duration = voice.DurationBeats(n.Voice, s.project.BPM, mult)
	pat.Extend(s.project.BeatsPerMeasure)
}

// Select replaces the current selection.
func (s *Session) Select(noteIndexes ...int) {
	s.selection = append(s.selection[:0], noteIndexes...)
}

// Selection returns the selected note indices.
func (s *Session) Selection() []int { return s.selection }

// Copy places value copies of the chosen notes on the clipboard.
func (s *Session) Copy(patternIndex int, noteIndexes ...int) {
	pat := s.pattern(patternIndex)
	if pat == nil {
		return
	}
	s.clipboard = s.clipboard[:0]
	for _, i := range noteIndexes {
		if i >= 0 && i < len(pat.Notes) {
			s.clipboard = append(s.clipboard, pat.Notes[i])
		}
	}
}

// Cut copies then erases the chosen notes as one undoable operation.
func (s *Session) Cut(patternIndex int, noteIndexes ...int) {
	pat := s.pattern(patternIndex)
	if pat == nil || len(noteIndexes) == 0 {
		return
	}
	s.Copy(patternIndex, noteIndexes...)
	s.history.SaveState(pat, patternIndex)
	kept := pat.Notes[:0]
	for i := range pat.Notes {
		if !containsInt(noteIndexes, i) {
			kept = append(kept, pat.Notes[i])
		}
	}
	pat.Notes = kept
}

// Paste overwrites the pattern region starting at atBeat with the clipboard
// contents, shifted so the earliest copied note lands on atBeat.
func (s *Session) Paste(patternIndex int, atBeat float64) {
	pat := s.pattern(patternIndex)
	if pat == nil || len(s.clipboard) == 0 {
		return
	}
	s.history.SaveState(pat, patternIndex)
	earliest := s.clipboard[0].Start
	for _, n := range s.clipboard[1:] {
		if n.Start < earliest {
			earliest = n.Start
		}
	}
	for _, n := range s.clipboard {
		n.Start = atBeat + (n.Start - earliest)
		n.Clamp()
		pat.Notes = append(pat.Notes, n)
	}
	pat.Extend(s.project.BeatsPerMeasure)
}

// Undo restores the most recent snapshot. No-op on an empty stack.
func (s *Session) Undo() bool {
	snap, ok := s.history.Undo(s.project.Pattern)
	if !ok {
		return false
	}
	s.apply(snap)
	return true
}

// Redo reverses the most recent undo. No-op on an empty stack.
func (s *Session) Redo() bool {
	snap, ok := s.history.Redo(s.project.Pattern)
	if !ok {
		return false
	}
	s.apply(snap)
	return true
}

func (s *Session) apply(snap Snapshot) {
	pat := s.pattern(snap.PatternIndex)
	if pat == nil {
		return
	}
	pat.Notes = append(pat.Notes[:0:0], snap.Notes...)
	pat.Extend(s.project.BeatsPerMeasure)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
