package song

// Snapshot is a deep copy of one pattern's note list, keyed by the pattern's
// index, captured before a mutating edit.
type Snapshot struct {
	PatternIndex int
	Notes        []Note
}

// History is the bounded undo/redo stack pair. Every mutating edit pushes a
// pre-mutation snapshot and clears the redo stack.
type History struct {
	undo  []Snapshot
	redo  []Snapshot
	limit int
}

// DefaultHistoryDepth bounds the undo stack.
const DefaultHistoryDepth = 64

// NewHistory creates a history bounded to limit snapshots per stack.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = DefaultHistoryDepth
	}
	return &History{limit: limit}
}

// SaveState pushes a snapshot of the pattern's current (pre-mutation) notes
// onto the undo stack and discards any redo entries.
func (h *History) SaveState(p *Pattern, patternIndex int) {
	if p == nil {
		return
	}
	h.undo = append(h.undo, Snapshot{PatternIndex: patternIndex, Notes: p.CopyNotes()})
	if len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}
	h.redo = h.redo[:0]
}

// Undo pops the most recent snapshot, pushing the named pattern's current
// state onto the redo stack. The caller applies the returned snapshot.
// Returns false on an empty stack.
func (h *History) Undo(currentOf func(patternIndex int) *Pattern) (Snapshot, bool) {
	if len(h.undo) == 0 {
		return Snapshot{}, false
	}
	snap := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	if cur := currentOf(snap.PatternIndex); cur != nil {
		h.redo = append(h.redo, Snapshot{PatternIndex: snap.PatternIndex, Notes: cur.CopyNotes()})
	}
	return snap, true
}

// Redo mirrors Undo: pops a redo snapshot and records the pattern's current
// state on the undo stack.
func (h *History) Redo(currentOf func(patternIndex int) *Pattern) (Snapshot, bool) {
	if len(h.redo) == 0 {
		return Snapshot{}, false
	}
	snap := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	if cur := currentOf(snap.PatternIndex); cur != nil {
		h.undo = append(h.undo, Snapshot{PatternIndex: snap.PatternIndex, Notes: cur.CopyNotes()})
		if len(h.undo) > h.limit {
			h.undo = h.undo[1:]
		}
	}
	return snap, true
}

// CanUndo reports whether an undo snapshot exists.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo snapshot exists.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
