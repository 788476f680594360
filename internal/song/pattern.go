package song

import "math"

// Pattern is a named, time-bounded note collection. Notes stay in insertion
// order; time scans are linear. Length never shrinks below the furthest note
// end, rounded up to a whole measure.
type Pattern struct {
	Name   string
	Length float64 // beats
	Notes  []Note
}

// NewPattern creates an empty pattern spanning one measure.
func NewPattern(name string, beatsPerMeasure int) *Pattern {
	if beatsPerMeasure < 1 {
		beatsPerMeasure = 4
	}
	return &Pattern{Name: name, Length: float64(beatsPerMeasure)}
}

// Add clamps the note, appends it, and extends the pattern to cover it.
func (p *Pattern) Add(n Note, beatsPerMeasure int) {
	n.Clamp()
	p.Notes = append(p.Notes, n)
	p.Extend(beatsPerMeasure)
}

// Remove deletes the note at index i. Out-of-range indices are a no-op.
func (p *Pattern) Remove(i int) {
	if i < 0 || i >= len(p.Notes) {
		return
	}
	p.Notes = append(p.Notes[:i], p.Notes[i+1:]...)
}

// Extend grows Length to cover the furthest note end, rounded up to the
// nearest measure. It never shrinks the pattern.
func (p *Pattern) Extend(beatsPerMeasure int) {
	if beatsPerMeasure < 1 {
		beatsPerMeasure = 4
	}
	maxEnd := 0.0
	for i := range p.Notes {
		if end := p.Notes[i].End(); end > maxEnd {
			maxEnd = end
		}
	}
	measure := float64(beatsPerMeasure)
	need := math.Ceil(maxEnd/measure) * measure
	if need < measure {
		need = measure
	}
	if need > p.Length {
		p.Length = need
	}
}

// CopyNotes returns a deep copy of the note list.
func (p *Pattern) CopyNotes() []Note {
	out := make([]Note, len(p.Notes))
	copy(out, p.Notes)
	return out
}

// Clone returns an independent copy of the whole pattern.
func (p *Pattern) Clone() *Pattern {
	return &Pattern{Name: p.Name, Length: p.Length, Notes: p.CopyNotes()}
}
