// Package sequencer drives playback: a beat clock, a per-block note
// scheduler over patterns and the arrangement, and a quantizing live
// recorder.
package sequencer

import "math"

// Clock converts the audio frame stream into a musical beat position. It is
// advanced only by the render goroutine; the control plane repositions it
// between blocks.
type Clock struct {
	sampleRate float64
	bpm        float64
	pos        float64 // beats
	length     float64 // loop length in beats (0 = unbounded)
	loop       bool
	latencySec float64
}

// NewClock creates a stopped clock at 120 BPM.
func NewClock(sampleRate int) *Clock {
	return &Clock{sampleRate: float64(sampleRate), bpm: 120}
}

// SetBPM changes the tempo. Values are clamped to the project range.
func (c *Clock) SetBPM(bpm float64) {
	if bpm < 20 {
		bpm = 20
	}
	if bpm > 400 {
		bpm = 400
	}
	c.bpm = bpm
}

// BPM returns the current tempo.
func (c *Clock) BPM() float64 { return c.bpm }

// SetLoop enables wrapping at the loop length.
func (c *Clock) SetLoop(enabled bool) { c.loop = enabled }

// Loop reports whether wrapping is enabled.
func (c *Clock) Loop() bool { return c.loop }

// SetLength sets the loop length in beats.
func (c *Clock) SetLength(beats float64) {
	if beats < 0 {
		beats = 0
	}
	c.length = beats
}

// Length returns the loop length in beats.
func (c *Clock) Length() float64 { return c.length }

// SetPosition jumps to a beat position, wrapped into the loop when enabled.
func (c *Clock) SetPosition(beat float64) {
	if beat < 0 {
		beat = 0
	}
	if c.loop && c.length > 0 {
		beat = math.Mod(beat, c.length)
	}
	c.pos = beat
}

// Pos returns the raw (uncompensated) beat position.
func (c *Clock) Pos() float64 { return c.pos }

// BeatsPerFrame returns the beat increment for one audio frame.
func (c *Clock) BeatsPerFrame() float64 {
	return c.bpm / 60 / c.sampleRate
}

// Advance moves the clock by one frame and returns the covered interval
// [from, to). When looping, to may exceed the length by one frame; the
// position itself is wrapped.
func (c *Clock) Advance() (from, to float64) {
	from = c.pos
	to = from + c.BeatsPerFrame()
	c.pos = to
	if c.loop && c.length > 0 && c.pos >= c.length {
		c.pos -= c.length
	}
	return from, to
}

// SetLatency records the output pipeline delay in seconds, subtracted from
// the beat position reported to the UI.
func (c *Clock) SetLatency(sec float64) {
	if sec < 0 {
		sec = 0
	}
	c.latencySec = sec
}

// DisplayBeat returns the latency-compensated beat position: where the
// listener currently is, not where the renderer is.
func (c *Clock) DisplayBeat() float64 {
	b := c.pos - c.latencySec*c.bpm/60
	if b < 0 {
		if c.loop && c.length > 0 {
			return math.Mod(b+c.length, c.length)
		}
		return 0
	}
	return b
}

// swungBeat delays off-grid subdivisions by swing*step/2. Positions on even
// grid multiples (the downbeats) are returned unchanged, so applying swing
// twice is a no-op for them.
func swungBeat(beat, swing float64, grid int) float64 {
	if swing <= 0 || grid <= 0 {
		return beat
	}
	step := 4.0 / float64(grid)
	idx := math.Round(beat / step)
	if math.Abs(beat-idx*step) > 1e-6 {
		return beat
	}
	if int(idx)%2 == 1 {
		return beat + swing*step/2
	}
	return beat
}
