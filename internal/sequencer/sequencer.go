package sequencer

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/padsynth/tracker-go/internal/song"
	"github.com/padsynth/tracker-go/internal/synth"
	"github.com/padsynth/tracker-go/internal/voice"
)

// EventKind identifies sequencer lifecycle events.
type EventKind int

const (
	EventLoopCompleted EventKind = iota
	EventPlaybackEnded
)

// Options configures callbacks and behavior at construction.
type Options struct {
	OnEvent   func(EventKind)
	OnTrigger func(channel int, note song.Note) // fired as each note starts
}

// event is one compiled trigger: a note occurrence at an absolute, already
// swung beat position.
type event struct {
	beat    float64
	channel int
	note    song.Note
}

// snapshot is the complete, immutable render configuration. The control
// plane builds a fresh one and publishes it with a single atomic store, so
// the render goroutine never observes a half-updated state.
type snapshot struct {
	bpm         float64
	master      float64
	humanize    bool
	humanizeSec float64
	humanizeVel float64
	channels    [song.NumChannels]song.ChannelConfig
	audible     [song.NumChannels]bool
	events      []event
	length      float64 // loop length in beats
}

type noteOff struct {
	frames  int
	channel int
	id      int
}

type delayedTrigger struct {
	frames  int
	channel int
	note    song.Note
	vel     float64
}

// Sequencer schedules notes onto the eight channels and mixes their output.
// Process runs on the audio goroutine; control methods may be called from
// any goroutine.
type Sequencer struct {
	sampleRate int
	channels   [song.NumChannels]*synth.Channel
	clock      *Clock
	cfg        atomic.Pointer[snapshot]

	// ctl guards the inputs to snapshot compilation. Process never takes
	// it, so recompiling a large arrangement cannot stall the render
	// callback; finished snapshots cross over through cfg alone.
	ctl            sync.Mutex
	project        *song.Project
	previewPattern *song.Pattern
	previewChannel int

	// mu guards transport and per-block scheduling state. Every critical
	// section under it is short and bounded.
	mu         sync.Mutex
	playing    bool
	nextEv     int
	noteOffs   []noteOff
	delayed    []delayedTrigger
	lastCfg    *snapshot
	endedFired bool
	rng        *rand.Rand

	onEvent   func(EventKind)
	onTrigger func(int, song.Note)
}

// New creates a sequencer over the project. The project is read when
// configuration is published, never during Process.
func New(project *song.Project, sampleRate int, opts Options) *Sequencer {
	s := &Sequencer{
		sampleRate: sampleRate,
		clock:      NewClock(sampleRate),
		project:    project,
		onEvent:    opts.OnEvent,
		onTrigger:  opts.OnTrigger,
		rng:        rand.New(rand.NewSource(1)),
	}
	for i := range s.channels {
		s.channels[i] = synth.NewChannel(sampleRate, i)
		s.channels[i].SetSourceProbe(s.probeLevel)
	}
	s.UpdateChannelConfigs()
	return s
}

// probeLevel feeds the sidechain stages. Channels are rendered in index
// order, so a source below the reader sees this frame's level and a source
// at or above it sees the previous frame's, one sample of latency.
func (s *Sequencer) probeLevel(channel int) float64 {
	if channel < 0 || channel >= song.NumChannels {
		return 0
	}
	return s.channels[channel].Level()
}

// Channel exposes a channel runtime, used by the facade for auditioning.
func (s *Sequencer) Channel(i int) *synth.Channel {
	if i < 0 || i >= song.NumChannels {
		return nil
	}
	return s.channels[i]
}

// Clock exposes the beat clock for latency wiring.
func (s *Sequencer) Clock() *Clock { return s.clock }

// UpdateChannelConfigs recompiles the project into a fresh snapshot and
// publishes it atomically. Call after any project edit that should reach
// the render context. Compilation happens off the render lock; Process
// picks the snapshot up at its next block boundary.
func (s *Sequencer) UpdateChannelConfigs() {
	s.ctl.Lock()
	snap := s.compileSnapshot()
	s.ctl.Unlock()
	s.cfg.Store(snap)
}

// compileSnapshot builds a complete snapshot from the project and preview
// state. The caller holds ctl.
func (s *Sequencer) compileSnapshot() *snapshot {
	p := s.project
	snap := &snapshot{
		bpm:         p.BPM,
		master:      p.MasterVolume,
		humanize:    p.Humanize,
		humanizeSec: p.HumanizeAmount,
		humanizeVel: p.HumanizeVelocity,
	}
	for i := 0; i < song.NumChannels; i++ {
		snap.channels[i] = p.Channels[i]
		snap.audible[i] = p.ChannelAudible(i)
	}
	if s.previewPattern != nil {
		snap.length = s.previewPattern.Length
		snap.events = compilePreview(s.previewPattern, s.previewChannel, p)
	} else {
		snap.length = p.SongLength
		snap.events = compileArrangement(p)
	}
	return snap
}

// compilePreview schedules every note of one pattern onto a single channel.
func compilePreview(pat *song.Pattern, channel int, p *song.Project) []event {
	evs := make([]event, 0, len(pat.Notes))
	for _, n := range pat.Notes {
		evs = append(evs, event{
			beat:    swungBeat(n.Start, p.Swing, p.SwingGrid),
			channel: channel,
			note:    n,
		})
	}
	sortEvents(evs)
	return evs
}

// compileArrangement unrolls every clip into absolute note occurrences.
// Patterns repeat inside a clip that outlasts them; where clips on one
// channel overlap, the one listed last wins.
func compileArrangement(p *song.Project) []event {
	var evs []event
	for ci, clip := range p.Clips {
		pat := p.Pattern(clip.Pattern)
		if pat == nil || !p.ValidChannel(clip.Channel) || clip.Length <= 0 {
			continue
		}
		patLen := pat.Length
		if patLen <= 0 {
			continue
		}
		end := clip.Start + clip.Length
		for _, n := range pat.Notes {
			for k := 0; ; k++ {
				beat := clip.Start + float64(k)*patLen + n.Start
				if beat >= end {
					break
				}
				if beat >= p.SongLength {
					break
				}
				if coveredByLaterClip(p, clip.Channel, ci, beat) {
					continue
				}
				evs = append(evs, event{
					beat:    swungBeat(beat, p.Swing, p.SwingGrid),
					channel: clip.Channel,
					note:    n,
				})
			}
		}
	}
	sortEvents(evs)
	return evs
}

func coveredByLaterClip(p *song.Project, channel, clipIndex int, beat float64) bool {
	for ci := clipIndex + 1; ci < len(p.Clips); ci++ {
		c := p.Clips[ci]
		if c.Channel == channel && beat >= c.Start && beat < c.Start+c.Length {
			return true
		}
	}
	return false
}

func sortEvents(evs []event) {
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].beat < evs[j].beat })
}

// Play starts or resumes playback from the current position.
func (s *Sequencer) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	s.endedFired = false
	s.seekCursorLocked(s.clock.Pos())
}

// Pause halts the clock and releases sounding notes, keeping the position.
func (s *Sequencer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.allNotesOffLocked()
}

// Stop halts playback, rewinds to zero, and silences everything.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.clock.SetPosition(0)
	s.seekCursorLocked(0)
	s.noteOffs = s.noteOffs[:0]
	s.delayed = s.delayed[:0]
	for _, c := range s.channels {
		c.Silence()
	}
}

// SetPosition jumps to a beat position. Sounding notes are released so
// nothing hangs across the seek.
func (s *Sequencer) SetPosition(beat float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.SetPosition(beat)
	s.seekCursorLocked(s.clock.Pos())
	s.allNotesOffLocked()
}

// IsPlaying reports transport state.
func (s *Sequencer) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// CurrentBeat returns the latency-compensated playhead position.
func (s *Sequencer) CurrentBeat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.DisplayBeat()
}

// SetLoopEnabled toggles wrapping at the pattern/song length.
func (s *Sequencer) SetLoopEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.SetLoop(enabled)
}

// SetLatency reports the output pipeline delay for playhead compensation.
func (s *Sequencer) SetLatency(sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.SetLatency(sec)
}

// SetPreviewPattern loops a single pattern on the given channel instead of
// the arrangement.
func (s *Sequencer) SetPreviewPattern(pat *song.Pattern, channel int) {
	if pat == nil || channel < 0 || channel >= song.NumChannels {
		return
	}
	s.ctl.Lock()
	s.previewPattern = pat.Clone()
	s.previewChannel = channel
	snap := s.compileSnapshot()
	s.ctl.Unlock()
	s.cfg.Store(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.SetPosition(0)
	s.seekCursorLocked(0)
}

// ClearPreviewPattern returns to arrangement playback.
func (s *Sequencer) ClearPreviewPattern() {
	s.ctl.Lock()
	s.previewPattern = nil
	snap := s.compileSnapshot()
	s.ctl.Unlock()
	s.cfg.Store(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekCursorLocked(s.clock.Pos())
}

// PreviewNote triggers a one-shot note on the preview channel immediately,
// outside the schedule.
func (s *Sequencer) PreviewNote(pitch int, velocity float64, vt voice.Type, durBeats float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg.Load()
	if durBeats <= 0 {
		durBeats = 0.5
	}
	n := song.NewNote(pitch, 0, durBeats, velocity, vt, cfg.bpm)
	s.triggerLocked(cfg, song.PreviewChannel, n, n.Velocity)
}

// seekCursorLocked positions the event cursor at the first event at or
// after beat.
func (s *Sequencer) seekCursorLocked(beat float64) {
	cfg := s.cfg.Load()
	s.nextEv = sort.Search(len(cfg.events), func(i int) bool {
		return cfg.events[i].beat >= beat
	})
}

// Process renders one block of interleaved stereo float32 frames.
func (s *Sequencer) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg.Load()
	if cfg != s.lastCfg {
		s.applyConfigLocked(cfg)
	}

	frames := len(dst) / 2
	for f := 0; f < frames; f++ {
		if s.playing {
			s.advanceScheduleLocked(cfg)
		}
		s.fireDelayedLocked(cfg)
		s.fireNoteOffsLocked()
		l, r := s.mixFrameLocked(cfg)
		dst[f*2] = l
		dst[f*2+1] = r
	}
	s.checkPlaybackEndedLocked(cfg)
}

func (s *Sequencer) applyConfigLocked(cfg *snapshot) {
	for i := range s.channels {
		s.channels[i].Configure(cfg.channels[i])
	}
	s.clock.SetBPM(cfg.bpm)
	s.clock.SetLength(cfg.length)
	s.seekCursorLocked(s.clock.Pos())
	s.lastCfg = cfg
}

func (s *Sequencer) advanceScheduleLocked(cfg *snapshot) {
	from, to := s.clock.Advance()
	s.dispatchRangeLocked(cfg, from, to)
	if s.clock.Loop() && cfg.length > 0 && to >= cfg.length {
		// Wrapped: rewind the cursor and cover the sliver at the top of
		// the loop.
		s.nextEv = 0
		s.dispatchRangeLocked(cfg, 0, to-cfg.length)
		if s.onEvent != nil {
			s.onEvent(EventLoopCompleted)
		}
	}
}

func (s *Sequencer) dispatchRangeLocked(cfg *snapshot, from, to float64) {
	for s.nextEv < len(cfg.events) && cfg.events[s.nextEv].beat < to {
		ev := cfg.events[s.nextEv]
		s.nextEv++
		if ev.beat < from {
			continue
		}
		if !cfg.audible[ev.channel] {
			continue
		}
		vel := ev.note.Velocity
		if cfg.humanize {
			// Jitter is drawn once per trigger; a positive draw delays the
			// note, a negative one fires it on the spot since the block
			// cannot rewind.
			if cfg.humanizeVel > 0 {
				vel *= 1 + (s.rng.Float64()*2-1)*cfg.humanizeVel
				vel = clamp01(vel)
			}
			if cfg.humanizeSec > 0 {
				jitter := (s.rng.Float64()*2 - 1) * cfg.humanizeSec
				if jitter > 0 {
					s.delayed = append(s.delayed, delayedTrigger{
						frames:  int(jitter * float64(s.sampleRate)),
						channel: ev.channel,
						note:    ev.note,
						vel:     vel,
					})
					continue
				}
			}
		}
		s.triggerLocked(cfg, ev.channel, ev.note, vel)
	}
}

func (s *Sequencer) fireDelayedLocked(cfg *snapshot) {
	if len(s.delayed) == 0 {
		return
	}
	kept := s.delayed[:0]
	for _, d := range s.delayed {
		d.frames--
		if d.frames <= 0 {
			s.triggerLocked(cfg, d.channel, d.note, d.vel)
		} else {
			kept = append(kept, d)
		}
	}
	s.delayed = kept
}

func (s *Sequencer) triggerLocked(cfg *snapshot, channel int, n song.Note, vel float64) {
	spb := 60 / cfg.bpm
	mods := synth.NoteMods{
		Vibrato:   n.Vibrato,
		Slide:     n.Slide,
		ArpFirst:  n.Arp.First,
		ArpSecond: n.Arp.Second,
		FadeIn:    n.FadeIn * spb,
		FadeOut:   n.FadeOut * spb,
		Duration:  n.Duration * spb,
	}
	id := s.channels[channel].Trigger(n.Pitch, vel, n.Voice, mods)
	s.noteOffs = append(s.noteOffs, noteOff{
		frames:  int(n.Duration * spb * float64(s.sampleRate)),
		channel: channel,
		id:      id,
	})
	if s.onTrigger != nil {
		s.onTrigger(channel, n)
	}
}

func (s *Sequencer) fireNoteOffsLocked() {
	if len(s.noteOffs) == 0 {
		return
	}
	kept := s.noteOffs[:0]
	for _, off := range s.noteOffs {
		off.frames--
		if off.frames <= 0 {
			s.channels[off.channel].ReleaseNote(off.id)
		} else {
			kept = append(kept, off)
		}
	}
	s.noteOffs = kept
}

// mixFrameLocked renders the eight channels in index order and pans them
// into a stereo frame.
func (s *Sequencer) mixFrameLocked(cfg *snapshot) (float32, float32) {
	var l, r float64
	for i := range s.channels {
		m := s.channels[i].Render()
		if m == 0 {
			continue
		}
		angle := (s.channels[i].Pan() + 1) / 2 * (math.Pi / 2)
		l += m * math.Cos(angle)
		r += m * math.Sin(angle)
	}
	l *= cfg.master
	r *= cfg.master
	return float32(clampF(l, -1, 1)), float32(clampF(r, -1, 1))
}

func (s *Sequencer) allNotesOffLocked() {
	for _, c := range s.channels {
		c.ReleaseAll()
	}
	s.noteOffs = s.noteOffs[:0]
	s.delayed = s.delayed[:0]
}

func (s *Sequencer) checkPlaybackEndedLocked(cfg *snapshot) {
	if !s.playing || s.clock.Loop() || s.endedFired {
		return
	}
	if s.clock.Pos() < cfg.length {
		return
	}
	for _, c := range s.channels {
		if c.ActiveVoices() > 0 {
			return
		}
	}
	s.playing = false
	s.endedFired = true
	if s.onEvent != nil {
		s.onEvent(EventPlaybackEnded)
	}
}

func clamp01(v float64) float64 { return clampF(v, 0, 1) }

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
