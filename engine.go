// Package tracker is the pattern-based chiptune engine: an editable project
// of patterns and clips, eight synthesizer channels with per-channel effect
// chains, a beat-clock sequencer, live recording, and offline export.
package tracker

import (
	"errors"
	"sync"

	intaudio "github.com/padsynth/tracker-go/internal/audio"
	intseq "github.com/padsynth/tracker-go/internal/sequencer"
	"github.com/padsynth/tracker-go/internal/song"
	"github.com/padsynth/tracker-go/internal/synth"
	"github.com/padsynth/tracker-go/internal/voice"
)

// PlaybackEvent carries transport events from Watch().
type PlaybackEvent struct {
	Kind int
}

const (
	EventLoopCompleted int = iota
	EventPlaybackEnded
)

// EngineOption configures a new Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	sampleRate int
}

func defaultEngineConfig() engineConfig {
	return engineConfig{sampleRate: 44100}
}

// WithSampleRate overrides the default 44100 Hz render rate.
func WithSampleRate(rate int) EngineOption {
	return func(cfg *engineConfig) {
		cfg.sampleRate = rate
	}
}

// Engine ties the editable project to the realtime render pipeline. Edits
// go through Session and land in the render context on the next
// UpdateChannelConfigs; transport methods forward to the sequencer.
type Engine struct {
	mu         sync.Mutex
	sampleRate int
	project    *song.Project
	session    *song.Session
	seq        *intseq.Sequencer
	rec        *intseq.Recorder
	backend    *intaudio.Player

	eventCh   chan PlaybackEvent
	eventChMu sync.Mutex
}

// NewEngine creates an engine over the project. A nil project starts a
// fresh one.
func NewEngine(project *song.Project, opts ...EngineOption) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if project == nil {
		project = song.NewProject()
	}
	e := &Engine{
		sampleRate: cfg.sampleRate,
		project:    project,
		session:    song.NewSession(project),
		rec:        intseq.NewRecorder(),
	}
	e.seq = intseq.New(project, cfg.sampleRate, intseq.Options{
		OnEvent: e.onSequencerEvent,
	})
	return e, nil
}

func (e *Engine) onSequencerEvent(kind intseq.EventKind) {
	switch kind {
	case intseq.EventLoopCompleted:
		e.sendEvent(PlaybackEvent{Kind: EventLoopCompleted})
	case intseq.EventPlaybackEnded:
		e.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	}
}

func (e *Engine) sendEvent(ev PlaybackEvent) {
	e.eventChMu.Lock()
	ch := e.eventCh
	e.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Watch returns a buffered channel of transport events. Only the most
// recent Watch channel receives them.
func (e *Engine) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	e.eventChMu.Lock()
	e.eventCh = ch
	e.eventChMu.Unlock()
	return ch
}

// Start opens the realtime audio output and begins pulling samples. The
// transport still needs Play before anything sounds.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend != nil {
		return nil
	}
	backend, err := intaudio.NewPlayer(e.sampleRate, e.seq)
	if err != nil {
		return err
	}
	e.backend = backend
	e.seq.SetLatency(backend.Latency().Seconds())
	backend.Play()
	return nil
}

// Close stops audio output and silences the sequencer.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq.Stop()
	if e.backend == nil {
		return nil
	}
	err := e.backend.Stop()
	e.backend = nil
	return err
}

// Project returns the editable document.
func (e *Engine) Project() *song.Project { return e.project }

// Session returns the editing session (undo, clipboard, selection).
func (e *Engine) Session() *song.Session { return e.session }

// Recorder returns the live-input recorder.
func (e *Engine) Recorder() *intseq.Recorder { return e.rec }

// Synth returns channel i's runtime, or nil when out of range.
func (e *Engine) Synth(channel int) *synth.Channel { return e.seq.Channel(channel) }

// Play starts or resumes playback from the current position.
func (e *Engine) Play() { e.seq.Play() }

// Pause halts the transport, keeping the position.
func (e *Engine) Pause() { e.seq.Pause() }

// Stop halts the transport, rewinds to zero, and silences all channels.
func (e *Engine) Stop() { e.seq.Stop() }

// SetPosition jumps the playhead to a beat position.
func (e *Engine) SetPosition(beat float64) { e.seq.SetPosition(beat) }

// CurrentBeat returns the latency-compensated playhead position.
func (e *Engine) CurrentBeat() float64 { return e.seq.CurrentBeat() }

// IsPlaying reports transport state.
func (e *Engine) IsPlaying() bool { return e.seq.IsPlaying() }

// SetLoopEnabled toggles loop playback.
func (e *Engine) SetLoopEnabled(enabled bool) { e.seq.SetLoopEnabled(enabled) }

// SetBPM changes the tempo. Percussion note durations are rewritten
// project-wide and the render context picks up the new clock rate.
func (e *Engine) SetBPM(bpm float64) {
	e.project.SetBPM(bpm)
	e.seq.UpdateChannelConfigs()
}

// UpdateChannelConfigs publishes the project's current channel, effect, and
// arrangement state to the render context as one atomic snapshot.
func (e *Engine) UpdateChannelConfigs() { e.seq.UpdateChannelConfigs() }

// SetPreviewPattern loops the given pattern on one channel instead of the
// arrangement.
func (e *Engine) SetPreviewPattern(patternIndex, channel int) {
	pat := e.project.Pattern(patternIndex)
	if pat == nil {
		return
	}
	e.seq.SetPreviewPattern(pat, channel)
}

// ClearPreviewPattern returns playback to the arrangement.
func (e *Engine) ClearPreviewPattern() { e.seq.ClearPreviewPattern() }

// PreviewNote auditions a single note on the reserved preview channel.
// durBeats <= 0 uses the default audition length.
func (e *Engine) PreviewNote(pitch int, velocity float64, vt voice.Type, durBeats float64) {
	e.seq.PreviewNote(pitch, velocity, vt, durBeats)
}

// ArmRecording stops playback and starts capturing live input.
func (e *Engine) ArmRecording() { e.rec.Arm(e.seq) }

// CommitRecording writes the take into a pattern, quantized to the grid
// resolution in beats (0 = no quantize). Returns the note count.
func (e *Engine) CommitRecording(patternIndex int, quantizeRes float64) int {
	n := e.rec.Commit(e.session, patternIndex, quantizeRes, e.seq.CurrentBeat())
	if n > 0 {
		e.seq.UpdateChannelConfigs()
	}
	return n
}

// RecordNoteOn captures a live note-on at the current playhead and sounds
// it on the preview channel.
func (e *Engine) RecordNoteOn(pitch int, velocity float64, vt voice.Type) {
	e.rec.NoteOn(e.seq.CurrentBeat(), pitch, velocity, vt)
	e.seq.PreviewNote(pitch, velocity, vt, 0.25)
}

// RecordNoteOff captures a live note-off at the current playhead.
func (e *Engine) RecordNoteOff(pitch int) {
	e.rec.NoteOff(e.seq.CurrentBeat(), pitch, e.project.BPM)
}
