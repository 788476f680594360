package tracker

import (
	intseq "github.com/padsynth/tracker-go/internal/sequencer"
	"github.com/padsynth/tracker-go/internal/song"
)

// renderTailBeats pads offline renders so release envelopes and delay
// feedback are not cut off at the last note.
const renderTailBeats = 2.0

// RenderSamples renders a beat range of the arrangement offline into
// interleaved stereo float32. The render uses an isolated sequencer with no
// wall clock and no latency compensation, so the output is deterministic:
// the same project renders to the same bytes every time.
func RenderSamples(project *song.Project, sampleRate int, startBeat, durationBeats float64) []float32 {
	if project == nil || sampleRate <= 0 || durationBeats <= 0 {
		return nil
	}
	seq := intseq.New(project, sampleRate, intseq.Options{})
	seq.SetPosition(startBeat)
	seq.Play()
	frames := int(durationBeats * 60 / project.BPM * float64(sampleRate))
	out := make([]float32, frames*2)
	// Render in fixed blocks the way the realtime path does.
	const block = 2048
	for off := 0; off < frames; off += block {
		n := block
		if frames-off < n {
			n = frames - off
		}
		seq.Process(out[off*2 : (off+n)*2])
	}
	return out
}

// RenderSong renders the whole arrangement plus a short release tail.
func RenderSong(project *song.Project, sampleRate int) []float32 {
	if project == nil {
		return nil
	}
	return RenderSamples(project, sampleRate, 0, project.SongLength+renderTailBeats)
}

// RenderPattern renders one pattern on a single channel, the offline analog
// of preview playback.
func RenderPattern(project *song.Project, patternIndex, channel, sampleRate int) []float32 {
	pat := project.Pattern(patternIndex)
	if pat == nil || sampleRate <= 0 {
		return nil
	}
	seq := intseq.New(project, sampleRate, intseq.Options{})
	seq.SetPreviewPattern(pat, channel)
	seq.Play()
	frames := int((pat.Length + renderTailBeats) * 60 / project.BPM * float64(sampleRate))
	out := make([]float32, frames*2)
	const block = 2048
	for off := 0; off < frames; off += block {
		n := block
		if frames-off < n {
			n = frames - off
		}
		seq.Process(out[off*2 : (off+n)*2])
	}
	return out
}
