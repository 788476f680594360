package tracker

import (
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/padsynth/tracker-go/internal/song"
)

const ticksPerQuarterNote = 960

// ExportMIDI writes the arrangement as a Standard MIDI File: one tempo
// track plus one track per channel that has clips.
func ExportMIDI(project *song.Project, path string) error {
	if project == nil {
		return fmt.Errorf("export midi: nil project")
	}
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(uint8(project.BeatsPerMeasure), 4))
	track0.Add(0, smf.MetaTempo(project.BPM))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return fmt.Errorf("export midi: tempo track: %w", err)
	}

	for ch := 0; ch < song.NumChannels; ch++ {
		events := channelMIDIEvents(project, ch)
		if len(events) == 0 {
			continue
		}
		var track smf.Track
		var lastTick uint32
		for _, ev := range events {
			delta := ev.tick - lastTick
			if ev.on {
				track.Add(delta, midi.NoteOn(uint8(ch), uint8(ev.pitch), uint8(ev.velocity)))
			} else {
				track.Add(delta, midi.NoteOff(uint8(ch), uint8(ev.pitch)))
			}
			lastTick = ev.tick
		}
		track.Close(0)
		if err := sm.Add(track); err != nil {
			return fmt.Errorf("export midi: track %d: %w", ch, err)
		}
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("export midi: %w", err)
	}
	return nil
}

type midiEvent struct {
	tick     uint32
	on       bool
	pitch    int
	velocity int
}

// channelMIDIEvents unrolls one channel's clips into tick-sorted on/off
// pairs, repeating patterns inside longer clips.
func channelMIDIEvents(p *song.Project, channel int) []midiEvent {
	var evs []midiEvent
	for _, clip := range p.Clips {
		if clip.Channel != channel || clip.Length <= 0 {
			continue
		}
		pat := p.Pattern(clip.Pattern)
		if pat == nil || pat.Length <= 0 {
			continue
		}
		end := clip.Start + clip.Length
		for _, n := range pat.Notes {
			for k := 0; ; k++ {
				beat := clip.Start + float64(k)*pat.Length + n.Start
				if beat >= end || beat >= p.SongLength {
					break
				}
				vel := int(math.Round(n.Velocity * 127))
				if vel < 1 {
					vel = 1
				}
				evs = append(evs, midiEvent{tick: beatToTick(beat), on: true, pitch: n.Pitch, velocity: vel})
				evs = append(evs, midiEvent{tick: beatToTick(beat + n.Duration), on: false, pitch: n.Pitch})
			}
		}
	}
	sortMIDIEvents(evs)
	return evs
}

func beatToTick(beat float64) uint32 {
	return uint32(math.Round(beat * ticksPerQuarterNote))
}

// sortMIDIEvents orders by tick, offs before ons at the same tick so a
// repeated pitch retriggers cleanly.
func sortMIDIEvents(evs []midiEvent) {
	for i := 1; i < len(evs); i++ {
		key := evs[i]
		j := i - 1
		for j >= 0 && midiEventAfter(evs[j], key) {
			evs[j+1] = evs[j]
			j--
		}
		evs[j+1] = key
	}
}

func midiEventAfter(a, b midiEvent) bool {
	if a.tick != b.tick {
		return a.tick > b.tick
	}
	return a.on && !b.on
}

// ImportMIDIPattern reads the first note-bearing track of an SMF file into
// a new pattern, one beat per quarter note.
func ImportMIDIPattern(path string, beatsPerMeasure int) (*song.Pattern, error) {
	rd, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("import midi: %w", err)
	}
	ticks, ok := rd.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("import midi: unsupported time format %v", rd.TimeFormat)
	}
	tpq := float64(ticks.Resolution())
	bpm := 120.0
	if tc := rd.TempoChanges(); len(tc) > 0 {
		bpm = tc[0].BPM
	}

	pat := song.NewPattern("Imported", beatsPerMeasure)
	type openKey struct {
		pitch int
	}
	open := map[openKey][]song.Note{}

	for _, track := range rd.Tracks {
		var currentTick uint32
		added := false
		for _, msg := range track {
			currentTick += msg.Delta
			var ch, key, vel uint8
			switch {
			case msg.Message.GetNoteStart(&ch, &key, &vel):
				n := song.Note{
					Pitch:    int(key),
					Start:    float64(currentTick) / tpq,
					Velocity: float64(vel) / 127,
					Voice:    song.VoiceDefault,
				}
				open[openKey{int(key)}] = append(open[openKey{int(key)}], n)
			case msg.Message.GetNoteEnd(&ch, &key):
				k := openKey{int(key)}
				pending := open[k]
				if len(pending) == 0 {
					continue
				}
				n := pending[0]
				open[k] = pending[1:]
				n.Duration = float64(currentTick)/tpq - n.Start
				n.Clamp()
				pat.Add(n, beatsPerMeasure)
				added = true
			}
		}
		if added {
			break
		}
		// Reset opens between tracks; unmatched ons are dropped.
		for k := range open {
			delete(open, k)
		}
	}
	if len(pat.Notes) == 0 {
		return nil, fmt.Errorf("import midi: no notes found in %s (tempo %.0f)", path, bpm)
	}
	return pat, nil
}
