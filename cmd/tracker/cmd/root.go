// Package cmd holds the tracker CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/padsynth/tracker-go/internal/song"
	"github.com/padsynth/tracker-go/internal/voice"
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "A pattern-based chiptune sequencer and synthesizer",
	Long: `tracker is a pattern-based chiptune music engine: eight synthesizer
channels with per-channel effect chains, a looping beat-clock sequencer,
live recording, and offline WAV/MP3/MIDI export.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// demoProject builds the four-bar demo played and exported when no input
// file is given.
func demoProject() *song.Project {
	proj := song.NewProject()
	proj.SongLength = 16
	proj.Swing = 0.25

	lead := proj.Patterns[0]
	lead.Name = "Lead"
	for i, p := range []int{60, 64, 67, 72, 67, 64, 60, 55} {
		n := song.NewNote(p, float64(i)*0.5, 0.45, 0.9, song.VoiceDefault, proj.BPM)
		n.Vibrato = 0.3
		lead.Add(n, proj.BeatsPerMeasure)
	}

	bass := song.NewPattern("Bass", proj.BeatsPerMeasure)
	for i, p := range []int{36, 36, 43, 36} {
		bass.Add(song.NewNote(p, float64(i), 0.9, 1, voice.SynthBass, proj.BPM), proj.BeatsPerMeasure)
	}
	proj.Patterns = append(proj.Patterns, bass)

	drums := song.NewPattern("Drums", proj.BeatsPerMeasure)
	for i := 0; i < 4; i++ {
		drums.Add(song.NewNote(36, float64(i), 0, 1, voice.Kick, proj.BPM), proj.BeatsPerMeasure)
		drums.Add(song.NewNote(42, float64(i)+0.5, 0, 0.6, voice.HatClosed, proj.BPM), proj.BeatsPerMeasure)
	}
	drums.Add(song.NewNote(38, 1, 0, 0.9, voice.Snare, proj.BPM), proj.BeatsPerMeasure)
	drums.Add(song.NewNote(38, 3, 0, 0.9, voice.Snare, proj.BPM), proj.BeatsPerMeasure)
	proj.Patterns = append(proj.Patterns, drums)

	proj.Channels[0].Osc.Type = voice.SynthSaw3
	proj.Channels[0].Osc.DetuneCents = 8
	proj.Channels[1].Osc.Type = voice.SynthBass
	proj.Channels[1].FX.Filter.Enabled = true
	proj.Channels[1].FX.Filter.Cutoff = 900
	// Duck the bass under the kick.
	proj.Channels[1].FX.Sidechain.Enabled = true
	proj.Channels[1].FX.Sidechain.Source = 2
	proj.Channels[2].Volume = 0.9

	for beat := 0.0; beat < proj.SongLength; beat += 4 {
		proj.Clips = append(proj.Clips,
			song.Clip{Channel: 0, Pattern: 0, Start: beat, Length: 4},
			song.Clip{Channel: 1, Pattern: 1, Start: beat, Length: 4},
			song.Clip{Channel: 2, Pattern: 2, Start: beat, Length: 4},
		)
	}
	return proj
}
