package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	tracker "github.com/padsynth/tracker-go"
)

var (
	playLoop bool
	playBPM  float64
)

var playCmd = &cobra.Command{
	Use:   "play [file.mid]",
	Short: "Play a song in real time",
	Long: `Play the built-in demo song, or a pattern imported from a Standard
MIDI File, through the system audio output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVarP(&playLoop, "loop", "l", false, "loop playback")
	playCmd.Flags().Float64Var(&playBPM, "bpm", 0, "override the tempo")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	proj := demoProject()
	if len(args) == 1 {
		pat, err := tracker.ImportMIDIPattern(args[0], proj.BeatsPerMeasure)
		if err != nil {
			return err
		}
		proj = projectFromPattern(pat)
	}
	if playBPM > 0 {
		proj.SetBPM(playBPM)
	}

	eng, err := tracker.NewEngine(proj)
	if err != nil {
		return err
	}
	defer eng.Close()

	events := eng.Watch()
	if err := eng.Start(); err != nil {
		return err
	}
	eng.SetLoopEnabled(playLoop)
	eng.Play()
	fmt.Printf("playing %g beats at %.0f BPM\n", proj.SongLength, proj.BPM)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	for {
		select {
		case ev := <-events:
			switch ev.Kind {
			case tracker.EventLoopCompleted:
				fmt.Println("loop")
			case tracker.EventPlaybackEnded:
				return nil
			}
		case <-sig:
			return nil
		}
	}
}
