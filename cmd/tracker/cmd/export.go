package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	tracker "github.com/padsynth/tracker-go"
	"github.com/padsynth/tracker-go/internal/song"
)

var (
	exportRate    int
	exportBitrate int
	exportBeats   float64
	exportMIDIIn  string
)

var exportCmd = &cobra.Command{
	Use:   "export <out.wav|out.mp3|out.mid>",
	Short: "Render a song offline to WAV, MP3, or MIDI",
	Long: `Render the built-in demo song (or a pattern imported with --midi)
offline and write it in the format implied by the output extension.
MP3 export requires the lame encoder on PATH.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVar(&exportRate, "rate", 44100, "sample rate in Hz")
	exportCmd.Flags().IntVar(&exportBitrate, "bitrate", 192, "mp3 bitrate in kbps")
	exportCmd.Flags().Float64Var(&exportBeats, "beats", 0, "render only this many beats (0 = whole song)")
	exportCmd.Flags().StringVar(&exportMIDIIn, "midi", "", "import a pattern from this SMF file instead of the demo")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	out := args[0]
	proj := demoProject()
	if exportMIDIIn != "" {
		pat, err := tracker.ImportMIDIPattern(exportMIDIIn, proj.BeatsPerMeasure)
		if err != nil {
			return err
		}
		proj = projectFromPattern(pat)
	}

	switch {
	case strings.HasSuffix(out, ".wav"):
		if err := tracker.ExportWAV(out, proj, exportRate, exportBeats); err != nil {
			return err
		}
	case strings.HasSuffix(out, ".mp3"):
		if !tracker.EncoderAvailable() {
			return fmt.Errorf("%s", tracker.EncoderStatus())
		}
		if err := tracker.ExportMP3(out, proj, exportRate, exportBitrate, exportBeats); err != nil {
			return err
		}
	case strings.HasSuffix(out, ".mid"):
		if err := tracker.ExportMIDI(proj, out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format: %s", out)
	}
	fmt.Println("wrote", out)
	return nil
}

// projectFromPattern wraps a single imported pattern in a one-clip project.
func projectFromPattern(pat *song.Pattern) *song.Project {
	proj := song.NewProject()
	proj.Patterns[0] = pat
	proj.SongLength = pat.Length
	proj.Clips = append(proj.Clips, song.Clip{Channel: 0, Pattern: 0, Start: 0, Length: pat.Length})
	return proj
}
