package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	tracker "github.com/padsynth/tracker-go"
	"github.com/padsynth/tracker-go/internal/song"
)

var (
	liveMIDI     bool
	liveMIDIName string
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Interactive transport and performance pad TUI",
	Long: `Run an interactive terminal UI: transport control, a playable key
row on the preview channel, and quantized recording into the first pattern.
With --midi-in a virtual MIDI input port feeds the same path.`,
	RunE: runLive,
}

func init() {
	liveCmd.Flags().BoolVar(&liveMIDI, "midi-in", false, "open a virtual MIDI input port")
	liveCmd.Flags().StringVar(&liveMIDIName, "midi-name", "Tracker Live In", "name of the virtual MIDI port")
	rootCmd.AddCommand(liveCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	eng, err := tracker.NewEngine(demoProject())
	if err != nil {
		return err
	}
	m := newLiveModel(eng)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.program = p
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return m.shutdown()
}

// padKeys maps the home row to a C major scale starting at middle C.
var padKeys = map[string]int{
	"a": 60, "s": 62, "d": 64, "f": 65,
	"g": 67, "h": 69, "j": 71, "k": 72,
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("84"))
	recStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type liveModel struct {
	engine   *tracker.Engine
	program  *tea.Program
	driver   *rtmididrv.Driver
	inPort   drivers.In
	stopMIDI func()
	status   string
	err      error
}

type tickMsg time.Time

type midiNoteMsg struct {
	on       bool
	pitch    int
	velocity float64
}

type midiReadyMsg struct {
	driver *rtmididrv.Driver
	port   drivers.In
	err    error
}

func newLiveModel(eng *tracker.Engine) *liveModel {
	return &liveModel{engine: eng, status: "ready"}
}

func (m *liveModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.startAudio, tickCmd()}
	if liveMIDI {
		cmds = append(cmds, m.openMIDI)
	}
	return tea.Batch(cmds...)
}

func (m *liveModel) startAudio() tea.Msg {
	if err := m.engine.Start(); err != nil {
		return err
	}
	return nil
}

func (m *liveModel) openMIDI() tea.Msg {
	driver, err := rtmididrv.New()
	if err != nil {
		return midiReadyMsg{err: fmt.Errorf("midi driver: %w", err)}
	}
	port, err := driver.OpenVirtualIn(liveMIDIName)
	if err != nil {
		driver.Close()
		return midiReadyMsg{err: fmt.Errorf("virtual midi port: %w", err)}
	}
	return midiReadyMsg{driver: driver, port: port}
}

func tickCmd() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tickCmd()

	case error:
		m.err = msg
		return m, nil

	case midiReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.driver = msg.driver
		m.inPort = msg.port
		return m, m.listenMIDI

	case midiNoteMsg:
		if msg.on {
			m.engine.RecordNoteOn(msg.pitch, msg.velocity, song.VoiceDefault)
		} else {
			m.engine.RecordNoteOff(msg.pitch)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *liveModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case " ":
		if m.engine.IsPlaying() {
			m.engine.Pause()
			m.status = "paused"
		} else {
			m.engine.Play()
			m.status = "playing"
		}
	case "enter":
		m.engine.Stop()
		m.status = "stopped"
	case "L":
		m.engine.SetLoopEnabled(true)
		m.status = "loop on"
	case "r":
		m.engine.ArmRecording()
		m.engine.Play()
		m.status = "recording"
	case "c":
		n := m.engine.CommitRecording(0, 0.25)
		m.engine.UpdateChannelConfigs()
		m.status = fmt.Sprintf("committed %d notes", n)
	default:
		if pitch, ok := padKeys[key]; ok {
			if m.engine.Recorder().Armed() {
				m.engine.RecordNoteOn(pitch, 0.9, song.VoiceDefault)
				m.engine.RecordNoteOff(pitch)
			} else {
				m.engine.PreviewNote(pitch, 0.9, song.VoiceDefault, 0)
			}
		}
	}
	return m, nil
}

// listenMIDI forwards note on/off from the virtual port into the recorder
// path via the program's message loop.
func (m *liveModel) listenMIDI() tea.Msg {
	stop, err := m.inPort.Listen(func(data []byte, _ int32) {
		if len(data) < 3 || m.program == nil {
			return
		}
		switch data[0] & 0xF0 {
		case 0x90:
			vel := data[2]
			m.program.Send(midiNoteMsg{on: vel > 0, pitch: int(data[1]), velocity: float64(vel) / 127})
		case 0x80:
			m.program.Send(midiNoteMsg{on: false, pitch: int(data[1])})
		}
	}, drivers.ListenConfig{})
	if err != nil {
		return fmt.Errorf("midi listen: %w", err)
	}
	m.stopMIDI = stop
	return nil
}

func (m *liveModel) View() string {
	title := titleStyle.Render("tracker live")
	transport := labelStyle.Render("transport ")
	if m.engine.IsPlaying() {
		transport += activeStyle.Render("▶ playing")
	} else {
		transport += "■ stopped"
	}
	beat := fmt.Sprintf("beat %6.2f  bpm %.0f", m.engine.CurrentBeat(), m.engine.Project().BPM)
	line := transport + "  " + beat
	if m.engine.Recorder().Armed() {
		line += "  " + recStyle.Render("● REC")
	}
	midi := ""
	if m.inPort != nil {
		midi = labelStyle.Render("midi in: ") + liveMIDIName + "\n"
	}
	errLine := ""
	if m.err != nil {
		errLine = recStyle.Render("error: "+m.err.Error()) + "\n"
	}
	help := helpStyle.Render("space play/pause · enter stop · r record · c commit · a-k pads · q quit")
	return fmt.Sprintf("%s\n\n%s\n%s: %s\n%s%s\n%s\n", title, line, labelStyle.Render("status"), m.status, midi, errLine, help)
}

func (m *liveModel) shutdown() error {
	if m.stopMIDI != nil {
		m.stopMIDI()
	}
	if m.inPort != nil {
		m.inPort.Close()
	}
	if m.driver != nil {
		m.driver.Close()
	}
	return m.engine.Close()
}
