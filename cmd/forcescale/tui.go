package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/CK6170/forcescale-go/internal/config"
	"github.com/CK6170/forcescale-go/scale"
	serialpkg "github.com/CK6170/forcescale-go/serial"
	"github.com/CK6170/forcescale-go/ui"
)

type screen int

const (
	screenEntry screen = iota
	screenScale
)

// demoStep is how much one arrow key press changes the synthetic force.
const demoStep = 0.1

// forceGaugeMax is the full width of the force gauge, in sensor units.
const forceGaugeMax = 5.0

const demoPort = "demo"

type model struct {
	scr screen

	// entry
	portInput textinput.Model
	baud      int

	// source
	source    string
	events    chan scale.Event
	srcCancel context.CancelFunc
	runID     int

	// core and what it last produced
	scale   *scale.Scale
	display scale.DisplayState

	label      string
	labelGen   int
	labelDelay time.Duration

	gauge   progress.Model
	lastErr error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	faceStyle   = lipgloss.NewStyle().Bold(true).Padding(1, 4).Border(lipgloss.RoundedBorder())
	idleFace    = faceStyle.Foreground(lipgloss.Color("#cccccc")).BorderForeground(lipgloss.Color("#cccccc"))
	activeFace  = faceStyle.Foreground(lipgloss.Color("#222222")).BorderForeground(lipgloss.Color("#222222"))
	maxFace     = faceStyle.Foreground(lipgloss.Color("#ea5b0c")).BorderForeground(lipgloss.Color("#ea5b0c"))
	labelStyle  = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder())
	statusLight = map[bool]string{
		false: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("●"),
		true:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("●"),
	}
)

func initialModel(cfg *config.Config, port string) model {
	in := textinput.New()
	in.Placeholder = "Serial port of the sensor board, or 'demo'"
	in.Focus()
	in.CharLimit = 256
	in.Width = 60
	if port != "" {
		in.SetValue(port)
		in.CursorEnd()
	}

	baud := config.DefaultBaud
	if cfg.Serial != nil {
		baud = cfg.Serial.Baud
	}

	return model{
		scr:        screenEntry,
		portInput:  in,
		baud:       baud,
		scale:      scale.New(),
		label:      ui.TareLabel(""),
		labelDelay: time.Duration(cfg.LabelDelay),
		gauge:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

type errMsg struct{ err error }

type connectedMsg struct {
	source string
	events chan scale.Event
	cancel context.CancelFunc
}

type sourceEventMsg struct {
	runID int
	ev    scale.Event
}

type sourceClosedMsg struct{ runID int }

type labelResetMsg struct{ gen int }

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stopSource()
			return m, tea.Quit
		}
		switch m.scr {
		case screenEntry:
			return m.updateEntryKey(msg)
		case screenScale:
			return m.updateScaleKey(msg)
		}

	case tea.WindowSizeMsg:
		m.gauge.Width = min(msg.Width-4, 60)
		return m, nil

	case errMsg:
		m.lastErr = msg.err
		return m, nil

	case connectedMsg:
		m.stopSource()
		m.runID++
		m.source = msg.source
		m.events = msg.events
		m.srcCancel = msg.cancel
		m.scr = screenScale
		m.lastErr = nil
		m.display = m.scale.State()
		if m.events == nil {
			return m, nil
		}
		return m, waitForEvent(m.events, m.runID)

	case sourceEventMsg:
		if msg.runID != m.runID {
			return m, nil
		}
		var cmd tea.Cmd
		m, cmd = m.apply(msg.ev)
		return m, tea.Batch(cmd, waitForEvent(m.events, m.runID))

	case sourceClosedMsg:
		if msg.runID != m.runID {
			return m, nil
		}
		m.lastErr = fmt.Errorf("sensor board disconnected")
		m.events = nil
		return m, nil

	case labelResetMsg:
		if msg.gen == m.labelGen {
			m.label = ui.TareLabel("")
		}
		return m, nil
	}

	if m.scr == screenEntry {
		var cmd tea.Cmd
		m.portInput, cmd = m.portInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply runs one event through the core. A tare also schedules the caption reset.
func (m model) apply(ev scale.Event) (model, tea.Cmd) {
	res, err := scale.Apply(m.scale, ev)
	if err != nil {
		m.lastErr = err
		return m, nil
	}
	if !res.Handled {
		return m, nil
	}
	m.display = res.State
	if res.Tare == "" {
		return m, nil
	}
	m.label = ui.TareLabel(res.Tare)
	m.labelGen++
	gen := m.labelGen
	return m, tea.Tick(m.labelDelay, func(time.Time) tea.Msg {
		return labelResetMsg{gen: gen}
	})
}

func (m model) updateEntryKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k.String() == "enter" {
		port := strings.TrimSpace(m.portInput.Value())
		if port == "" {
			return m, func() tea.Msg { return errMsg{err: fmt.Errorf("serial port is empty")} }
		}
		return m, connectCmd(port, m.baud)
	}
	var cmd tea.Cmd
	m.portInput, cmd = m.portInput.Update(k)
	return m, cmd
}

func (m model) updateScaleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "q":
		m.stopSource()
		return m, tea.Quit
	case "b":
		m.stopSource()
		m.runID++
		m.scr = screenEntry
		return m, nil
	case "t", "enter":
		return m.apply(scale.Event{Kind: scale.EventTare})
	}

	if m.source != demoPort {
		return m, nil
	}
	switch k.String() {
	case "up", "k", "+":
		return m.apply(scale.Event{Kind: scale.EventForce, Force: stepForce(m.scale.Force(), demoStep)})
	case "down", "j", "-":
		return m.apply(scale.Event{Kind: scale.EventForce, Force: stepForce(m.scale.Force(), -demoStep)})
	case " ":
		return m.apply(scale.Event{Kind: scale.EventUp})
	}
	return m, nil
}

// stepForce moves f by delta, snapped to the demo step grid.
func stepForce(f, delta float64) float64 {
	return math.Max(0, math.Round((f+delta)/demoStep)*demoStep)
}

func (m *model) stopSource() {
	if m.srcCancel != nil {
		m.srcCancel()
		m.srcCancel = nil
	}
	m.events = nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("forcescale") + "\n")
	b.WriteString(helpStyle.Render("Ctrl+C to quit.") + "\n\n")
	if m.lastErr != nil {
		b.WriteString(errStyle.Render("Error: "+m.lastErr.Error()) + "\n\n")
	}

	switch m.scr {
	case screenEntry:
		b.WriteString("Sensor:\n")
		b.WriteString(m.portInput.View() + "\n\n")
		b.WriteString(helpStyle.Render("Enter a serial port (or 'demo' to drive the scale with arrow keys) and press Enter.") + "\n")
	case screenScale:
		b.WriteString(m.viewScale())
	}
	return b.String()
}

func (m model) viewScale() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n\n", statusLight[m.display.Active], m.source))

	face := idleFace
	switch {
	case m.display.OverCapacity:
		face = maxFace
	case m.display.Active:
		face = activeFace
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		face.Render(fmt.Sprintf("%5s g", m.display.Text())),
		"  ",
		labelStyle.Render(m.label),
	) + "\n\n")

	b.WriteString(m.gauge.ViewAs(math.Min(1, m.scale.Force()/forceGaugeMax)) + "\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("force %.2f  tare %.0f g", m.scale.Force(), m.scale.Offset())) + "\n\n")

	help := "t tare, b back, q quit"
	if m.source == demoPort {
		help = "↑/↓ press harder/softer, space release, " + help
	}
	b.WriteString(helpStyle.Render(help) + "\n")
	return b.String()
}

func connectCmd(port string, baud int) tea.Cmd {
	return func() tea.Msg {
		if port == demoPort {
			return connectedMsg{source: demoPort}
		}
		sp, err := serialpkg.Open(port, baud)
		if err != nil {
			return errMsg{err: err}
		}
		ctx, cancel := context.WithCancel(context.Background())
		events := make(chan scale.Event, 64)
		go func() {
			defer close(events)
			defer sp.Close()
			err := serialpkg.Stream(ctx, sp, func(ev scale.Event) {
				select {
				case events <- ev:
				case <-ctx.Done():
				}
			}, nil)
			if err != nil {
				logrus.WithError(err).Debug("Serial stream ended")
			}
		}()
		return connectedMsg{source: port, events: events, cancel: cancel}
	}
}

func waitForEvent(events chan scale.Event, runID int) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return sourceClosedMsg{runID: runID}
		}
		return sourceEventMsg{runID: runID, ev: ev}
	}
}

func NewTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui [port|demo]",
		Short: "Show the scale in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// The alternate screen hides log output; keep it quiet.
			logrus.SetLevel(logrus.ErrorLevel)

			port := cfg.SerialPort()
			if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
				port = args[0]
			}
			p := tea.NewProgram(initialModel(cfg, port), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	return cmd
}
