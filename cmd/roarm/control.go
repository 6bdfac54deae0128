package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/roarm/pkg/link"
	"github.com/gwillem/roarm/pkg/monitor"
	"github.com/gwillem/roarm/pkg/protocol"
	"github.com/gwillem/roarm/pkg/robot"
)

type ControlCommand struct {
	Hz int `long:"hz" default:"2" description:"Status polling frequency"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	statusHeight = 3 // pose, torques, prompt
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Axis colors - distinct colors for each axis
var axisColors = map[robot.Axis]string{
	robot.AxisX: "196", // red
	robot.AxisY: "46",  // green
	robot.AxisZ: "51",  // cyan
	robot.AxisT: "201", // magenta
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

const keyHelp = "w/s ±y  a/d ±x  q/z ±z  e/r open/close  f clamp  g goto  u status  x quit"

const promptHelp = "enter send  esc cancel  ctrl+c quit"

// Arm is the part of link.Engine the control view drives.
type Arm interface {
	MoveRelative(ctx context.Context, dx, dy, dz, spd float64) error
	Move(ctx context.Context, x, y, z, t, spd float64) error
	OpenClamp(ctx context.Context) error
	CloseClamp(ctx context.Context) error
	ClampRelative(ctx context.Context, amount float64) error
	QueryStatus(ctx context.Context, timeout time.Duration) (protocol.TelemetryFrame, error)
	CurrentPose() robot.Pose
	Snapshot() (robot.Pose, robot.Torques, time.Time)
}

type promptKind int

const (
	promptNone promptKind = iota
	promptGoto
	promptClamp
)

type controlModel struct {
	arm      Arm
	mon      *monitor.Controller
	cfg      robot.Config
	chart    *streamlinechart.Model
	input    textinput.Model
	prompt   promptKind
	width    int        // terminal width
	height   int        // terminal height
	logs     []string   // last N log messages
	pose     robot.Pose // last polled pose
	torques  robot.Torques
	quitting bool
	lastPose *robot.Pose // previous pose to detect movement
}

func (m *controlModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// hasMovement checks if the pose has changed since the last state
func (m *controlModel) hasMovement(p robot.Pose) bool {
	return m.lastPose == nil || *m.lastPose != p
}

// Messages from the monitor and from commands
type stateMsg monitor.State
type logMsg string
type resultMsg struct {
	text string
	err  error
}

func waitForState(mon *monitor.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-mon.States())
	}
}

func waitForLog(mon *monitor.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-mon.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *controlModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 16 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - statusHeight - footerHeight - borderSize
	if height < 8 {
		height = 8
	}
	return width, height
}

func (m *controlModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialControlModel(arm Arm, mon *monitor.Controller, cfg robot.Config) controlModel {
	chart := streamlinechart.New(80, 16,
		streamlinechart.WithYRange(-100, 100),
	)

	// Set up data set styles for each axis
	for _, axis := range robot.AllAxes() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[axis]))
		chart.SetDataSetStyles(string(axis), runes.ThinLineStyle, style)
	}

	input := textinput.New()
	input.CharLimit = 64

	return controlModel{
		arm:   arm,
		mon:   mon,
		cfg:   cfg,
		chart: &chart,
		input: input,
	}
}

func (m controlModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.mon),
		waitForLog(m.mon),
	)
}

// run executes an arm command off the UI goroutine.
func run(text string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{text: text, err: fn(context.Background())}
	}
}

// jog sends a relative move after checking the target against the workspace.
func (m controlModel) jog(dx, dy, dz float64) tea.Cmd {
	target := protocol.MoveRelative{DX: dx, DY: dy, DZ: dz, Speed: m.cfg.Speed}.Resolve(m.arm.CurrentPose())
	if err := checkTarget(m.cfg.Workspace, target); err != nil {
		return func() tea.Msg { return resultMsg{err: err} }
	}
	return run("", func(ctx context.Context) error {
		return m.arm.MoveRelative(ctx, dx, dy, dz, m.cfg.Speed)
	})
}

func (m controlModel) queryStatus() tea.Cmd {
	return func() tea.Msg {
		f, err := m.arm.QueryStatus(context.Background(), m.cfg.QueryTimeout())
		if err != nil {
			return resultMsg{err: fmt.Errorf("status: %w", err)}
		}
		return resultMsg{text: "Current status: " + formatPose(f.Pose)}
	}
}

// hasPosition reports whether the arm has reported a pose yet. Relative
// targets resolved before that would start from the origin.
func (m controlModel) hasPosition() bool {
	_, _, updated := m.arm.Snapshot()
	return !updated.IsZero()
}

func (m controlModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "w", "s", "a", "d", "q", "z", "f", "g":
		if !m.hasPosition() {
			m.addLog("No position yet, press u to query status")
			return m, nil
		}
	}

	step := m.cfg.Step
	switch key {
	case "w":
		return m, m.jog(0, step, 0)
	case "s":
		return m, m.jog(0, -step, 0)
	case "a":
		return m, m.jog(-step, 0, 0)
	case "d":
		return m, m.jog(step, 0, 0)
	case "q":
		return m, m.jog(0, 0, step)
	case "z":
		return m, m.jog(0, 0, -step)
	case "e":
		return m, run("Clamp opened", m.arm.OpenClamp)
	case "r":
		return m, run("Clamp closed", m.arm.CloseClamp)
	case "f":
		return m.openPrompt(promptClamp, "relative clamp amount (-1 to 1)")
	case "g":
		return m.openPrompt(promptGoto, "x y z")
	case "u":
		return m, m.queryStatus()
	case "x", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	m.addLog("Invalid input: " + key)
	return m, nil
}

func (m controlModel) openPrompt(kind promptKind, placeholder string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input.SetValue("")
	m.input.Placeholder = placeholder
	return m, m.input.Focus()
}

func (m controlModel) submitPrompt() (tea.Model, tea.Cmd) {
	kind, value := m.prompt, m.input.Value()
	m.prompt = promptNone
	m.input.Blur()

	switch kind {
	case promptClamp:
		amount, err := parseClampAmount(value)
		if err != nil {
			m.addLog(err.Error())
			return m, nil
		}
		target := protocol.ClampRelative{Amount: amount, Speed: m.cfg.Speed}.Resolve(m.arm.CurrentPose())
		if err := checkTarget(m.cfg.Workspace, target); err != nil {
			m.addLog(err.Error())
			return m, nil
		}
		return m, run(fmt.Sprintf("Clamp opened relatively by %s", formatValue(amount)), func(ctx context.Context) error {
			return m.arm.ClampRelative(ctx, amount)
		})
	case promptGoto:
		x, y, z, err := parseGoto(value)
		if err != nil {
			m.addLog(err.Error())
			return m, nil
		}
		t := m.arm.CurrentPose().T
		target := protocol.Move{X: x, Y: y, Z: z, T: t, Speed: m.cfg.Speed}
		if err := checkTarget(m.cfg.Workspace, target); err != nil {
			m.addLog(err.Error())
			return m, nil
		}
		msg := fmt.Sprintf("Moving to (%s, %s, %s)", formatValue(x), formatValue(y), formatValue(z))
		return m, run(msg, func(ctx context.Context) error {
			return m.arm.Move(ctx, x, y, z, t, m.cfg.Speed)
		})
	}
	return m, nil
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		if m.prompt != promptNone {
			switch msg.String() {
			case "enter":
				return m.submitPrompt()
			case "esc":
				m.prompt = promptNone
				m.input.Blur()
				return m, nil
			case "ctrl+c":
				m.quitting = true
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg.String())

	case stateMsg:
		state := monitor.State(msg)
		if state.Error == nil {
			m.pose, m.torques = state.Pose, state.Torques
			// Only update chart if there's movement (freeze when idle)
			if m.hasMovement(state.Pose) {
				for axis, v := range m.cfg.Workspace.Normalize(state.Pose) {
					m.chart.PushDataSet(string(axis), v)
				}
				m.chart.DrawAll()
				pose := state.Pose
				m.lastPose = &pose
			}
		}
		return m, waitForState(m.mon)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.mon)

	case resultMsg:
		switch {
		case msg.err != nil && errors.Is(msg.err, link.ErrTimeout):
			m.addLog("Status request timed out")
		case msg.err != nil:
			m.addLog("Error: " + msg.err.Error())
		case msg.text != "":
			m.addLog(msg.text)
		}
		return m, nil
	}

	return m, nil
}

func formatPose(p robot.Pose) string {
	return fmt.Sprintf("x=%s y=%s z=%s t=%s",
		formatValue(p.X), formatValue(p.Y), formatValue(p.Z), formatValue(p.T))
}

func formatTorques(t robot.Torques) string {
	return fmt.Sprintf("torB=%s torS=%s torE=%s torH=%s",
		formatValue(t.Base), formatValue(t.Shoulder), formatValue(t.Elbow), formatValue(t.Hand))
}

func (m controlModel) View() string {
	if m.quitting {
		return "Exiting robot control.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("roarm control"))
	sb.WriteString(fmt.Sprintf(" - %s", m.cfg.Port))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Pose, torques and prompt
	sb.WriteString(formatPose(m.pose))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(formatTorques(m.torques)))
	sb.WriteString("\n")
	if m.prompt != promptNone {
		sb.WriteString(promptStyle.Render(m.input.View()))
		sb.WriteString("  " + statusStyle.Render(promptHelp))
	} else {
		sb.WriteString(statusStyle.Render(keyHelp))
	}
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20)).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'x' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, axis := range robot.AllAxes() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[axis])).Bold(true)
		item := colorStyle.Render("━━") + " " + string(axis)
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func (c *ControlCommand) Execute(args []string) error {
	// Engine logs go into the TUI log box once the monitor exists
	relay := &logRelay{}
	s, err := openSession(relay, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer s.Close()

	mon := monitor.NewController(s.engine, monitor.Config{
		Hz:      c.Hz,
		Timeout: s.cfg.QueryTimeout(),
	})
	relay.Set(mon.LogWriter())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial position, like the polling loop would report it
	if _, err := s.engine.QueryStatus(ctx, s.cfg.QueryTimeout()); err != nil {
		mon.Logf("Initial status failed: %v", err)
	} else {
		mon.Logf("Initial position: %s", formatPose(s.engine.CurrentPose()))
	}

	go func() {
		if err := mon.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error().Err(err).Msg("monitor stopped")
		}
	}()

	p := tea.NewProgram(initialControlModel(s.engine, mon, s.cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run control view: %w", err)
	}
	return nil
}

var _ Arm = (*link.Engine)(nil)
