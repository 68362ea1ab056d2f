// Package tui replays race telemetry in the terminal, one lane per car.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/qmsim/internal/race"
	"github.com/san-kum/qmsim/internal/sim"
	"github.com/san-kum/qmsim/internal/viz"
)

const (
	frame    = 16 * time.Millisecond
	minSpeed = 0.25
	maxSpeed = 16
	nameCol  = 14
	sparkCol = 12
)

var white = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

type Model struct {
	traces []race.Trace
	finish float64
	end    float64

	clock  float64 // replay time, s
	speed  float64
	paused bool

	width int
}

// New builds a replay of the given traces. finish is the race distance
// used to scale the lanes.
func New(traces []race.Trace, finish float64) Model {
	end := 0.0
	for _, tr := range traces {
		end = max(end, tr.Telemetry.Last().Time)
	}
	return Model{
		traces: traces,
		finish: finish,
		end:    end,
		speed:  1,
		width:  100,
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frame, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Done() bool { return m.clock >= m.end }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		if !m.paused && !m.Done() {
			m.clock = min(m.clock+frame.Seconds()*m.speed, m.end)
		}
		if m.Done() {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "+", "=":
		m.speed = min(m.speed*2, maxSpeed)
	case "-", "_":
		m.speed = max(m.speed/2, minSpeed)
	case "0":
		m.speed = 1
	case "r":
		restart := m.Done()
		m.clock = 0
		if restart {
			return m, tick()
		}
	}
	return m, nil
}

// sampleAt returns the last sample at or before t.
func sampleAt(tel *sim.Telemetry, t float64) sim.Sample {
	n := len(tel.Samples)
	if n == 0 {
		return sim.Sample{}
	}
	i := sort.Search(n, func(i int) bool { return tel.Samples[i].Time > t })
	return tel.Samples[max(i-1, 0)]
}

// speedHistory picks n evenly spaced speeds (km/h) from the start of the
// run up to t.
func speedHistory(tel *sim.Telemetry, t float64, n int) []float64 {
	end := sort.Search(len(tel.Samples), func(i int) bool { return tel.Samples[i].Time > t })
	if end < 2 || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for k := range out {
		i := k * (end - 1) / max(n-1, 1)
		out[k] = tel.Samples[i].Speed * 3.6
	}
	return out
}

func (m Model) View() string {
	var b strings.Builder

	status := viz.StatusRunning.Render("● racing")
	switch {
	case m.Done():
		status = viz.Winner.Render("■ finished")
	case m.paused:
		status = viz.StatusPaused.Render("○ paused")
	}
	title := viz.GradientText("QUARTER MILE", viz.CurrentTheme.Primary, viz.CurrentTheme.Accent)
	fmt.Fprintf(&b, "\n   %s  %s  %s %s  %s %s\n\n", title, status,
		viz.MetricLabel.Render("t"), viz.MetricValue.Render(fmt.Sprintf("%.2fs", m.clock)),
		viz.MetricLabel.Render("replay"), viz.MetricValue.Render(fmt.Sprintf("x%.2g", m.speed)))

	lane := max(m.width-nameCol-sparkCol-44, 20)
	for i, tr := range m.traces {
		s := sampleAt(tr.Telemetry, m.clock)
		last := tr.Telemetry.Last()
		style := viz.LaneStyle(i)

		name := tr.Name
		if len([]rune(name)) > nameCol {
			name = string([]rune(name)[:nameCol-1]) + "…"
		}

		readout := fmt.Sprintf("%6.1f km/h  g%d  %5.0f rpm", s.Speed*3.6, s.Gear, max(s.EngineRPM, s.MotorRPM))
		switch {
		case m.clock >= last.Time && last.Distance >= m.finish:
			readout = viz.Winner.Render(fmt.Sprintf("ET %.2fs  %.1f km/h", last.Time, last.Speed*3.6))
		case s.Shifting:
			readout = white.Render(readout) + " " + viz.StatusShifting.Render("SHIFT")
		default:
			readout = white.Render(readout)
		}

		fmt.Fprintf(&b, "   %s %s %s %s\n",
			style.Render(fmt.Sprintf("%-*s", nameCol, name)),
			viz.ProgressBar(s.Distance/m.finish, lane, style),
			viz.SparklineChart(speedHistory(tr.Telemetry, m.clock, sparkCol), sparkCol),
			readout)
	}

	b.WriteString("\n   " + viz.Separator(lane+nameCol+sparkCol+2) + "\n")
	b.WriteString(viz.KeyHint.Render("   space pause  +/- speed  0 reset speed  r restart  q quit") + "\n")
	return b.String()
}

// Run replays the traces full screen until the user quits.
func Run(traces []race.Trace, finish float64) error {
	p := tea.NewProgram(New(traces, finish), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
