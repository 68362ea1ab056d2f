package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/qmsim/internal/race"
	"github.com/san-kum/qmsim/internal/sim"
)

// trace covers finish in steps samples of 10 ms.
func trace(name string, steps int, finish float64) race.Trace {
	tel := &sim.Telemetry{}
	for i := 0; i <= steps; i++ {
		tel.Samples = append(tel.Samples, sim.Sample{
			Time:     float64(i) * 0.01,
			Distance: finish * float64(i) / float64(steps),
			Speed:    finish / (float64(steps) * 0.01),
			Gear:     1,
		})
	}
	return race.Trace{Name: name, Telemetry: tel}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return mm, cmd
}

func TestReplayAdvancesAndFinishes(t *testing.T) {
	m := New([]race.Trace{trace("a", 50, 100), trace("b", 100, 100)}, 100)
	if m.Init() == nil {
		t.Fatal("expected initial tick")
	}

	for i := 0; i < 200 && !m.Done(); i++ {
		var cmd tea.Cmd
		m, cmd = update(t, m, tickMsg{})
		if m.Done() && cmd != nil {
			t.Error("ticking should stop once finished")
		}
	}
	if !m.Done() {
		t.Fatalf("replay did not finish, clock=%f", m.clock)
	}
	if m.clock != m.end {
		t.Errorf("clock should stop at the last sample, got %f", m.clock)
	}
	if !strings.Contains(m.View(), "ET 0.50s") {
		t.Error("expected finish time in view")
	}
}

func TestReplayPause(t *testing.T) {
	m := New([]race.Trace{trace("a", 100, 100)}, 100)
	m, _ = update(t, m, key(" "))
	if !m.paused {
		t.Fatal("expected paused")
	}
	m, _ = update(t, m, tickMsg{})
	if m.clock != 0 {
		t.Errorf("clock moved while paused: %f", m.clock)
	}
	if !strings.Contains(m.View(), "paused") {
		t.Error("expected paused status")
	}
}

func TestReplaySpeedLimits(t *testing.T) {
	m := New(nil, 100)
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, key("+"))
	}
	if m.speed != maxSpeed {
		t.Errorf("expected speed %v, got %v", float64(maxSpeed), m.speed)
	}
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, key("-"))
	}
	if m.speed != minSpeed {
		t.Errorf("expected speed %v, got %v", minSpeed, m.speed)
	}
}

func TestReplayQuit(t *testing.T) {
	m := New(nil, 100)
	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestReplayRestart(t *testing.T) {
	m := New([]race.Trace{trace("a", 10, 100)}, 100)
	for !m.Done() {
		m, _ = update(t, m, tickMsg{})
	}
	m, cmd := update(t, m, key("r"))
	if m.clock != 0 || cmd == nil {
		t.Error("restart should rewind and resume ticking")
	}
}

func TestSampleAt(t *testing.T) {
	tel := &sim.Telemetry{Samples: []sim.Sample{{Time: 0}, {Time: 1, Gear: 2}, {Time: 2, Gear: 3}}}
	if s := sampleAt(tel, 1.5); s.Gear != 2 {
		t.Errorf("expected gear 2, got %d", s.Gear)
	}
	if s := sampleAt(tel, 5); s.Gear != 3 {
		t.Errorf("expected last sample, got gear %d", s.Gear)
	}
	if s := sampleAt(&sim.Telemetry{}, 1); s.Gear != 0 {
		t.Error("expected zero sample")
	}
}

func TestViewShowsShift(t *testing.T) {
	tr := trace("a", 100, 100)
	for i := range tr.Telemetry.Samples {
		tr.Telemetry.Samples[i].Shifting = true
	}
	m := New([]race.Trace{tr}, 100)
	m.clock = 0.5
	if !strings.Contains(m.View(), "SHIFT") {
		t.Error("expected shift marker")
	}
}

func TestSpeedHistory(t *testing.T) {
	tr := trace("a", 100, 100)
	for i := range tr.Telemetry.Samples {
		tr.Telemetry.Samples[i].Speed = float64(i)
	}

	got := speedHistory(tr.Telemetry, 0.5, 6)
	if len(got) != 6 {
		t.Fatalf("expected 6 points, got %d", len(got))
	}
	if got[0] != 0 || got[5] != 50*3.6 {
		t.Errorf("expected history to span the start up to t, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("history out of order: %v", got)
		}
	}
	if speedHistory(tr.Telemetry, 0, 6) != nil {
		t.Error("expected no history before the first step")
	}
}

func TestViewShowsSpeedSparkline(t *testing.T) {
	m := New([]race.Trace{trace("a", 100, 100)}, 100)
	m.clock = 0.5
	if !strings.ContainsAny(m.View(), "▁▂▃▄▅▆▇█") {
		t.Error("expected a speed sparkline in the lane readout")
	}
}
