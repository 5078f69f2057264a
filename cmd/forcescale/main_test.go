package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CK6170/forcescale-go/internal/config"
	"github.com/CK6170/forcescale-go/scale"
)

func TestReplayCommand(t *testing.T) {
	p := filepath.Join(t.TempDir(), "session.csv")
	require.NoError(t, os.WriteFile(p, []byte("force,2.0\ntare\nup\nforce,4.75\n"), 0644))

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"replay", "--quiet", p})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "events 4, display updates 4, active 3, over capacity 0, tares 1")
}

func TestReplayCommandMissingFile(t *testing.T) {
	cmd := NewCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"replay", filepath.Join(t.TempDir(), "nope.csv")})
	assert.Error(t, cmd.Execute())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTUIDemoFlow(t *testing.T) {
	var m tea.Model = initialModel(config.Default(), demoPort)
	m, _ = m.Update(connectedMsg{source: demoPort})
	require.Equal(t, screenScale, m.(model).scr)

	for i := 0; i < 20; i++ {
		m, _ = m.Update(key("up"))
	}
	mm := m.(model)
	assert.InDelta(t, 2.0, mm.scale.Force(), 1e-9)
	assert.Equal(t, scale.DisplayState{Mass: 160, Active: true}, mm.display)

	m, cmd := m.Update(key("t"))
	mm = m.(model)
	assert.NotNil(t, cmd)
	assert.Equal(t, "TARED", mm.label)
	assert.Equal(t, 0, mm.display.Mass)

	// A stale reset is ignored, the current one restores the caption.
	m, _ = m.Update(labelResetMsg{gen: mm.labelGen - 1})
	assert.Equal(t, "TARED", m.(model).label)
	m, _ = m.Update(labelResetMsg{gen: mm.labelGen})
	assert.Equal(t, "TARE", m.(model).label)

	m, _ = m.Update(key(" "))
	mm = m.(model)
	assert.False(t, mm.display.Active)
	assert.Zero(t, mm.scale.Force())
	assert.Contains(t, mm.View(), "0 g")
}

func TestTUIIgnoresStaleSourceEvents(t *testing.T) {
	var m tea.Model = initialModel(config.Default(), "")
	m, _ = m.Update(connectedMsg{source: demoPort})
	runID := m.(model).runID

	m, _ = m.Update(sourceEventMsg{runID: runID - 1, ev: scale.Event{Kind: scale.EventForce, Force: 3.0}})
	assert.Zero(t, m.(model).scale.Force())
}

func TestStepForce(t *testing.T) {
	assert.InDelta(t, 0.1, stepForce(0, demoStep), 1e-12)
	assert.Zero(t, stepForce(0, -demoStep))
	assert.InDelta(t, 1.0, stepForce(0.9, demoStep), 1e-12)
}

func TestWatcherTareLabelLifecycle(t *testing.T) {
	var out bytes.Buffer
	w := &watcher{scale: scale.New(), labelDelay: 20 * time.Millisecond, out: &out}

	w.apply(scale.Event{Kind: scale.EventForce, Force: 2.0})
	assert.Equal(t, scale.DisplayState{Mass: 160, Active: true}, w.state)
	assert.Empty(t, w.label)
	assert.Nil(t, w.labelReset())
	assert.Contains(t, out.String(), "[TARE]")

	w.apply(scale.Event{Kind: scale.EventTare})
	assert.Equal(t, scale.TareSet, w.label)
	assert.Equal(t, scale.DisplayState{Active: true}, w.state)
	assert.Contains(t, out.String(), "[TARED]")
	reset := w.labelReset()
	require.NotNil(t, reset)

	// Releasing keeps the caption until the reset fires.
	w.apply(scale.Event{Kind: scale.EventUp})
	assert.Equal(t, scale.Idle, w.state)
	assert.Equal(t, scale.TareSet, w.label)

	select {
	case <-reset:
	case <-time.After(2 * time.Second):
		t.Fatal("label reset did not fire")
	}

	w.apply(scale.Event{Kind: scale.EventTare})
	assert.Equal(t, scale.TareCleared, w.label)
	assert.Contains(t, out.String(), "[RESET]")
	assert.NotNil(t, w.labelReset())
}

func TestWatcherSkipsUnhandledEvents(t *testing.T) {
	var out bytes.Buffer
	w := &watcher{scale: scale.New(), labelDelay: time.Second, out: &out}
	w.apply(scale.Event{Kind: scale.EventForce, Force: 1.5})
	out.Reset()

	w.apply(scale.Event{Kind: scale.EventMove, Force: 0})
	w.apply(scale.Event{Kind: scale.EventDown, Force: 0})
	assert.Empty(t, out.String())
	assert.Equal(t, scale.DisplayState{Mass: 80, Active: true}, w.state)
	assert.Nil(t, w.labelReset())
}

func TestWatchBaudDefault(t *testing.T) {
	f := NewWatchCommand().Flags().Lookup("baud")
	require.NotNil(t, f)
	assert.Equal(t, strconv.Itoa(config.DefaultBaud), f.DefValue)
}

func TestConfigCommandWritesLoadableFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "scale.yaml")

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--serial", "/dev/ttyUSB0", p})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "wrote "+p)

	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort())
	assert.Equal(t, config.DefaultBaud, cfg.Serial.Baud)
	assert.Equal(t, config.DefaultAddr, cfg.Addr)
}
