package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/srodi/memlens/pkg/analyzer"
	"github.com/srodi/memlens/pkg/collector"
	"github.com/srodi/memlens/pkg/types"
)

func testState() analyzer.State {
	return analyzer.State{
		Processes: []analyzer.ProcessStats{
			{PID: 3, Name: "small", PSSKB: 1024, RSSKB: 2048, SharedKB: 512},
			{PID: 1, Name: "big", PSSKB: 4096, RSSKB: 8192, SharedKB: 256, PSSDeltaKB: 20480},
			{PID: 2, Name: "mid", PSSKB: 2048, RSSKB: 4096, SharedKB: 1024},
		},
		System: analyzer.SystemStats{
			TotalKB:     16 * 1024 * 1024,
			UsedKB:      8 * 1024 * 1024,
			AvailableKB: 8 * 1024 * 1024,
		},
	}
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	c := collector.New(t.TempDir(), t.TempDir())
	return NewModel(c, analyzer.New(), testState(), time.Second)
}

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	default:
		return tea.KeyMsg{Type: tea.KeyPgDown}
	}
}

func TestModelDefaultsToPSSSort(t *testing.T) {
	m := newTestModel(t)
	if m.state.Processes[0].Name != "big" || m.state.Processes[2].Name != "small" {
		t.Fatalf("expected descending PSS order, got %+v", m.state.Processes)
	}
}

func TestSortModeCycles(t *testing.T) {
	m := newTestModel(t)
	order := []SortMode{SortRSS, SortShared, SortPID, SortPSS}
	for _, want := range order {
		m.Update(key("n"))
		if m.sortMode != want {
			t.Fatalf("expected sort %v, got %v", want, m.sortMode)
		}
	}

	m.sortMode = SortPID
	m.sortProcesses()
	if m.state.Processes[0].PID != 1 || m.state.Processes[2].PID != 3 {
		t.Fatalf("expected ascending PID order, got %+v", m.state.Processes)
	}
}

func TestViewModeCyclesAndResetsScroll(t *testing.T) {
	m := newTestModel(t)
	m.scrollOffset = 2

	m.Update(key("v"))
	if m.viewMode != ViewMemoryMap || m.scrollOffset != 0 {
		t.Fatalf("expected memory map view with reset scroll, got %v/%d", m.viewMode, m.scrollOffset)
	}
	m.Update(key("v"))
	m.Update(key("v"))
	if m.viewMode != ViewProcesses {
		t.Fatalf("expected to cycle back to process view, got %v", m.viewMode)
	}
}

func TestScrollClampsToTable(t *testing.T) {
	m := newTestModel(t)
	m.visibleRows = 2

	m.Update(key("up"))
	if m.scrollOffset != 0 {
		t.Fatalf("scroll above top must clamp to 0, got %d", m.scrollOffset)
	}
	m.Update(key("pgdown"))
	if m.scrollOffset != 1 {
		t.Fatalf("expected offset clamped to 1 (3 rows, 2 visible), got %d", m.scrollOffset)
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestTickSamplesAndKeepsStateOnFailure(t *testing.T) {
	// Empty proc root: collect fails, previous state must survive.
	m := newTestModel(t)
	before := len(m.state.Processes)

	model, cmd := m.Update(tickMsg(time.Now()))
	m = model.(*Model)
	if m.lastErr == nil {
		t.Fatal("expected sampling error against empty proc root")
	}
	if len(m.state.Processes) != before {
		t.Fatalf("failed sample must not clear state, got %d rows", len(m.state.Processes))
	}
	if cmd == nil {
		t.Fatal("expected a re-tick command")
	}
}

func TestTickSampleSuccessClearsError(t *testing.T) {
	procRoot := t.TempDir()
	meminfo := "MemTotal: 1000 kB\nMemFree: 500 kB\nMemAvailable: 600 kB\n"
	if err := os.WriteFile(filepath.Join(procRoot, "meminfo"), []byte(meminfo), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	c := collector.New(procRoot, t.TempDir())
	m := NewModel(c, analyzer.New(), testState(), time.Second)
	m.lastErr = os.ErrPermission

	m.Update(tickMsg(time.Now()))
	if m.lastErr != nil {
		t.Fatalf("successful sample must clear the error, got %v", m.lastErr)
	}
	if m.state.System.TotalKB != 1000 {
		t.Fatalf("expected refreshed state, got %+v", m.state.System)
	}
}

func TestViewRendersAllModes(t *testing.T) {
	m := newTestModel(t)
	m.state.NUMANodes = append(m.state.NUMANodes, types.NUMANode{
		NodeID:     0,
		MemTotalKB: 1024 * 1024,
		MemFreeKB:  512 * 1024,
		MemUsedKB:  512 * 1024,
	})

	if view := m.View(); !strings.Contains(view, "PID") || !strings.Contains(view, "big") {
		t.Fatalf("process view missing table: %q", view)
	}
	m.viewMode = ViewMemoryMap
	if view := m.View(); !strings.Contains(view, "Physical Memory Distribution") || !strings.Contains(view, "Node 0") {
		t.Fatalf("memory map view incomplete: %q", view)
	}
	m.viewMode = ViewSharedMemory
	if view := m.View(); !strings.Contains(view, "Sharing Efficiency") {
		t.Fatalf("shared view incomplete: %q", view)
	}
}
