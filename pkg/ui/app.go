package ui

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/phuslu/log"

	"github.com/srodi/memlens/pkg/analyzer"
	"github.com/srodi/memlens/pkg/collector"
	"github.com/srodi/memlens/pkg/logging"
)

type SortMode int

const (
	SortPSS SortMode = iota
	SortRSS
	SortShared
	SortPID
)

func (m SortMode) String() string {
	switch m {
	case SortPSS:
		return "PSS"
	case SortRSS:
		return "RSS"
	case SortShared:
		return "Shared"
	case SortPID:
		return "PID"
	}
	return "?"
}

type ViewMode int

const (
	ViewProcesses ViewMode = iota
	ViewMemoryMap
	ViewSharedMemory
)

type tickMsg time.Time

// Model is the interactive terminal view. It owns the collector and the
// analyzer exclusively: sampling happens synchronously inside Update on
// each tick, so the pipeline is never touched from two goroutines.
type Model struct {
	collector *collector.Collector
	analyzer  *analyzer.Analyzer
	interval  time.Duration

	state        analyzer.State
	sortMode     SortMode
	viewMode     ViewMode
	scrollOffset int
	visibleRows  int
	width        int
	lastErr      error
	log          log.Logger
}

// NewModel seeds the view with the startup sample's state; ticks take
// over from there.
func NewModel(c *collector.Collector, a *analyzer.Analyzer, initial analyzer.State, interval time.Duration) *Model {
	m := &Model{
		collector:   c,
		analyzer:    a,
		interval:    interval,
		state:       initial,
		sortMode:    SortPSS,
		visibleRows: 20,
		log:         logging.Component("ui"),
	}
	m.sortProcesses()
	return m
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		// Header, table chrome, and footer eat a fixed number of rows.
		m.visibleRows = msg.Height - 13
		if m.visibleRows < 1 {
			m.visibleRows = 1
		}
		m.clampScroll()
	case tickMsg:
		m.sample()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n":
		m.sortMode = (m.sortMode + 1) % 4
		m.sortProcesses()
		m.scrollOffset = 0
	case "v":
		m.viewMode = (m.viewMode + 1) % 3
		m.scrollOffset = 0
	case "up", "k":
		m.scrollOffset--
		m.clampScroll()
	case "down", "j":
		m.scrollOffset++
		m.clampScroll()
	case "pgup":
		m.scrollOffset -= m.visibleRows
		m.clampScroll()
	case "pgdown":
		m.scrollOffset += m.visibleRows
		m.clampScroll()
	}
	return m, nil
}

// sample runs one collect/analyze cycle. A failed cycle keeps showing
// the previous state; the error lands in the footer.
func (m *Model) sample() {
	snapshot, err := m.collector.Collect()
	if err != nil {
		m.log.Warn().Err(err).Msg("sampling cycle failed")
		m.lastErr = err
		return
	}
	m.lastErr = nil
	m.analyzer.Update(snapshot)
	m.state = m.analyzer.State()
	m.sortProcesses()
	m.clampScroll()
}

func (m *Model) sortProcesses() {
	procs := m.state.Processes
	switch m.sortMode {
	case SortPSS:
		sort.Slice(procs, func(i, j int) bool { return procs[i].PSSKB > procs[j].PSSKB })
	case SortRSS:
		sort.Slice(procs, func(i, j int) bool { return procs[i].RSSKB > procs[j].RSSKB })
	case SortShared:
		sort.Slice(procs, func(i, j int) bool { return procs[i].SharedKB > procs[j].SharedKB })
	case SortPID:
		sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	}
}

func (m *Model) clampScroll() {
	max := len(m.state.Processes) - m.visibleRows
	if max < 0 {
		max = 0
	}
	if m.scrollOffset > max {
		m.scrollOffset = max
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}
