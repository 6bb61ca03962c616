package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	switch m.viewMode {
	case ViewProcesses:
		b.WriteString(m.viewProcesses())
	case ViewMemoryMap:
		b.WriteString(m.viewMemoryMap())
	case ViewSharedMemory:
		b.WriteString(m.viewSharedMemory())
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m *Model) viewHeader() string {
	sys := m.state.System
	lines := []string{
		titleStyle.Render("System Memory"),
		fmt.Sprintf("%s %.1f / %.1f GiB (%.1f%%)",
			labelStyle.Render("Memory:"),
			gib(sys.UsedKB), gib(sys.TotalKB), percent(sys.UsedKB, sys.TotalKB)),
		fmt.Sprintf("%s %.1f GiB", labelStyle.Render("Available:"), gib(sys.AvailableKB)),
		fmt.Sprintf("%s %.1f GiB", labelStyle.Render("Cache/Buffers:"), gib(sys.CachedKB+sys.BuffersKB)),
		fmt.Sprintf("%s %.1f / %.1f GiB (%.1f%%)",
			labelStyle.Render("Swap:"),
			gib(sys.SwapUsedKB), gib(sys.SwapTotalKB), percent(sys.SwapUsedKB, sys.SwapTotalKB)),
		fmt.Sprintf("%s %.1f GiB (accurate) | RSS: %.1f GiB (overcounted)",
			labelStyle.Render("Process PSS:"),
			gib(sys.TotalProcessPSSKB), gib(sys.TotalProcessRSSKB)),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewProcesses() string {
	procs := m.state.Processes
	var b strings.Builder

	title := fmt.Sprintf("Processes (%d/%d) [Sort: %s]", min(m.scrollOffset, len(procs)), len(procs), m.sortMode)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%7s  %-24s %8s %8s %8s %8s %8s %8s",
		"PID", "NAME", "PSS", "RSS", "SHARED", "PRIVATE", "SWAP", "DELTA")))
	b.WriteString("\n")

	end := m.scrollOffset + m.visibleRows
	if end > len(procs) {
		end = len(procs)
	}
	for _, proc := range procs[m.scrollOffset:end] {
		delta := "-"
		if proc.PSSDeltaKB != 0 {
			delta = fmt.Sprintf("%+d M", proc.PSSDeltaKB/1024)
		}
		row := fmt.Sprintf("%7d  %-24s %6d M %6d M %6d M %6d M %6d M %8s",
			proc.PID, trim(proc.Name, 24),
			proc.PSSKB/1024, proc.RSSKB/1024, proc.SharedKB/1024,
			proc.PrivateKB/1024, proc.SwapKB/1024, delta)
		style := rowStyle
		if proc.PSSDeltaKB > 10240 || proc.PSSDeltaKB < -10240 {
			style = hotRowStyle
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewMemoryMap() string {
	mm := m.state.MemoryMap
	total := m.state.System.TotalKB
	var b strings.Builder

	b.WriteString(titleStyle.Render("Physical Memory Distribution"))
	b.WriteString("\n\n")

	categories := []struct {
		label string
		kb    uint64
	}{
		{"Kernel", mm.KernelKB},
		{"Process Private", mm.ProcessPrivateKB},
		{"Process Shared", mm.ProcessSharedKB},
		{"Page Cache", mm.CacheKB},
		{"Buffers", mm.BuffersKB},
		{"Slab", mm.SlabKB},
		{"Page Tables", mm.PageTablesKB},
		{"Free", mm.FreeKB},
	}
	for _, cat := range categories {
		pct := percent(cat.kb, total)
		bar := strings.Repeat("#", int(pct/100.0*50.0))
		b.WriteString(fmt.Sprintf("%s %7.1f GiB (%5.1f%%) %s\n",
			labelStyle.Render(fmt.Sprintf("%-16s", cat.label)),
			gib(cat.kb), pct, barStyle.Render(bar)))
	}

	b.WriteString(fmt.Sprintf("\n%s %.1f GiB\n", labelStyle.Render("Total:"), gib(total)))

	if len(m.state.NUMANodes) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("NUMA Nodes"))
		b.WriteString("\n")
		for _, node := range m.state.NUMANodes {
			b.WriteString(fmt.Sprintf("  Node %d: %.1f / %.1f GiB (%.1f%%)\n",
				node.NodeID, gib(node.MemUsedKB), gib(node.MemTotalKB),
				percent(node.MemUsedKB, node.MemTotalKB)))
		}
	}
	return b.String()
}

func (m *Model) viewSharedMemory() string {
	shared := m.state.SharedMemory
	var b strings.Builder

	b.WriteString(titleStyle.Render("Shared Memory Analysis"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %.1f GiB\n", labelStyle.Render("Total Shared Memory:"), gib(shared.TotalSharedKB)))
	b.WriteString(fmt.Sprintf("  %s %.1f GiB\n", labelStyle.Render("Clean:"), gib(shared.TotalSharedCleanKB)))
	b.WriteString(fmt.Sprintf("  %s %.1f GiB\n", labelStyle.Render("Dirty:"), gib(shared.TotalSharedDirtyKB)))
	b.WriteString(fmt.Sprintf("%s %.1f%%\n", labelStyle.Render("Sharing Efficiency:"), shared.SharingEfficiency))
	b.WriteString("\n")
	b.WriteString(rowStyle.Render("Memory saved by sharing pages across processes"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewFooter() string {
	nextView := map[ViewMode]string{
		ViewProcesses:    "map",
		ViewMemoryMap:    "shared",
		ViewSharedMemory: "process",
	}[m.viewMode]

	help := fmt.Sprintf("q: quit | n: next sort | v: %s view | up/down: scroll | pgup/pgdn: page", nextView)
	if m.lastErr != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render(fmt.Sprintf("last sample failed: %v (showing previous data)", m.lastErr)),
			footerStyle.Render(help))
	}
	return footerStyle.Render(help)
}

func gib(kb uint64) float64 {
	return float64(kb) / 1024.0 / 1024.0
}

func percent(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100.0
}

func trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
