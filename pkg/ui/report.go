package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/srodi/memlens/pkg/analyzer"
)

// WriteReport renders one AnalyzedState as a plain-text report, used by
// -once runs and whenever stdout is not a terminal.
func WriteReport(w io.Writer, state analyzer.State, topK int) {
	sys := state.System

	fmt.Fprintf(w, "memlens report | %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Memory:        %.1f / %.1f GiB (%.1f%%)\n",
		gib(sys.UsedKB), gib(sys.TotalKB), percent(sys.UsedKB, sys.TotalKB))
	fmt.Fprintf(w, "Available:     %.1f GiB\n", gib(sys.AvailableKB))
	fmt.Fprintf(w, "Cache/Buffers: %.1f GiB\n", gib(sys.CachedKB+sys.BuffersKB))
	fmt.Fprintf(w, "Swap:          %.1f / %.1f GiB (%.1f%%)\n",
		gib(sys.SwapUsedKB), gib(sys.SwapTotalKB), percent(sys.SwapUsedKB, sys.SwapTotalKB))
	fmt.Fprintf(w, "Process PSS:   %.1f GiB (accurate) | RSS: %.1f GiB (overcounted)\n",
		gib(sys.TotalProcessPSSKB), gib(sys.TotalProcessRSSKB))

	fmt.Fprintf(w, "\n[Memory Map]\n")
	writeMemoryMap(w, state)

	fmt.Fprintf(w, "\n[Shared Memory]\n")
	shared := state.SharedMemory
	fmt.Fprintf(w, "Total: %.1f GiB (clean %.1f, dirty %.1f) | Sharing efficiency: %.1f%%\n",
		gib(shared.TotalSharedKB), gib(shared.TotalSharedCleanKB),
		gib(shared.TotalSharedDirtyKB), shared.SharingEfficiency)

	if len(state.NUMANodes) > 0 {
		fmt.Fprintf(w, "\n[NUMA Nodes]\n")
		for _, node := range state.NUMANodes {
			fmt.Fprintf(w, "Node %d: %.1f / %.1f GiB (%.1f%%)\n",
				node.NodeID, gib(node.MemUsedKB), gib(node.MemTotalKB),
				percent(node.MemUsedKB, node.MemTotalKB))
		}
	}

	fmt.Fprintf(w, "\n[Top %d processes by PSS]\n", topK)
	writeProcessTable(w, state.Processes, topK)
}

func writeMemoryMap(w io.Writer, state analyzer.State) {
	mm := state.MemoryMap
	total := state.System.TotalKB
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
		fmt.Fprintf(w, "%-16s %7.1f GiB (%5.1f%%) %s\n",
			cat.label, gib(cat.kb), pct, strings.Repeat("#", int(pct/100.0*50.0)))
	}
}

func writeProcessTable(w io.Writer, processes []analyzer.ProcessStats, topK int) {
	rows := make([]analyzer.ProcessStats, len(processes))
	copy(rows, processes)
	sort.Slice(rows, func(i, j int) bool { return rows[i].PSSKB > rows[j].PSSKB })
	if topK > 0 && len(rows) > topK {
		rows = rows[:topK]
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "No readable processes (run as root for full coverage)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tNAME\tPSS(M)\tRSS(M)\tSHARED(M)\tPRIVATE(M)\tSWAP(M)\tDELTA(M)")
	for _, row := range rows {
		delta := "-"
		if row.PSSDeltaKB != 0 {
			delta = fmt.Sprintf("%+d", row.PSSDeltaKB/1024)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			row.PID, row.Name, row.PSSKB/1024, row.RSSKB/1024,
			row.SharedKB/1024, row.PrivateKB/1024, row.SwapKB/1024, delta)
	}
	tw.Flush()
}
