package analyzer

import (
	"github.com/srodi/memlens/pkg/types"
)

// State is the derived view of one snapshot: per-process rows with
// cycle-over-cycle PSS deltas, reconciled system totals, sharing stats,
// and a mutually-exclusive breakdown of physical memory.
type State struct {
	Processes    []ProcessStats
	System       SystemStats
	SharedMemory SharedMemoryStats
	NUMANodes    []types.NUMANode
	MemoryMap    MemoryMap
}

// ProcessStats is one process's memory picture plus the signed change in
// its PSS since the previous sample.
type ProcessStats struct {
	PID        uint32
	Name       string
	PSSKB      uint64
	RSSKB      uint64
	SharedKB   uint64
	PrivateKB  uint64
	SwapKB     uint64
	PSSDeltaKB int64
}

// SystemStats reconciles host-wide counters. UsedKB subtracts the
// kernel's MemAvailable estimate rather than MemFree, so reclaimable
// cache and buffers do not count as "used".
type SystemStats struct {
	TotalKB           uint64
	UsedKB            uint64
	AvailableKB       uint64
	CachedKB          uint64
	BuffersKB         uint64
	SwapTotalKB       uint64
	SwapUsedKB        uint64
	TotalProcessPSSKB uint64
	TotalProcessRSSKB uint64
}

// SharedMemoryStats sums the shared pages across all processes.
// SharingEfficiency is the percentage of aggregate RSS that the PSS
// apportionment removes, i.e. how much double-counting page sharing
// saves.
type SharedMemoryStats struct {
	TotalSharedKB      uint64
	TotalSharedCleanKB uint64
	TotalSharedDirtyKB uint64
	SharingEfficiency  float64
}

// MemoryMap splits total physical memory into categories that sum
// exactly to TotalKB. KernelKB is the residual after every measured
// category, not a counter the kernel reports. ProcessSharedKB is
// informational: shared pages already live inside the cache category,
// so adding it would double-count.
type MemoryMap struct {
	KernelKB         uint64
	ProcessPrivateKB uint64
	ProcessSharedKB  uint64
	CacheKB          uint64
	BuffersKB        uint64
	FreeKB           uint64
	SlabKB           uint64
	PageTablesKB     uint64
}

// Analyzer derives State from snapshots, remembering each pid's last PSS
// so the next State call can report deltas. It is owned by a single
// caller; Update and State alternate within one sampling cycle and need
// no locking.
type Analyzer struct {
	lastSnapshot *types.Snapshot
	history      map[uint32]uint64
}

func New() *Analyzer {
	return &Analyzer{history: make(map[uint32]uint64)}
}

// Update replaces the snapshot under analysis. No validation happens
// here; the collector already sanitized everything.
func (a *Analyzer) Update(snapshot types.Snapshot) {
	a.lastSnapshot = &snapshot
}

// State recomputes the derived view from the current snapshot. Before
// the first Update it returns an empty State so callers can render a
// baseline screen. Calling State advances the delta history: each pid's
// PSS is recorded for the next cycle, and pids absent from this snapshot
// are forgotten (a pid that vanishes and returns starts over at delta
// zero — pid reuse can hand a reused id a fresh baseline, which is an
// accepted limitation).
func (a *Analyzer) State() State {
	if a.lastSnapshot == nil {
		return State{}
	}
	snapshot := *a.lastSnapshot

	return State{
		Processes:    a.analyzeProcesses(snapshot.Processes),
		System:       analyzeSystem(snapshot.System, snapshot.Processes),
		SharedMemory: analyzeSharedMemory(snapshot.Processes),
		NUMANodes:    snapshot.NUMANodes,
		MemoryMap:    buildMemoryMap(snapshot.System, snapshot.Processes),
	}
}

func (a *Analyzer) analyzeProcesses(processes []types.ProcessMemory) []ProcessStats {
	stats := make([]ProcessStats, 0, len(processes))
	newHistory := make(map[uint32]uint64, len(processes))

	for _, proc := range processes {
		lastPSS, ok := a.history[proc.PID]
		if !ok {
			lastPSS = proc.PSSKB // first sighting, delta 0
		}
		stats = append(stats, ProcessStats{
			PID:        proc.PID,
			Name:       proc.Name,
			PSSKB:      proc.PSSKB,
			RSSKB:      proc.RSSKB,
			SharedKB:   proc.SharedCleanKB + proc.SharedDirtyKB,
			PrivateKB:  proc.PrivateCleanKB + proc.PrivateDirtyKB,
			SwapKB:     proc.SwapKB,
			PSSDeltaKB: int64(proc.PSSKB) - int64(lastPSS),
		})
		newHistory[proc.PID] = proc.PSSKB
	}

	// Wholesale replacement, not a merge: history always mirrors exactly
	// the last analyzed snapshot's process set.
	a.history = newHistory
	return stats
}

func analyzeSystem(system types.SystemMemory, processes []types.ProcessMemory) SystemStats {
	var totalPSS, totalRSS uint64
	for _, proc := range processes {
		totalPSS += proc.PSSKB
		totalRSS += proc.RSSKB
	}

	return SystemStats{
		TotalKB:           system.TotalKB,
		UsedKB:            saturatingSub(system.TotalKB, system.AvailableKB),
		AvailableKB:       system.AvailableKB,
		CachedKB:          system.CachedKB,
		BuffersKB:         system.BuffersKB,
		SwapTotalKB:       system.SwapTotalKB,
		SwapUsedKB:        saturatingSub(system.SwapTotalKB, system.SwapFreeKB),
		TotalProcessPSSKB: totalPSS,
		TotalProcessRSSKB: totalRSS,
	}
}

func analyzeSharedMemory(processes []types.ProcessMemory) SharedMemoryStats {
	var stats SharedMemoryStats
	var totalRSS, totalPSS uint64
	for _, proc := range processes {
		stats.TotalSharedCleanKB += proc.SharedCleanKB
		stats.TotalSharedDirtyKB += proc.SharedDirtyKB
		totalRSS += proc.RSSKB
		totalPSS += proc.PSSKB
	}
	stats.TotalSharedKB = stats.TotalSharedCleanKB + stats.TotalSharedDirtyKB

	if totalRSS > 0 {
		stats.SharingEfficiency = (float64(totalRSS) - float64(totalPSS)) / float64(totalRSS) * 100.0
	}
	return stats
}

func buildMemoryMap(system types.SystemMemory, processes []types.ProcessMemory) MemoryMap {
	var totalPrivate, totalShared uint64
	for _, proc := range processes {
		totalPrivate += proc.PrivateCleanKB + proc.PrivateDirtyKB
		totalShared += proc.SharedCleanKB + proc.SharedDirtyKB
	}

	accounted := totalPrivate + system.CachedKB + system.BuffersKB +
		system.FreeKB + system.SlabKB + system.PageTablesKB

	return MemoryMap{
		// Clamps to 0 when the independently-sampled counters overshoot
		// the total; the skew is absorbed rather than surfaced.
		KernelKB:         saturatingSub(system.TotalKB, accounted),
		ProcessPrivateKB: totalPrivate,
		ProcessSharedKB:  totalShared,
		CacheKB:          system.CachedKB,
		BuffersKB:        system.BuffersKB,
		FreeKB:           system.FreeKB,
		SlabKB:           system.SlabKB,
		PageTablesKB:     system.PageTablesKB,
	}
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
