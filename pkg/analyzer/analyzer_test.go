package analyzer

import (
	"math"
	"testing"

	"github.com/srodi/memlens/pkg/types"
)

func proc(pid uint32, pss, rss uint64) types.ProcessMemory {
	return types.ProcessMemory{PID: pid, Name: "proc", PSSKB: pss, RSSKB: rss}
}

func TestStateBeforeFirstSnapshotIsEmpty(t *testing.T) {
	state := New().State()
	if len(state.Processes) != 0 || len(state.NUMANodes) != 0 {
		t.Fatalf("expected empty state, got %+v", state)
	}
	if state.System.TotalKB != 0 || state.MemoryMap.KernelKB != 0 {
		t.Fatalf("expected zeroed stats, got %+v", state)
	}
	if state.SharedMemory.SharingEfficiency != 0 {
		t.Fatalf("expected zero efficiency, got %f", state.SharedMemory.SharingEfficiency)
	}
}

func TestProcessSharedPrivateSplit(t *testing.T) {
	a := New()
	a.Update(types.Snapshot{Processes: []types.ProcessMemory{{
		PID:            1,
		Name:           "init",
		RSSKB:          1000,
		PSSKB:          700,
		SharedCleanKB:  300,
		SharedDirtyKB:  100,
		PrivateCleanKB: 200,
		PrivateDirtyKB: 400,
		SwapKB:         50,
	}}})

	state := a.State()
	if len(state.Processes) != 1 {
		t.Fatalf("expected one process, got %d", len(state.Processes))
	}
	p := state.Processes[0]
	if p.SharedKB != 400 {
		t.Fatalf("expected shared 400, got %d", p.SharedKB)
	}
	if p.PrivateKB != 600 {
		t.Fatalf("expected private 600, got %d", p.PrivateKB)
	}
	if p.SwapKB != 50 {
		t.Fatalf("expected swap 50, got %d", p.SwapKB)
	}
}

func TestFirstObservationHasZeroDelta(t *testing.T) {
	a := New()
	a.Update(types.Snapshot{Processes: []types.ProcessMemory{proc(7, 4321, 5000)}})
	state := a.State()
	if state.Processes[0].PSSDeltaKB != 0 {
		t.Fatalf("first sighting must have delta 0, got %d", state.Processes[0].PSSDeltaKB)
	}
}

func TestDeltaTracksPSSAcrossCycles(t *testing.T) {
	a := New()

	a.Update(types.Snapshot{Processes: []types.ProcessMemory{proc(7, 1000, 1200)}})
	a.State()

	a.Update(types.Snapshot{Processes: []types.ProcessMemory{proc(7, 1500, 1600)}})
	if delta := a.State().Processes[0].PSSDeltaKB; delta != 500 {
		t.Fatalf("expected delta +500, got %d", delta)
	}

	a.Update(types.Snapshot{Processes: []types.ProcessMemory{proc(7, 800, 900)}})
	if delta := a.State().Processes[0].PSSDeltaKB; delta != -700 {
		t.Fatalf("expected delta -700, got %d", delta)
	}
}

func TestHistoryIsReplacedWholesale(t *testing.T) {
	a := New()

	// Cycle 1: pid 7 present.
	a.Update(types.Snapshot{Processes: []types.ProcessMemory{proc(7, 500, 600)}})
	a.State()

	// Cycle 2: pid 7 gone; its history entry must vanish with it.
	a.Update(types.Snapshot{Processes: []types.ProcessMemory{proc(8, 100, 100)}})
	a.State()
	if _, ok := a.history[7]; ok {
		t.Fatal("pid 7 should have been dropped from history")
	}

	// Cycle 3: pid 7 reappears and counts as first-seen.
	a.Update(types.Snapshot{Processes: []types.ProcessMemory{proc(7, 9000, 9000)}})
	state := a.State()
	if state.Processes[0].PSSDeltaKB != 0 {
		t.Fatalf("reappearing pid must reset its baseline, got delta %d", state.Processes[0].PSSDeltaKB)
	}
}

func TestSystemStats(t *testing.T) {
	a := New()
	a.Update(types.Snapshot{
		System: types.SystemMemory{
			TotalKB:     16000000,
			FreeKB:      4000000,
			AvailableKB: 9000000,
			SwapTotalKB: 2000000,
			SwapFreeKB:  1500000,
		},
		Processes: []types.ProcessMemory{proc(1, 1000, 1200), proc(2, 2000, 2500)},
	})

	sys := a.State().System
	if sys.UsedKB != 7000000 {
		t.Fatalf("used must be total-available, got %d", sys.UsedKB)
	}
	if sys.SwapUsedKB != 500000 {
		t.Fatalf("expected swap used 500000, got %d", sys.SwapUsedKB)
	}
	if sys.TotalProcessPSSKB != 3000 || sys.TotalProcessRSSKB != 3700 {
		t.Fatalf("unexpected process totals: %+v", sys)
	}
}

func TestSystemStatsSaturate(t *testing.T) {
	a := New()
	a.Update(types.Snapshot{System: types.SystemMemory{
		TotalKB:     100,
		AvailableKB: 200, // skewed reads can report available > total
		SwapTotalKB: 100,
		SwapFreeKB:  300,
	}})

	sys := a.State().System
	if sys.UsedKB != 0 {
		t.Fatalf("used must clamp to 0, got %d", sys.UsedKB)
	}
	if sys.SwapUsedKB != 0 {
		t.Fatalf("swap used must clamp to 0, got %d", sys.SwapUsedKB)
	}
}

func TestSharingEfficiency(t *testing.T) {
	a := New()
	a.Update(types.Snapshot{Processes: []types.ProcessMemory{
		proc(1, 1000, 1200),
		proc(2, 2000, 2500),
	}})

	shared := a.State().SharedMemory
	want := (3700.0 - 3000.0) / 3700.0 * 100.0
	if math.Abs(shared.SharingEfficiency-want) > 1e-9 {
		t.Fatalf("expected efficiency %.4f, got %.4f", want, shared.SharingEfficiency)
	}
}

func TestSharingEfficiencyZeroWhenNoResident(t *testing.T) {
	a := New()
	a.Update(types.Snapshot{Processes: []types.ProcessMemory{proc(1, 500, 0)}})
	if eff := a.State().SharedMemory.SharingEfficiency; eff != 0 {
		t.Fatalf("zero RSS must yield 0 efficiency, got %f", eff)
	}
}

func TestSharedMemoryTotals(t *testing.T) {
	a := New()
	a.Update(types.Snapshot{Processes: []types.ProcessMemory{
		{PID: 1, SharedCleanKB: 100, SharedDirtyKB: 20},
		{PID: 2, SharedCleanKB: 50, SharedDirtyKB: 30},
	}})

	shared := a.State().SharedMemory
	if shared.TotalSharedCleanKB != 150 || shared.TotalSharedDirtyKB != 50 {
		t.Fatalf("unexpected clean/dirty totals: %+v", shared)
	}
	if shared.TotalSharedKB != 200 {
		t.Fatalf("expected total shared 200, got %d", shared.TotalSharedKB)
	}
}

func TestMemoryMapSumsToTotal(t *testing.T) {
	a := New()
	a.Update(types.Snapshot{
		System: types.SystemMemory{
			TotalKB:      16000000,
			FreeKB:       4000000,
			CachedKB:     3000000,
			BuffersKB:    500000,
			SlabKB:       400000,
			PageTablesKB: 50000,
		},
		Processes: []types.ProcessMemory{
			{PID: 1, PrivateCleanKB: 1000000, PrivateDirtyKB: 2000000, SharedCleanKB: 700000},
		},
	})

	m := a.State().MemoryMap
	if m.ProcessPrivateKB != 3000000 {
		t.Fatalf("expected private 3000000, got %d", m.ProcessPrivateKB)
	}
	sum := m.KernelKB + m.ProcessPrivateKB + m.CacheKB + m.BuffersKB + m.FreeKB + m.SlabKB + m.PageTablesKB
	if sum != 16000000 {
		t.Fatalf("map categories must sum to total, got %d", sum)
	}
	// Shared is informational and excluded from the additive set.
	if m.ProcessSharedKB != 700000 {
		t.Fatalf("expected shared 700000, got %d", m.ProcessSharedKB)
	}
}

func TestMemoryMapKernelClampsToZero(t *testing.T) {
	a := New()
	a.Update(types.Snapshot{
		System: types.SystemMemory{
			TotalKB:  1000,
			FreeKB:   800,
			CachedKB: 800, // accounted sum exceeds total
		},
	})

	if kernel := a.State().MemoryMap.KernelKB; kernel != 0 {
		t.Fatalf("kernel residual must clamp to 0, got %d", kernel)
	}
}

func TestNUMANodesPassThrough(t *testing.T) {
	nodes := []types.NUMANode{
		{NodeID: 0, MemTotalKB: 100, MemFreeKB: 40, MemUsedKB: 60},
		{NodeID: 1, MemTotalKB: 100, MemFreeKB: 90, MemUsedKB: 10},
	}
	a := New()
	a.Update(types.Snapshot{NUMANodes: nodes})

	got := a.State().NUMANodes
	if len(got) != 2 || got[0] != nodes[0] || got[1] != nodes[1] {
		t.Fatalf("numa nodes must pass through unchanged: %+v", got)
	}
}
