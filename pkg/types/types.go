package types

// Snapshot is one point-in-time reading of the host's physical memory,
// produced by the collector and never mutated afterwards.
type Snapshot struct {
	Processes []ProcessMemory
	System    SystemMemory
	NUMANodes []NUMANode
}

// ProcessMemory holds the smaps_rollup breakdown for a single PID. PIDs
// identify a process only within the snapshot they came from; the kernel
// reuses them.
type ProcessMemory struct {
	PID            uint32
	Name           string
	RSSKB          uint64
	PSSKB          uint64
	SharedCleanKB  uint64
	SharedDirtyKB  uint64
	PrivateCleanKB uint64
	PrivateDirtyKB uint64
	SwapKB         uint64
}

// SystemMemory mirrors the host-wide counters read from /proc/meminfo.
type SystemMemory struct {
	TotalKB      uint64
	FreeKB       uint64
	AvailableKB  uint64
	BuffersKB    uint64
	CachedKB     uint64
	SwapTotalKB  uint64
	SwapFreeKB   uint64
	SlabKB       uint64
	PageTablesKB uint64
}

// NUMANode carries one locality's counters. MemUsedKB falls back to
// total minus free when the kernel does not report it directly.
type NUMANode struct {
	NodeID     uint32
	MemTotalKB uint64
	MemFreeKB  uint64
	MemUsedKB  uint64
}
