package export

import (
	"sort"
	"strconv"
	"sync"

	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/srodi/memlens/pkg/analyzer"
	"github.com/srodi/memlens/pkg/logging"
	"github.com/srodi/memlens/pkg/types"
)

// Source produces one snapshot per call. Satisfied by *collector.Collector.
type Source interface {
	Collect() (types.Snapshot, error)
}

// Exporter implements prometheus.Collector. Each scrape drives one full
// collect/analyze cycle; the mutex serializes scrapes so the analyzer
// keeps its single-caller contract. A failed cycle re-exports the last
// good state with memlens_scrape_success set to 0.
type Exporter struct {
	mu       sync.Mutex
	source   Source
	analyzer *analyzer.Analyzer
	topN     int
	last     analyzer.State
	log      log.Logger

	systemDesc     *prometheus.Desc
	processSumDesc *prometheus.Desc
	sharedDesc     *prometheus.Desc
	efficiencyDesc *prometheus.Desc
	memoryMapDesc  *prometheus.Desc
	numaDesc       *prometheus.Desc
	processDesc    *prometheus.Desc
	successDesc    *prometheus.Desc
}

// New wires a snapshot source and an analyzer into a scrape-driven
// exporter. topN caps the per-process series count.
func New(source Source, a *analyzer.Analyzer, topN int) *Exporter {
	if topN <= 0 {
		topN = 1
	}
	return &Exporter{
		source:   source,
		analyzer: a,
		topN:     topN,
		log:      logging.Component("export"),
		systemDesc: prometheus.NewDesc(
			"memlens_system_memory_bytes",
			"System-wide memory counters by kind.",
			[]string{"kind"}, nil),
		processSumDesc: prometheus.NewDesc(
			"memlens_system_process_memory_bytes",
			"Aggregate process memory across all processes, by accounting method.",
			[]string{"method"}, nil),
		sharedDesc: prometheus.NewDesc(
			"memlens_shared_memory_bytes",
			"Aggregate shared memory across all processes, by page state.",
			[]string{"state"}, nil),
		efficiencyDesc: prometheus.NewDesc(
			"memlens_sharing_efficiency_ratio",
			"Fraction of aggregate RSS saved by proportional (PSS) accounting.",
			nil, nil),
		memoryMapDesc: prometheus.NewDesc(
			"memlens_memory_map_bytes",
			"Mutually exclusive breakdown of physical memory (process_shared is informational).",
			[]string{"category"}, nil),
		numaDesc: prometheus.NewDesc(
			"memlens_numa_node_memory_bytes",
			"Per NUMA node memory counters.",
			[]string{"node", "kind"}, nil),
		processDesc: prometheus.NewDesc(
			"memlens_process_memory_bytes",
			"Per-process memory for the top processes by PSS.",
			[]string{"pid", "name", "kind"}, nil),
		successDesc: prometheus.NewDesc(
			"memlens_scrape_success",
			"1 when the last collection cycle succeeded, 0 when it reused stale state.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.systemDesc
	ch <- e.processSumDesc
	ch <- e.sharedDesc
	ch <- e.efficiencyDesc
	ch <- e.memoryMapDesc
	ch <- e.numaDesc
	ch <- e.processDesc
	ch <- e.successDesc
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mu.Lock()
	defer e.mu.Unlock()

	success := 1.0
	snapshot, err := e.source.Collect()
	if err != nil {
		e.log.Warn().Err(err).Msg("collection cycle failed, exporting stale state")
		success = 0
	} else {
		e.analyzer.Update(snapshot)
		e.last = e.analyzer.State()
	}
	state := e.last

	gauge := func(desc *prometheus.Desc, value float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value, labels...)
	}
	kb := func(v uint64) float64 { return float64(v) * 1024 }

	gauge(e.systemDesc, kb(state.System.TotalKB), "total")
	gauge(e.systemDesc, kb(state.System.UsedKB), "used")
	gauge(e.systemDesc, kb(state.System.AvailableKB), "available")
	gauge(e.systemDesc, kb(state.System.CachedKB), "cached")
	gauge(e.systemDesc, kb(state.System.BuffersKB), "buffers")
	gauge(e.systemDesc, kb(state.System.SwapTotalKB), "swap_total")
	gauge(e.systemDesc, kb(state.System.SwapUsedKB), "swap_used")

	gauge(e.processSumDesc, kb(state.System.TotalProcessPSSKB), "pss")
	gauge(e.processSumDesc, kb(state.System.TotalProcessRSSKB), "rss")

	gauge(e.sharedDesc, kb(state.SharedMemory.TotalSharedCleanKB), "clean")
	gauge(e.sharedDesc, kb(state.SharedMemory.TotalSharedDirtyKB), "dirty")
	gauge(e.efficiencyDesc, state.SharedMemory.SharingEfficiency/100)

	gauge(e.memoryMapDesc, kb(state.MemoryMap.KernelKB), "kernel")
	gauge(e.memoryMapDesc, kb(state.MemoryMap.ProcessPrivateKB), "process_private")
	gauge(e.memoryMapDesc, kb(state.MemoryMap.ProcessSharedKB), "process_shared")
	gauge(e.memoryMapDesc, kb(state.MemoryMap.CacheKB), "cache")
	gauge(e.memoryMapDesc, kb(state.MemoryMap.BuffersKB), "buffers")
	gauge(e.memoryMapDesc, kb(state.MemoryMap.FreeKB), "free")
	gauge(e.memoryMapDesc, kb(state.MemoryMap.SlabKB), "slab")
	gauge(e.memoryMapDesc, kb(state.MemoryMap.PageTablesKB), "page_tables")

	for _, node := range state.NUMANodes {
		id := strconv.FormatUint(uint64(node.NodeID), 10)
		gauge(e.numaDesc, kb(node.MemTotalKB), id, "total")
		gauge(e.numaDesc, kb(node.MemFreeKB), id, "free")
		gauge(e.numaDesc, kb(node.MemUsedKB), id, "used")
	}

	for _, proc := range topByPSS(state.Processes, e.topN) {
		pid := strconv.FormatUint(uint64(proc.PID), 10)
		gauge(e.processDesc, kb(proc.PSSKB), pid, proc.Name, "pss")
		gauge(e.processDesc, kb(proc.RSSKB), pid, proc.Name, "rss")
		gauge(e.processDesc, kb(proc.SwapKB), pid, proc.Name, "swap")
	}

	gauge(e.successDesc, success)
}

func topByPSS(processes []analyzer.ProcessStats, n int) []analyzer.ProcessStats {
	top := make([]analyzer.ProcessStats, len(processes))
	copy(top, processes)
	sort.Slice(top, func(i, j int) bool { return top[i].PSSKB > top[j].PSSKB })
	if len(top) > n {
		top = top[:n]
	}
	return top
}
