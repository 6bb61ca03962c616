package collector

import (
	"os"

	"github.com/phuslu/log"

	"github.com/srodi/memlens/pkg/logging"
	"github.com/srodi/memlens/pkg/types"
)

// readFile and readDir allow tests to stub the procfs/sysfs reads.
var (
	readFile = os.ReadFile
	readDir  = os.ReadDir
)

const (
	defaultProcRoot = "/proc"
	defaultNodeRoot = "/sys/devices/system/node"
)

// Collector assembles point-in-time memory snapshots from the kernel's
// procfs and sysfs text interfaces. It keeps no history; each Collect
// call stands alone.
type Collector struct {
	procRoot string
	nodeRoot string
	log      log.Logger
}

// New returns a collector bound to the given procfs and NUMA sysfs
// roots. Empty roots select the standard mount points; non-standard
// roots matter when the host's procfs is mounted elsewhere (containers).
func New(procRoot, nodeRoot string) *Collector {
	if procRoot == "" {
		procRoot = defaultProcRoot
	}
	if nodeRoot == "" {
		nodeRoot = defaultNodeRoot
	}
	return &Collector{
		procRoot: procRoot,
		nodeRoot: nodeRoot,
		log:      logging.Component("collector"),
	}
}

// Collect reads system counters, NUMA nodes, and per-process rollups, in
// that order. It fails only when meminfo or the process listing itself
// is unreadable; a single process or node that cannot be read is dropped
// from the snapshot instead.
func (c *Collector) Collect() (types.Snapshot, error) {
	system, err := c.readSystemMemory()
	if err != nil {
		return types.Snapshot{}, err
	}

	nodes := c.readNUMANodes()

	processes, err := c.readProcesses()
	if err != nil {
		return types.Snapshot{}, err
	}

	return types.Snapshot{
		Processes: processes,
		System:    system,
		NUMANodes: nodes,
	}, nil
}
