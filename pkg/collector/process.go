package collector

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/srodi/memlens/pkg/types"
)

// readProcesses scans every numeric entry under procRoot and parses its
// smaps_rollup. Processes racing the scan (exited mid-pass) or hidden by
// permissions are dropped silently; only the listing itself failing is
// fatal.
func (c *Collector) readProcesses() ([]types.ProcessMemory, error) {
	entries, err := readDir(c.procRoot)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.procRoot, err)
	}

	var processes []types.ProcessMemory
	for _, entry := range entries {
		pid, err := strconv.ParseUint(entry.Name(), 10, 32)
		if err != nil {
			continue
		}
		data, err := readFile(filepath.Join(c.procRoot, entry.Name(), "smaps_rollup"))
		if err != nil {
			c.log.Debug().Err(err).Uint64("pid", pid).Msg("skipping unreadable process")
			continue
		}
		proc := parseSmapsRollup(uint32(pid), string(data))
		proc.Name = c.processName(uint32(pid))
		processes = append(processes, proc)
	}
	return processes, nil
}

func parseSmapsRollup(pid uint32, content string) types.ProcessMemory {
	mem := types.ProcessMemory{PID: pid}
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value := parseKB(fields[1])
		switch fields[0] {
		case "Rss:":
			mem.RSSKB = value
		case "Pss:":
			mem.PSSKB = value
		case "Shared_Clean:":
			mem.SharedCleanKB = value
		case "Shared_Dirty:":
			mem.SharedDirtyKB = value
		case "Private_Clean:":
			mem.PrivateCleanKB = value
		case "Private_Dirty:":
			mem.PrivateDirtyKB = value
		case "Swap:":
			mem.SwapKB = value
		}
	}
	return mem
}

// processName resolves the short command name, falling back to a
// bracketed pid when comm is unreadable or blank.
func (c *Collector) processName(pid uint32) string {
	path := filepath.Join(c.procRoot, strconv.FormatUint(uint64(pid), 10), "comm")
	data, err := readFile(path)
	if err != nil {
		return fmt.Sprintf("[%d]", pid)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return fmt.Sprintf("[%d]", pid)
	}
	return name
}
