package collector

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/srodi/memlens/pkg/types"
)

// readSystemMemory parses the host-wide counters from <procRoot>/meminfo.
// An unreadable meminfo is the one hard failure of a collection cycle.
func (c *Collector) readSystemMemory() (types.SystemMemory, error) {
	path := filepath.Join(c.procRoot, "meminfo")
	data, err := readFile(path)
	if err != nil {
		return types.SystemMemory{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return parseMeminfo(string(data)), nil
}

func parseMeminfo(content string) types.SystemMemory {
	var mem types.SystemMemory
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value := parseKB(fields[1])
		switch fields[0] {
		case "MemTotal:":
			mem.TotalKB = value
		case "MemFree:":
			mem.FreeKB = value
		case "MemAvailable:":
			mem.AvailableKB = value
		case "Buffers:":
			mem.BuffersKB = value
		case "Cached:":
			mem.CachedKB = value
		case "SwapTotal:":
			mem.SwapTotalKB = value
		case "SwapFree:":
			mem.SwapFreeKB = value
		case "Slab:":
			mem.SlabKB = value
		case "PageTables:":
			mem.PageTablesKB = value
		}
	}
	return mem
}

// parseKB resolves malformed value tokens to 0 instead of failing. The
// resulting zero is indistinguishable from a counter that truly reads 0.
func parseKB(token string) uint64 {
	value, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0
	}
	return value
}
