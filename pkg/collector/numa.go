package collector

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/srodi/memlens/pkg/types"
)

// readNUMANodes enumerates <nodeRoot>/node<N>/meminfo. NUMA data is
// best-effort everywhere: a missing node root (single-socket host,
// sysfs not mounted) or an unreadable node yields fewer nodes, never an
// error.
func (c *Collector) readNUMANodes() []types.NUMANode {
	entries, err := readDir(c.nodeRoot)
	if err != nil {
		c.log.Debug().Err(err).Str("path", c.nodeRoot).Msg("numa enumeration unavailable")
		return nil
	}

	var nodes []types.NUMANode
	for _, entry := range entries {
		id, ok := parseNodeID(entry.Name())
		if !ok {
			continue
		}
		data, err := readFile(filepath.Join(c.nodeRoot, entry.Name(), "meminfo"))
		if err != nil {
			c.log.Debug().Err(err).Uint32("node", id).Msg("skipping unreadable numa node")
			continue
		}
		nodes = append(nodes, parseNodeMeminfo(id, string(data)))
	}

	// Directory order is unspecified; views and exports expect node 0 first.
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].NodeID < nodes[j].NodeID })
	return nodes
}

func parseNodeID(name string) (uint32, bool) {
	digits, ok := strings.CutPrefix(name, "node")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id), true
}

// parseNodeMeminfo reads per-node counters, whose lines look like
// "Node 0 MemTotal: 16314764 kB" - the value is the 4th field, keyed by
// substring because the label is not the first token.
func parseNodeMeminfo(id uint32, content string) types.NUMANode {
	node := types.NUMANode{NodeID: id}
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		value := parseKB(fields[3])
		switch {
		case strings.Contains(line, "MemTotal:"):
			node.MemTotalKB = value
		case strings.Contains(line, "MemFree:"):
			node.MemFreeKB = value
		case strings.Contains(line, "MemUsed:"):
			node.MemUsedKB = value
		}
	}
	if node.MemUsedKB == 0 && node.MemTotalKB >= node.MemFreeKB {
		node.MemUsedKB = node.MemTotalKB - node.MemFreeKB
	}
	return node
}
