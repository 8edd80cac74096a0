package procfs

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CPUTimes is the aggregate line of /proc/stat.
type CPUTimes struct {
	Total int64 // all jiffies
	Idle  int64 // idle + iowait jiffies
	Cores int
}

// LoadAvg holds the 1, 5 and 15 minute load averages.
type LoadAvg [3]float64

// Memory is /proc/meminfo, in bytes.
type Memory struct {
	Total     int64
	Free      int64
	Available int64
	Buffers   int64
	Cached    int64
}

// Used is memory in use by processes: total minus free, buffers and cache.
func (m Memory) Used() int64 {
	return m.Total - m.Free - m.Buffers - m.Cached
}

// Interface is one /proc/net/dev line.
type Interface struct {
	Name      string
	RxBytes   int64
	TxBytes   int64
	RxPackets int64
	TxPackets int64
}

// Sample is one batched read, parsed.
type Sample struct {
	Time   time.Time
	CPU    CPUTimes
	Load   LoadAvg
	Memory Memory
	Net    []Interface
}

// NetTotals sums bytes across interfaces, skipping loopback.
func (s *Sample) NetTotals() (rx, tx int64) {
	for _, iface := range s.Net {
		if iface.Name == "lo" {
			continue
		}
		rx += iface.RxBytes
		tx += iface.TxBytes
	}
	return rx, tx
}

// Parse parses batched output taken at the given time.
func Parse(output string, at time.Time) (*Sample, error) {
	sections := SplitSections(output)
	if len(sections) < len(Files) {
		return nil, fmt.Errorf("expected %d sections, got %d", len(Files), len(sections))
	}

	sample := &Sample{Time: at}
	var err error

	if sample.CPU, err = ParseStat(sections[0]); err != nil {
		return nil, err
	}
	if sample.Load, err = ParseLoadAvg(sections[1]); err != nil {
		return nil, err
	}
	if sample.Memory, err = ParseMeminfo(sections[2]); err != nil {
		return nil, err
	}
	if sample.Net, err = ParseNetDev(sections[3]); err != nil {
		return nil, err
	}
	return sample, nil
}

// ParseStat parses the aggregate cpu line of /proc/stat and counts cores.
func ParseStat(procStat string) (CPUTimes, error) {
	var times CPUTimes
	found := false

	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		line := scanner.Text()

		// cpu0, cpu1, ...
		if strings.HasPrefix(line, "cpu") && len(line) > 3 && line[3] >= '0' && line[3] <= '9' {
			times.Cores++
			continue
		}

		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		// cpu user nice system idle iowait irq softirq steal guest guest_nice
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return CPUTimes{}, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}
		for i := 1; i < len(fields); i++ {
			val, err := strconv.ParseInt(fields[i], 10, 64)
			if err != nil {
				return CPUTimes{}, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
			}
			times.Total += val
			if i == 4 || i == 5 {
				times.Idle += val
			}
		}
		found = true
	}

	if err := scanner.Err(); err != nil {
		return CPUTimes{}, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if !found {
		return CPUTimes{}, fmt.Errorf("no aggregate cpu line in /proc/stat")
	}
	return times, nil
}

// ParseLoadAvg parses /proc/loadavg.
func ParseLoadAvg(procLoadavg string) (LoadAvg, error) {
	var load LoadAvg
	fields := strings.Fields(procLoadavg)
	if len(fields) < 3 {
		return load, fmt.Errorf("invalid /proc/loadavg: %q", procLoadavg)
	}
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return load, fmt.Errorf("failed to parse loadavg field %d: %w", i, err)
		}
		load[i] = val
	}
	return load, nil
}

// ParseMeminfo parses /proc/meminfo. Values there are kB.
func ParseMeminfo(procMeminfo string) (Memory, error) {
	var mem Memory
	found := 0

	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		val, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		val *= 1024

		switch strings.TrimSuffix(parts[0], ":") {
		case "MemTotal":
			mem.Total = val
		case "MemFree":
			mem.Free = val
		case "MemAvailable":
			mem.Available = val
		case "Buffers":
			mem.Buffers = val
		case "Cached":
			mem.Cached = val
		default:
			continue
		}
		found++
	}

	if err := scanner.Err(); err != nil {
		return Memory{}, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}
	if found < 3 {
		return Memory{}, fmt.Errorf("insufficient memory info found in /proc/meminfo")
	}
	return mem, nil
}

// ParseNetDev parses /proc/net/dev, skipping its two header lines.
func ParseNetDev(procNetDev string) ([]Interface, error) {
	var ifaces []Interface

	scanner := bufio.NewScanner(strings.NewReader(procNetDev))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum <= 2 {
			continue
		}

		// "  iface: bytes packets errs drop fifo frame compressed multicast | bytes packets..."
		name, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		fields := strings.Fields(rest)
		if len(fields) < 16 {
			continue
		}

		var vals [4]int64
		for i, idx := range []int{0, 1, 8, 9} {
			v, err := strconv.ParseInt(fields[idx], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse field %d for %s: %w", idx, name, err)
			}
			vals[i] = v
		}

		ifaces = append(ifaces, Interface{
			Name:      name,
			RxBytes:   vals[0],
			RxPackets: vals[1],
			TxBytes:   vals[2],
			TxPackets: vals[3],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/net/dev: %w", err)
	}
	return ifaces, nil
}
