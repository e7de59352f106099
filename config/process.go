package config

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Priority is a scheduling class applied to spawned processes.
type Priority int

const (
	PriorityIdle Priority = iota
	PriorityBelowNormal
	PriorityNormal
	PriorityAboveNormal
	PriorityHigh
	PriorityRealTime
)

var priorityNames = map[string]Priority{
	"idle":        PriorityIdle,
	"belownormal": PriorityBelowNormal,
	"normal":      PriorityNormal,
	"abovenormal": PriorityAboveNormal,
	"high":        PriorityHigh,
	"realtime":    PriorityRealTime,
}

// ParsePriority parses a priority class name, case-insensitively.
// Empty means Normal.
func ParsePriority(name string) (Priority, error) {
	if name == "" {
		return PriorityNormal, nil
	}
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(name))
	p, ok := priorityNames[key]
	if !ok {
		return PriorityNormal, fmt.Errorf("invalid priority %q, must be one of: Idle, BelowNormal, Normal, AboveNormal, High, RealTime", name)
	}
	return p, nil
}

// Nice returns the Unix niceness for the priority class.
func (p Priority) Nice() int {
	switch p {
	case PriorityIdle:
		return 19
	case PriorityBelowNormal:
		return 10
	case PriorityAboveNormal:
		return -5
	case PriorityHigh:
		return -10
	case PriorityRealTime:
		return -20
	default:
		return 0
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityIdle:
		return "Idle"
	case PriorityBelowNormal:
		return "BelowNormal"
	case PriorityAboveNormal:
		return "AboveNormal"
	case PriorityHigh:
		return "High"
	case PriorityRealTime:
		return "RealTime"
	default:
		return "Normal"
	}
}

// ParseAffinity parses a CPU affinity mask. "0b1010" is a literal bit mask
// (bit 0 = core 0); a plain number N selects the first N cores. Empty
// returns 0, meaning no restriction.
func ParseAffinity(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0b"); ok {
		mask, err := strconv.ParseUint(rest, 2, 64)
		if err != nil || mask == 0 {
			return 0, fmt.Errorf("invalid affinity mask %q", s)
		}
		return mask, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 64 {
		return 0, fmt.Errorf("invalid affinity %q: expected 0b mask or core count 1-64", s)
	}
	if n == 64 {
		return ^uint64(0), nil
	}
	return (uint64(1) << n) - 1, nil
}

// AffinityCores lists the core indexes set in mask.
func AffinityCores(mask uint64) []int {
	cores := make([]int, 0, bits.OnesCount64(mask))
	for i := 0; i < 64; i++ {
		if mask&(1<<i) != 0 {
			cores = append(cores, i)
		}
	}
	return cores
}
