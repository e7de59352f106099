package ffmpeg

import (
	"fmt"

	"mediapass/config"
)

// ProcessPolicy is the scheduling applied to every spawned process.
type ProcessPolicy struct {
	Nice     int    // 0 keeps the inherited niceness
	Affinity uint64 // CPU bitmask, 0 keeps the inherited mask
}

// PolicyFromConfig converts the process settings into a policy.
func PolicyFromConfig(pc config.ProcessConfig) (ProcessPolicy, error) {
	priority, err := config.ParsePriority(pc.Priority)
	if err != nil {
		return ProcessPolicy{}, err
	}
	mask, err := config.ParseAffinity(pc.Affinity)
	if err != nil {
		return ProcessPolicy{}, err
	}
	return ProcessPolicy{Nice: priority.Nice(), Affinity: mask}, nil
}

// IsZero reports whether the policy changes nothing.
func (p ProcessPolicy) IsZero() bool {
	return p.Nice == 0 && p.Affinity == 0
}

func (p ProcessPolicy) String() string {
	if p.Affinity == 0 {
		return fmt.Sprintf("nice=%d", p.Nice)
	}
	return fmt.Sprintf("nice=%d cpus=%v", p.Nice, config.AffinityCores(p.Affinity))
}
