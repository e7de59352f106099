//go:build linux

package ffmpeg

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"mediapass/config"
)

// Apply sets the niceness and CPU affinity of the process pid.
func (p ProcessPolicy) Apply(pid int) error {
	var errs []error
	if p.Nice != 0 {
		if err := unix.Setpriority(unix.PRIO_PROCESS, pid, p.Nice); err != nil {
			errs = append(errs, fmt.Errorf("set priority %d: %w", p.Nice, err))
		}
	}
	if p.Affinity != 0 {
		var set unix.CPUSet
		set.Zero()
		for _, core := range config.AffinityCores(p.Affinity) {
			set.Set(core)
		}
		if err := unix.SchedSetaffinity(pid, &set); err != nil {
			errs = append(errs, fmt.Errorf("set affinity %#b: %w", p.Affinity, err))
		}
	}
	return errors.Join(errs...)
}
