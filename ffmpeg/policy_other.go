//go:build !linux

package ffmpeg

// Apply is a no-op on platforms without PRIO_PROCESS and sched_setaffinity.
func (p ProcessPolicy) Apply(pid int) error {
	return nil
}
