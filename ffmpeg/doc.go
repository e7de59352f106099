// Package ffmpeg runs the commands mediapass synthesizes.
//
// An [Executor] either spawns the process (applying the configured
// [ProcessPolicy] right after start and streaming its output line by line)
// or, in simulate mode, only prints the command line. Failed processes are
// reported as [*ProcessError], which matches [ErrProcess].
package ffmpeg
