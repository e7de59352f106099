// Package pipeline turns a configuration and the probed facts of a source
// file into the ffmpeg passes that convert it, and drives a batch of inputs
// through probing, loudness analysis, encoding and comparison.
//
// [Build] and [ChainTwoPass] are pure: they never spawn a process. [Runner]
// performs the side effects through an [ffmpeg.Executor].
package pipeline
