// Package command provides the ordered argument model and the Pass type used
// to describe every external process invocation mediapass produces.
//
// All runnable units (ffmpeg passes, the external ssimulacra2 tool) implement
// the Command interface, so the orchestrator and executor can process them
// without knowing how they were assembled.
package command

// Copy is the encoder value that copies a stream untouched.
const Copy = "copy"

// TaskType represents the role a command plays inside a pipeline.
type TaskType string

const (
	TaskTypeEncode    TaskType = "encode"     // Main transcode
	TaskTypeFirstPass TaskType = "first-pass" // Rate-control statistics pass
	TaskTypeLoudness  TaskType = "loudness"   // Loudness analysis pass
	TaskTypeCompare   TaskType = "compare"    // Quality comparison
)

// Command represents an external invocation that can be materialized,
// executed by an executor, or previewed.
//
// Example usage:
//
//	pass := command.NewPass("ffmpeg", command.TaskTypeEncode)
//	pass.Global.Add("hide_banner")
//	pass.AddInput("input.mkv")
//	pass.Output.AddValue("c:v", "libvpx-vp9")
//	pass.Target = "output.webm"
//
//	// Preview the command
//	fmt.Println(pass.String())
type Command interface {
	// Executable returns the program that runs the command.
	Executable() string

	// BuildArgs constructs and returns the arguments as a slice.
	// The returned slice is suitable for exec.Command(cmd.Executable(), args...).
	//
	// Example return value:
	//   ["-hide_banner", "-i", "input.mkv", "-c:v", "libvpx-vp9", "output.webm"]
	BuildArgs() []string

	// String returns the command line as it would be typed in a shell.
	// Arguments containing spaces are single-quoted.
	String() string

	// GetTaskType returns the role of the command (encode, first-pass, ...).
	GetTaskType() TaskType

	// GetInputPath returns the primary input file path for this command.
	GetInputPath() string

	// GetOutputPath returns the output target for this command.
	GetOutputPath() string
}
