package command

import "strings"

// PassInput is one declared input together with the options that precede
// its -i flag.
type PassInput struct {
	Path string
	Args *ArgList
}

// Pass is a single ffmpeg invocation: global flags, one argument list per
// input, an output argument list and an output target. A pass may name a
// prerequisite that must finish before it starts; the only chain ever built
// is first pass <- second pass.
type Pass struct {
	executable string
	kind       TaskType

	Global *ArgList
	inputs []PassInput
	Output *ArgList
	Target string

	Prerequisite *Pass
}

// NewPass creates an empty pass run by executable.
func NewPass(executable string, kind TaskType) *Pass {
	return &Pass{
		executable: executable,
		kind:       kind,
		Global:     NewArgList(),
		Output:     NewArgList(),
	}
}

// AddInput declares path as an input and returns its argument list. Adding an
// already declared path returns the existing list.
func (p *Pass) AddInput(path string) *ArgList {
	if args, ok := p.Input(path); ok {
		return args
	}
	args := NewArgList()
	p.inputs = append(p.inputs, PassInput{Path: path, Args: args})
	return args
}

// Input returns the argument list of a declared input.
func (p *Pass) Input(path string) (*ArgList, bool) {
	for _, in := range p.inputs {
		if in.Path == path {
			return in.Args, true
		}
	}
	return nil, false
}

// InputPaths returns the declared inputs in order.
func (p *Pass) InputPaths() []string {
	paths := make([]string, len(p.inputs))
	for i, in := range p.inputs {
		paths[i] = in.Path
	}
	return paths
}

// SetTaskType changes the role of the pass.
func (p *Pass) SetTaskType(kind TaskType) {
	p.kind = kind
}

// Clone deep-copies the pass. The prerequisite link is not copied.
func (p *Pass) Clone() *Pass {
	clone := &Pass{
		executable: p.executable,
		kind:       p.kind,
		Global:     p.Global.Clone(),
		Output:     p.Output.Clone(),
		Target:     p.Target,
	}
	for _, in := range p.inputs {
		clone.inputs = append(clone.inputs, PassInput{Path: in.Path, Args: in.Args.Clone()})
	}
	return clone
}

// Chain returns the passes in execution order: the prerequisite (if any)
// followed by p.
func (p *Pass) Chain() []*Pass {
	if p.Prerequisite == nil {
		return []*Pass{p}
	}
	return []*Pass{p.Prerequisite, p}
}

// Executable returns the program that runs the pass.
func (p *Pass) Executable() string {
	return p.executable
}

// BuildArgs materializes the pass: global flags, then for each input its
// options followed by -i, then output options and the target.
func (p *Pass) BuildArgs() []string {
	args := p.Global.Args()
	for _, in := range p.inputs {
		args = append(args, in.Args.Args()...)
		args = append(args, "-i", in.Path)
	}
	args = append(args, p.Output.Args()...)
	if p.Target != "" {
		args = append(args, p.Target)
	}
	return args
}

// String returns the shell-like rendering of the pass.
func (p *Pass) String() string {
	return FormatCommandLine(p.executable, p.BuildArgs())
}

// GetTaskType returns the role of the pass.
func (p *Pass) GetTaskType() TaskType {
	return p.kind
}

// GetInputPath returns the first declared input, or "" when there is none.
func (p *Pass) GetInputPath() string {
	if len(p.inputs) == 0 {
		return ""
	}
	return p.inputs[0].Path
}

// GetOutputPath returns the output target.
func (p *Pass) GetOutputPath() string {
	return p.Target
}

// FormatCommandLine joins an executable and its arguments, single-quoting any
// argument that contains whitespace.
func FormatCommandLine(executable string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(executable))
	for _, a := range args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if strings.ContainsAny(arg, " \t") {
		return "'" + arg + "'"
	}
	return arg
}
