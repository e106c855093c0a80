package pipeline

import (
	"github.com/achilleasa/artexport/stage"
)

const DefaultScriptFlag = "--script"

// ToolConfig describes how to invoke the authoring tool.
type ToolConfig struct {
	Binary string

	// Arguments placed before the invocation contract arguments.
	PrefixArgs []string

	// The flag that introduces the script path; "--script" if empty.
	ScriptFlag string

	NormalizeScript string
	ExportScripts   map[stage.Category]string
}

// Build the invocation `<binary> <prefix...> --background <scene> <flag> <script> -- <args...>`.
func (tc ToolConfig) Invocation(st State, scenePath, script string, args ...string) Invocation {
	flag := tc.ScriptFlag
	if flag == "" {
		flag = DefaultScriptFlag
	}

	argv := make([]string, 0, len(tc.PrefixArgs)+5+len(args))
	argv = append(argv, tc.PrefixArgs...)
	argv = append(argv, "--background", scenePath, flag, script, "--")
	argv = append(argv, args...)

	return Invocation{
		Stage:  st,
		Binary: tc.Binary,
		Args:   argv,
	}
}
