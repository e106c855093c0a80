package pipeline

import (
	"errors"
	"fmt"
)

// The state of a pipeline run.
type State uint8

const (
	Validating State = iota
	Normalizing
	Exporting
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case Normalizing:
		return "normalizing"
	case Exporting:
		return "exporting"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

var (
	ErrNormalizationFailed = errors.New("pipeline: normalization failed")
	ErrExportFailed        = errors.New("pipeline: export failed")
	ErrMissingIntermediate = errors.New("pipeline: normalization did not produce an intermediate scene")
	ErrNoExportScript      = errors.New("pipeline: no export script configured for category")
)

// ToolProcessError is returned when an authoring tool process fails. Err
// holds the cause reported by the tool if its diagnostic output could be
// parsed, or the raw process error otherwise.
type ToolProcessError struct {
	Stage    State
	ExitCode int
	Err      error
}

func (e *ToolProcessError) Error() string {
	return fmt.Sprintf("%s stage failed (exit status %d): %v", e.Stage, e.ExitCode, e.Err)
}

func (e *ToolProcessError) Unwrap() error { return e.Err }

func (e *ToolProcessError) Is(target error) bool {
	switch target {
	case ErrNormalizationFailed:
		return e.Stage == Normalizing
	case ErrExportFailed:
		return e.Stage == Exporting
	}
	return false
}
