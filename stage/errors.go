package stage

import (
	"errors"
	"fmt"
	"strings"
)

// Identifies the category invariant that a selection violated.
type SelectionErrorKind string

const (
	MissingContainer    SelectionErrorKind = "missing_container"
	NoSkeletonFound     SelectionErrorKind = "no_skeleton_found"
	AmbiguousSkeleton   SelectionErrorKind = "ambiguous_skeleton"
	NoMeshUnderSkeleton SelectionErrorKind = "no_mesh_under_skeleton"
	EmptyExportSet      SelectionErrorKind = "empty_export_set"
)

// Sentinels for use with errors.Is. They match any StructuralSelectionError
// of the same kind.
var (
	ErrMissingContainer    = &StructuralSelectionError{Kind: MissingContainer}
	ErrNoSkeletonFound     = &StructuralSelectionError{Kind: NoSkeletonFound}
	ErrAmbiguousSkeleton   = &StructuralSelectionError{Kind: AmbiguousSkeleton}
	ErrNoMeshUnderSkeleton = &StructuralSelectionError{Kind: NoMeshUnderSkeleton}
	ErrEmptyExportSet      = &StructuralSelectionError{Kind: EmptyExportSet}

	ErrInvariantViolation = &InvariantViolation{}
	ErrBadScriptArgs      = errors.New("stage: invalid script arguments")
	ErrUnknownScript      = errors.New("stage: unknown script")
)

// StructuralSelectionError is returned when a scene does not satisfy the
// structural requirements of its asset category. The scene must be fixed by
// the artist; retrying does not help.
type StructuralSelectionError struct {
	Kind   SelectionErrorKind
	Detail string
}

func (e *StructuralSelectionError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *StructuralSelectionError) Is(target error) bool {
	t, ok := target.(*StructuralSelectionError)
	return ok && t.Kind == e.Kind
}

// InvariantViolation signals a post-condition failure inside a stage. It
// indicates a defect rather than bad input.
type InvariantViolation struct {
	Object string
	Detail string
}

func (e *InvariantViolation) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("invariant violation: %s", e.Detail)
	}
	return fmt.Sprintf("invariant violation: object %q: %s", e.Object, e.Detail)
}

func (e *InvariantViolation) Is(target error) bool {
	_, ok := target.(*InvariantViolation)
	return ok
}

// Tool process exit codes.
const (
	ExitOK                  = 0
	ExitFailure             = 1
	ExitStructuralSelection = 3
	ExitInvariantViolation  = 4
)

const (
	diagnosticPrefix = "error["
	codeInvariant    = "invariant_violation"
	codeToolFailure  = "tool_failure"
)

// Map a stage error to a tool process exit code.
func ExitCode(err error) int {
	var (
		selErr *StructuralSelectionError
		invErr *InvariantViolation
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &selErr):
		return ExitStructuralSelection
	case errors.As(err, &invErr):
		return ExitInvariantViolation
	}
	return ExitFailure
}

// Format a stage error as the single diagnostic line that the tool emits as
// its last line on stderr: "error[<code>]: <message>".
func FormatDiagnostic(err error) string {
	var (
		selErr *StructuralSelectionError
		invErr *InvariantViolation
		code   = codeToolFailure
		msg    = err.Error()
	)
	switch {
	case errors.As(err, &selErr):
		code = string(selErr.Kind)
		msg = selErr.Detail
	case errors.As(err, &invErr):
		code = codeInvariant
		msg = invErr.Error()
	}
	return fmt.Sprintf("%s%s]: %s", diagnosticPrefix, code, strings.ReplaceAll(msg, "\n", " "))
}

// Scan captured tool output for the last diagnostic line and reconstruct the
// error it describes. Returns nil if the output contains no diagnostic.
func ParseDiagnostic(output string) error {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, diagnosticPrefix) {
			continue
		}

		end := strings.Index(line, "]: ")
		if end == -1 {
			continue
		}
		code := line[len(diagnosticPrefix):end]
		msg := line[end+3:]

		switch SelectionErrorKind(code) {
		case MissingContainer, NoSkeletonFound, AmbiguousSkeleton, NoMeshUnderSkeleton, EmptyExportSet:
			return &StructuralSelectionError{Kind: SelectionErrorKind(code), Detail: msg}
		}
		if code == codeInvariant {
			return &InvariantViolation{Detail: strings.TrimPrefix(msg, "invariant violation: ")}
		}
		return errors.New(msg)
	}
	return nil
}
