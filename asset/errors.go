package asset

import (
	"errors"
	"fmt"
)

var (
	ErrPathNotUnderRoot = errors.New("asset: path not under root")
	ErrSourceMissing    = errors.New("asset: source file does not exist")
	ErrSourceNotFile    = errors.New("asset: source path is not a regular file")
)

// PathNotUnderRootError is returned by the path mapper when a path cannot be
// expressed relative to the tree root it is mapped from.
type PathNotUnderRootError struct {
	Path string
	Root string
}

func (e *PathNotUnderRootError) Error() string {
	return fmt.Sprintf("asset: path %q is not under root %q", e.Path, e.Root)
}

func (e *PathNotUnderRootError) Is(target error) bool {
	return target == ErrPathNotUnderRoot
}

// PathValidationError is returned when a source path fails validation.
type PathValidationError struct {
	Path string
	Err  error
}

func (e *PathValidationError) Error() string {
	return fmt.Sprintf("path %q: %v", e.Path, e.Err)
}

func (e *PathValidationError) Unwrap() error { return e.Err }
