package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// The number of trailing stderr bytes kept for diagnostics.
const stderrTailSize = 4096

// A single authoring tool process invocation.
type Invocation struct {
	Stage  State
	Binary string
	Args   []string
}

func (inv Invocation) String() string {
	return fmt.Sprintf("%s %v", inv.Binary, inv.Args)
}

// Runner launches an authoring tool process and blocks until it exits.
// Cancelling ctx terminates the process.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExitError is returned by runners when the tool process exits with a
// nonzero status.
type ExitError struct {
	Code int

	// The trailing part of the process stderr output.
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("tool exited with status %d", e.Code)
}

// ExecRunner runs the tool as an OS subprocess. Process output is forwarded
// to Stdout and Stderr (os.Stderr if nil).
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (r *ExecRunner) Run(ctx context.Context, inv Invocation) error {
	stdout, stderr := r.Stdout, r.Stderr
	if stdout == nil {
		stdout = os.Stderr
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	tail := &tailBuffer{max: stderrTailSize}
	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args...)
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, tail)

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Stderr: tail.String()}
	}
	return err
}

// A writer that retains only the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
