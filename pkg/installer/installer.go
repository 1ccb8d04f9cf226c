// pkg/installer/installer.go - runs installer executables without a shell.

package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/windowsadmins/appstore/pkg/logging"
)

var (
	// ErrInstallFailed is matched by every *ExitError.
	ErrInstallFailed = errors.New("installer failed")
	// ErrTimedOut is returned when the installer outlived its deadline and was killed.
	ErrTimedOut = errors.New("installer timed out")
)

// ExitError reports an installer that ran but exited non-zero.
type ExitError struct {
	Code   int
	Stdout string
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("installer exited with code %d: %s", e.Code, e.Output())
}

func (e *ExitError) Unwrap() error { return ErrInstallFailed }

// Output returns the captured stderr followed by stdout, trimmed. Either
// stream may be empty.
func (e *ExitError) Output() string {
	stderr := strings.TrimSpace(e.Stderr)
	stdout := strings.TrimSpace(e.Stdout)
	switch {
	case stderr == "":
		return stdout
	case stdout == "":
		return stderr
	default:
		return stderr + "\n" + stdout
	}
}

// SplitArgs splits a silent-args string on whitespace. Quoting is not
// interpreted, so an argument cannot contain spaces.
func SplitArgs(args string) []string {
	return strings.Fields(args)
}

// Result is what a successful run captured.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes installers and waits for them to exit.
type Runner interface {
	Run(ctx context.Context, path string, args []string) (Result, error)
}

// ExecRunner runs installers as direct child processes.
type ExecRunner struct {
	// Timeout bounds a single run; zero means no limit beyond ctx.
	Timeout time.Duration
}

// NewExecRunner returns a Runner bounded by timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run starts path with args and blocks until it exits. A non-zero exit is
// returned as *ExitError carrying the code and captured output.
func (r *ExecRunner) Run(ctx context.Context, path string, args []string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, args...)
	hideWindow(cmd)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	logging.Debug("Running installer", "path", path, "args", args)
	start := time.Now()
	err := cmd.Run()
	res := Result{Stdout: out.String(), Stderr: stderr.String()}
	if err == nil {
		logging.Debug("Installer exited cleanly", "path", path, "duration", time.Since(start))
		return res, nil
	}

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%w after %s: %s", ErrTimedOut, time.Since(start).Round(time.Second), path)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, &ExitError{Code: exitErr.ExitCode(), Stdout: res.Stdout, Stderr: res.Stderr}
	}
	return res, fmt.Errorf("failed to start installer %s: %w", path, err)
}
