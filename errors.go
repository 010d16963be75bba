package provisioner

import (
	"fmt"

	"github.com/pkg/errors"
)

// Failure categories. Match with errors.Is.
var (
	ErrDownloadExhausted = errors.New("download retries exhausted")
	ErrLaunchFailed      = errors.New("installer could not be started")
	ErrNonZeroExit       = errors.New("installer returned a failure exit code")
	ErrServiceNotFound   = errors.New("service not found")
	ErrCleanupFailed     = errors.New("artifact cleanup failed")
)

// ExitError is a fatal failure together with the process status a
// provisioning pipeline should exit with.
type ExitError struct {
	Op   string // Operation that failed, e.g. "install-binary"
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: exit status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %v (exit status %d)", e.Op, e.Err, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause see through an ExitError.
func (e *ExitError) Cause() error {
	return e.Err
}

// ExitCode returns the process status for err: 0 for nil, the carried code
// for an *ExitError, and 1 for anything else. Non-positive carried codes
// are reported as 1 so a failure never exits cleanly.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}

func exitError(op string, code int, err error) *ExitError {
	return &ExitError{Op: op, Code: code, Err: err}
}
