package provisioner

import (
	"io"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/crafted-tech/provisioner/platform"
)

// ProcessRunner launches an installer and waits for it to exit.
// A non-nil error means the process could not be started or waited on;
// a process that ran reports its exit code with a nil error.
type ProcessRunner interface {
	Run(path string, args []string) (int, error)
}

// ExecRunner runs installers as child processes.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts path with args and blocks until it exits.
func (r ExecRunner) Run(path string, args []string) (int, error) {
	cmd := platform.Command(path, args)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Start(); err != nil {
		return -1, errors.Wrapf(err, "start %s", path)
	}

	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, errors.Wrapf(err, "wait for %s", path)
	}
	return 0, nil
}
