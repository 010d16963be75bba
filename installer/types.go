package installer

import "errors"

// ErrCancelled is returned when a run was interrupted between steps.
var ErrCancelled = errors.New("operation cancelled")

// StepResult represents the outcome of a step execution.
type StepResult struct {
	// Skip indicates the step was skipped (already done, not needed).
	// When Skip is true, the step is counted as successful.
	Skip bool

	// Info contains a success or informational message.
	// For skipped steps, this explains why it was skipped.
	Info string

	// Warning reports a contained failure. The step still counts as
	// successful; service operations use it for non-fatal errors.
	Warning string

	// RebootRequired is set when an installer asked for a reboot.
	RebootRequired bool

	// Err contains the error if the step failed.
	// A nil Err indicates success (or skip if Skip is true).
	Err error
}

// Success creates a successful StepResult with an optional info message.
func Success(info string) StepResult {
	return StepResult{Info: info}
}

// Skipped creates a StepResult indicating the step was skipped.
func Skipped(reason string) StepResult {
	return StepResult{Skip: true, Info: reason}
}

// Warned creates a successful StepResult carrying a non-fatal failure.
func Warned(warning string) StepResult {
	return StepResult{Warning: warning}
}

// Failed creates a StepResult with an error.
func Failed(err error) StepResult {
	return StepResult{Err: err}
}

// Step represents a named action to be executed during provisioning.
type Step struct {
	// Name is the display name for the step.
	Name string

	// Kind is the plan action the step was built from, e.g. "install-binary".
	Kind string

	// ContinueOnError keeps the run going when this step fails.
	// The first error is still returned at the end of the run.
	ContinueOnError bool

	// Action executes the step and returns the result.
	Action func() StepResult
}

// SimpleStep creates a Step from a simple function that returns error.
//
// Example:
//
//	installer.SimpleStep("Write marker", func() error {
//	    return os.WriteFile(marker, nil, 0o644)
//	})
func SimpleStep(name string, action func() error) Step {
	return Step{
		Name: name,
		Action: func() StepResult {
			if err := action(); err != nil {
				return Failed(err)
			}
			return Success("")
		},
	}
}
