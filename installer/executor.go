package installer

import (
	"context"
	"time"

	"github.com/crafted-tech/provisioner/logging"
	"github.com/crafted-tech/provisioner/metrics"
)

// StepReport is the result of one executed step.
type StepReport struct {
	Step     Step
	Result   StepResult
	Duration time.Duration
}

// Executor runs steps sequentially.
type Executor struct {
	Log     *logging.Logger   // nil disables logging
	Metrics *metrics.Recorder // nil disables metrics
	OnStep  func(StepReport)  // called after each executed step
}

// RunSteps executes steps sequentially with logging.
// Returns the first error encountered, or nil if all succeeded.
//
// Example:
//
//	steps := []installer.Step{
//	    installer.StepEnsureDir(workDir),
//	    installer.StepInstallBinary(p, provisioner.BinaryRequest{URL: gitURL}),
//	}
//	if err := installer.RunSteps(ctx, steps, log); err != nil {
//	    os.Exit(provisioner.ExitCode(err))
//	}
func RunSteps(ctx context.Context, steps []Step, log *logging.Logger) error {
	return Executor{Log: log}.Run(ctx, steps)
}

// Run executes steps in order. A failing step stops the run unless it is
// marked ContinueOnError. The context is checked between steps; a cancelled
// context stops the run with ErrCancelled.
func (e Executor) Run(ctx context.Context, steps []Step) error {
	log := e.Log
	var firstErr error
	failed := 0

	for i, step := range steps {
		if ctx.Err() != nil {
			log.Warn("Provisioning cancelled before step %d of %d", i+1, len(steps))
			if firstErr != nil {
				return firstErr
			}
			return ErrCancelled
		}

		log.Step("Starting: %s", step.Name)
		start := time.Now()
		result := step.Action()
		report := StepReport{Step: step, Result: result, Duration: time.Since(start)}

		e.Metrics.RecordStep(step.Kind, result.Err == nil)
		if e.OnStep != nil {
			e.OnStep(report)
		}

		if result.Err != nil {
			log.Error("Step '%s' failed: %v", step.Name, result.Err)
			failed++
			if firstErr == nil {
				firstErr = result.Err
			}
			if !step.ContinueOnError {
				return firstErr
			}
			continue
		}

		switch {
		case result.Warning != "":
			log.Warn("Step '%s' completed with warnings: %s", step.Name, result.Warning)
		case result.Skip && result.Info != "":
			log.Info("Step '%s' skipped: %s", step.Name, result.Info)
		case result.Skip:
			log.Info("Step '%s' skipped", step.Name)
		case result.Info != "":
			log.Info("Step '%s' completed: %s", step.Name, result.Info)
		default:
			log.Info("Step '%s' completed", step.Name)
		}
	}

	if firstErr != nil {
		log.Error("%d of %d steps failed", failed, len(steps))
		return firstErr
	}
	log.Info("All steps completed successfully")
	return nil
}
