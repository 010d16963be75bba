package installer

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crafted-tech/provisioner"
	"github.com/crafted-tech/provisioner/logging"
	"github.com/crafted-tech/provisioner/metrics"
)

func countingStep(name string, counter *[]string, result StepResult) Step {
	return Step{
		Name: name,
		Kind: "test",
		Action: func() StepResult {
			*counter = append(*counter, name)
			return result
		},
	}
}

func TestRunStepsStopsAtFirstFailure(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	steps := []Step{
		countingStep("one", &ran, Success("")),
		countingStep("two", &ran, Failed(boom)),
		countingStep("three", &ran, Success("")),
	}

	err := RunSteps(context.Background(), steps, logging.Discard())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"one", "two"}, ran)
}

func TestRunStepsContinueOnError(t *testing.T) {
	var ran []string
	first := errors.New("first")
	second := Step{Name: "second", ContinueOnError: true, Action: func() StepResult {
		ran = append(ran, "second")
		return Failed(errors.New("second"))
	}}
	failing := countingStep("one", &ran, Failed(first))
	failing.ContinueOnError = true
	steps := []Step{failing, second, countingStep("three", &ran, Success(""))}

	log := logging.Discard()
	err := RunSteps(context.Background(), steps, log)
	assert.ErrorIs(t, err, first, "first error is returned")
	assert.Equal(t, []string{"one", "second", "three"}, ran)
	assert.Contains(t, log.Content(), "2 of 3 steps failed")
}

func TestRunStepsLogsOutcomes(t *testing.T) {
	var ran []string
	log := logging.Discard()
	steps := []Step{
		countingStep("skip", &ran, Skipped("already exists")),
		countingStep("warn", &ran, Warned("w: access denied")),
		countingStep("info", &ran, Success("C:\\temp\\a.exe")),
	}

	require.NoError(t, RunSteps(context.Background(), steps, log))
	content := log.Content()
	assert.Contains(t, content, "STEP: Starting: skip")
	assert.Contains(t, content, "Step 'skip' skipped: already exists")
	assert.Contains(t, content, "WARN: Step 'warn' completed with warnings: w: access denied")
	assert.Contains(t, content, `Step 'info' completed: C:\temp\a.exe`)
	assert.Contains(t, content, "All steps completed successfully")
}

func TestRunStepsCancelled(t *testing.T) {
	var ran []string
	ctx, cancel := context.WithCancel(context.Background())
	steps := []Step{
		{Name: "one", Action: func() StepResult {
			ran = append(ran, "one")
			cancel()
			return Success("")
		}},
		countingStep("two", &ran, Success("")),
	}

	err := RunSteps(ctx, steps, nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []string{"one"}, ran)
}

func TestExecutorReportsAndMetrics(t *testing.T) {
	var ran []string
	var reports []StepReport
	rec := metrics.NewRecorder()
	exec := Executor{
		Metrics: rec,
		OnStep:  func(r StepReport) { reports = append(reports, r) },
	}

	err := exec.Run(context.Background(), []Step{
		countingStep("a", &ran, StepResult{RebootRequired: true}),
		countingStep("b", &ran, Failed(&provisioner.ExitError{Op: "install-binary", Code: 1603})),
	})
	assert.Equal(t, 1603, provisioner.ExitCode(err))

	require.Len(t, reports, 2)
	assert.True(t, reports[0].Result.RebootRequired)
	assert.Error(t, reports[1].Result.Err)

	count, err := testutil.GatherAndCount(rec.Registry(), "provision_plan_steps_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
