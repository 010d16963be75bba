package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/crafted-tech/provisioner"
	"github.com/crafted-tech/provisioner/installer"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
)

// summary collects step reports and prints one status line per step.
type summary struct {
	out     io.Writer
	reports []installer.StepReport
}

func newSummary(out io.Writer) *summary {
	return &summary{out: out}
}

func (s *summary) record(r installer.StepReport) {
	s.reports = append(s.reports, r)
}

func (s *summary) print() {
	var failed, reboot int
	for _, r := range s.reports {
		status, detail := stepStatus(r.Result)
		if r.Result.Err != nil {
			failed++
		}
		if r.Result.RebootRequired {
			reboot++
		}
		if detail != "" {
			_, _ = fmt.Fprintf(s.out, "%s %s: %s\n", status, r.Step.Name, detail)
		} else {
			_, _ = fmt.Fprintf(s.out, "%s %s\n", status, r.Step.Name)
		}
	}

	if len(s.reports) > 1 {
		line := fmt.Sprintf("%d steps, %d failed", len(s.reports), failed)
		if failed > 0 {
			_, _ = fmt.Fprintln(s.out, failColor.Sprint(line))
		} else {
			_, _ = fmt.Fprintln(s.out, okColor.Sprint(line))
		}
	}
	if reboot > 0 {
		_, _ = fmt.Fprintln(s.out, warnColor.Sprint("A reboot is required to complete the installation"))
	}
}

func stepStatus(r installer.StepResult) (status, detail string) {
	switch {
	case r.Err != nil:
		return failColor.Sprint("[FAIL]"), r.Err.Error()
	case r.Warning != "":
		return warnColor.Sprint("[WARN]"), r.Warning
	case r.Skip:
		return warnColor.Sprint("[SKIP]"), r.Info
	default:
		return okColor.Sprint("[ OK ]"), r.Info
	}
}

// printOutcome prints the result of a single install.
func printOutcome(out io.Writer, label string, outcome provisioner.Outcome, err error) {
	switch {
	case err != nil:
		_, _ = fmt.Fprintf(out, "%s %s: exit code %d\n", failColor.Sprint("[FAIL]"), label, provisioner.ExitCode(err))
	case outcome.Kind == provisioner.OutcomeRebootRequired:
		_, _ = fmt.Fprintf(out, "%s %s\n", okColor.Sprint("[ OK ]"), label)
		_, _ = fmt.Fprintln(out, warnColor.Sprint("A reboot is required to complete the installation"))
	case outcome.Code == provisioner.ExitAlreadyInstalled:
		_, _ = fmt.Fprintf(out, "%s %s: already installed\n", okColor.Sprint("[ OK ]"), label)
	default:
		_, _ = fmt.Fprintf(out, "%s %s\n", okColor.Sprint("[ OK ]"), label)
	}
}

// printServiceResults prints one line per service operation.
func printServiceResults(out io.Writer, results []provisioner.ServiceResult) {
	for _, r := range results {
		switch r.State {
		case provisioner.ServiceStopped, provisioner.ServiceApplied:
			_, _ = fmt.Fprintf(out, "%s %s: %s\n", okColor.Sprint("[ OK ]"), r.Name, r.State)
		case provisioner.ServiceAbsent:
			_, _ = fmt.Fprintf(out, "%s %s: not found\n", warnColor.Sprint("[SKIP]"), r.Name)
		default:
			_, _ = fmt.Fprintf(out, "%s %s: %s: %v\n", warnColor.Sprint("[WARN]"), r.Name, r.State, r.Err)
		}
	}
}
