package installer

import (
	"fmt"
	"strings"

	"github.com/crafted-tech/provisioner"
)

// StepStopService creates a Step that stops services in order.
// Missing services are skipped unless strict is set; stop failures are
// reported as warnings and never fail the step.
func StepStopService(p *provisioner.Provisioner, names []string, strict bool) Step {
	return Step{
		Name: fmt.Sprintf("Stop %s service", strings.Join(names, ", ")),
		Kind: ActionStopService,
		Action: func() StepResult {
			results, err := p.StopServices(names, strict)
			if err != nil {
				return Failed(err)
			}
			return serviceResults(results)
		},
	}
}

// StepSetService creates a Step that reconfigures a service.
// This step never fails; problems are reported as warnings.
func StepSetService(p *provisioner.Provisioner, name string, settings map[string]string) Step {
	return Step{
		Name: fmt.Sprintf("Configure %s service", name),
		Kind: ActionSetService,
		Action: func() StepResult {
			return serviceResults([]provisioner.ServiceResult{p.SetServiceArguments(name, settings)})
		},
	}
}

func serviceResults(results []provisioner.ServiceResult) StepResult {
	var warnings, absent []string
	for _, r := range results {
		switch r.State {
		case provisioner.ServiceStopFailed, provisioner.ServiceApplyFailed:
			warnings = append(warnings, fmt.Sprintf("%s: %v", r.Name, r.Err))
		case provisioner.ServiceAbsent:
			absent = append(absent, r.Name)
		}
	}

	switch {
	case len(warnings) > 0:
		return Warned(strings.Join(warnings, "; "))
	case len(absent) == len(results) && len(results) > 0:
		return Skipped("not found")
	case len(absent) > 0:
		return Success(fmt.Sprintf("not found: %s", strings.Join(absent, ", ")))
	default:
		return Success("")
	}
}
