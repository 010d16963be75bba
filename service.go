package provisioner

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/crafted-tech/provisioner/platform"
)

// ServiceOutcome is the state a service operation ended in.
type ServiceOutcome int

const (
	ServiceAbsent ServiceOutcome = iota
	ServiceStopped
	ServiceStopFailed
	ServiceApplied
	ServiceApplyFailed
)

func (s ServiceOutcome) String() string {
	switch s {
	case ServiceAbsent:
		return "absent"
	case ServiceStopped:
		return "stopped"
	case ServiceStopFailed:
		return "stop-failed"
	case ServiceApplied:
		return "applied"
	case ServiceApplyFailed:
		return "apply-failed"
	default:
		return "unknown"
	}
}

// ServiceResult reports a service operation. Err holds the contained,
// non-fatal failure for StopFailed and ApplyFailed, or the lookup error
// when a service was treated as absent for a reason other than not existing.
type ServiceResult struct {
	Name  string
	State ServiceOutcome
	Err   error
}

// StopService stops a service and waits for it to reach the stopped state.
//
// A missing service is logged as a warning. With strict set it is returned
// as an *ExitError with code 1 wrapping ErrServiceNotFound; otherwise the
// result is ServiceAbsent and the error is nil. Active dependent services are
// stopped first. Stop and wait failures are logged and reported as
// ServiceStopFailed, never as an error.
func (p *Provisioner) StopService(name string, strict bool) (ServiceResult, error) {
	result := ServiceResult{Name: name}

	svc, err := p.lookupService(name)
	if svc == nil {
		p.log.Warn("[!] Service [%s] is not found", name)
		result.State = ServiceAbsent
		result.Err = err
		p.cfg.Metrics.RecordServiceOperation("stop", result.State.String())
		if strict {
			return result, exitError("stop-service", 1, errors.Wrapf(ErrServiceNotFound, "%s", name))
		}
		return result, nil
	}
	defer svc.Close()

	p.log.Info("Try to stop service [%s]", name)
	if err := p.stopTree(svc, map[string]bool{}, time.Now().Add(p.cfg.StopTimeout)); err != nil {
		p.log.Error("[!] Failed to stop service [%s]: %v", name, err)
		result.State = ServiceStopFailed
		result.Err = err
	} else {
		p.log.Info("Service [%s] is stopped", name)
		result.State = ServiceStopped
	}
	p.cfg.Metrics.RecordServiceOperation("stop", result.State.String())
	return result, nil
}

// StopServices stops each named service in order. It returns at the first
// fatal error, which only occurs for a missing service in strict mode.
func (p *Provisioner) StopServices(names []string, strict bool) ([]ServiceResult, error) {
	results := make([]ServiceResult, 0, len(names))
	for _, name := range names {
		result, err := p.StopService(name, strict)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// SetServiceArguments applies configuration settings to a service.
//
// Keys are matched case-insensitively: StartupType (or StartType) with
// Automatic, AutomaticDelayedStart, Manual or Disabled; DisplayName;
// Description; StartName (or UserName); Password; BinaryPathName; and
// Status with Running or Stopped. An unknown key or value fails the whole
// apply before anything is changed. Failures are logged and reported in the
// result; this operation has no fatal outcome.
func (p *Provisioner) SetServiceArguments(name string, args map[string]string) ServiceResult {
	result := ServiceResult{Name: name}

	svc, err := p.lookupService(name)
	if svc == nil {
		p.log.Warn("[!] Service [%s] is not found", name)
		result.State = ServiceAbsent
		result.Err = err
		p.cfg.Metrics.RecordServiceOperation("configure", result.State.String())
		return result
	}
	defer svc.Close()

	p.log.Info("Set service [%s] arguments: %s", name, strings.Join(sortedKeys(args), ", "))
	if err := p.applyServiceArguments(svc, args); err != nil {
		p.log.Error("[!] Failed to set service [%s] arguments: %v", name, err)
		result.State = ServiceApplyFailed
		result.Err = err
	} else {
		result.State = ServiceApplied
	}
	p.cfg.Metrics.RecordServiceOperation("configure", result.State.String())
	return result
}

// lookupService resolves a service. A nil service means absent; the error
// is non-nil when the lookup failed for a reason other than not existing.
func (p *Provisioner) lookupService(name string) (platform.Service, error) {
	svc, err := p.cfg.OpenService(name)
	if err == nil {
		return svc, nil
	}
	if !errors.Is(err, platform.ErrNotInstalled) {
		p.log.Debug("Lookup of service [%s] failed: %v", name, err)
		return nil, err
	}
	return nil, nil
}

// stopTree stops the active dependents of svc, then svc itself. All waits
// in the tree share one deadline.
func (p *Provisioner) stopTree(svc platform.Service, seen map[string]bool, deadline time.Time) error {
	seen[strings.ToLower(svc.Name())] = true

	state, err := svc.State()
	if err != nil {
		return errors.Wrap(err, "query state")
	}
	if state == platform.StateStopped {
		return nil
	}

	dependents, err := svc.Dependents()
	if err != nil {
		return errors.Wrap(err, "list dependent services")
	}
	for _, name := range dependents {
		if seen[strings.ToLower(name)] {
			continue
		}
		dep, err := p.cfg.OpenService(name)
		if err != nil {
			if errors.Is(err, platform.ErrNotInstalled) {
				continue
			}
			return errors.Wrapf(err, "open dependent service %s", name)
		}
		p.log.Info("Stopping dependent service [%s]", name)
		err = p.stopTree(dep, seen, deadline)
		dep.Close()
		if err != nil {
			return errors.Wrapf(err, "stop dependent service %s", name)
		}
	}

	if state != platform.StateStopPending {
		if err := svc.Stop(); err != nil {
			return errors.Wrap(err, "send stop request")
		}
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return errors.Wrapf(platform.ErrServiceStateTimeout, "no time left to wait for %s", svc.Name())
	}
	return errors.Wrap(svc.WaitForState(platform.StateStopped, remaining), "wait for stopped state")
}

func (p *Provisioner) applyServiceArguments(svc platform.Service, args map[string]string) error {
	update, status, err := parseServiceArguments(args)
	if err != nil {
		return err
	}

	if !update.IsEmpty() {
		if err := svc.Update(update); err != nil {
			return errors.Wrap(err, "update configuration")
		}
	}

	switch status {
	case platform.StateRunning:
		state, err := svc.State()
		if err != nil {
			return errors.Wrap(err, "query state")
		}
		if state == platform.StateRunning {
			return nil
		}
		if err := svc.Start(); err != nil {
			return errors.Wrap(err, "start")
		}
		return errors.Wrap(svc.WaitForState(platform.StateRunning, p.cfg.StopTimeout), "wait for running state")
	case platform.StateStopped:
		return p.stopTree(svc, map[string]bool{}, time.Now().Add(p.cfg.StopTimeout))
	}
	return nil
}

// parseServiceArguments converts a settings map into a service update and
// an optional target run state (StateUnknown when unchanged).
func parseServiceArguments(args map[string]string) (platform.ServiceUpdate, platform.ServiceState, error) {
	var update platform.ServiceUpdate
	status := platform.StateUnknown

	for _, key := range sortedKeys(args) {
		value := args[key]
		switch strings.ToLower(key) {
		case "startuptype", "starttype":
			startType, err := parseStartType(value)
			if err != nil {
				return update, status, err
			}
			update.StartType = startType
		case "displayname":
			update.DisplayName = stringPtr(value)
		case "description":
			update.Description = stringPtr(value)
		case "startname", "username":
			update.StartName = stringPtr(value)
		case "password":
			update.Password = stringPtr(value)
		case "binarypathname":
			update.BinaryPath = stringPtr(value)
		case "status":
			switch strings.ToLower(value) {
			case "running":
				status = platform.StateRunning
			case "stopped":
				status = platform.StateStopped
			default:
				return update, status, errors.Errorf("unsupported Status %q", value)
			}
		default:
			return update, status, errors.Errorf("unsupported service argument %q", key)
		}
	}
	return update, status, nil
}

func parseStartType(value string) (platform.StartType, error) {
	switch strings.ToLower(value) {
	case "automatic", "auto":
		return platform.StartAutomatic, nil
	case "automaticdelayedstart":
		return platform.StartAutomaticDelayed, nil
	case "manual":
		return platform.StartManual, nil
	case "disabled":
		return platform.StartDisabled, nil
	default:
		return platform.StartUnchanged, errors.Errorf("unsupported StartupType %q", value)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringPtr(s string) *string {
	return &s
}
