package platform

import (
	"errors"
	"time"
)

// Service management errors.
var (
	ErrNotInstalled        = errors.New("service not installed")
	ErrUnsupportedSetting  = errors.New("service setting not supported on this platform")
	ErrServiceUnsupported  = errors.New("service control not supported on this platform")
	ErrServiceStateTimeout = errors.New("timeout waiting for service state")
)

// ServiceState is the run state reported by the OS service manager.
type ServiceState int

const (
	StateUnknown ServiceState = iota
	StateStopped
	StateStartPending
	StateStopPending
	StateRunning
	StateContinuePending
	StatePausePending
	StatePaused
)

func (s ServiceState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStartPending:
		return "starting"
	case StateStopPending:
		return "stopping"
	case StateRunning:
		return "running"
	case StateContinuePending:
		return "resuming"
	case StatePausePending:
		return "pausing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// StartType is the service start mode. StartUnchanged leaves it as is.
type StartType int

const (
	StartUnchanged StartType = iota
	StartAutomatic
	StartAutomaticDelayed
	StartManual
	StartDisabled
)

func (t StartType) String() string {
	switch t {
	case StartAutomatic:
		return "Automatic"
	case StartAutomaticDelayed:
		return "AutomaticDelayedStart"
	case StartManual:
		return "Manual"
	case StartDisabled:
		return "Disabled"
	default:
		return "Unchanged"
	}
}

// ServiceUpdate describes configuration changes. Nil fields are left unchanged.
type ServiceUpdate struct {
	StartType   StartType
	DisplayName *string
	Description *string
	StartName   *string // Account the service runs as
	Password    *string
	BinaryPath  *string
}

// IsEmpty reports whether the update changes nothing.
func (u ServiceUpdate) IsEmpty() bool {
	return u.StartType == StartUnchanged &&
		u.DisplayName == nil &&
		u.Description == nil &&
		u.StartName == nil &&
		u.Password == nil &&
		u.BinaryPath == nil
}

// Service is a live handle to an installed OS service.
// Handles are not cached; each lookup re-resolves the service from the OS.
type Service interface {
	Name() string
	State() (ServiceState, error)
	Start() error
	// Stop sends the stop request without waiting.
	Stop() error
	WaitForState(target ServiceState, timeout time.Duration) error
	// Dependents lists services that depend on this one and are active.
	Dependents() ([]string, error)
	Update(u ServiceUpdate) error
	Close() error
}

const statePollInterval = 500 * time.Millisecond

// pollState polls query until it reports target or the timeout elapses.
func pollState(query func() (ServiceState, error), target ServiceState, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(statePollInterval)
	defer ticker.Stop()

	for {
		state, err := query()
		if err != nil {
			return err
		}
		if state == target {
			return nil
		}
		if time.Now().After(deadline) {
			return &StateTimeoutError{Target: target, Last: state, Timeout: timeout}
		}
		<-ticker.C
	}
}

// StateTimeoutError reports a service that did not reach the target state in time.
type StateTimeoutError struct {
	Target  ServiceState
	Last    ServiceState
	Timeout time.Duration
}

func (e *StateTimeoutError) Error() string {
	return "timeout after " + e.Timeout.String() + " waiting for service state " +
		e.Target.String() + " (last state: " + e.Last.String() + ")"
}

func (e *StateTimeoutError) Unwrap() error {
	return ErrServiceStateTimeout
}
