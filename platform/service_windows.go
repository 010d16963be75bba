//go:build windows

package platform

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

// windowsService wraps an SCM handle together with its manager connection.
type windowsService struct {
	name string
	m    *mgr.Mgr
	s    *mgr.Service
}

// OpenService looks up a Windows service by name.
// Returns ErrNotInstalled if the service doesn't exist.
func OpenService(name string) (Service, error) {
	m, err := mgr.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect to service manager: %w", err)
	}

	s, err := m.OpenService(name)
	if err != nil {
		m.Disconnect()
		if errors.Is(err, windows.ERROR_SERVICE_DOES_NOT_EXIST) {
			return nil, ErrNotInstalled
		}
		return nil, fmt.Errorf("open service: %w", err)
	}

	return &windowsService{name: name, m: m, s: s}, nil
}

func (w *windowsService) Name() string {
	return w.name
}

func (w *windowsService) State() (ServiceState, error) {
	status, err := w.s.Query()
	if err != nil {
		return StateUnknown, fmt.Errorf("query service status: %w", err)
	}
	return fromSvcState(status.State), nil
}

func (w *windowsService) Start() error {
	if err := w.s.Start(); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	return nil
}

func (w *windowsService) Stop() error {
	if _, err := w.s.Control(svc.Stop); err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	return nil
}

func (w *windowsService) WaitForState(target ServiceState, timeout time.Duration) error {
	return pollState(w.State, target, timeout)
}

func (w *windowsService) Dependents() ([]string, error) {
	names, err := w.s.ListDependentServices(svc.Active)
	if err != nil {
		return nil, fmt.Errorf("list dependent services: %w", err)
	}
	return names, nil
}

func (w *windowsService) Update(u ServiceUpdate) error {
	if u.IsEmpty() {
		return nil
	}

	cfg, err := w.s.Config()
	if err != nil {
		return fmt.Errorf("read service config: %w", err)
	}

	switch u.StartType {
	case StartAutomatic:
		cfg.StartType = mgr.StartAutomatic
		cfg.DelayedAutoStart = false
	case StartAutomaticDelayed:
		cfg.StartType = mgr.StartAutomatic
		cfg.DelayedAutoStart = true
	case StartManual:
		cfg.StartType = mgr.StartManual
		cfg.DelayedAutoStart = false
	case StartDisabled:
		cfg.StartType = mgr.StartDisabled
		cfg.DelayedAutoStart = false
	}
	if u.DisplayName != nil {
		cfg.DisplayName = *u.DisplayName
	}
	if u.Description != nil {
		cfg.Description = *u.Description
	}
	if u.StartName != nil {
		cfg.ServiceStartName = *u.StartName
	}
	if u.Password != nil {
		cfg.Password = *u.Password
	}
	if u.BinaryPath != nil {
		cfg.BinaryPathName = *u.BinaryPath
	}

	if err := w.s.UpdateConfig(cfg); err != nil {
		return fmt.Errorf("update service config: %w", err)
	}
	return nil
}

func (w *windowsService) Close() error {
	err := w.s.Close()
	w.m.Disconnect()
	return err
}

func fromSvcState(s svc.State) ServiceState {
	switch s {
	case svc.Stopped:
		return StateStopped
	case svc.StartPending:
		return StateStartPending
	case svc.StopPending:
		return StateStopPending
	case svc.Running:
		return StateRunning
	case svc.ContinuePending:
		return StateContinuePending
	case svc.PausePending:
		return StatePausePending
	case svc.Paused:
		return StatePaused
	default:
		return StateUnknown
	}
}
