//go:build linux

package platform

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// systemctlCommand is replaced in tests.
var systemctlCommand = func(args ...string) ([]byte, error) {
	return exec.Command("systemctl", args...).Output()
}

// systemdService drives a unit through systemctl.
type systemdService struct {
	name string
}

// OpenService looks up a systemd service by name.
// Returns ErrNotInstalled if the unit is not known to systemd.
func OpenService(name string) (Service, error) {
	out, err := systemctlCommand("show", "--property=LoadState", "--value", unitName(name))
	if err != nil {
		return nil, fmt.Errorf("query unit: %w", err)
	}
	if strings.TrimSpace(string(out)) == "not-found" {
		return nil, ErrNotInstalled
	}
	return &systemdService{name: name}, nil
}

func unitName(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".service"
}

func (s *systemdService) Name() string {
	return s.name
}

func (s *systemdService) State() (ServiceState, error) {
	out, err := systemctlCommand("show", "--property=ActiveState", "--value", unitName(s.name))
	if err != nil {
		return StateUnknown, fmt.Errorf("query service status: %w", err)
	}
	return parseActiveState(string(out)), nil
}

// parseActiveState maps systemd's ActiveState onto ServiceState.
func parseActiveState(raw string) ServiceState {
	switch strings.TrimSpace(raw) {
	case "active", "reloading":
		return StateRunning
	case "inactive", "failed":
		return StateStopped
	case "activating":
		return StateStartPending
	case "deactivating":
		return StateStopPending
	default:
		return StateUnknown
	}
}

func (s *systemdService) Start() error {
	if _, err := systemctlCommand("start", "--no-block", unitName(s.name)); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	return nil
}

func (s *systemdService) Stop() error {
	if _, err := systemctlCommand("stop", "--no-block", unitName(s.name)); err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	return nil
}

func (s *systemdService) WaitForState(target ServiceState, timeout time.Duration) error {
	return pollState(s.State, target, timeout)
}

// Dependents returns the active units that require this one.
func (s *systemdService) Dependents() ([]string, error) {
	out, err := systemctlCommand("show", "--property=RequiredBy", "--value", unitName(s.name))
	if err != nil {
		return nil, fmt.Errorf("list dependent services: %w", err)
	}

	var active []string
	for _, dep := range strings.Fields(string(out)) {
		state, err := (&systemdService{name: dep}).State()
		if err != nil {
			return nil, err
		}
		if state != StateStopped {
			active = append(active, dep)
		}
	}
	return active, nil
}

// Update only supports start-mode changes; systemd keeps the rest in unit files.
func (s *systemdService) Update(u ServiceUpdate) error {
	if u.DisplayName != nil || u.Description != nil || u.StartName != nil ||
		u.Password != nil || u.BinaryPath != nil {
		return ErrUnsupportedSetting
	}

	var args []string
	switch u.StartType {
	case StartUnchanged:
		return nil
	case StartAutomatic, StartAutomaticDelayed:
		args = []string{"enable", unitName(s.name)}
	case StartManual:
		args = []string{"disable", unitName(s.name)}
	case StartDisabled:
		args = []string{"mask", unitName(s.name)}
	}

	if _, err := systemctlCommand(args...); err != nil {
		return fmt.Errorf("set start type %s: %w", u.StartType, err)
	}
	return nil
}

func (s *systemdService) Close() error {
	return nil
}
