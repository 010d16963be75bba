//go:build !windows

package platform

import "os/exec"

// Command builds an exec.Cmd for an installer.
func Command(path string, args []string) *exec.Cmd {
	return exec.Command(path, args...)
}

// InstallerEnginePath returns the name of the package installer engine.
// Outside Windows it is resolved through PATH (for example msitools or wine).
func InstallerEnginePath() string {
	return "msiexec"
}
