//go:build windows

package platform

import (
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// Command builds an exec.Cmd for an installer.
//
// The command line is assembled by hand so that arguments the caller already
// quoted (for example `"C:\path with spaces\ext.vsix"`) reach the installer
// unchanged instead of being escaped a second time.
func Command(path string, args []string) *exec.Cmd {
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: commandLine(path, args)}
	return cmd
}

func commandLine(path string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, syscall.EscapeArg(path))
	for _, arg := range args {
		if isQuoted(arg) {
			parts = append(parts, arg)
			continue
		}
		parts = append(parts, syscall.EscapeArg(arg))
	}
	return strings.Join(parts, " ")
}

func isQuoted(arg string) bool {
	return len(arg) >= 2 && strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`)
}

// InstallerEnginePath returns the full path to msiexec.exe.
func InstallerEnginePath() string {
	dir, err := windows.GetSystemDirectory()
	if err != nil || dir == "" {
		return "msiexec.exe"
	}
	return filepath.Join(dir, "msiexec.exe")
}
