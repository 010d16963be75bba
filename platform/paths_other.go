//go:build !windows

package platform

import "os"

// ProgramFilesX86Path returns the Program Files (x86) location.
// Outside Windows this is only meaningful under a compatibility layer, so the
// environment is honoured and the Windows default is returned otherwise.
func ProgramFilesX86Path() string {
	if path := os.Getenv("ProgramFiles(x86)"); path != "" {
		return path
	}
	return `C:\Program Files (x86)`
}

// ProgramFilesPath returns the Program Files location.
func ProgramFilesPath() string {
	if path := os.Getenv("ProgramFiles"); path != "" {
		return path
	}
	return `C:\Program Files`
}
