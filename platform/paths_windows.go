//go:build windows

package platform

import (
	"os"

	"golang.org/x/sys/windows/registry"
)

const currentVersionKey = `SOFTWARE\Microsoft\Windows\CurrentVersion`

// ProgramFilesX86Path returns the path to the Program Files (x86) folder.
// Example: C:\Program Files (x86)
func ProgramFilesX86Path() string {
	if path := os.Getenv("ProgramFiles(x86)"); path != "" {
		return path
	}
	if path := registryString(currentVersionKey, "ProgramFilesDir (x86)"); path != "" {
		return path
	}
	return `C:\Program Files (x86)`
}

// ProgramFilesPath returns the path to the Program Files folder.
// Example: C:\Program Files
func ProgramFilesPath() string {
	if path := os.Getenv("ProgramFiles"); path != "" {
		return path
	}
	if path := registryString(currentVersionKey, "ProgramFilesDir"); path != "" {
		return path
	}
	return `C:\Program Files`
}

// registryString reads a string value under HKLM. Returns "" when missing.
func registryString(keyPath, name string) string {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer key.Close()

	val, _, err := key.GetStringValue(name)
	if err != nil {
		return ""
	}
	return val
}
