//go:build !windows

package platform

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/host"
)

// OSVersion reports the running platform and its version.
func OSVersion() (OSInfo, error) {
	platform, family, version, err := host.PlatformInformation()
	if err != nil {
		return OSInfo{}, fmt.Errorf("read platform information: %w", err)
	}
	name := platform
	if family != "" && family != platform {
		name = fmt.Sprintf("%s (%s)", platform, family)
	}
	return OSInfo{Name: name, Version: version}, nil
}

// IsWindowsServer returns false on non-Windows.
func IsWindowsServer() bool {
	return false
}
