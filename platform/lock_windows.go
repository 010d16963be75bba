//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// AcquireRunLock takes a machine-wide named mutex so that only one
// provisioning run installs at a time. It returns ErrLockHeld when another
// run holds it.
func AcquireRunLock(name string) (release func(), err error) {
	// Global\ spans all sessions
	mutexName, err := windows.UTF16PtrFromString("Global\\" + name)
	if err != nil {
		return nil, fmt.Errorf("mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, mutexName)
	switch err {
	case nil:
		return func() { windows.CloseHandle(handle) }, nil
	case windows.ERROR_ALREADY_EXISTS, windows.ERROR_ACCESS_DENIED:
		// access denied: the mutex exists and belongs to another account
		if handle != 0 {
			windows.CloseHandle(handle)
		}
		return nil, ErrLockHeld
	default:
		if handle != 0 {
			windows.CloseHandle(handle)
		}
		return nil, fmt.Errorf("create mutex %s: %w", name, err)
	}
}
