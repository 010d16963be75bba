// Package platform wraps the operating system facilities a provisioning run
// depends on.
//
// Windows is the primary target. Linux is supported for service control
// through systemctl so plans can be exercised on build hosts; other
// platforms report ErrServiceUnsupported.
//
// # Features
//
//   - Services: look up, stop, wait for and reconfigure OS services
//   - Process: launch installers with pre-quoted arguments preserved
//   - Paths: Program Files locations used by Visual Studio tooling
//   - Inventory: find products registered in Add/Remove Programs
//   - OS version: edition and build via WMI, or gopsutil elsewhere
//   - Elevation: detect administrator or root privileges
//   - Run lock: keep concurrent provisioning runs from overlapping
//
// # Example Usage
//
//	svc, err := platform.OpenService("wuauserv")
//	if errors.Is(err, platform.ErrNotInstalled) {
//	    return
//	}
//	defer svc.Close()
//
//	if err := svc.Stop(); err != nil {
//	    return err
//	}
//	return svc.WaitForState(platform.StateStopped, time.Minute)
package platform
