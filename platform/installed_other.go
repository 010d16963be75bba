//go:build !windows

package platform

// FindInstalledApp has no product inventory outside Windows and never matches.
func FindInstalledApp(displayName string) (*InstalledApp, error) {
	return nil, nil
}
