//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const uninstallKeyBase = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`

// uninstallRoots lists the Add/Remove Programs hives that are searched.
var uninstallRoots = []struct {
	root registry.Key
	path string
}{
	{registry.LOCAL_MACHINE, uninstallKeyBase},
	{registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.CURRENT_USER, uninstallKeyBase},
}

// FindInstalledApp looks up an installed product by display name in
// Add/Remove Programs. The match is case-insensitive and a trailing "*"
// matches any suffix. Returns nil if nothing matches.
func FindInstalledApp(displayName string) (*InstalledApp, error) {
	for _, hive := range uninstallRoots {
		app, err := findInHive(hive.root, hive.path, displayName)
		if err != nil {
			return nil, err
		}
		if app != nil {
			return app, nil
		}
	}
	return nil, nil
}

func findInHive(root registry.Key, path, displayName string) (*InstalledApp, error) {
	base, err := registry.OpenKey(root, path, registry.ENUMERATE_SUB_KEYS|registry.WOW64_64KEY)
	if err != nil {
		if err == registry.ErrNotExist {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer base.Close()

	names, err := base.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", path, err)
	}

	for _, name := range names {
		key, err := registry.OpenKey(base, name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		display, _, _ := key.GetStringValue("DisplayName")
		if display == "" || !MatchDisplayName(display, displayName) {
			key.Close()
			continue
		}
		app := &InstalledApp{Key: name, DisplayName: display}
		app.DisplayVersion, _, _ = key.GetStringValue("DisplayVersion")
		app.Publisher, _, _ = key.GetStringValue("Publisher")
		app.InstallLocation, _, _ = key.GetStringValue("InstallLocation")
		key.Close()
		return app, nil
	}
	return nil, nil
}
