package catalog

import (
	"strconv"
	"strings"
)

// CompareVersions compares two dotted version strings.
// Returns:
//   - negative if v1 < v2
//   - zero if v1 == v2
//   - positive if v1 > v2
//
// Handles versions like "2.44.0", "3.12", "1.2.3-beta" and "v18.20.1".
// Non-numeric parts are ignored.
func CompareVersions(v1, v2 string) int {
	parts1 := parseVersion(v1)
	parts2 := parseVersion(v2)

	maxLen := max(len(parts1), len(parts2))
	for i := 0; i < maxLen; i++ {
		var p1, p2 int
		if i < len(parts1) {
			p1 = parts1[i]
		}
		if i < len(parts2) {
			p2 = parts2[i]
		}

		if p1 < p2 {
			return -1
		}
		if p1 > p2 {
			return 1
		}
	}

	return 0
}

// parseVersion extracts numeric parts from a version string.
// "1.2.3" -> [1, 2, 3]
// "1.2.3-beta" -> [1, 2, 3] (suffix ignored)
func parseVersion(v string) []int {
	v = strings.TrimPrefix(v, "v")
	v = strings.TrimPrefix(v, "V")

	parts := strings.Split(v, ".")
	result := make([]int, 0, len(parts))

	for _, part := range parts {
		// "3-beta" -> "3"
		if idx := strings.IndexAny(part, "-+_"); idx > 0 {
			part = part[:idx]
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		result = append(result, n)
	}

	return result
}

// matchesVersion reports whether version satisfies a requested version:
// the exact version, or any version under a dotted prefix ("2.44" matches
// "2.44.1" but not "2.441").
func matchesVersion(version, requested string) bool {
	return version == requested || strings.HasPrefix(version, requested+".")
}

// InstallAction is what installing a catalog version over an existing one does.
type InstallAction int

const (
	ActionFreshInstall InstallAction = iota
	ActionUpgrade
	ActionDowngrade
	ActionReinstall
)

// String returns the action name.
func (a InstallAction) String() string {
	switch a {
	case ActionFreshInstall:
		return "Fresh Install"
	case ActionUpgrade:
		return "Upgrade"
	case ActionDowngrade:
		return "Downgrade"
	case ActionReinstall:
		return "Reinstall"
	default:
		return "Install"
	}
}

// DetermineAction determines the installation action based on versions.
func DetermineAction(existingVersion, newVersion string) InstallAction {
	if existingVersion == "" {
		return ActionFreshInstall
	}

	cmp := CompareVersions(newVersion, existingVersion)
	switch {
	case cmp > 0:
		return ActionUpgrade
	case cmp < 0:
		return ActionDowngrade
	default:
		return ActionReinstall
	}
}
