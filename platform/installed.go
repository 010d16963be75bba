package platform

import "strings"

// InstalledApp is a product registered with the OS package inventory.
type InstalledApp struct {
	Key             string
	DisplayName     string
	DisplayVersion  string
	Publisher       string
	InstallLocation string
}

// MatchDisplayName reports whether an installed product name matches a
// pattern. The match is case-insensitive and a trailing "*" matches any suffix.
func MatchDisplayName(display, pattern string) bool {
	display = strings.ToLower(strings.TrimSpace(display))
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(display, prefix)
	}
	return display == pattern
}
