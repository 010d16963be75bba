package platform

// OSInfo describes the running operating system.
type OSInfo struct {
	Name    string // e.g. "Microsoft Windows Server 2022 Datacenter"
	Version string // e.g. "10.0.20348"
	Build   uint32
	Server  bool
}

// Windows Server release builds.
var serverReleases = []struct {
	build   uint32
	release string
}{
	{26100, "2025"},
	{20348, "2022"},
	{17763, "2019"},
	{14393, "2016"},
}

// Release returns the short release name used by image pipelines:
// "2016", "2019", "2022" or "2025" for Windows Server, "10" or "11" for
// client Windows, and "" when the build is not a Windows build.
func (i OSInfo) Release() string {
	if i.Build == 0 {
		return ""
	}
	if i.Server {
		for _, r := range serverReleases {
			if i.Build >= r.build {
				return r.release
			}
		}
		return ""
	}
	if i.Build >= 22000 {
		return "11"
	}
	return "10"
}
