// Package catalog reads the image toolset: the static inventory of packages
// a build-agent image installs, with their download locations and installer
// arguments.
//
// A toolset is YAML or JSON:
//
//	visualStudio:
//	  version: "2022"
//	  edition: Enterprise
//	packages:
//	  - name: git
//	    version: 2.44.0
//	    url: https://github.com/git-for-windows/git/releases/download/v2.44.0.windows.1/Git-2.44.0-64-bit.exe
//	    args: [/VERYSILENT, /NORESTART]
//	    installedName: Git*
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrPackageNotFound is returned when no package matches a lookup.
var ErrPackageNotFound = errors.New("package not found in toolset")

// ImageFolderEnv names the image root that holds toolset.json.
const ImageFolderEnv = "IMAGE_FOLDER"

// Package kinds.
const (
	KindExe  = "exe"
	KindMSI  = "msi"
	KindVSIX = "vsix"
)

// Toolset is the parsed inventory file.
type Toolset struct {
	VisualStudio VisualStudio `yaml:"visualStudio" json:"visualStudio"`
	Packages     []Package    `yaml:"packages" json:"packages"`
}

// VisualStudio selects the IDE that extensions install into.
type VisualStudio struct {
	Version string `yaml:"version" json:"version"`
	Edition string `yaml:"edition" json:"edition"`
}

// Package is one installable artifact.
type Package struct {
	Name    string   `yaml:"name" json:"name"`
	Version string   `yaml:"version" json:"version"`
	URL     string   `yaml:"url" json:"url"`
	File    string   `yaml:"file,omitempty" json:"file,omitempty"` // Artifact name; defaults to the URL file name
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
	Kind    string   `yaml:"kind,omitempty" json:"kind,omitempty"` // exe, msi or vsix; derived from the file name when empty

	// InstalledName is the Add/Remove Programs display name used to
	// detect an existing installation. A trailing "*" matches any suffix.
	InstalledName string `yaml:"installedName,omitempty" json:"installedName,omitempty"`
}

// ResolvedKind returns the package kind, deriving it from the artifact name
// when not set.
func (p Package) ResolvedKind() string {
	if p.Kind != "" {
		return strings.ToLower(p.Kind)
	}
	name := p.File
	if name == "" {
		name = p.URL
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".msi":
		return KindMSI
	case ".vsix":
		return KindVSIX
	default:
		return KindExe
	}
}

// Locate returns the toolset path to use: explicit when set, otherwise
// toolset.json under $IMAGE_FOLDER, otherwise "".
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if root := os.Getenv(ImageFolderEnv); root != "" {
		return filepath.Join(root, "toolset.json")
	}
	return ""
}

// Load reads and validates a toolset file.
func Load(path string) (*Toolset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read toolset: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates toolset content.
func Parse(data []byte) (*Toolset, error) {
	var t Toolset
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse toolset: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that every package can be installed.
func (t *Toolset) Validate() error {
	for i, p := range t.Packages {
		if p.Name == "" {
			return fmt.Errorf("package %d: name is required", i)
		}
		if p.URL == "" {
			return fmt.Errorf("package %s: url is required", p.Name)
		}
		switch p.ResolvedKind() {
		case KindExe, KindMSI, KindVSIX:
		default:
			return fmt.Errorf("package %s: unknown kind %q", p.Name, p.Kind)
		}
	}
	return nil
}

// Lookup finds a package by name (case-insensitive) and version.
//
// An empty version or "latest" selects the highest version. Otherwise the
// highest version equal to it or under it as a dotted prefix is selected.
func (t *Toolset) Lookup(name, version string) (Package, error) {
	wantAny := version == "" || strings.EqualFold(version, "latest")

	var best Package
	found := false
	for _, p := range t.Packages {
		if !strings.EqualFold(p.Name, name) {
			continue
		}
		if !wantAny && !matchesVersion(p.Version, version) {
			continue
		}
		if !found || CompareVersions(p.Version, best.Version) > 0 {
			best = p
			found = true
		}
	}

	if !found {
		if wantAny {
			return Package{}, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
		}
		return Package{}, fmt.Errorf("%w: %s %s", ErrPackageNotFound, name, version)
	}
	return best, nil
}
