package installer

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crafted-tech/provisioner"
	"github.com/crafted-tech/provisioner/catalog"
)

// Plan actions.
const (
	ActionFetch            = "fetch"
	ActionInstallBinary    = "install-binary"
	ActionInstallExtension = "install-extension"
	ActionInstallPackage   = "install-package"
	ActionStopService      = "stop-service"
	ActionSetService       = "set-service"
	ActionDeleteFile       = "delete-file"
	ActionEnsureDir        = "ensure-dir"
	ActionCopyFile         = "copy-file"
)

// Plan is an ordered list of provisioning actions read from YAML:
//
//	continueOnError: false
//	steps:
//	  - action: stop-service
//	    services: [wuauserv]
//	  - action: install-binary
//	    url: https://example.com/tool.msi
//	  - action: install-package
//	    package: git
//	    version: "2.44"
//	  - action: set-service
//	    service: wuauserv
//	    settings: {StartupType: Disabled}
//	    continueOnError: true
//
// String values expand ${VAR} references from the environment.
type Plan struct {
	ContinueOnError bool     `yaml:"continueOnError"`
	Steps           []Action `yaml:"steps"`
}

// Action is one plan entry. Which fields apply depends on Action.
type Action struct {
	Action          string            `yaml:"action"`
	Name            string            `yaml:"name,omitempty"` // Display name override
	URL             string            `yaml:"url,omitempty"`
	File            string            `yaml:"file,omitempty"` // Artifact file name
	Dir             string            `yaml:"dir,omitempty"`
	Path            string            `yaml:"path,omitempty"`
	Destination     string            `yaml:"destination,omitempty"`
	Args            []string          `yaml:"args,omitempty"`
	MaxRetries      int               `yaml:"maxRetries,omitempty"`
	SkipIfInstalled string            `yaml:"skipIfInstalled,omitempty"`
	VSVersion       string            `yaml:"vsVersion,omitempty"`
	Kind            string            `yaml:"kind,omitempty"`
	InstallOnly     bool              `yaml:"installOnly,omitempty"`
	Package         string            `yaml:"package,omitempty"`
	Version         string            `yaml:"version,omitempty"`
	Service         string            `yaml:"service,omitempty"`
	Services        []string          `yaml:"services,omitempty"`
	Strict          bool              `yaml:"strict,omitempty"`
	Settings        map[string]string `yaml:"settings,omitempty"`
	ContinueOnError *bool             `yaml:"continueOnError,omitempty"`
}

// LoadPlan reads a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes a plan and expands environment references.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	for i := range plan.Steps {
		plan.Steps[i].expand(os.Getenv)
	}
	return &plan, nil
}

// Build turns the plan actions into executable steps. The toolset is only needed by
// install-package actions and may be nil otherwise.
func (p *Plan) Build(prov *provisioner.Provisioner, toolset *catalog.Toolset) ([]Step, error) {
	steps := make([]Step, 0, len(p.Steps))
	for i, a := range p.Steps {
		step, err := a.step(prov, toolset)
		if err != nil {
			return nil, fmt.Errorf("plan step %d (%s): %w", i+1, a.Action, err)
		}
		if a.Name != "" {
			step.Name = a.Name
		}
		step.ContinueOnError = p.ContinueOnError
		if a.ContinueOnError != nil {
			step.ContinueOnError = *a.ContinueOnError
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (a Action) step(p *provisioner.Provisioner, toolset *catalog.Toolset) (Step, error) {
	switch strings.ToLower(a.Action) {
	case ActionFetch:
		if a.URL == "" {
			return Step{}, errMissing("url")
		}
		return StepFetch(p, provisioner.FetchRequest{URL: a.URL, Name: a.File, Dir: a.Dir, MaxRetries: a.MaxRetries}), nil

	case ActionInstallBinary:
		if a.URL == "" {
			return Step{}, errMissing("url")
		}
		msi := false
		switch strings.ToLower(a.Kind) {
		case "", "auto", "exe":
		case "msi":
			msi = true
		default:
			return Step{}, fmt.Errorf("unknown installer kind %q (known: exe, msi)", a.Kind)
		}
		return StepInstallBinary(p, provisioner.BinaryRequest{
			URL:             a.URL,
			Name:            a.File,
			Args:            a.Args,
			MSI:             msi,
			SkipIfInstalled: a.SkipIfInstalled,
		}), nil

	case ActionInstallExtension:
		if a.InstallOnly && a.Path == "" && a.File == "" {
			return Step{}, errMissing("path")
		}
		if !a.InstallOnly && a.URL == "" {
			return Step{}, errMissing("url")
		}
		kind, err := provisioner.ParseArtifactKind(a.Kind)
		if err != nil {
			return Step{}, err
		}
		return StepInstallExtension(p, provisioner.ExtensionRequest{
			URL:         a.URL,
			Name:        a.File,
			FilePath:    a.Path,
			VSVersion:   a.VSVersion,
			Kind:        kind,
			InstallOnly: a.InstallOnly,
		}), nil

	case ActionInstallPackage:
		if a.Package == "" {
			return Step{}, errMissing("package")
		}
		if toolset == nil {
			return Step{}, fmt.Errorf("no toolset loaded for package %s", a.Package)
		}
		return StepInstallPackage(p, toolset, a.Package, a.Version), nil

	case ActionStopService:
		names := a.serviceNames()
		if len(names) == 0 {
			return Step{}, errMissing("service")
		}
		return StepStopService(p, names, a.Strict), nil

	case ActionSetService:
		if a.Service == "" {
			return Step{}, errMissing("service")
		}
		if len(a.Settings) == 0 {
			return Step{}, errMissing("settings")
		}
		return StepSetService(p, a.Service, a.Settings), nil

	case ActionDeleteFile:
		if a.Path == "" {
			return Step{}, errMissing("path")
		}
		return StepDeleteFile(a.Path), nil

	case ActionEnsureDir:
		if a.Path == "" {
			return Step{}, errMissing("path")
		}
		return StepEnsureDir(a.Path), nil

	case ActionCopyFile:
		if a.Path == "" || a.Destination == "" {
			return Step{}, errMissing("path and destination")
		}
		return StepCopyFile(a.Path, a.Destination), nil

	case "":
		return Step{}, errMissing("action")
	default:
		return Step{}, fmt.Errorf("unknown action %q (known: %s)", a.Action, strings.Join(knownActions(), ", "))
	}
}

func (a Action) serviceNames() []string {
	names := append([]string(nil), a.Services...)
	if a.Service != "" {
		names = append([]string{a.Service}, names...)
	}
	return names
}

func (a *Action) expand(getenv func(string) string) {
	expand := func(s string) string { return os.Expand(s, getenv) }
	for _, s := range []*string{&a.Name, &a.URL, &a.File, &a.Dir, &a.Path, &a.Destination, &a.VSVersion, &a.Version, &a.Service} {
		*s = expand(*s)
	}
	for i := range a.Args {
		a.Args[i] = expand(a.Args[i])
	}
	for i := range a.Services {
		a.Services[i] = expand(a.Services[i])
	}
	for k, v := range a.Settings {
		a.Settings[k] = expand(v)
	}
}

func errMissing(field string) error {
	return fmt.Errorf("%s is required", field)
}

func knownActions() []string {
	actions := []string{
		ActionFetch, ActionInstallBinary, ActionInstallExtension, ActionInstallPackage,
		ActionStopService, ActionSetService, ActionDeleteFile, ActionEnsureDir, ActionCopyFile,
	}
	sort.Strings(actions)
	return actions
}
