package installer

import (
	"fmt"
	"strings"

	"github.com/crafted-tech/provisioner"
	"github.com/crafted-tech/provisioner/catalog"
)

// StepFetch creates a Step that downloads an artifact.
func StepFetch(p *provisioner.Provisioner, req provisioner.FetchRequest) Step {
	return Step{
		Name: fmt.Sprintf("Download %s", displayName(req.Name, req.URL)),
		Kind: ActionFetch,
		Action: func() StepResult {
			path, err := p.Fetch(req)
			if err != nil {
				return Failed(err)
			}
			return Success(path)
		},
	}
}

// StepInstallBinary creates a Step that downloads and runs an installer.
func StepInstallBinary(p *provisioner.Provisioner, req provisioner.BinaryRequest) Step {
	return Step{
		Name: fmt.Sprintf("Install %s", displayName(req.Name, req.URL)),
		Kind: ActionInstallBinary,
		Action: func() StepResult {
			return outcomeResult(p.InstallBinary(req))
		},
	}
}

// StepInstallExtension creates a Step that installs a Visual Studio extension.
func StepInstallExtension(p *provisioner.Provisioner, req provisioner.ExtensionRequest) Step {
	name := req.Name
	if name == "" && req.FilePath != "" {
		name = req.FilePath
	}
	return Step{
		Name: fmt.Sprintf("Install extension %s", displayName(name, req.URL)),
		Kind: ActionInstallExtension,
		Action: func() StepResult {
			return outcomeResult(p.InstallExtension(req))
		},
	}
}

// StepInstallPackage creates a Step that installs a toolset package.
//
// When the package names an installed product and that product is present
// at the same or a newer version, the step is skipped.
func StepInstallPackage(p *provisioner.Provisioner, toolset *catalog.Toolset, name, version string) Step {
	label := name
	if version != "" {
		label = name + " " + version
	}
	return Step{
		Name: fmt.Sprintf("Install package %s", label),
		Kind: ActionInstallPackage,
		Action: func() StepResult {
			if toolset == nil {
				return Failed(fmt.Errorf("install package %s: no toolset loaded", name))
			}
			pkg, err := toolset.Lookup(name, version)
			if err != nil {
				return Failed(err)
			}

			if pkg.ResolvedKind() == catalog.KindVSIX {
				return outcomeResult(p.InstallExtension(provisioner.ExtensionRequest{
					URL:       pkg.URL,
					Name:      pkg.File,
					VSVersion: toolset.VisualStudio.Version,
					Kind:      provisioner.KindVSIX,
				}))
			}

			if find := p.Config().FindInstalled; pkg.InstalledName != "" && find != nil {
				app, err := find(pkg.InstalledName)
				if err != nil {
					p.Logger().Warn("Unable to check whether %s is installed: %v", pkg.InstalledName, err)
				} else if app != nil {
					action := catalog.DetermineAction(app.DisplayVersion, pkg.Version)
					if action != catalog.ActionUpgrade {
						return Skipped(strings.TrimSpace(fmt.Sprintf("%s %s", app.DisplayName, app.DisplayVersion)) + " already installed")
					}
					p.Logger().Info("%s: %s -> %s", action, app.DisplayVersion, pkg.Version)
				}
			}

			return outcomeResult(p.InstallBinary(provisioner.BinaryRequest{
				URL:  pkg.URL,
				Name: pkg.File,
				Args: pkg.Args,
				MSI:  pkg.ResolvedKind() == catalog.KindMSI,
			}))
		},
	}
}

func outcomeResult(outcome provisioner.Outcome, err error) StepResult {
	if err != nil {
		return Failed(err)
	}
	switch {
	case outcome.Kind == provisioner.OutcomeRebootRequired:
		return StepResult{Info: "reboot required", RebootRequired: true}
	case outcome.Code == provisioner.ExitAlreadyInstalled:
		return Success("already installed")
	default:
		return Success("")
	}
}

func displayName(name, url string) string {
	if name != "" {
		return name
	}
	return url
}
