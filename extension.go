package provisioner

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// ExtensionRequest describes a Visual Studio extension install.
type ExtensionRequest struct {
	URL       string
	Name      string // Artifact file name; defaults to the last segment of the URL path
	FilePath  string // Pre-staged artifact, used when InstallOnly is set
	VSVersion string // Visual Studio version, e.g. "2019"; defaults to the configured one
	Kind      ArtifactKind

	// InstallOnly skips the download and installs FilePath as given.
	// The file is not removed afterwards.
	InstallOnly bool
}

// vsixSilentArgs quotes the artifact path for VSIXInstaller.exe.
func vsixSilentArgs(filePath string) []string {
	return []string{"/quiet", `"` + filePath + `"`}
}

// InstallExtension installs a Visual Studio extension.
//
// VSIX artifacts run through the VSIXInstaller.exe of the requested Visual
// Studio version; other artifacts run directly with /Q. Exit codes 0 and
// 1001 (already installed) are successes. Any other code is returned as an
// *ExitError with code 1. A downloaded artifact is removed after a
// successful install and a removal failure is fatal.
func (p *Provisioner) InstallExtension(req ExtensionRequest) (Outcome, error) {
	filePath, err := p.extensionArtifact(req)
	if err != nil {
		return Outcome{Kind: OutcomeFailure, Code: 1}, err
	}

	name := req.Name
	if name == "" {
		name = filepath.Base(filePath)
	}

	kind := req.Kind
	if kind == KindUnknown {
		kind = KindFromName(name)
	}

	var target string
	var args []string
	switch kind {
	case KindVSIX:
		target, err = p.vsixInstallerPath(req.VSVersion)
		if err != nil {
			return Outcome{Kind: OutcomeFailure, Code: 1}, exitError("install-extension", 1, err)
		}
		args = vsixSilentArgs(filePath)
	default:
		target = filePath
		args = []string{"/Q"}
	}

	p.log.Step("Starting Install %s...", name)
	start := time.Now()
	code, err := p.cfg.Runner.Run(target, args)
	elapsed := time.Since(start)

	if err != nil {
		p.cfg.Metrics.RecordInstall("extension", "launch-failure", elapsed)
		p.log.Error("Failed to install the extension %s: %v", name, err)
		return Outcome{Kind: OutcomeFailure, Code: 1},
			exitError("install-extension", 1, errors.Wrapf(ErrLaunchFailed, "%s: %v", target, err))
	}

	outcome := classify(code, extensionAccept)
	p.cfg.Metrics.RecordInstall("extension", outcome.Kind.String(), elapsed)
	if !outcome.OK() {
		p.log.Error("Unsuccessful exit code returned by the installation process: %d", code)
		return outcome, exitError("install-extension", 1,
			errors.Wrapf(ErrNonZeroExit, "%s exited with code %d", name, code))
	}

	if code == ExitAlreadyInstalled {
		p.log.Info("Extension %s is already installed", name)
	} else {
		p.log.Info("Extension %s was installed successfully", name)
	}

	if !req.InstallOnly {
		if err := os.Remove(filePath); err != nil {
			p.log.Error("Failed to remove %s: %v", filePath, err)
			return outcome, exitError("install-extension", 1, errors.Wrapf(ErrCleanupFailed, "%v", err))
		}
	}
	return outcome, nil
}

// extensionArtifact downloads the artifact, or resolves the pre-staged one.
func (p *Provisioner) extensionArtifact(req ExtensionRequest) (string, error) {
	if !req.InstallOnly {
		return p.Fetch(FetchRequest{URL: req.URL, Name: req.Name})
	}
	switch {
	case req.FilePath != "":
		return req.FilePath, nil
	case req.Name != "":
		return filepath.Join(p.cfg.WorkDir, req.Name), nil
	default:
		return "", exitError("install-extension", 1,
			errors.Wrap(ErrLaunchFailed, "install-only requires a file path or name"))
	}
}

// vsixInstallerPath returns the VSIXInstaller.exe of a Visual Studio version.
func (p *Provisioner) vsixInstallerPath(version string) (string, error) {
	if version == "" {
		version = p.cfg.VSVersion
	}
	if version == "" {
		return "", errors.Wrap(ErrLaunchFailed, "no Visual Studio version configured")
	}
	return filepath.Join(p.cfg.VSInstallRoot, "Microsoft Visual Studio", version, p.cfg.VSEdition,
		"Common7", "IDE", "VSIXInstaller.exe"), nil
}
