package provisioner

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// BinaryRequest describes an installer to download and run.
type BinaryRequest struct {
	URL  string
	Name string   // Artifact file name; defaults to the last segment of the URL path
	Args []string // Installer arguments; ignored for MSI packages
	MSI  bool     // Run through the installer engine whatever the file extension

	// SkipIfInstalled is an Add/Remove Programs display name. When a
	// matching product is already installed nothing is downloaded or run.
	SkipIfInstalled string
}

// msiArgs is the fixed silent argument list for package installs.
func msiArgs(filePath string) []string {
	return []string{"/i", filePath, "/QN", "/norestart"}
}

// InstallBinary downloads an installer and runs it.
//
// Packages with an .msi extension, or any package when req.MSI is set, run
// through the installer engine with
// {"/i", path, "/QN", "/norestart"} and any caller arguments are discarded.
// Other artifacts run directly with req.Args. Exit code 0 is a success and
// 3010 a success that needs a reboot. Any other code N is returned as an
// *ExitError with code N; a launch failure has code 1.
func (p *Provisioner) InstallBinary(req BinaryRequest) (Outcome, error) {
	if req.SkipIfInstalled != "" && p.cfg.FindInstalled != nil {
		app, err := p.cfg.FindInstalled(req.SkipIfInstalled)
		switch {
		case err != nil:
			p.log.Warn("Unable to check whether %s is installed: %v", req.SkipIfInstalled, err)
		case app != nil:
			p.log.Info("%s %s is already installed, skipping", app.DisplayName, app.DisplayVersion)
			return Outcome{Kind: OutcomeSuccess}, nil
		}
	}

	filePath, err := p.Fetch(FetchRequest{URL: req.URL, Name: req.Name})
	if err != nil {
		return Outcome{Kind: OutcomeFailure, Code: ExitCode(err)}, err
	}

	name := filepath.Base(filePath)
	target, args := filePath, req.Args
	if req.MSI || isMSI(name) {
		target, args = p.cfg.InstallerEngine, msiArgs(filePath)
	}

	p.log.Step("Starting Install %s...", name)
	start := time.Now()
	code, err := p.cfg.Runner.Run(target, args)
	elapsed := time.Since(start)
	p.log.Info("Installation took %.2f seconds", elapsed.Seconds())

	if err != nil {
		p.cfg.Metrics.RecordInstall("binary", "launch-failure", elapsed)
		p.log.Error("Failed to install the executable '%s': %v", filePath, err)
		return Outcome{Kind: OutcomeFailure, Code: 1},
			exitError("install-binary", 1, errors.Wrapf(ErrLaunchFailed, "%s: %v", target, err))
	}

	outcome := classify(code, binaryAccept)
	p.cfg.Metrics.RecordInstall("binary", outcome.Kind.String(), elapsed)

	switch outcome.Kind {
	case OutcomeSuccess:
		p.log.Info("Installation successful")
	case OutcomeRebootRequired:
		p.log.Info("Installation successful, a reboot is required (exit code %d)", code)
	default:
		p.log.Error("Non zero exit code returned by the installation process: %d", code)
		return outcome, exitError("install-binary", code,
			errors.Wrapf(ErrNonZeroExit, "%s exited with code %d", name, code))
	}
	return outcome, nil
}
