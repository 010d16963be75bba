/*
Package provisioner provides the primitives a build-agent image pipeline uses
to download installers, run them, and keep OS services out of the way while
they run.

# Basic Usage

Create a Provisioner and call the operations in the order the image needs:

	p := provisioner.New(
		provisioner.WithWorkDir(`D:\provision`),
		provisioner.WithVisualStudio("2022", "Enterprise"),
	)

	// Silent MSI install; caller arguments are replaced for .msi artifacts
	if _, err := p.InstallBinary(provisioner.BinaryRequest{
		URL: "https://example.com/tool.msi",
	}); err != nil {
		os.Exit(provisioner.ExitCode(err))
	}

	// VS extension; the downloaded .vsix is removed afterwards
	p.InstallExtension(provisioner.ExtensionRequest{
		URL:  "https://example.com/ext.vsix",
		Kind: provisioner.KindVSIX,
	})

	// Missing services only warn unless strict is set
	p.StopService("wuauserv", false)
	p.SetServiceArguments("wuauserv", map[string]string{"StartupType": "Disabled"})

# Failure Model

Every fatal condition is returned as an *ExitError carrying the process
status a pipeline expects: 1 for download exhaustion, launch failures,
extension failures and strict missing services, or the installer's own code
for binary installs. ExitCode maps any error to that status.

Service stop and reconfigure failures are never fatal. They are logged and
reported in ServiceResult.

# Outcomes

Exit code 3010 from a binary installer is a success that needs a reboot and
is reported as OutcomeRebootRequired. Exit code 1001 from an extension
installer means the extension was already installed and is reported as
OutcomeSuccess with the code preserved.
*/
package provisioner
