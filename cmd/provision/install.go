package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crafted-tech/provisioner"
	"github.com/crafted-tech/provisioner/installer"
)

func newFetchCmd(a *app) *cobra.Command {
	var req provisioner.FetchRequest

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download an artifact with retries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.URL = args[0]
			path, err := a.prov.Fetch(req)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "File name to save as (default: last URL segment)")
	cmd.Flags().StringVar(&req.Dir, "dir", "", "Target directory (default: work directory)")
	return cmd
}

func newInstallCmd(a *app) *cobra.Command {
	var req provisioner.BinaryRequest

	cmd := &cobra.Command{
		Use:   "install <url>",
		Short: "Download and run an installer (MSI or executable)",
		Long: "Download and run an installer. MSI packages run through the installer engine\n" +
			"with /i <file> /QN /norestart. Exit codes 0 and 3010 are success; any other\n" +
			"code becomes the exit status of this command.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.URL = args[0]
			outcome, err := a.prov.InstallBinary(req)
			printOutcome(cmd.OutOrStdout(), installLabel(req.Name, req.URL), outcome, err)
			return err
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "File name to save as (default: last URL segment)")
	cmd.Flags().StringArrayVar(&req.Args, "arg", nil, "Installer argument (repeatable; ignored for MSI)")
	cmd.Flags().BoolVar(&req.MSI, "msi", false, "Treat the artifact as an MSI package whatever its extension")
	cmd.Flags().StringVar(&req.SkipIfInstalled, "skip-if-installed", "", "Skip when a product with this display name is installed")
	return locked(cmd)
}

func newInstallExtensionCmd(a *app) *cobra.Command {
	var (
		req  provisioner.ExtensionRequest
		kind string
	)

	cmd := &cobra.Command{
		Use:   "install-extension [url]",
		Short: "Install a Visual Studio extension (VSIX or executable)",
		Long: "Install a Visual Studio extension. Exit codes 0 and 1001 (already installed)\n" +
			"are success. The downloaded artifact is deleted after a successful install.",
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.URL = args[0]
			}
			if req.URL == "" && !req.InstallOnly {
				return fmt.Errorf("a URL is required unless --install-only is set")
			}
			k, err := provisioner.ParseArtifactKind(kind)
			if err != nil {
				return err
			}
			req.Kind = k

			outcome, err := a.prov.InstallExtension(req)
			label := installLabel(firstNonEmpty(req.Name, req.FilePath), req.URL)
			printOutcome(cmd.OutOrStdout(), label, outcome, err)
			return err
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Artifact file name (default: last URL segment)")
	cmd.Flags().StringVar(&req.FilePath, "file-path", "", "Existing artifact to install with --install-only")
	cmd.Flags().StringVar(&req.VSVersion, "vs-version", "", "Visual Studio version, e.g. 2022 (default: settings file, else toolset)")
	cmd.Flags().StringVar(&kind, "kind", "", "Artifact kind: vsix or exe (default: from the file name)")
	cmd.Flags().BoolVar(&req.InstallOnly, "install-only", false, "Skip the download and install an existing file")
	return withToolset(locked(cmd))
}

func newInstallPackageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install-package <name> [version]",
		Short: "Install a package from the toolset inventory",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.toolset == nil {
				return fmt.Errorf("no toolset found; pass --toolset or set IMAGE_FOLDER")
			}
			version := ""
			if len(args) == 2 {
				version = args[1]
			}
			step := installer.StepInstallPackage(a.prov, a.toolset, args[0], version)
			s := newSummary(cmd.OutOrStdout())
			result := step.Action()
			s.record(installer.StepReport{Step: step, Result: result})
			s.print()
			return result.Err
		},
	}
	return withToolset(locked(cmd))
}

func installLabel(name, url string) string {
	if name != "" {
		return name
	}
	return url
}
