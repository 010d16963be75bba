package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "provision",
		Short:         "Provision build agents: download artifacts, run installers, control services",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.flags.configPath, "config", "", "Settings file (default $PROVISION_CONFIG or ~/.provision.toml)")
	flags.StringVar(&a.flags.workDir, "work-dir", "", "Directory for downloaded artifacts")
	flags.BoolVar(&a.flags.isolate, "isolate", false, "Use a fresh subdirectory of the work directory for this run")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.flags.logFile, "log-file", "", "Also append log lines to this file")
	flags.StringVar(&a.flags.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics here on exit")
	flags.StringVar(&a.flags.toolset, "toolset", "", "Toolset inventory (default $IMAGE_FOLDER/toolset.json)")
	flags.IntVar(&a.flags.maxRetries, "max-retries", 0, "Download attempts per artifact")
	flags.BoolVar(&a.flags.noLock, "no-lock", false, "Do not take the machine-wide run lock")

	cmd.AddCommand(
		newFetchCmd(a),
		newInstallCmd(a),
		newInstallExtensionCmd(a),
		newInstallPackageCmd(a),
		newStopServiceCmd(a),
		newSetServiceCmd(a),
		newRunCmd(a),
		newOSVersionCmd(a),
	)
	return cmd
}

// locked marks a command as needing the run lock.
func locked(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationLock] = "true"
	return cmd
}

// withToolset marks a command as reading the toolset inventory.
func withToolset(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationToolset] = "true"
	return cmd
}
