package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crafted-tech/provisioner"
)

func newStopServiceCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "stop-service <name>...",
		Short: "Stop services and wait until they are stopped",
		Long: "Stop services in order. A missing service is a warning unless --strict is\n" +
			"set; failures to stop are reported but never change the exit status.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.prov.StopServices(args, strict)
			printServiceResults(cmd.OutOrStdout(), results)
			return err
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a service does not exist")
	return locked(cmd)
}

func newSetServiceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-service <name> <key=value>...",
		Short: "Change service settings (StartupType, DisplayName, Status, ...)",
		Long: "Change service settings. Keys: StartupType, DisplayName, Description,\n" +
			"StartName, Password, BinaryPathName, Status. Failures are reported but\n" +
			"never change the exit status.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := parseSettings(args[1:])
			if err != nil {
				return err
			}
			result := a.prov.SetServiceArguments(args[0], settings)
			printServiceResults(cmd.OutOrStdout(), []provisioner.ServiceResult{result})
			return nil
		},
	}
	return locked(cmd)
}

// parseSettings turns key=value arguments into a settings map.
func parseSettings(pairs []string) (map[string]string, error) {
	settings := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid setting %q, expected key=value", pair)
		}
		settings[key] = value
	}
	return settings, nil
}
