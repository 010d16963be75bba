package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOSVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "os-version",
		Short: "Print the operating system name and version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := osVersion()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Name:    %s\n", info.Name)
			_, _ = fmt.Fprintf(out, "Version: %s\n", info.Version)
			if release := info.Release(); release != "" {
				_, _ = fmt.Fprintf(out, "Release: %s\n", release)
			}
			_, _ = fmt.Fprintf(out, "Server:  %t\n", info.Server)
			return nil
		},
	}
}
