package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crafted-tech/provisioner/installer"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Execute a provisioning plan",
		Long: "Execute the actions of a YAML plan in order. The run stops at the first\n" +
			"failing action unless it sets continueOnError; the first failure decides\n" +
			"the exit status.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := installer.LoadPlan(args[0])
			if err != nil {
				return err
			}
			steps, err := plan.Build(a.prov, a.toolset)
			if err != nil {
				return err
			}

			a.log.Step("Running %s (%d steps)", args[0], len(steps))
			s := newSummary(cmd.OutOrStdout())
			exec := installer.Executor{Log: a.log, Metrics: a.metrics, OnStep: s.record}
			err = exec.Run(a.ctx, steps)
			s.print()
			if err != nil {
				return fmt.Errorf("plan %s: %w", args[0], err)
			}
			return nil
		},
	}
	return withToolset(locked(cmd))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
