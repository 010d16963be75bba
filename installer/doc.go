// Package installer runs provisioning plans: ordered steps built on the
// provisioner primitives, executed one at a time with logging.
//
// This package offers reusable pieces that image pipelines can pick from:
//   - Step execution: run steps in order, stop or continue on failure
//   - Provisioning steps: download, install binaries, extensions and toolset packages
//   - Service steps: stop and reconfigure services without failing the run
//   - File steps: create directories, copy and delete files
//   - Plans: YAML files that describe the steps of an image
//
// # Basic Usage
//
// Build and run steps directly:
//
//	p := provisioner.New(provisioner.WithLogger(log))
//	steps := []installer.Step{
//	    installer.StepStopService(p, []string{"wuauserv"}, false),
//	    installer.StepInstallBinary(p, provisioner.BinaryRequest{URL: msiURL}),
//	    installer.StepDeleteFile(marker),
//	}
//	return installer.RunSteps(ctx, steps, log)
//
// Or load them from a plan:
//
//	plan, err := installer.LoadPlan("windows2022.yaml")
//	if err != nil {
//	    return err
//	}
//	steps, err := plan.Build(p, toolset)
//	if err != nil {
//	    return err
//	}
//	return installer.Executor{Log: log, Metrics: rec}.Run(ctx, steps)
//
// # Step Pattern
//
// Steps are simple structs with a name and action function:
//
//	type Step struct {
//	    Name   string
//	    Action func() StepResult
//	}
//
// The StepResult indicates success, skip, warning, or failure. Warnings
// carry the contained failures of service operations, which never stop a
// run. Use SimpleStep for actions that just return error.
package installer
