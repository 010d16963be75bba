package main

import (
	"fmt"
	"io"
	"os"

	"github.com/crafted-tech/provisioner"
)

// Version is overridden at build time.
var Version = "dev"

var executeFunc = execute

func main() {
	runMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

// execute runs the CLI command with the provided args and output writers.
func execute(args []string, stdout io.Writer, stderr io.Writer, extra ...provisioner.Option) error {
	a := newApp(stdout, stderr, extra...)
	defer a.finish()

	cmd := newRootCmd(a)
	cmd.Version = Version
	if len(args) > 1 {
		cmd.SetArgs(args[1:])
	} else {
		cmd.SetArgs([]string{})
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// runMain executes the CLI and exits with the code carried by the error.
func runMain(args []string, stdout io.Writer, stderr io.Writer, exit func(int)) {
	if err := executeFunc(args, stdout, stderr); err != nil {
		_, _ = fmt.Fprintln(stderr, failColor.Sprintf("Error: %v", err))
		exit(provisioner.ExitCode(err))
		return
	}
	exit(0)
}
