package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"qlang"
)

// runCmd implements "qlc run": compile a source file and execute it,
// forwarding its output to stdout and its exit code to the process exit
// status.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Compile and execute a QL source file" }
func (*runCmd) Usage() string {
	return `run <file.ql>:
  Compile and execute QL source from a file. Ctrl-C requests cooperative
  cancellation instead of killing the process outright.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	program, err := qlang.Compile(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	cancel := qlang.NewCancelToken()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			cancel.Cancel()
		}
	}()

	result := qlang.Run(program, os.Stdout, cancel)
	switch result.Outcome {
	case qlang.Finished:
		return subcommands.ExitStatus(int(result.ExitCode))
	case qlang.Stopped:
		fmt.Fprintln(os.Stderr, "interrupted")
		return subcommands.ExitFailure
	default:
		fmt.Fprintln(os.Stderr, result.Err)
		return subcommands.ExitFailure
	}
}
