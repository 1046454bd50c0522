package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"qlang"
)

// checkCmd implements "qlc check": lex, parse, and analyze a source file
// without generating or running bytecode, for editor-integration-style
// "is this valid" queries.
type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "Validate a QL source file without executing it" }
func (*checkCmd) Usage() string {
	return `check <file.ql>:
  Lex, parse, and type-check a source file, reporting the first syntax
  or semantic error, if any.
`
}
func (*checkCmd) SetFlags(f *flag.FlagSet) {}

func (*checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if err := qlang.Check(string(data)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Println("ok")
	return subcommands.ExitSuccess
}
