package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"qlang"
)

// emitCmd implements "qlc emit": compile a source file without running
// it and dump its bytecode.
type emitCmd struct {
	dumpHex bool
}

func (*emitCmd) Name() string     { return "emit" }
func (*emitCmd) Synopsis() string { return "Emit the compiled bytecode for a QL source file" }
func (*emitCmd) Usage() string {
	return `emit [-hex] <file.ql>:
  Compile a source file and print its disassembled bytecode listing. With
  -hex, also write the raw instruction stream as hex to <file>.qnic.
`
}

func (cmd *emitCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.dumpHex, "hex", false, "also dump the raw instruction stream as hex to <file>.qnic")
}

func (cmd *emitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	sourcePath := args[0]

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	program, err := qlang.Compile(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Print(program.Disassemble())

	if cmd.dumpHex {
		base := strings.TrimSuffix(sourcePath, ".ql")
		dumpPath := base + ".qnic"
		encoded := hex.EncodeToString(program.Instructions())
		if err := os.WriteFile(dumpPath, []byte(encoded), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 dump bytecode error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
