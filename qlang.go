// Package qlang is the driver seam the GUI editor and the 8086 assembly
// backend are meant to call into: compile(source) -> Program and
// run(program, output_sink, cancel_token) -> outcome. Everything below
// this seam (lexer, parser, sema, codegen, vm) is free to change shape;
// this file is the one stable entry point a host embeds against.
package qlang

import (
	"io"

	"qlang/bytecode"
	"qlang/codegen"
	"qlang/lexer"
	"qlang/parser"
	"qlang/sema"
	"qlang/vm"
)

// Program is the immutable compiled artifact Compile produces. Multiple
// Run calls may execute the same Program concurrently, each with its own
// stack and frames, as long as their output sinks serialize writes.
type Program struct {
	bytecode bytecode.Program
}

// Disassemble renders the compiled instruction stream as a human-readable
// listing, for the "qlc emit" subcommand and editor debugging views.
func (p *Program) Disassemble() string {
	return bytecode.Disassemble(p.bytecode)
}

// Instructions exposes the raw encoded instruction bytes, for dumping to
// a .qnic file.
func (p *Program) Instructions() []byte {
	return []byte(p.bytecode.Instructions)
}

// Compile runs the full front-end pipeline (lex, parse, analyze, lower)
// over source and returns the resulting Program, or the first error
// encountered. The error is one of parser.SyntaxError, sema.SemanticError,
// or codegen.GenerationError (a malformed vm_asm instruction, found
// synchronously during lowering rather than deferred to Run); all three
// are safe to type-switch on at the seam.
func Compile(source string) (*Program, error) {
	tokens := lexer.New(source).Scan()

	prog, err := parser.Parse(tokens)
	if err != nil {
		return nil, err
	}

	res, err := sema.Analyze(prog)
	if err != nil {
		return nil, err
	}

	bc, err := codegen.Generate(prog, res)
	if err != nil {
		return nil, err
	}

	return &Program{bytecode: *bc}, nil
}

// Check runs lex+parse+sema only, without code generation, for hosts that
// only want a validity verdict (an editor's live squiggly-underline pass,
// or "qlc check").
func Check(source string) error {
	tokens := lexer.New(source).Scan()
	prog, err := parser.Parse(tokens)
	if err != nil {
		return err
	}
	_, err = sema.Analyze(prog)
	return err
}

// CancelToken is the single-writer, single-reader cooperative stop signal
// a host flips to interrupt a running Program; see vm.CancelToken.
type CancelToken = vm.CancelToken

// NewCancelToken creates a fresh, uncancelled CancelToken.
func NewCancelToken() *CancelToken { return vm.NewCancelToken() }

// Outcome classifies how Run ended: Finished with an exit code, Stopped
// via cancellation, or Errored with a runtime error.
type Outcome = vm.Outcome

const (
	Finished = vm.Finished
	Stopped  = vm.Stopped
	Errored  = vm.Errored
)

// RunResult is Run's half of the host seam.
type RunResult = vm.RunResult

// Run executes program's main function, writing PRINT/PRINTLN output to
// out, until it returns, is cancelled via cancel, or hits a runtime
// error. cancel may be nil, in which case the run cannot be interrupted.
func Run(program *Program, out io.Writer, cancel *CancelToken) RunResult {
	return vm.Run(program.bytecode, out, cancel)
}
