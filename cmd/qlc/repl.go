package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"qlang"
	"qlang/lexer"
	"qlang/parser"
	"qlang/token"
)

// replCmd implements "qlc repl": an interactive session, line-buffered
// until braces balance, that accumulates QL function definitions and
// (re)compiles and runs the whole program submitted so far once it
// contains a main.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive QL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive REPL. Submit one or more "fn ... { ... }"
  definitions; once a main is defined, each submission recompiles and
  re-runs the accumulated program.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      ">>> ",
		HistoryFile: "/tmp/qlc_repl_history",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Println("Welcome to QL! Define functions; execution starts once main exists.")
	runREPL(rl, os.Stdout)
	return subcommands.ExitSuccess
}

func runREPL(rl *readline.Instance, out io.Writer) {
	var functions []string
	var pending strings.Builder

	for {
		if pending.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return
		}
		if strings.TrimSpace(line) == "exit" && pending.Len() == 0 {
			return
		}

		if pending.Len() > 0 {
			pending.WriteString("\n")
		}
		pending.WriteString(line)

		tokens := lexer.New(pending.String()).Scan()
		if !bracesBalanced(tokens) {
			continue
		}
		if !looksComplete(tokens) {
			continue
		}

		submission := pending.String()
		pending.Reset()

		functions = append(functions, submission)
		source := strings.Join(functions, "\n")

		if !strings.Contains(source, "fn main") {
			// Semantic analysis requires a main, so until one is
			// submitted only the syntax of the definitions is checked.
			if _, err := parser.Parse(lexer.New(source).Scan()); err != nil {
				fmt.Fprintln(out, err)
				functions = functions[:len(functions)-1] // roll back the bad submission
				continue
			}
			fmt.Fprintln(out, "defined")
			continue
		}

		program, err := qlang.Compile(source)
		if err != nil {
			fmt.Fprintln(out, err)
			functions = functions[:len(functions)-1] // roll back the bad submission
			continue
		}

		cancel := qlang.NewCancelToken()
		result := qlang.Run(program, out, cancel)
		switch result.Outcome {
		case qlang.Finished:
			fmt.Fprintf(out, "\n[exit %d]\n", result.ExitCode)
		case qlang.Errored:
			fmt.Fprintln(out, result.Err)
		case qlang.Stopped:
			fmt.Fprintln(out, "interrupted")
		}
	}
}

// bracesBalanced reports whether every "{" seen so far has a matching
// "}", i.e. whether the buffer might already contain zero or more
// complete top-level blocks.
func bracesBalanced(tokens []token.Token) bool {
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
	}
	return depth <= 0
}

// looksComplete reports whether the last non-EOF token could plausibly
// end a statement, so the REPL doesn't try to parse input the user
// hasn't finished typing yet (e.g. a dangling operator or an open "if").
func looksComplete(tokens []token.Token) bool {
	last := lastNonEOF(tokens)
	if last == nil {
		return false
	}
	switch last.Kind {
	case token.ASSIGN, token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.BANG, token.EQ, token.NOT_EQ, token.LT, token.LE, token.GT, token.GE,
		token.COMMA, token.LPAREN, token.LBRACE,
		token.IF, token.ELSE, token.WHILE, token.FN, token.RETURN, token.LET,
		token.AND, token.OR, token.PRINT, token.PRINTLN:
		return false
	}
	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}
