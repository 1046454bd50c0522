package vm

import (
	"strings"
	"testing"

	"qlang/bytecode"
)

// program builds a single-function bytecode.Program whose main body is
// exactly insns, with no parameters and numLocals locals.
func program(numLocals int, insns ...byte) bytecode.Program {
	return bytecode.Program{
		Instructions: append(bytecode.Instructions(insns), byte(bytecode.RET)),
		Functions:    []bytecode.Function{{Name: "main", NumParams: 0, NumLocals: numLocals, EntryPC: 0}},
	}
}

// concat joins several encoded instructions into one stream.
func concat(chunks ...[]byte) bytecode.Instructions {
	var out bytecode.Instructions
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func TestArithmeticWrapsModulo2to16(t *testing.T) {
	// PUSH_INT 65535; PUSH_INT 2; ADD; RET -- wraps to 1.
	insns := concat(
		bytecode.Make(bytecode.PUSH_INT, 65535),
		bytecode.Make(bytecode.PUSH_INT, 2),
		[]byte{byte(bytecode.ADD)},
	)
	result := Run(program(0, insns...), &strings.Builder{}, nil)
	if result.Outcome != Finished {
		t.Fatalf("outcome = %v, want Finished (err=%v)", result.Outcome, result.Err)
	}
	if result.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1 (65535+2 mod 65536)", result.ExitCode)
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	insns := concat(
		bytecode.Make(bytecode.PUSH_INT, 5),
		bytecode.Make(bytecode.PUSH_INT, 0),
		[]byte{byte(bytecode.DIV)},
	)
	result := Run(program(0, insns...), &strings.Builder{}, nil)
	if result.Outcome != Errored {
		t.Fatalf("outcome = %v, want Errored", result.Outcome)
	}
}

func TestSignedComparisonAndDivision(t *testing.T) {
	// PUSH_INT -1 encoded as 65535 (two's complement); CMP_LT against 0
	// must treat both as signed, so -1 < 0 is true.
	var insns bytecode.Instructions
	insns = append(insns, bytecode.Make(bytecode.PUSH_INT, 65535)...)
	insns = append(insns, bytecode.Make(bytecode.PUSH_INT, 0)...)
	insns = append(insns, byte(bytecode.CMP_LT))
	prog := program(0, insns...)
	result := Run(prog, &strings.Builder{}, nil)
	if result.Outcome != Finished || result.ExitCode != 1 {
		t.Fatalf("outcome=%v exit=%d err=%v, want Finished/1", result.Outcome, result.ExitCode, result.Err)
	}

	// PUSH_INT -7 encoded as 65529; DIV by 2 must divide as signed and
	// truncate toward zero, giving -3.
	var div bytecode.Instructions
	div = append(div, bytecode.Make(bytecode.PUSH_INT, 65529)...)
	div = append(div, bytecode.Make(bytecode.PUSH_INT, 2)...)
	div = append(div, byte(bytecode.DIV))
	result = Run(program(0, div...), &strings.Builder{}, nil)
	if result.Outcome != Finished || result.ExitCode != -3 {
		t.Fatalf("outcome=%v exit=%d err=%v, want Finished/-3", result.Outcome, result.ExitCode, result.Err)
	}
}

func TestStackUnderflowIsRuntimeError(t *testing.T) {
	prog := program(0, byte(bytecode.ADD))
	result := Run(prog, &strings.Builder{}, nil)
	if result.Outcome != Errored {
		t.Fatalf("outcome = %v, want Errored", result.Outcome)
	}
}

func TestCallAndReturnRestoresCallerFrame(t *testing.T) {
	// fn helper(a: int): int { return a + 1; }
	// fn main(): int { return helper(41); }
	var helper bytecode.Instructions
	helper = append(helper, bytecode.Make(bytecode.LOAD_LOCAL, 0)...)
	helper = append(helper, bytecode.Make(bytecode.PUSH_INT, 1)...)
	helper = append(helper, byte(bytecode.ADD))
	helper = append(helper, byte(bytecode.RET))

	var main bytecode.Instructions
	main = append(main, bytecode.Make(bytecode.PUSH_INT, 41)...)
	main = append(main, bytecode.Make(bytecode.CALL, 1)...)
	main = append(main, byte(bytecode.RET))

	prog := bytecode.Program{
		Instructions: append(main, helper...),
		Functions: []bytecode.Function{
			{Name: "main", NumParams: 0, NumLocals: 0, EntryPC: 0},
			{Name: "helper", NumParams: 1, NumLocals: 1, EntryPC: len(main)},
		},
	}

	result := Run(prog, &strings.Builder{}, nil)
	if result.Outcome != Finished {
		t.Fatalf("outcome = %v, want Finished (err=%v)", result.Outcome, result.Err)
	}
	if result.ExitCode != 42 {
		t.Errorf("exit code = %d, want 42", result.ExitCode)
	}
}

func TestOutputOpcodesWriteToSink(t *testing.T) {
	var insns bytecode.Instructions
	insns = append(insns, bytecode.Make(bytecode.PUSH_INT, 7)...)
	insns = append(insns, byte(bytecode.PRINTLN_INT))
	prog := program(0, insns...)

	var out strings.Builder
	result := Run(prog, &out, nil)
	if result.Outcome != Finished {
		t.Fatalf("outcome = %v, want Finished (err=%v)", result.Outcome, result.Err)
	}
	if out.String() != "7\n" {
		t.Errorf("output = %q, want %q", out.String(), "7\n")
	}
}

func TestCancellationStopsBeforeFirstInstruction(t *testing.T) {
	prog := program(0, byte(bytecode.RET))
	cancel := NewCancelToken()
	cancel.Cancel()
	result := Run(prog, &strings.Builder{}, cancel)
	if result.Outcome != Stopped {
		t.Fatalf("outcome = %v, want Stopped", result.Outcome)
	}
}

func TestMemcpyNegativeCountIsRuntimeError(t *testing.T) {
	// count 65535 is -1 as a signed word.
	insns := concat(
		bytecode.Make(bytecode.PUSH_INT, 0),
		bytecode.Make(bytecode.PUSH_INT, 0),
		bytecode.Make(bytecode.PUSH_INT, 65535),
		[]byte{byte(bytecode.MEMCPY_LOCALS)},
	)
	result := Run(program(4, insns...), &strings.Builder{}, nil)
	if result.Outcome != Errored {
		t.Fatalf("outcome = %v, want Errored", result.Outcome)
	}
	if !strings.Contains(result.Err.Error(), "negative count") {
		t.Errorf("err = %v, want a negative count error", result.Err)
	}
}

func TestMissingMainIsRuntimeError(t *testing.T) {
	prog := bytecode.Program{}
	result := Run(prog, &strings.Builder{}, nil)
	if result.Outcome != Errored {
		t.Fatalf("outcome = %v, want Errored", result.Outcome)
	}
}
