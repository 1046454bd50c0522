package bytecode

import "testing"

func TestMakeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		op       Opcode
		operand  int
		width    int
		hasValue bool
	}{
		{PUSH_INT, 4660, 3, true},
		{LOAD_LOCAL, 2, 3, true},
		{ADD, 0, 1, false},
		{CALL, 65535, 3, true},
	}

	for _, tt := range tests {
		var encoded []byte
		if tt.hasValue {
			encoded = Make(tt.op, tt.operand)
		} else {
			encoded = Make(tt.op)
		}
		if len(encoded) != tt.width {
			t.Errorf("Make(%v) length = %d, want %d", tt.op, len(encoded), tt.width)
		}

		op, operand, width := Decode(Instructions(encoded), 0)
		if op != tt.op {
			t.Errorf("Decode opcode = %v, want %v", op, tt.op)
		}
		if width != tt.width {
			t.Errorf("Decode width = %d, want %d", width, tt.width)
		}
		if tt.hasValue && operand != tt.operand {
			t.Errorf("Decode operand = %d, want %d", operand, tt.operand)
		}
	}
}

func TestDisassembleSmokeTest(t *testing.T) {
	prog := Program{
		Instructions: append(Instructions(Make(PUSH_INT, 1)), byte(RET)),
		Functions:    []Function{{Name: "main", NumParams: 0, NumLocals: 0, EntryPC: 0}},
		Strings:      []string{"hi"},
	}
	out := Disassemble(prog)
	if out == "" {
		t.Fatal("Disassemble returned an empty listing")
	}
}
