package codegen

import (
	"strings"

	"qlang/ast"
	"qlang/bytecode"
	"qlang/token"
)

// mnemonics is the closed set of instructions a vm_asm block may use:
// push_int, load_local, store_local, and the twelve zero-argument
// arithmetic/comparison opcodes. Anything else, including the jump,
// call, indirection, memory and output opcodes available to ordinary
// generated code, is not a legal vm_asm mnemonic.
var mnemonics = map[string]bytecode.Opcode{
	"push_int":    bytecode.PUSH_INT,
	"load_local":  bytecode.LOAD_LOCAL,
	"store_local": bytecode.STORE_LOCAL,
	"add":         bytecode.ADD,
	"sub":         bytecode.SUB,
	"mul":         bytecode.MUL,
	"div":         bytecode.DIV,
	"neg":         bytecode.NEG,
	"not":         bytecode.NOT,
	"cmp_eq":      bytecode.CMP_EQ,
	"cmp_ne":      bytecode.CMP_NE,
	"cmp_lt":      bytecode.CMP_LT,
	"cmp_le":      bytecode.CMP_LE,
	"cmp_gt":      bytecode.CMP_GT,
	"cmp_ge":      bytecode.CMP_GE,
}

// localArgMnemonics name a local by identifier; push_int instead takes a
// raw NUMBER constant.
var localArgMnemonics = map[bytecode.Opcode]bool{
	bytecode.LOAD_LOCAL:  true,
	bytecode.STORE_LOCAL: true,
}

// lowerVmAsm emits each instruction of a vm_asm block directly, failing
// generation synchronously the moment it finds an unrecognized mnemonic
// or a malformed operand, rather than deferring the failure to the VM.
func (g *Generator) lowerVmAsm(s *ast.VmAsmStmt) {
	for _, instr := range s.Instrs {
		op, ok := mnemonics[strings.ToLower(instr.Op.Lexeme)]
		if !ok {
			fail("vm_asm: unknown instruction %q", instr.Op.Lexeme)
		}
		def, err := bytecode.Get(op)
		if err != nil {
			fail("vm_asm: %v", err)
		}

		switch {
		case len(def.OperandWidths) == 0:
			if instr.HasArg {
				fail("vm_asm: %q takes no argument", instr.Op.Lexeme)
			}
			g.emit(op)

		case localArgMnemonics[op]:
			if !instr.HasArg || instr.Arg.Kind != token.IDENTIFIER {
				fail("vm_asm: %q requires a local name argument", instr.Op.Lexeme)
			}
			slot, ok := g.layout.resolve(instr.Arg.Lexeme)
			if !ok {
				fail("vm_asm: unknown local %q", instr.Arg.Lexeme)
			}
			g.emit(op, slot)

		default:
			if !instr.HasArg || instr.Arg.Kind != token.NUMBER {
				fail("vm_asm: %q requires an integer argument", instr.Op.Lexeme)
			}
			n, _ := instr.Arg.Literal.(int64)
			g.emit(op, int(n))
		}
	}
}
