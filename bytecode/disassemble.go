package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a Program as a human-readable instruction listing,
// one line per instruction, annotated with function boundaries and
// interned string contents.
func Disassemble(prog Program) string {
	var b strings.Builder

	fmt.Fprintf(&b, "; %d function(s), %d string(s)\n", len(prog.Functions), len(prog.Strings))
	for sid, s := range prog.Strings {
		fmt.Fprintf(&b, "; string %d = %q\n", sid, s)
	}

	for _, fn := range prog.Functions {
		fmt.Fprintf(&b, "\n%s: ; params=%d locals=%d entry=%d\n", fn.Name, fn.NumParams, fn.NumLocals, fn.EntryPC)
	}

	ip := 0
	for ip < len(prog.Instructions) {
		op, operand, width := Decode(prog.Instructions, ip)
		def, err := Get(op)
		name := "UNKNOWN"
		if err == nil {
			name = def.Name
		}
		if width > 1 {
			fmt.Fprintf(&b, "%04d  %-18s %d\n", ip, name, operand)
		} else {
			fmt.Fprintf(&b, "%04d  %s\n", ip, name)
		}
		ip += width
	}
	return b.String()
}
