package codegen

import (
	"fmt"

	"qlang/ast"
	"qlang/types"
)

// funcScope is one link in the lexical scope chain used while assigning
// local slots. Unlike sema's scope, slots are never reused when a scope
// closes: the VM frame is a flat, fixed-size array sized once per
// function, not a push/pop stack of block-local storage.
type funcScope struct {
	vars   map[string]int
	parent *funcScope
}

// layout assigns every local a permanent slot in the current function's
// frame, in declaration order, params first. Arrays occupy ArrayLen
// consecutive slots starting at their base.
type layout struct {
	numLocals int
	scope     *funcScope
	tempSeq   int
}

func newLayout(fn *ast.Function) *layout {
	l := &layout{scope: &funcScope{vars: map[string]int{}}}
	for _, p := range fn.Params {
		l.define(p.Name.Lexeme, slotWidth(p.Type))
	}
	return l
}

func slotWidth(t types.Type) int {
	if t.IsArray() {
		return t.ArrayLen
	}
	return 1
}

// define reserves width consecutive slots for name in the current scope
// and returns the base slot.
func (l *layout) define(name string, width int) int {
	base := l.numLocals
	l.scope.vars[name] = base
	l.numLocals += width
	return base
}

// newTemp reserves a single scratch slot that no source identifier can
// ever name ('$' is not a legal identifier character), for expressions
// that must be evaluated exactly once but used more than one time.
func (l *layout) newTemp() int {
	l.tempSeq++
	return l.define(fmt.Sprintf("$t%d", l.tempSeq), 1)
}

func (l *layout) resolve(name string) (int, bool) {
	for s := l.scope; s != nil; s = s.parent {
		if slot, ok := s.vars[name]; ok {
			return slot, true
		}
	}
	return 0, false
}

func (l *layout) push() { l.scope = &funcScope{vars: map[string]int{}, parent: l.scope} }

func (l *layout) pop() { l.scope = l.scope.parent }
