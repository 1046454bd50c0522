package codegen

import (
	"qlang/ast"
	"qlang/bytecode"
)

const (
	arrayPushName = "array_push"
	arrayPopName  = "array_pop"
)

// lowerBuiltinCall lowers a call to one of the fixed built-ins directly to
// bytecode, bypassing the ordinary CALL/RET convention entirely: none of
// these has a user-visible function body to jump into. It reports
// whether name named a built-in at all.
func (g *Generator) lowerBuiltinCall(name string, args []ast.Expression) bool {
	switch name {
	case "load16":
		args[0].Accept(g)
		g.emit(bytecode.LOAD_INDIRECT)
	case "store16":
		args[0].Accept(g)
		args[1].Accept(g)
		g.emit(bytecode.STORE_INDIRECT)
	case "memcpy":
		args[0].Accept(g) // dst
		args[1].Accept(g) // src
		args[2].Accept(g) // n
		g.emit(bytecode.MEMCPY_LOCALS)
	case "memset":
		args[0].Accept(g) // dst
		args[1].Accept(g) // v
		args[2].Accept(g) // n
		g.emit(bytecode.MEMSET_LOCALS)
	case "ct_eq":
		args[0].Accept(g)
		args[1].Accept(g)
		g.emit(bytecode.CMP_EQ)
	case "ct_select":
		g.lowerCtSelect(args[0], args[1], args[2])
	case arrayPushName:
		g.lowerArrayPush(args[0], args[1], args[2])
	case arrayPopName:
		g.lowerArrayPop(args[0], args[1])
	default:
		return false
	}
	return true
}

// lowerCtSelect computes y + m*(x-y), each of m, x, y evaluated exactly
// once into a temporary regardless of how many times the formula
// references it; the arguments may be arbitrary, side-effecting
// expressions.
func (g *Generator) lowerCtSelect(m, x, y ast.Expression) {
	tm, tx, ty := g.layout.newTemp(), g.layout.newTemp(), g.layout.newTemp()

	m.Accept(g)
	g.emit(bytecode.STORE_LOCAL, tm)
	x.Accept(g)
	g.emit(bytecode.STORE_LOCAL, tx)
	y.Accept(g)
	g.emit(bytecode.STORE_LOCAL, ty)

	g.emit(bytecode.LOAD_LOCAL, tx)
	g.emit(bytecode.LOAD_LOCAL, ty)
	g.emit(bytecode.SUB) // x - y
	g.emit(bytecode.LOAD_LOCAL, tm)
	g.emit(bytecode.MUL) // m * (x - y)
	g.emit(bytecode.LOAD_LOCAL, ty)
	g.emit(bytecode.ADD) // y + m * (x - y)
}

// lowerArrayPush stores v at slot xs[len] and returns len+1, the array's
// new length. xs must be a bare identifier naming a declared array local
// or parameter, the only value category array-typed expressions can
// take in QL.
func (g *Generator) lowerArrayPush(xs, length, v ast.Expression) {
	base := g.arrayBase(xs)
	tv, tlen := g.layout.newTemp(), g.layout.newTemp()

	v.Accept(g)
	g.emit(bytecode.STORE_LOCAL, tv)
	length.Accept(g)
	g.emit(bytecode.STORE_LOCAL, tlen)

	g.emit(bytecode.LOAD_LOCAL, tv)
	g.emit(bytecode.LOAD_LOCAL, tlen)
	g.emit(bytecode.STORE_LOCAL_IDX, base) // xs[len] = v

	g.emit(bytecode.LOAD_LOCAL, tlen)
	g.emit(bytecode.PUSH_INT, 1)
	g.emit(bytecode.ADD) // len + 1
}

// lowerArrayPop returns the element at xs[len-1]. The caller is
// responsible for tracking its own decremented length; QL has no
// reference parameters, so array_pop cannot update len in place.
func (g *Generator) lowerArrayPop(xs, length ast.Expression) {
	base := g.arrayBase(xs)
	length.Accept(g)
	g.emit(bytecode.PUSH_INT, 1)
	g.emit(bytecode.SUB) // len - 1
	g.emit(bytecode.LOAD_LOCAL_IDX, base)
}

func (g *Generator) arrayBase(xs ast.Expression) int {
	id, ok := xs.(*ast.Identifier)
	if !ok {
		panic("codegen: array operand must be a named array")
	}
	slot, ok := g.layout.resolve(id.Name.Lexeme)
	if !ok {
		panic("codegen: unresolved array local " + id.Name.Lexeme)
	}
	return slot
}
