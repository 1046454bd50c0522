// Package codegen lowers a type-checked ast.Program to a bytecode.Program.
// It implements ast.ExpressionVisitor and ast.StmtVisitor the same way
// sema does, except each visit emits instructions into the generator's
// growing instruction stream instead of returning a resolved type.
package codegen

import (
	"encoding/binary"

	"qlang/ast"
	"qlang/bytecode"
	"qlang/sema"
	"qlang/token"
	"qlang/types"
)

// Generator holds all state threaded through a single Generate call: the
// function signature table and expression types handed down from sema,
// the function-id table used to resolve CALL targets, the interned
// string pool, the instruction stream under construction, and the
// layout of whichever function is currently being compiled.
type Generator struct {
	sigs      map[string]sema.FunctionSig
	types     sema.Types
	funcIndex map[string]int
	strings   *stringPool

	insns     bytecode.Instructions
	functions []bytecode.Function
	layout    *layout
}

// Generate lowers an analyzed program to bytecode. res must be the
// sema.Result produced by analyzing prog; Generate does not re-validate
// anything sema already checked, except that vm_asm blocks name real
// locals and use only the fixed set of vm_asm mnemonics, which is
// checked here rather than in sema since it requires the function
// layout generation itself computes. Generate returns a GenerationError
// if it finds a malformed vm_asm instruction; generation halts at the
// first one, matching sema's and the parser's halt-on-first-error style.
func Generate(prog *ast.Program, res *sema.Result) (p *bytecode.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ge, ok := r.(GenerationError); ok {
				err = ge
				return
			}
			panic(r)
		}
	}()

	g := &Generator{
		sigs:      res.Sigs,
		types:     res.Types,
		funcIndex: make(map[string]int, len(prog.Functions)),
		strings:   newStringPool(),
	}

	for i, fn := range prog.Functions {
		g.funcIndex[fn.Name.Lexeme] = i
	}

	for _, fn := range prog.Functions {
		g.generateFunction(fn)
	}

	return &bytecode.Program{
		Instructions: g.insns,
		Functions:    g.functions,
		Strings:      g.strings.table,
	}, nil
}

func (g *Generator) generateFunction(fn *ast.Function) {
	g.layout = newLayout(fn)
	entryPC := len(g.insns)

	for _, stmt := range fn.Body {
		stmt.Accept(g)
	}

	// Every function body ends with "PUSH_INT 0; RET" so a caller always
	// finds a return value on the stack. Void functions reach it as their
	// implicit final return; non-void ones never do, since sema requires a
	// top-level return statement.
	g.emit(bytecode.PUSH_INT, 0)
	g.emit(bytecode.RET)

	g.functions = append(g.functions, bytecode.Function{
		Name:      fn.Name.Lexeme,
		NumParams: numParamSlots(fn),
		NumLocals: g.layout.numLocals,
		EntryPC:   entryPC,
	})
}

func numParamSlots(fn *ast.Function) int {
	n := 0
	for _, p := range fn.Params {
		n += slotWidth(p.Type)
	}
	return n
}

// --- emission helpers ---

func (g *Generator) emit(op bytecode.Opcode, operands ...int) int {
	pos := len(g.insns)
	g.insns = append(g.insns, bytecode.Make(op, operands...)...)
	return pos
}

// emitPlaceholderJump emits a jump with a zero operand and returns the
// position of the instruction, to be fixed up later by patchJump.
func (g *Generator) emitPlaceholderJump(op bytecode.Opcode) int {
	return g.emit(op, 0)
}

func (g *Generator) patchJump(pos int, target int) {
	operandPos := pos + 1
	binary.BigEndian.PutUint16(g.insns[operandPos:], uint16(target))
}

// --- ast.ExpressionVisitor ---

func (g *Generator) VisitLiteral(lit *ast.Literal) any {
	switch v := lit.Value.(type) {
	case int64:
		g.emit(bytecode.PUSH_INT, int(v))
	case bool:
		n := 0
		if v {
			n = 1
		}
		g.emit(bytecode.PUSH_INT, n)
	case string:
		g.emit(bytecode.PUSH_INT, g.strings.intern(v))
	}
	return nil
}

func (g *Generator) VisitIdentifier(id *ast.Identifier) any {
	slot, ok := g.layout.resolve(id.Name.Lexeme)
	if !ok {
		panic("codegen: unresolved identifier " + id.Name.Lexeme)
	}
	g.emit(bytecode.LOAD_LOCAL, slot)
	return nil
}

func (g *Generator) VisitUnary(u *ast.Unary) any {
	u.Right.Accept(g)
	switch u.Operator.Kind {
	case token.MINUS:
		g.emit(bytecode.NEG)
	case token.BANG:
		g.emit(bytecode.NOT)
	}
	return nil
}

var binaryOpcodes = map[token.Kind]bytecode.Opcode{
	token.PLUS:    bytecode.ADD,
	token.MINUS:   bytecode.SUB,
	token.STAR:    bytecode.MUL,
	token.SLASH:   bytecode.DIV,
	token.EQ:      bytecode.CMP_EQ,
	token.NOT_EQ:  bytecode.CMP_NE,
	token.LT:      bytecode.CMP_LT,
	token.LE:      bytecode.CMP_LE,
	token.GT:      bytecode.CMP_GT,
	token.GE:      bytecode.CMP_GE,
}

func (g *Generator) VisitBinary(b *ast.Binary) any {
	b.Left.Accept(g)
	b.Right.Accept(g)
	g.emit(binaryOpcodes[b.Operator.Kind])
	return nil
}

// VisitLogical lowers "&&"/"||" with short-circuit jumps. JZ/JNZ consume
// the value they test, so no trailing pop is needed on either branch.
func (g *Generator) VisitLogical(l *ast.Logical) any {
	l.Left.Accept(g)
	switch l.Operator.Kind {
	case token.AND:
		jz := g.emitPlaceholderJump(bytecode.JZ)
		l.Right.Accept(g)
		jmpEnd := g.emitPlaceholderJump(bytecode.JMP)
		g.patchJump(jz, len(g.insns))
		g.emit(bytecode.PUSH_INT, 0)
		g.patchJump(jmpEnd, len(g.insns))
	case token.OR:
		jnz := g.emitPlaceholderJump(bytecode.JNZ)
		l.Right.Accept(g)
		jmpEnd := g.emitPlaceholderJump(bytecode.JMP)
		g.patchJump(jnz, len(g.insns))
		g.emit(bytecode.PUSH_INT, 1)
		g.patchJump(jmpEnd, len(g.insns))
	}
	return nil
}

func (g *Generator) VisitCall(c *ast.Call) any {
	name := c.Callee.Lexeme
	if g.lowerBuiltinCall(name, c.Args) {
		return nil
	}

	fnID, ok := g.funcIndex[name]
	if !ok {
		panic("codegen: unresolved function " + name)
	}
	sig := g.sigs[name]
	for i, arg := range c.Args {
		g.emitArgument(arg, sig.Params[i])
	}
	g.emit(bytecode.CALL, fnID)
	return nil
}

// emitArgument pushes one call argument's value(s). A scalar argument
// pushes a single value; an array-typed argument, always a bare
// identifier naming a declared array, since QL has no array literals,
// pushes each of its slots in order, matching the callee's multi-slot
// parameter layout.
func (g *Generator) emitArgument(arg ast.Expression, paramType types.Type) {
	if !paramType.IsArray() {
		arg.Accept(g)
		return
	}
	base := g.arrayBase(arg)
	for i := 0; i < paramType.ArrayLen; i++ {
		g.emit(bytecode.LOAD_LOCAL, base+i)
	}
}

func (g *Generator) VisitIndex(ix *ast.Index) any {
	base := g.arrayBase(ix.Array)
	ix.At.Accept(g)
	g.emit(bytecode.LOAD_LOCAL_IDX, base)
	return nil
}

func (g *Generator) VisitAddressOf(a *ast.AddressOf) any {
	switch target := a.Target.(type) {
	case *ast.Identifier:
		slot, ok := g.layout.resolve(target.Name.Lexeme)
		if !ok {
			panic("codegen: unresolved identifier " + target.Name.Lexeme)
		}
		g.emit(bytecode.PUSH_INT, slot)
	case *ast.Index:
		base := g.arrayBase(target.Array)
		g.emit(bytecode.PUSH_INT, base)
		target.At.Accept(g)
		g.emit(bytecode.ADD)
	}
	return nil
}

// --- ast.StmtVisitor ---

func (g *Generator) VisitExprStmt(s *ast.ExprStmt) any {
	// Sema restricts a bare expression statement to a void-returning
	// call. A void built-in pushes nothing; a void user function still
	// hands back the defensive 0 its body ends with, so that value is
	// stored into a scratch slot: the fixed opcode set has no generic pop
	// to discard it with.
	s.Expression.Accept(g)
	if call, ok := s.Expression.(*ast.Call); ok {
		if _, user := g.funcIndex[call.Callee.Lexeme]; user {
			g.emit(bytecode.STORE_LOCAL, g.layout.newTemp())
		}
	}
	return nil
}

func (g *Generator) VisitVarDecl(s *ast.VarDecl) any {
	declType := s.DeclaredType
	if declType == nil {
		t := g.types.TypeOf(s.Init)
		declType = &t
	}
	slot := g.layout.define(s.Name.Lexeme, slotWidth(*declType))
	if s.Init != nil {
		s.Init.Accept(g)
		g.emit(bytecode.STORE_LOCAL, slot)
	}
	return nil
}

func (g *Generator) VisitAssign(s *ast.Assign) any {
	switch target := s.Target.(type) {
	case *ast.Identifier:
		slot, ok := g.layout.resolve(target.Name.Lexeme)
		if !ok {
			panic("codegen: unresolved identifier " + target.Name.Lexeme)
		}
		s.Value.Accept(g)
		g.emit(bytecode.STORE_LOCAL, slot)
	case *ast.Index:
		base := g.arrayBase(target.Array)
		s.Value.Accept(g)
		target.At.Accept(g)
		g.emit(bytecode.STORE_LOCAL_IDX, base)
	}
	return nil
}

func (g *Generator) VisitPrint(s *ast.Print) any {
	s.Value.Accept(g)
	if g.types.TypeOf(s.Value).Equal(types.Str) {
		g.emit(bytecode.PRINT_STR)
	} else {
		g.emit(bytecode.PRINT_INT)
	}
	return nil
}

func (g *Generator) VisitPrintLn(s *ast.PrintLn) any {
	s.Value.Accept(g)
	if g.types.TypeOf(s.Value).Equal(types.Str) {
		g.emit(bytecode.PRINTLN_STR)
	} else {
		g.emit(bytecode.PRINTLN_INT)
	}
	return nil
}

func (g *Generator) VisitReturn(s *ast.Return) any {
	if s.Value != nil {
		s.Value.Accept(g)
	} else {
		g.emit(bytecode.PUSH_INT, 0)
	}
	g.emit(bytecode.RET)
	return nil
}

func (g *Generator) generateBlock(body []ast.Stmt) {
	g.layout.push()
	for _, stmt := range body {
		stmt.Accept(g)
	}
	g.layout.pop()
}

func (g *Generator) VisitIf(s *ast.If) any {
	s.Cond.Accept(g)
	jz := g.emitPlaceholderJump(bytecode.JZ)
	g.generateBlock(s.Then)

	if s.Else != nil {
		jmpEnd := g.emitPlaceholderJump(bytecode.JMP)
		g.patchJump(jz, len(g.insns))
		g.generateBlock(s.Else)
		g.patchJump(jmpEnd, len(g.insns))
	} else {
		g.patchJump(jz, len(g.insns))
	}
	return nil
}

func (g *Generator) VisitWhile(s *ast.While) any {
	loopStart := len(g.insns)
	s.Cond.Accept(g)
	jz := g.emitPlaceholderJump(bytecode.JZ)
	g.generateBlock(s.Body)
	g.emit(bytecode.JMP, loopStart)
	g.patchJump(jz, len(g.insns))
	return nil
}

func (g *Generator) VisitAsm(s *ast.AsmStmt) any {
	// The excluded 8086 backend would consume this; the VM path ignores it.
	return nil
}

func (g *Generator) VisitVmAsm(s *ast.VmAsmStmt) any {
	g.lowerVmAsm(s)
	return nil
}
