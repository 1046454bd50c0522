package sema

import (
	"qlang/ast"
	"qlang/token"
	"qlang/types"
)

// analyzer implements both ast.ExpressionVisitor and ast.StmtVisitor.
// Expression visits return the node's resolved types.Type (boxed as any)
// and, via typeOf, record it into the side table keyed by node identity.
// Statement visits return nil; statements are never typed themselves.
type analyzer struct {
	sigs      map[string]FunctionSig
	sideTable map[int]types.Type
	scope     *scope
	fnReturn  types.Type
}

func (a *analyzer) typeOf(e ast.Expression) types.Type {
	t := e.Accept(a).(types.Type)
	a.sideTable[e.ID()] = t
	return t
}

func checkValidType(t types.Type, what string) {
	if t.Kind == types.Invalid {
		fail("%s has an unknown type", what)
	}
}

// --- ast.ExpressionVisitor ---

func (a *analyzer) VisitLiteral(lit *ast.Literal) any {
	switch lit.Value.(type) {
	case int64:
		return types.Int
	case bool:
		return types.Bool
	case string:
		return types.Str
	default:
		fail("literal has an unrecognized value %v", lit.Value)
		panic("unreachable")
	}
}

func (a *analyzer) VisitIdentifier(id *ast.Identifier) any {
	t, ok := a.scope.resolve(id.Name.Lexeme)
	if !ok {
		fail("unresolved name %q", id.Name.Lexeme)
	}
	return t
}

func (a *analyzer) VisitUnary(u *ast.Unary) any {
	right := a.typeOf(u.Right)
	switch u.Operator.Kind {
	case token.MINUS:
		if !right.Equal(types.Int) {
			fail("unary '-' requires int, got %s", right)
		}
		return types.Int
	case token.BANG:
		if !right.Equal(types.Bool) {
			fail("unary '!' requires bool, got %s", right)
		}
		return types.Bool
	default:
		fail("unsupported unary operator %q", u.Operator.Lexeme)
		panic("unreachable")
	}
}

func (a *analyzer) VisitBinary(b *ast.Binary) any {
	left := a.typeOf(b.Left)
	right := a.typeOf(b.Right)
	switch b.Operator.Kind {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		if !left.Equal(types.Int) || !right.Equal(types.Int) {
			fail("arithmetic operator %q requires two ints, got %s and %s", b.Operator.Lexeme, left, right)
		}
		return types.Int
	case token.EQ, token.NOT_EQ, token.LT, token.LE, token.GT, token.GE:
		if !left.Equal(right) {
			fail("comparison operator %q requires equal-typed operands, got %s and %s", b.Operator.Lexeme, left, right)
		}
		return types.Bool
	default:
		fail("unsupported binary operator %q", b.Operator.Lexeme)
		panic("unreachable")
	}
}

func (a *analyzer) VisitLogical(l *ast.Logical) any {
	left := a.typeOf(l.Left)
	right := a.typeOf(l.Right)
	if !left.Equal(types.Bool) || !right.Equal(types.Bool) {
		fail("logical operator %q requires two bools, got %s and %s", l.Operator.Lexeme, left, right)
	}
	return types.Bool
}

func (a *analyzer) VisitCall(c *ast.Call) any {
	name := c.Callee.Lexeme

	if name == arrayPushName {
		if len(c.Args) != 3 {
			fail("array_push expects 3 arguments, got %d", len(c.Args))
		}
		arr := a.typeOf(c.Args[0])
		if !arr.IsArray() {
			fail("array_push's first argument must be an array, got %s", arr)
		}
		if !a.typeOf(c.Args[1]).Equal(types.Int) || !a.typeOf(c.Args[2]).Equal(types.Int) {
			fail("array_push's len and value arguments must be int")
		}
		return types.Int
	}
	if name == arrayPopName {
		if len(c.Args) != 2 {
			fail("array_pop expects 2 arguments, got %d", len(c.Args))
		}
		arr := a.typeOf(c.Args[0])
		if !arr.IsArray() {
			fail("array_pop's first argument must be an array, got %s", arr)
		}
		if !a.typeOf(c.Args[1]).Equal(types.Int) {
			fail("array_pop's len argument must be int")
		}
		return types.Int
	}

	sig, ok := a.sigs[name]
	if !ok {
		fail("call to unresolved function %q", name)
	}
	if len(c.Args) != len(sig.Params) {
		fail("%q expects %d argument(s), got %d", name, len(sig.Params), len(c.Args))
	}
	for i, arg := range c.Args {
		argType := a.typeOf(arg)
		if !argType.Equal(sig.Params[i]) {
			fail("%q argument %d: expected %s, got %s", name, i+1, sig.Params[i], argType)
		}
	}
	return sig.Return
}

func (a *analyzer) VisitIndex(ix *ast.Index) any {
	arr := a.typeOf(ix.Array)
	if !arr.IsArray() {
		fail("index target must be an array, got %s", arr)
	}
	at := a.typeOf(ix.At)
	if !at.Equal(types.Int) {
		fail("array index must be int, got %s", at)
	}
	return types.Int
}

func (a *analyzer) VisitAddressOf(ao *ast.AddressOf) any {
	switch ao.Target.(type) {
	case *ast.Identifier, *ast.Index:
		a.typeOf(ao.Target)
		return types.Ptr
	default:
		fail("'&' can only be applied to a variable or array element")
		panic("unreachable")
	}
}

// --- ast.StmtVisitor ---

func (a *analyzer) VisitExprStmt(s *ast.ExprStmt) any {
	// A bare expression statement is only meaningful as a call for its
	// side effects, and only a void call at that: the bytecode has no
	// generic pop to discard a value the call leaves behind.
	call, ok := s.Expression.(*ast.Call)
	if !ok {
		fail("a bare expression statement must be a call to a void function")
	}
	t := a.typeOf(call)
	if !t.Equal(types.Void) {
		fail("%q returns %s; its result must be used, not discarded as a statement", call.Callee.Lexeme, t)
	}
	return nil
}

func (a *analyzer) VisitVarDecl(s *ast.VarDecl) any {
	switch {
	case s.DeclaredType != nil && s.Init != nil:
		checkValidType(*s.DeclaredType, "variable "+s.Name.Lexeme)
		initType := a.typeOf(s.Init)
		if !initType.Equal(*s.DeclaredType) {
			fail("variable %q declared as %s but initialized with %s", s.Name.Lexeme, *s.DeclaredType, initType)
		}
		a.scope.define(s.Name.Lexeme, *s.DeclaredType)
	case s.DeclaredType != nil:
		checkValidType(*s.DeclaredType, "variable "+s.Name.Lexeme)
		a.scope.define(s.Name.Lexeme, *s.DeclaredType)
	case s.Init != nil:
		a.scope.define(s.Name.Lexeme, a.typeOf(s.Init))
	default:
		fail("variable %q needs a declared type or an initializer", s.Name.Lexeme)
	}
	return nil
}

func (a *analyzer) VisitAssign(s *ast.Assign) any {
	switch target := s.Target.(type) {
	case *ast.Identifier:
		lhs, ok := a.scope.resolve(target.Name.Lexeme)
		if !ok {
			fail("unresolved name %q", target.Name.Lexeme)
		}
		rhs := a.typeOf(s.Value)
		if !lhs.Equal(rhs) {
			fail("cannot assign %s to %q of type %s", rhs, target.Name.Lexeme, lhs)
		}
	case *ast.Index:
		arr := a.typeOf(target.Array)
		if !arr.IsArray() {
			fail("assignment target must be an array element, got %s", arr)
		}
		if !a.typeOf(target.At).Equal(types.Int) {
			fail("array index must be int")
		}
		if rhs := a.typeOf(s.Value); !rhs.Equal(types.Int) {
			fail("array elements are int, got %s", rhs)
		}
	default:
		fail("invalid assignment target")
	}
	return nil
}

func (a *analyzer) checkPrintable(value ast.Expression, what string) {
	t := a.typeOf(value)
	if !t.Equal(types.Int) && !t.Equal(types.Str) {
		fail("%s accepts int or str, got %s", what, t)
	}
}

func (a *analyzer) VisitPrint(s *ast.Print) any {
	a.checkPrintable(s.Value, "print")
	return nil
}

func (a *analyzer) VisitPrintLn(s *ast.PrintLn) any {
	a.checkPrintable(s.Value, "println")
	return nil
}

func (a *analyzer) VisitReturn(s *ast.Return) any {
	// Presence, not type, is checked against the function's declared
	// return type: a str-returning function's "return 5;" type-checks the
	// expression but is never compared to the declared return type.
	if s.Value != nil {
		a.typeOf(s.Value)
	}
	return nil
}

func (a *analyzer) analyzeBlock(body []ast.Stmt) {
	a.scope = newScope(a.scope)
	for _, stmt := range body {
		stmt.Accept(a)
	}
	a.scope = a.scope.parent
}

func (a *analyzer) VisitIf(s *ast.If) any {
	cond := a.typeOf(s.Cond)
	if !cond.Equal(types.Bool) {
		fail("if condition must be bool, got %s", cond)
	}
	a.analyzeBlock(s.Then)
	if s.Else != nil {
		a.analyzeBlock(s.Else)
	}
	return nil
}

func (a *analyzer) VisitWhile(s *ast.While) any {
	cond := a.typeOf(s.Cond)
	if !cond.Equal(types.Bool) {
		fail("while condition must be bool, got %s", cond)
	}
	a.analyzeBlock(s.Body)
	return nil
}

func (a *analyzer) VisitAsm(s *ast.AsmStmt) any {
	// Opaque passthrough for the excluded assembly backend; nothing to check.
	return nil
}

func (a *analyzer) VisitVmAsm(s *ast.VmAsmStmt) any {
	// vm_asm is validated by the code generator, not here: a malformed
	// instruction is a runtime-error-class failure raised during
	// generation, not a semantic one.
	return nil
}

func hasTopLevelReturn(body []ast.Stmt) bool {
	for _, s := range body {
		if _, ok := s.(*ast.Return); ok {
			return true
		}
	}
	return false
}
