package ast

import "qlang/token"

// Literal is a constant int, bool or str value.
type Literal struct {
	exprID
	Value any // int64, bool, or string
}

func NewLiteral(value any) *Literal {
	return &Literal{exprID: exprID{newID()}, Value: value}
}

func (l *Literal) Accept(v ExpressionVisitor) any { return v.VisitLiteral(l) }

// Identifier looks up a previously bound variable or parameter by name.
type Identifier struct {
	exprID
	Name token.Token
}

func NewIdentifier(name token.Token) *Identifier {
	return &Identifier{exprID: exprID{newID()}, Name: name}
}

func (id *Identifier) Accept(v ExpressionVisitor) any { return v.VisitIdentifier(id) }

// Unary applies a prefix operator ("-" or "!") to a single operand.
type Unary struct {
	exprID
	Operator token.Token
	Right    Expression
}

func NewUnary(operator token.Token, right Expression) *Unary {
	return &Unary{exprID: exprID{newID()}, Operator: operator, Right: right}
}

func (u *Unary) Accept(v ExpressionVisitor) any { return v.VisitUnary(u) }

// Binary applies an arithmetic or comparison operator to two operands.
// Logical "&&"/"||" are represented separately as Logical, since the code
// generator must short-circuit them rather than evaluate both sides.
type Binary struct {
	exprID
	Left     Expression
	Operator token.Token
	Right    Expression
}

func NewBinary(left Expression, operator token.Token, right Expression) *Binary {
	return &Binary{exprID: exprID{newID()}, Left: left, Operator: operator, Right: right}
}

func (b *Binary) Accept(v ExpressionVisitor) any { return v.VisitBinary(b) }

// Logical applies "&&" or "||", both of which short-circuit: the right
// operand's side effects must not be observed once the left side alone
// determines the result.
type Logical struct {
	exprID
	Left     Expression
	Operator token.Token
	Right    Expression
}

func NewLogical(left Expression, operator token.Token, right Expression) *Logical {
	return &Logical{exprID: exprID{newID()}, Left: left, Operator: operator, Right: right}
}

func (l *Logical) Accept(v ExpressionVisitor) any { return v.VisitLogical(l) }

// Call invokes a user function or a built-in by name. The callee is always
// a bare identifier; QL has no higher-order functions.
type Call struct {
	exprID
	Callee token.Token
	Args   []Expression
}

func NewCall(callee token.Token, args []Expression) *Call {
	return &Call{exprID: exprID{newID()}, Callee: callee, Args: args}
}

func (c *Call) Accept(v ExpressionVisitor) any { return v.VisitCall(c) }

// Index reads an element out of an array-typed expression.
type Index struct {
	exprID
	Array Expression
	At    Expression
}

func NewIndex(array Expression, at Expression) *Index {
	return &Index{exprID: exprID{newID()}, Array: array, At: at}
}

func (ix *Index) Accept(v ExpressionVisitor) any { return v.VisitIndex(ix) }

// AddressOf takes a pointer to an Identifier or Index target.
type AddressOf struct {
	exprID
	Target Expression
}

func NewAddressOf(target Expression) *AddressOf {
	return &AddressOf{exprID: exprID{newID()}, Target: target}
}

func (a *AddressOf) Accept(v ExpressionVisitor) any { return v.VisitAddressOf(a) }
