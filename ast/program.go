package ast

import (
	"qlang/token"
	"qlang/types"
)

// Param is one entry of a function's ordered parameter list.
type Param struct {
	Name token.Token
	Type types.Type
}

// Function is a top-level declaration: a name, ordered parameters, an
// optional return type (absent means void), and a body.
type Function struct {
	Name       token.Token
	Params     []Param
	ReturnType *types.Type // nil means void
	Body       []Stmt
}

// Program is an ordered sequence of functions. A well-formed Program
// contains exactly one function named "main".
type Program struct {
	Functions []*Function
}
