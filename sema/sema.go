// Package sema implements QL's semantic analysis pass: name resolution,
// static typing, and the structural checks the grammar alone cannot
// express (a single main returning int or void, no duplicate functions,
// no shadowing a built-in's name). It never reports a source position:
// semantic errors are purely descriptive.
package sema

import (
	"qlang/ast"
	"qlang/types"
)

// Result is everything the code generator needs from a successfully
// analyzed program: the resolved type of every expression node, keyed by
// its identity, and the full function signature table (built-ins and
// user functions alike).
type Result struct {
	Types Types
	Sigs  map[string]FunctionSig
}

// Types maps an expression node's identity to its resolved type.
type Types map[int]types.Type

// TypeOf looks up the resolved type of an expression previously analyzed
// by Analyze. It panics if e was never visited, which would indicate a
// codegen bug rather than a user-facing error.
func (t Types) TypeOf(e ast.Expression) types.Type {
	v, ok := t[e.ID()]
	if !ok {
		panic("sema: no recorded type for expression node")
	}
	return v
}

// Analyze runs both passes of semantic analysis over prog and returns the
// resolved Result, or the first SemanticError encountered. Analysis halts
// at the first error: QL does not attempt error recovery here, matching
// the parser's own halt-on-first-error behavior.
func Analyze(prog *ast.Program) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(SemanticError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()

	sigs := registerFunctions(prog)

	a := &analyzer{
		sigs:      sigs,
		sideTable: make(map[int]types.Type),
	}

	for _, fn := range prog.Functions {
		analyzeFunction(a, fn)
	}

	return &Result{Types: Types(a.sideTable), Sigs: sigs}, nil
}

// registerFunctions is pass 1: it builds the complete name -> signature
// table from the built-ins plus every user-declared function, rejecting
// duplicate names (including a user function shadowing a built-in's
// name), and verifies that exactly one function named main exists with
// a return type of int or void.
func registerFunctions(prog *ast.Program) map[string]FunctionSig {
	sigs := make(map[string]FunctionSig, len(builtinSigs)+len(prog.Functions))
	for name, sig := range builtinSigs {
		sigs[name] = sig
	}

	var mainFn *ast.Function
	for _, fn := range prog.Functions {
		name := fn.Name.Lexeme
		if _, exists := sigs[name]; exists || name == arrayPushName || name == arrayPopName {
			fail("function %q redeclares a built-in or an earlier function of the same name", name)
		}

		params := make([]types.Type, len(fn.Params))
		for i, p := range fn.Params {
			checkValidType(p.Type, "parameter "+p.Name.Lexeme)
			params[i] = p.Type
		}

		ret := types.Void
		if fn.ReturnType != nil {
			checkValidType(*fn.ReturnType, "return type of "+name)
			ret = *fn.ReturnType
		}

		sigs[name] = FunctionSig{Name: name, Params: params, Return: ret}

		if name == "main" {
			mainFn = fn
		}
	}

	if mainFn == nil {
		fail("program has no main function")
	}
	mainSig := sigs["main"]
	if !mainSig.Return.Equal(types.Int) && !mainSig.Return.Equal(types.Void) {
		fail("main must return int or void, got %s", mainSig.Return)
	}

	return sigs
}

// analyzeFunction runs pass 2 over a single function: it opens a fresh
// top-level scope seeded with the function's parameters, walks the body,
// and, for a function whose declared return type is not void, requires
// at least one return statement directly in the function's own statement
// list (nested if/while bodies do not count).
func analyzeFunction(a *analyzer, fn *ast.Function) {
	a.scope = newScope(nil)
	a.fnReturn = types.Void
	if fn.ReturnType != nil {
		a.fnReturn = *fn.ReturnType
	}

	for _, p := range fn.Params {
		a.scope.define(p.Name.Lexeme, p.Type)
	}

	for _, stmt := range fn.Body {
		stmt.Accept(a)
	}

	if !a.fnReturn.Equal(types.Void) && !hasTopLevelReturn(fn.Body) {
		fail("function %q declares a return type of %s but has no return statement", fn.Name.Lexeme, a.fnReturn)
	}
}
