package sema

import "qlang/types"

// FunctionSig is a callable's arity and type signature: name, parameter
// types in order, and a return type (Void for procedures).
type FunctionSig struct {
	Name   string
	Params []types.Type
	Return types.Type
}

// builtinSigs are the fixed built-ins pre-registered before any user
// function is processed. array_push and array_pop are intentionally
// absent here: their first parameter is "int[N]" for any N, a value
// category no user-facing signature can express, so VisitCall special-
// cases them by name instead of looking them up in this table.
var builtinSigs = map[string]FunctionSig{
	"load16":    {Name: "load16", Params: []types.Type{types.Ptr}, Return: types.Int},
	"store16":   {Name: "store16", Params: []types.Type{types.Ptr, types.Int}, Return: types.Void},
	"memcpy":    {Name: "memcpy", Params: []types.Type{types.Ptr, types.Ptr, types.Int}, Return: types.Void},
	"memset":    {Name: "memset", Params: []types.Type{types.Ptr, types.Int, types.Int}, Return: types.Void},
	"ct_eq":     {Name: "ct_eq", Params: []types.Type{types.Int, types.Int}, Return: types.Bool},
	"ct_select": {Name: "ct_select", Params: []types.Type{types.Int, types.Int, types.Int}, Return: types.Int},
}

// arrayPushName and arrayPopName name the two built-ins whose first
// argument must be an array type; they never appear in builtinSigs.
const (
	arrayPushName = "array_push"
	arrayPopName  = "array_pop"
)
