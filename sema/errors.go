package sema

import "fmt"

// SemanticError carries no source position, only a descriptive message
// naming the offending construct.
type SemanticError struct {
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("💥 QL Semantic error: %s", e.Message)
}

func fail(format string, args ...any) {
	panic(SemanticError{Message: fmt.Sprintf(format, args...)})
}
