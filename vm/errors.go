package vm

import "fmt"

// RuntimeError is everything that can go wrong while executing an
// already-compiled program: division by zero, an out-of-range memory
// access, a malformed MEMCPY_LOCALS/MEMSET_LOCALS range, stack
// underflow, an unknown opcode, or a missing main function.
type RuntimeError struct {
	Message string
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("💥 QL Runtime error: %s", e.Message)
}

func runtimeFail(format string, args ...any) {
	panic(RuntimeError{Message: fmt.Sprintf(format, args...)})
}
