package codegen

import "fmt"

// GenerationError reports a failure found synchronously during code
// generation: today, only a malformed or unrecognized vm_asm
// instruction. The language's error classification puts this in the
// runtime error class, but unlike other runtime errors it is found
// before the program ever runs, so Generate reports it immediately
// instead of deferring to Run.
type GenerationError struct {
	Message string
}

func (e GenerationError) Error() string {
	return fmt.Sprintf("💥 QL Runtime error: %s", e.Message)
}

func fail(format string, args ...any) {
	panic(GenerationError{Message: fmt.Sprintf(format, args...)})
}
