// Package errors provides structured error types for the native runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the native function name, a value path, the
// expected/observed shapes and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCall, errors.KindTypeMismatch).
//		Function("str_index").
//		Path("args", "1").
//		Expected("integer").
//		Got("string").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Arity(1, 2)
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 5)
//
// Call-phase errors are raised by native functions as panics (fatal
// assertions) and converted back into returned errors by the call
// convention. Allocation errors are never converted.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
