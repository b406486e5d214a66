// Package errors provides structured error types for the ompopt module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries source line, op mnemonic, location path, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindSyntax).
//		Line(12).
//		Op("scf.for").
//		Detail("expected %d operands, got %d", 3, 2).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UndefinedValue(line, "%x")
//	err := errors.Invariant([]string{"main"}, "omp.parallel", "missing terminator")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
