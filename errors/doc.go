// Package errors provides structured error types for the swift-reflection module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: record path, mangled type name, image name,
// and cause chain.
//
// The kinds map onto the engine's error taxonomy:
//
//	invalid_shape  a partial factory (composition, dependent member) rejected its input
//	not_found      no reflection data for the queried name; recoverable
//	usage          a query issued against a TypeRef kind that cannot carry that metadata
//	malformed      section bytes that do not parse as records of the declared kind
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLookup, errors.KindNotFound).
//		Type("4main3FooV").
//		Image("libMain.so").
//		Detail("no field descriptor").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound("field descriptor", "4main3FooV")
//	err := errors.Malformed("swift5_fieldmd", addr, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Is* predicates also see through errors.Join.
package errors
