// Package types defines the shared error taxonomy and result types for the
// mcpkit configuration engine.
//
// This package only exposes plain types. The engine packages under config/
// construct and return these; the CLI maps them to exit codes.
//
// Design goals:
//   - Typed errors with stable categories (pattern/validation/conflict/...).
//   - errors.As-friendly: every engine error unwraps to *types.Error.
//   - No dependencies beyond the standard library.
package types
