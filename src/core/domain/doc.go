// Package domain contains the core domain model for the query executor.
//
// This package defines:
//   - QueryResult: the normalized value produced by every statement execution
//   - Query parameters: positional ([]any) and named (NamedParams) forms
//   - Domain Errors: the error taxonomy surfaced by the executor
//   - Defaults: timeout and metric-name constants shared across layers
//
// Rules for this package:
//   - No external dependencies except the standard library
//   - No infrastructure concerns (database driver, HTTP, etc.)
//   - Value objects should be immutable
package domain
