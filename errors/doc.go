// Package errors provides standardized error handling patterns for the orthomerge stage.
//
// # Overview
//
// Errors fall into three classes: Transient (temporary, retryable, e.g. a
// backing-store timeout), Invalid (bad input, non-retryable) and Fatal
// (abort the stage). Missing data, such as an identifier with no resolvable
// sequence, is reported with ErrSequenceNotFound or ErrMissingTarget; callers
// skip the affected item and log it instead of failing.
//
// Quality rejections during merging are not errors and never reach this
// package.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions attach a classification:
//
//	errors.WrapTransient(err, "KVCatalog", "Lookup", "get key")
//	errors.WrapInvalid(err, "Loader", "Load", "schema validation")
//	errors.WrapFatal(err, "BlastClient", "Search", "run blastn")
//
// Classification survives wrapping with fmt.Errorf("...: %w", err) because
// IsTransient, IsFatal and IsInvalid use errors.As on the chain.
package errors
