// Package errors defines error types for the sidecar supervisor.
//
// Every failure the supervisor can report is one of the types or sentinels in
// this package. All error types support unwrapping and can be checked with
// errors.Is, errors.As and errors.AsType.
package errors
