package python

import (
	"errors"
	"fmt"
)

// QueryError means querying an interpreter for its metadata failed.
//
// Script distinguishes "the interpreter ran our introspection script and
// the script failed" from "we could not run the interpreter at all or
// could not make sense of its output". The former usually means one
// broken interpreter and is recoverable during implementation searches,
// the latter is not.
type QueryError struct {
	Err    error
	Path   string
	Stderr string
	Script bool
}

// Error satisfies the error interface.
func (e *QueryError) Error() string {
	if e.Script {
		if e.Stderr != "" {
			return fmt.Sprintf("querying python at %s failed: %s", e.Path, e.Stderr)
		}
		return fmt.Sprintf("querying python at %s failed: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("could not query python at %s: %v", e.Path, e.Err)
}

// Unwrap supports errors.Is/As chains.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// isQueryScriptError reports whether err is a recoverable introspection
// script failure, meaning the candidate interpreter itself is broken and
// enumeration may continue past it.
func isQueryScriptError(err error) bool {
	var queryErr *QueryError
	return errors.As(err, &queryErr) && queryErr.Script
}

// SourceNotSelectedError means a request needs a source that the caller
// excluded from the selector. This is a usage error, not an I/O failure.
type SourceNotSelectedError struct {
	Request Request
	Source  Source
	Sources SourceSelector
}

// Error satisfies the error interface.
func (e *SourceNotSelectedError) Error() string {
	return fmt.Sprintf("interpreter discovery for %s requires %s but only %s was selected", e.Request, e.Source, e.Sources)
}

// LauncherError means invoking the platform python launcher failed.
type LauncherError struct {
	Err    error
	Output string
}

// Error satisfies the error interface.
func (e *LauncherError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("could not list interpreters from the `py` launcher: %v: %s", e.Err, e.Output)
	}
	return fmt.Sprintf("could not list interpreters from the `py` launcher: %v", e.Err)
}

// Unwrap supports errors.Is/As chains.
func (e *LauncherError) Unwrap() error {
	return e.Err
}
