package godss

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the godss package.
var (
	// ErrClosed is returned when operations are attempted on a closed DSS handle.
	ErrClosed = errors.New("dss file is closed")

	// ErrWildcard is returned when an operation required a concrete path but
	// got a wildcard, or when a catalog is ambiguous for matching.
	ErrWildcard = errors.New("invalid wildcard usage")

	// ErrUnexpectedCount is returned when a wildcard expansion produced a
	// result count that mismatched the caller's expectation.
	ErrUnexpectedCount = errors.New("unexpected result count")

	// ErrDatasetNotFound is returned when a dataset is not present in the file.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrDatasetExists is returned when a write targets a path that already
	// holds data. Datasets are never silently overwritten.
	ErrDatasetExists = errors.New("dataset already exists")

	// ErrEmptyResult is returned when a bulk export found nothing to export.
	ErrEmptyResult = errors.New("no datasets matched")
)

// PathParseError is returned when a path string cannot be parsed into the
// six A-F parts.
type PathParseError struct {
	Input  string
	Reason string
}

func (e *PathParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as dataset path: %s", e.Input, e.Reason)
}

// WildcardError provides detail about an invalid wildcard operation.
type WildcardError struct {
	Message string
	Path    string
}

func (e *WildcardError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Path)
	}
	return e.Message
}

// Is implements error matching for WildcardError.
func (e *WildcardError) Is(target error) bool {
	return target == ErrWildcard
}

// newWildcardError creates a new WildcardError.
func newWildcardError(message, path string) *WildcardError {
	return &WildcardError{Message: message, Path: path}
}

// UnexpectedCountError is returned when a wildcard expansion resolved to a
// different number of concrete paths than the caller declared it expected.
type UnexpectedCountError struct {
	Path string
	Want int
	Got  int
}

func (e *UnexpectedCountError) Error() string {
	return fmt.Sprintf("expected %s to resolve to %d path(s), resolved to %d",
		e.Path, e.Want, e.Got)
}

// Is implements error matching for UnexpectedCountError.
func (e *UnexpectedCountError) Is(target error) bool {
	return target == ErrUnexpectedCount
}
