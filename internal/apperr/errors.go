// Package apperr defines the error taxonomy shared by every command:
// validation failures (never retryable), dependency failures (retryable)
// and unexpected failures (defects).
package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

// Code identifies an error class in the user-facing envelope.
type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeDependency Code = "DEPENDENCY_ERROR"
	CodeUnexpected Code = "UNEXPECTED_ERROR"
)

// Exit codes returned by the CLI.
const (
	ExitOK         = 0
	ExitValidation = 2
	ExitDependency = 3
	ExitBug        = 4
)

// Issue is one violated field.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError reports bad or missing input. It lists every violated
// field, not just the first.
type ValidationError struct {
	Message string
	Issues  []Issue
	Err     error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "validation failed"
	}
	if len(e.Issues) == 0 {
		if e.Err != nil {
			return msg + ": " + e.Err.Error()
		}
		return msg
	}
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return fmt.Sprintf("%s: %s", msg, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validation builds a ValidationError from issues.
func Validation(message string, issues ...Issue) *ValidationError {
	return &ValidationError{Message: message, Issues: issues}
}

// WrapValidation marks err as a validation failure.
func WrapValidation(err error, message string) *ValidationError {
	return &ValidationError{Message: message, Err: err}
}

// DependencyError wraps a failure of a file or external resource the
// operation depends on. Safe to retry.
type DependencyError struct {
	Resource string
	Err      error
}

func (e *DependencyError) Error() string {
	if e.Resource == "" {
		return e.Err.Error()
	}
	return e.Resource + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// Dependency wraps err as a dependency failure on resource.
func Dependency(err error, resource string) *DependencyError {
	return &DependencyError{Resource: resource, Err: err}
}

// UnexpectedError marks an internal invariant violation.
type UnexpectedError struct {
	Message string
	Err     error
}

func (e *UnexpectedError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// Unexpected wraps err as a defect.
func Unexpected(err error, message string) *UnexpectedError {
	return &UnexpectedError{Message: message, Err: err}
}

// Classify returns the code for err. The outermost typed error in the
// chain wins; untyped file-system errors count as dependency failures;
// everything else is unexpected.
func Classify(err error) Code {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e.(type) {
		case *ValidationError:
			return CodeValidation
		case *DependencyError:
			return CodeDependency
		case *UnexpectedError:
			return CodeUnexpected
		}
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return CodeValidation
	}
	var de *DependencyError
	if errors.As(err, &de) {
		return CodeDependency
	}
	if errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.EIO) ||
		errors.Is(err, syscall.EMFILE) {
		return CodeDependency
	}
	return CodeUnexpected
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err) == CodeDependency
}

// ExitCode maps err to the CLI exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch Classify(err) {
	case CodeValidation:
		return ExitValidation
	case CodeDependency:
		return ExitDependency
	default:
		return ExitBug
	}
}
