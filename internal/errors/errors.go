package errors

import (
	"errors"
	"fmt"
)

// IndexError is the structured error type for sigmaindex.
type IndexError struct {
	// Code is the unique error code (e.g., "ERR_202_RULE_MALFORMED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Usage, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *IndexError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an IndexError with the same code.
func (e *IndexError) Is(target error) bool {
	if t, ok := target.(*IndexError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *IndexError) WithDetail(key, value string) *IndexError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *IndexError) WithSuggestion(suggestion string) *IndexError {
	e.Suggestion = suggestion
	return e
}

// New creates a new IndexError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *IndexError {
	return &IndexError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an IndexError from an existing error.
func Wrap(code string, err error) *IndexError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// UsageError creates a fatal command-line usage error.
func UsageError(message string) *IndexError {
	return New(ErrCodeUsage, message, nil)
}

// RuleError creates an error for a rule file that was skipped.
func RuleError(code, path string, cause error) *IndexError {
	return New(code, "skipping "+path, cause).WithDetail("path", path)
}

// OutputError creates an error for a failed output write.
func OutputError(message string, cause error) *IndexError {
	return New(ErrCodeOutputWrite, message, cause).
		WithSuggestion("Check that the output directory exists or can be created, and is writable")
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *IndexError {
	return New(ErrCodeInternal, message, cause)
}

// IsUsage reports whether err is a usage error.
func IsUsage(err error) bool {
	return GetCode(err) == ErrCodeUsage
}

// GetCode extracts the error code from an IndexError in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}
