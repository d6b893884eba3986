// Package errors provides structured error handling for sigmaindex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Usage errors
//   - 2XX: IO errors (rule files, output file)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryUsage indicates command-line usage errors.
	CategoryUsage Category = "USAGE"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates rule content errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the run must stop.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates a single input was skipped, the run continues.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Usage errors (100-199)
	ErrCodeUsage = "ERR_101_USAGE"

	// IO errors (200-299)
	ErrCodeRuleUnreadable = "ERR_201_RULE_UNREADABLE"
	ErrCodeRuleMalformed  = "ERR_202_RULE_MALFORMED"
	ErrCodeRuleNotMapping = "ERR_203_RULE_NOT_MAPPING"
	ErrCodeOutputWrite    = "ERR_204_OUTPUT_WRITE"

	// Validation errors (400-499)
	ErrCodeRuleUntitled = "ERR_401_RULE_UNTITLED"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_USAGE")
	switch code[4] {
	case '1':
		return CategoryUsage
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeUsage:
		return SeverityFatal
	case ErrCodeRuleUnreadable, ErrCodeRuleMalformed, ErrCodeRuleNotMapping, ErrCodeRuleUntitled:
		return SeverityWarning
	default:
		return SeverityError
	}
}
