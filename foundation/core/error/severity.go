// File: severity.go
// Title: Error Severity Levels
// Description: Defines severity levels for errors. The logger uses them to
//              pick the level of a reported failure.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels
// - 2026-10-14 v0.2.0: Severity defaults for front-end codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow covers problems in user input such as lex or parse errors
	SeverityLow Severity = iota

	// SeverityMedium covers recoverable failures with a workaround
	SeverityMedium

	// SeverityHigh covers failures that abort the current run
	SeverityHigh

	// SeverityCritical covers failures that make the tool unusable
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines the default severity for an error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInternal:
		return SeverityCritical
	case CodeAllocation, CodeDatabaseError, CodeServiceUnavailable:
		return SeverityHigh
	case CodeLexError, CodeParseError, CodeInvalidInput, CodeNotFound, CodeUsage:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
