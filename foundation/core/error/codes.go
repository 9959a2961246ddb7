// File: codes.go
// Title: Error Code Definitions
// Description: Defines error codes for classifying failures of the front end
//              and its outer layers, plus their mapping to HTTP and process
//              exit statuses.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-14 v0.2.0: Lex/parse/allocation codes, exit status mapping

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL"
	CodeNotFound         Code = "NOT_FOUND"
	CodeInvalidInput     Code = "INVALID_INPUT"
	CodeInvalidOperation Code = "INVALID_OPERATION"
	CodeTimeout          Code = "TIMEOUT"

	// Front end
	CodeLexError   Code = "LOX_LEX"
	CodeParseError Code = "LOX_PARSE"
	CodeAllocation Code = "LOX_ALLOCATION"

	// Storage and I/O
	CodeDatabaseError Code = "DATABASE_ERROR"
	CodeIOError       Code = "IO_ERROR"

	// Service and network
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError       Code = "NETWORK_ERROR"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
	CodeUsage         Code = "USAGE"
)

// Process exit statuses following sysexits.h
const (
	ExitOK       = 0
	ExitUsage    = 64
	ExitDataErr  = 65
	ExitSoftware = 70
	ExitIOErr    = 74
	ExitConfig   = 78
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeInvalidOperation, CodeTimeout,
		CodeLexError, CodeParseError, CodeAllocation,
		CodeDatabaseError, CodeIOError,
		CodeServiceUnavailable, CodeNetworkError,
		CodeConfigError, CodeInvalidConfig, CodeUsage:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeLexError, CodeParseError:
		return "source"
	case CodeAllocation:
		return "resource"
	case CodeDatabaseError, CodeIOError:
		return "storage"
	case CodeServiceUnavailable, CodeNetworkError:
		return "service"
	case CodeConfigError, CodeInvalidConfig, CodeUsage:
		return "configuration"
	default:
		return "generic"
	}
}

// IsUserError reports whether the code describes a problem in user input
// rather than a failure of the tool.
func (c Code) IsUserError() bool {
	switch c {
	case CodeLexError, CodeParseError, CodeInvalidInput, CodeUsage:
		return true
	default:
		return false
	}
}

// HTTPStatus returns the HTTP status code for this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return 404
	case CodeInvalidInput, CodeLexError, CodeParseError, CodeUsage:
		return 400
	case CodeInvalidOperation:
		return 409
	case CodeAllocation:
		return 413
	case CodeTimeout:
		return 408
	case CodeServiceUnavailable, CodeDatabaseError:
		return 503
	default:
		return 500
	}
}

// ExitStatus returns the process exit status for this error code
func (c Code) ExitStatus() int {
	switch c {
	case CodeUsage:
		return ExitUsage
	case CodeLexError, CodeParseError, CodeInvalidInput, CodeAllocation:
		return ExitDataErr
	case CodeIOError, CodeNotFound, CodeDatabaseError:
		return ExitIOErr
	case CodeConfigError, CodeInvalidConfig:
		return ExitConfig
	default:
		return ExitSoftware
	}
}
