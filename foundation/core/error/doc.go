// Package error provides coded, severity-tagged errors for the lox front end.
//
// Package: error
// Title: Error Handling Framework
// Description: Structured errors carrying a code, a severity, free-form
//              details and an optional cause. Codes classify failures for the
//              outer layers: the CLI maps them to exit statuses, the network
//              front end to transport status codes.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-14 v0.2.0: Front-end codes (lex, parse, allocation), exit statuses, errors.As lookups
//
// Usage:
//
//	import mdwerror "github.com/msto63/lox/foundation/core/error"
//
//	err := mdwerror.New("token list capacity exhausted").
//		WithCode(mdwerror.CodeAllocation).
//		WithDetail("limit", 1024).
//		WithOperation("scanner.append")
//
//	if mdwerror.HasCode(err, mdwerror.CodeAllocation) {
//		// abort the run
//	}
package error
