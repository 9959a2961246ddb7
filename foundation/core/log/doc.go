// Package log provides structured logging for the lox front end.
//
// Package: log
// Title: Structured Logging
// Description: Leveled, structured logging with contextual fields, several
//              output formats and timing helpers. Integrates with the coded
//              errors of foundation/core/error so that severity drives the
//              log level of reported failures.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-14 v0.2.0: Session and component context, deterministic field order, stderr default
//
// Diagnostics produced while scanning or parsing source text are not log
// lines. They are delivered to a diag.Reporter. The logger records what the
// front end does (runs started, token counts, timings), not what is wrong with
// the user's program.
//
// Usage:
//
//	import mdwlog "github.com/msto63/lox/foundation/core/log"
//
//	logger := mdwlog.New().
//		WithLevel(mdwlog.LevelDebug).
//		WithFormat(mdwlog.FormatConsole).
//		WithComponent("lox-scanner")
//
//	logger.Debug("scan finished", mdwlog.Fields{"tokens": 12, "lex_errors": 0})
//
//	timer := logger.StartTimer("parse")
//	// ... parse
//	timer.Stop()
package log
