// File: diag.go
// Title: Positioned Diagnostics
// Description: Defines the diagnostic record produced by the scanner and
//              the parser, the sinks that receive them and the error type
//              that bundles all diagnostics of one phase.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package diag

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mdwerror "github.com/msto63/lox/foundation/core/error"
)

// Kind tells which phase produced a diagnostic
type Kind int

const (
	KindLex Kind = iota
	KindParse
)

// String returns the phase name
func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lex"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "lex":
		*k = KindLex
	case "parse":
		*k = KindParse
	default:
		return fmt.Errorf("unknown diagnostic kind %q", text)
	}
	return nil
}

// Code returns the error code matching the phase
func (k Kind) Code() mdwerror.Code {
	if k == KindLex {
		return mdwerror.CodeLexError
	}
	return mdwerror.CodeParseError
}

// Diagnostic is one user-facing error message tied to a source line
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Line    int    `json:"line"`
	Where   string `json:"where,omitempty"`
	Message string `json:"message"`
}

// AtEnd is the location text for errors at end of input
const AtEnd = " at end"

// AtLexeme returns the location text for errors at a token
func AtLexeme(lexeme string) string {
	return " at '" + lexeme + "'"
}

// String renders the diagnostic as "[line N] Error<where>: <message>"
func (d Diagnostic) String() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// Reporter receives diagnostics as they are produced
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(d Diagnostic)

// Report calls f(d)
func (f ReporterFunc) Report(d Diagnostic) {
	f(d)
}

// Discard drops every diagnostic
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Collector retains diagnostics and keeps the durable error flag. The zero
// value is ready to use and safe for concurrent reporters.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Report appends d
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of everything reported so far
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of diagnostics
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// HadError reports whether anything was reported since the last Reset
func (c *Collector) HadError() bool {
	return c.Len() > 0
}

// Had reports whether a diagnostic of kind k was reported
func (c *Collector) Had(k Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// Reset clears the flag between independent inputs
func (c *Collector) Reset() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// WriterReporter writes one line per diagnostic
type WriterReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterReporter creates a reporter writing to w
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

// Report writes d followed by a newline
func (r *WriterReporter) Report(d Diagnostic) {
	r.mu.Lock()
	fmt.Fprintln(r.w, d.String())
	r.mu.Unlock()
}

// Multi fans every diagnostic out to all non-nil reporters
func Multi(reporters ...Reporter) Reporter {
	var rs []Reporter
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return ReporterFunc(func(d Diagnostic) {
		for _, r := range rs {
			r.Report(d)
		}
	})
}

// Errors is the error returned by a phase that produced diagnostics
type Errors struct {
	Kind  Kind
	Items []Diagnostic
}

// Error joins the rendered diagnostics, one per line
func (e *Errors) Error() string {
	lines := make([]string, len(e.Items))
	for i, d := range e.Items {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the phase code to mdwerror.HasCode and errors.As
func (e *Errors) Unwrap() error {
	return mdwerror.Newf("%d %s error(s)", len(e.Items), e.Kind).
		WithCode(e.Kind.Code()).
		WithDetail("count", len(e.Items))
}
