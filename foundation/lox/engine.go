// File: engine.go
// Title: Lox Front End Engine
// Description: Ties the scanner, keyword table, parser and diagnostic sinks
//              into one call that turns source text into tokens, an owned
//              expression tree and the diagnostics found on the way.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial engine implementation

package lox

import (
	"errors"
	"time"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	mdwast "github.com/msto63/lox/foundation/lox/ast"
	"github.com/msto63/lox/foundation/lox/diag"
	"github.com/msto63/lox/foundation/lox/parser"
	"github.com/msto63/lox/foundation/lox/scanner"
	"github.com/msto63/lox/foundation/lox/table"
)

// Engine runs the front end. It holds only configuration, so one Engine may
// serve any number of goroutines.
type Engine struct {
	logger  *mdwlog.Logger
	options Options
}

// Options configures the engine
type Options struct {
	Logger *mdwlog.Logger

	// Reporter additionally receives every diagnostic as it is found
	Reporter diag.Reporter

	MaxTokens          int
	KeywordCapacity    int
	KeywordMaxCapacity int
	MaxDepth           int
}

// Result is the outcome of one Process call
type Result struct {
	Tokens      *scanner.TokenList
	Tree        *mdwast.Tree
	Diagnostics []diag.Diagnostic

	// LexError and ParseError are the durable error flags of the two phases
	LexError   bool
	ParseError bool

	// Err is the first error that stopped the run; nil on success
	Err error

	Duration time.Duration
}

// HadError reports whether any phase failed
func (r *Result) HadError() bool {
	return r.LexError || r.ParseError || r.Err != nil
}

// String returns the printed tree, or "" when there is none
func (r *Result) String() string {
	if r == nil {
		return ""
	}
	return r.Tree.String()
}

// ExitCode maps the result to a process exit status
func (r *Result) ExitCode() int {
	switch {
	case r.Err == nil && !r.LexError && !r.ParseError:
		return mdwerror.ExitOK
	case r.Err != nil:
		return mdwerror.GetCode(r.Err).ExitStatus()
	default:
		return mdwerror.ExitDataErr
	}
}

// Release frees the tree. Tokens stay valid.
func (r *Result) Release() {
	if r != nil {
		r.Tree.Release()
	}
}

// New creates an engine
func New(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.Discard
	}
	if opts.KeywordCapacity == 0 {
		opts.KeywordCapacity = table.DefaultCapacity
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = parser.DefaultMaxDepth
	}

	for name, v := range map[string]int{
		"max_tokens":           opts.MaxTokens,
		"keyword_capacity":     opts.KeywordCapacity,
		"keyword_max_capacity": opts.KeywordMaxCapacity,
		"max_depth":            opts.MaxDepth,
	} {
		if v < 0 {
			return nil, mdwerror.Newf("%s must not be negative", name).
				WithCode(mdwerror.CodeInvalidConfig).
				WithOperation("lox.New").
				WithDetail(name, v)
		}
	}

	logger := opts.Logger.WithComponent("lox-engine")
	logger.Debug("engine initialized", mdwlog.Fields{
		"maxTokens":          opts.MaxTokens,
		"keywordCapacity":    opts.KeywordCapacity,
		"keywordMaxCapacity": opts.KeywordMaxCapacity,
		"maxDepth":           opts.MaxDepth,
	})

	return &Engine{logger: logger, options: opts}, nil
}

// Options returns the effective options
func (e *Engine) Options() Options {
	return e.options
}

func (e *Engine) scannerOptions(r diag.Reporter) scanner.Options {
	return scanner.Options{
		Logger:             e.options.Logger,
		Reporter:           r,
		MaxTokens:          e.options.MaxTokens,
		KeywordCapacity:    e.options.KeywordCapacity,
		KeywordMaxCapacity: e.options.KeywordMaxCapacity,
	}
}

// Tokenize scans source only. The returned list always ends with EOF; the
// error is a *diag.Errors for lexical errors or an allocation error.
func (e *Engine) Tokenize(source []byte) (*scanner.TokenList, []diag.Diagnostic, error) {
	var c diag.Collector
	list, err := scanner.Scan(source, e.scannerOptions(diag.Multi(&c, e.options.Reporter)))
	return list, c.Diagnostics(), err
}

// Process scans and parses source as a single expression. Lexical errors do
// not stop the parse, so every diagnostic of the input surfaces in one run.
// An allocation failure stops the run before parsing.
func (e *Engine) Process(source []byte) *Result {
	timer := e.logger.StartTimer("process")
	res := &Result{}

	var c diag.Collector
	sink := diag.Multi(&c, e.options.Reporter)

	list, err := scanner.Scan(source, e.scannerOptions(sink))
	res.Tokens = list
	if err != nil {
		var lexErrs *diag.Errors
		if !errors.As(err, &lexErrs) {
			res.Err = err
			res.Diagnostics = c.Diagnostics()
			res.Duration = timer.StopWithError(err)
			return res
		}
		res.LexError = true
		res.Err = err
	}

	tree, err := parser.Parse(list, parser.Options{
		Logger:   e.options.Logger,
		Reporter: sink,
		MaxDepth: e.options.MaxDepth,
	})
	if err != nil {
		res.ParseError = true
		if res.Err == nil {
			res.Err = err
		}
	} else {
		res.Tree = tree
	}

	res.Diagnostics = c.Diagnostics()
	timer.WithField("tokens", list.Len()).WithField("diagnostics", len(res.Diagnostics))
	if res.Err != nil {
		// diagnostics already reached the reporter
		res.Duration = timer.StopFailed(res.Err)
	} else {
		res.Duration = timer.Stop()
	}
	return res
}

// ProcessString is Process for string input
func (e *Engine) ProcessString(source string) *Result {
	return e.Process([]byte(source))
}
