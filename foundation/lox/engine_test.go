// File: engine_test.go
// Title: Lox Engine Tests
// Description: End-to-end tests of the engine: successful runs, lexical and
//              parse failures, allocation limits and concurrent use.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial engine tests

package lox

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	"github.com/msto63/lox/foundation/lox/diag"
	"github.com/msto63/lox/foundation/lox/scanner"
)

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = mdwlog.Discard()
	}
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestEngine_Process(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		tree      string
		lexErr    bool
		parseErr  bool
		diags     []string
		exitCode  int
		tokenKind []scanner.Kind
	}{
		{
			name:     "expression",
			input:    "-123 * (45.67)",
			tree:     "(* (- 123) (group 45.67))",
			exitCode: mdwerror.ExitOK,
			tokenKind: []scanner.Kind{
				scanner.Minus, scanner.Number, scanner.Star, scanner.LeftParen,
				scanner.Number, scanner.RightParen, scanner.EOF,
			},
		},
		{
			name:     "missing paren",
			input:    "(1 + 2",
			parseErr: true,
			diags:    []string{"[line 1] Error at end: Expect ')' after expression."},
			exitCode: mdwerror.ExitDataErr,
		},
		{
			name:     "lex error still parses",
			input:    "1 @ + 2",
			tree:     "(+ 1 2)",
			lexErr:   true,
			diags:    []string{"[line 1] Error: Unexpected character."},
			exitCode: mdwerror.ExitDataErr,
		},
		{
			name:     "both phases fail",
			input:    "\"open",
			lexErr:   true,
			parseErr: true,
			diags: []string{
				"[line 1] Error: Unterminated string.",
				"[line 1] Error at end: Expect expression.",
			},
			exitCode: mdwerror.ExitDataErr,
		},
	}

	e := newEngine(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.ProcessString(tt.input)
			defer res.Release()

			if got := res.String(); got != tt.tree {
				t.Errorf("tree = %q, want %q", got, tt.tree)
			}
			if res.LexError != tt.lexErr || res.ParseError != tt.parseErr {
				t.Errorf("flags = lex %v parse %v, want %v %v", res.LexError, res.ParseError, tt.lexErr, tt.parseErr)
			}
			if res.HadError() != (tt.lexErr || tt.parseErr) {
				t.Errorf("HadError() = %v", res.HadError())
			}
			if len(res.Diagnostics) != len(tt.diags) {
				t.Fatalf("diagnostics = %v, want %v", res.Diagnostics, tt.diags)
			}
			for i, d := range res.Diagnostics {
				if d.String() != tt.diags[i] {
					t.Errorf("diagnostic[%d] = %q, want %q", i, d, tt.diags[i])
				}
			}
			if got := res.ExitCode(); got != tt.exitCode {
				t.Errorf("ExitCode() = %d, want %d", got, tt.exitCode)
			}
			if tt.tokenKind != nil {
				kinds := res.Tokens.Kinds()
				if fmt.Sprint(kinds) != fmt.Sprint(tt.tokenKind) {
					t.Errorf("kinds = %v, want %v", kinds, tt.tokenKind)
				}
			}
		})
	}
}

func TestEngine_ErrorCodes(t *testing.T) {
	e := newEngine(t, Options{})

	res := e.ProcessString("1 +")
	if !mdwerror.HasCode(res.Err, mdwerror.CodeParseError) {
		t.Errorf("parse failure code = %v", mdwerror.GetCode(res.Err))
	}

	res = e.ProcessString("#")
	if !mdwerror.HasCode(res.Err, mdwerror.CodeLexError) {
		t.Errorf("lex failure code = %v", mdwerror.GetCode(res.Err))
	}
}

func TestEngine_AllocationLimit(t *testing.T) {
	e := newEngine(t, Options{MaxTokens: 4})
	res := e.ProcessString("1 + 2 + 3 + 4")

	if res.Err == nil || !mdwerror.HasCode(res.Err, mdwerror.CodeAllocation) {
		t.Fatalf("Err = %v, want allocation failure", res.Err)
	}
	if res.Tree != nil || res.ParseError {
		t.Error("an allocation failure must stop before parsing")
	}
	if last := res.Tokens.Last(); last.Kind != scanner.EOF {
		t.Errorf("last token = %v, want EOF", last)
	}

	e = newEngine(t, Options{KeywordCapacity: 8, KeywordMaxCapacity: 8})
	if res := e.ProcessString("nil"); !mdwerror.HasCode(res.Err, mdwerror.CodeAllocation) {
		t.Errorf("keyword table limit: Err = %v", res.Err)
	}
}

func TestEngine_Reporter(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, Options{Reporter: diag.NewWriterReporter(&buf)})
	e.ProcessString("@\n)")

	want := "[line 1] Error: Unexpected character.\n[line 2] Error at ')': Expect expression.\n"
	if buf.String() != want {
		t.Errorf("reporter output = %q, want %q", buf.String(), want)
	}
}

func TestEngine_Tokenize(t *testing.T) {
	e := newEngine(t, Options{})
	list, diags, err := e.Tokenize([]byte("var x = \"s\";"))
	if err != nil || len(diags) != 0 {
		t.Fatalf("Tokenize() = %v, %v", diags, err)
	}
	if list.Len() != 6 || list.At(0).Kind != scanner.Var || list.At(3).Lexeme != "s" {
		t.Errorf("tokens = %v", list.Tokens())
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(Options{Logger: mdwlog.Discard(), MaxDepth: -1})
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
		t.Errorf("New() error = %v, want INVALID_CONFIG", err)
	}
}

func TestEngine_Concurrent(t *testing.T) {
	e := newEngine(t, Options{})

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			var src, want string
			if n%2 == 0 {
				src = fmt.Sprintf("%d - %d - (%d)", n, n+1, n+2)
				want = fmt.Sprintf("(- (- %d %d) (group %d))", n, n+1, n+2)
			} else {
				src = strings.Repeat("!", n) + "true"
				want = strings.Repeat("(! ", n) + "true" + strings.Repeat(")", n)
			}
			for j := 0; j < 20; j++ {
				res := e.ProcessString(src)
				got := res.String()
				res.Release()
				if got != want || res.HadError() {
					errs <- fmt.Sprintf("worker %d: got %q, want %q", n, got, want)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
