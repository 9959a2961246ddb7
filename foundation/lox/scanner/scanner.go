// File: scanner.go
// Title: Lexical Analyzer
// Description: Converts source text into a token list in a single pass.
//              Lexical errors are reported to the diagnostic sink and the
//              scan continues, so every problem in the input surfaces in one
//              run. The list always ends with exactly one EOF token.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package scanner

import (
	"bytes"

	mdwlog "github.com/msto63/lox/foundation/core/log"
	"github.com/msto63/lox/foundation/lox/diag"
	"github.com/msto63/lox/foundation/lox/table"
)

// Options configures a Scanner
type Options struct {
	// Logger receives scan summaries at debug level and tokens at trace level
	Logger *mdwlog.Logger

	// Reporter receives every lexical diagnostic as it is found
	Reporter diag.Reporter

	// MaxTokens > 0 caps the token list; exceeding it aborts the scan with
	// an allocation error
	MaxTokens int

	// KeywordCapacity is the initial bucket count of the keyword table
	KeywordCapacity int

	// KeywordMaxCapacity > 0 caps the keyword table
	KeywordMaxCapacity int
}

// DefaultOptions returns the default scanner options
func DefaultOptions() Options {
	return Options{
		Logger:          mdwlog.GetDefault(),
		KeywordCapacity: table.DefaultCapacity,
	}
}

// Scanner holds the cursor over one source buffer. A Scanner must not be
// shared between goroutines; create one per input.
type Scanner struct {
	source []byte
	start  int
	cur    int
	line   int

	list     *TokenList
	keywords *table.Table[Kind]
	errors   []diag.Diagnostic

	logger   *mdwlog.Logger
	reporter diag.Reporter
	options  Options
}

// New creates a scanner over source. Input ends at the end of the slice or
// at the first NUL byte, whichever comes first.
func New(source []byte, opts Options) *Scanner {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.Discard
	}
	if i := bytes.IndexByte(source, 0); i >= 0 {
		source = source[:i]
	}
	return &Scanner{
		source:   source,
		logger:   opts.Logger.WithComponent("lox-scanner"),
		reporter: opts.Reporter,
		options:  opts,
	}
}

// Scan tokenizes source with a fresh scanner
func Scan(source []byte, opts Options) (*TokenList, error) {
	return New(source, opts).Scan()
}

// Scan runs the scanner from the beginning of the input. It returns the
// token list together with a *diag.Errors when lexical errors occurred, or
// with an allocation error when a capacity limit was hit. In every case the
// returned list ends with EOF.
func (s *Scanner) Scan() (*TokenList, error) {
	s.start, s.cur, s.line = 0, 0, 1
	s.errors = nil
	s.list = NewTokenList(s.options.MaxTokens)

	keywords, err := newKeywordTable(s.options.KeywordCapacity, table.WithMaxCapacity(s.options.KeywordMaxCapacity))
	if err != nil {
		s.list.terminate(s.line)
		s.logger.LogError(err)
		return s.list, err
	}
	s.keywords = keywords
	defer func() {
		s.keywords.Destroy()
		s.keywords = nil
	}()

	for !s.isAtEnd() {
		s.start = s.cur
		if err := s.scanToken(); err != nil {
			s.list.terminate(s.line)
			s.logger.LogError(err)
			return s.list, err
		}
	}
	s.start = s.cur
	s.list.terminate(s.line)

	s.logger.Debug("scan finished", mdwlog.Fields{
		"bytes":      len(s.source),
		"tokens":     s.list.Len(),
		"lines":      s.line,
		"lex_errors": len(s.errors),
	})

	if len(s.errors) > 0 {
		return s.list, &diag.Errors{Kind: diag.KindLex, Items: s.errors}
	}
	return s.list, nil
}

// HadError reports whether the last Scan found lexical errors
func (s *Scanner) HadError() bool {
	return len(s.errors) > 0
}

func (s *Scanner) scanToken() error {
	c := s.advance()
	switch c {
	case '(':
		return s.add(LeftParen)
	case ')':
		return s.add(RightParen)
	case '{':
		return s.add(LeftBrace)
	case '}':
		return s.add(RightBrace)
	case ',':
		return s.add(Comma)
	case '.':
		return s.add(Dot)
	case '-':
		return s.add(Minus)
	case '+':
		return s.add(Plus)
	case ';':
		return s.add(Semicolon)
	case '*':
		return s.add(Star)
	case '!':
		return s.add(s.pick('=', BangEqual, Bang))
	case '=':
		return s.add(s.pick('=', EqualEqual, Equal))
	case '<':
		return s.add(s.pick('=', LessEqual, Less))
	case '>':
		return s.add(s.pick('=', GreaterEqual, Greater))
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
			return nil
		}
		return s.add(Slash)
	case ' ', '\r', '\t':
		return nil
	case '\n':
		s.line++
		return nil
	case '"':
		return s.scanString()
	default:
		switch {
		case isDigit(c):
			return s.scanNumber()
		case isAlpha(c):
			return s.scanIdentifier()
		default:
			s.lexError("Unexpected character.")
			return nil
		}
	}
}

func (s *Scanner) scanString() error {
	for s.peek() != '"' && !s.isAtEnd() {
		c := s.advance()
		if c == '\n' {
			s.line++
		}
		// a backslash protects the next byte from ending the literal
		if c == '\\' && !s.isAtEnd() {
			if s.advance() == '\n' {
				s.line++
			}
		}
	}

	if s.isAtEnd() {
		s.lexError("Unterminated string.")
		return nil
	}

	s.advance()
	return s.addLexeme(String, string(s.source[s.start+1:s.cur-1]))
}

func (s *Scanner) scanNumber() error {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.add(Number)
}

func (s *Scanner) scanIdentifier() error {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	kind, ok := s.keywords.Lookup(string(s.source[s.start:s.cur]))
	if !ok {
		kind = Identifier
	}
	return s.add(kind)
}

func (s *Scanner) add(kind Kind) error {
	return s.addLexeme(kind, string(s.source[s.start:s.cur]))
}

func (s *Scanner) addLexeme(kind Kind, lexeme string) error {
	tok := Token{Kind: kind, Lexeme: lexeme, Line: s.line}
	if err := s.list.Append(tok); err != nil {
		return err
	}
	if s.logger.IsLevelEnabled(mdwlog.LevelTrace) {
		s.logger.Trace("token", mdwlog.Fields{"kind": kind.String(), "lexeme": lexeme, "line": s.line})
	}
	return nil
}

func (s *Scanner) lexError(message string) {
	d := diag.Diagnostic{Kind: diag.KindLex, Line: s.line, Message: message}
	s.errors = append(s.errors, d)
	s.reporter.Report(d)
}

func (s *Scanner) pick(next byte, matched, single Kind) Kind {
	if s.match(next) {
		return matched
	}
	return single
}

func (s *Scanner) isAtEnd() bool {
	return s.cur >= len(s.source)
}

func (s *Scanner) advance() byte {
	c := s.source[s.cur]
	s.cur++
	return c
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.cur] != expected {
		return false
	}
	s.cur++
	return true
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.cur]
}

func (s *Scanner) peekNext() byte {
	if s.cur+1 >= len(s.source) {
		return 0
	}
	return s.source[s.cur+1]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
