// File: parser.go
// Title: Recursive Descent Expression Parser
// Description: Builds an expression tree from a token list by precedence
//              climbing: equality, comparison, term, factor, unary, primary.
//              Errors are positioned diagnostics reported to the sink; the
//              failing parse yields no tree and releases its partial nodes.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial parser implementation

package parser

import (
	"strconv"
	"strings"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	mdwast "github.com/msto63/lox/foundation/lox/ast"
	"github.com/msto63/lox/foundation/lox/diag"
	"github.com/msto63/lox/foundation/lox/scanner"
)

// DefaultMaxDepth bounds expression nesting
const DefaultMaxDepth = 512

// Error messages
const (
	msgExpectExpression = "Expect expression."
	msgExpectRightParen = "Expect ')' after expression."
	msgExpectEnd        = "Expect end of expression."
	msgInvalidNumber    = "Invalid number literal."
	msgTooDeep          = "Expression nesting too deep."
)

// Parser walks one token list with a forward-only cursor. It never mutates
// the list. A Parser must not be shared between goroutines.
type Parser struct {
	tokens   *scanner.TokenList
	current  int
	depth    int
	hadError bool

	arena    *mdwast.Arena
	logger   *mdwlog.Logger
	reporter diag.Reporter
	options  Options
}

// Options configures parser behavior
type Options struct {
	Logger   *mdwlog.Logger
	Reporter diag.Reporter

	// MaxDepth bounds nesting of groups and unary operators; 0 means DefaultMaxDepth
	MaxDepth int
}

// ParseError is a positioned parse failure
type ParseError struct {
	Token      scanner.Token
	Diagnostic diag.Diagnostic
}

func (pe *ParseError) Error() string {
	return pe.Diagnostic.String()
}

// Unwrap exposes the LOX_PARSE code to mdwerror.HasCode
func (pe *ParseError) Unwrap() error {
	return mdwerror.New(pe.Diagnostic.Message).
		WithCode(mdwerror.CodeParseError).
		WithDetail("line", pe.Diagnostic.Line).
		WithDetail("lexeme", pe.Token.Lexeme)
}

// New creates a parser over tokens. The list must end with EOF, which every
// list produced by the scanner does.
func New(tokens *scanner.TokenList, opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.Discard
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if tokens == nil || tokens.Len() == 0 || tokens.Last().Kind != scanner.EOF {
		// a list without EOF would let the cursor run off the end
		fixed := scanner.NewTokenList(0)
		line := 1
		if tokens != nil {
			for _, t := range tokens.Tokens() {
				_ = fixed.Append(t)
				line = t.Line
			}
		}
		_ = fixed.Append(scanner.Token{Kind: scanner.EOF, Line: line})
		tokens = fixed
	}
	return &Parser{
		tokens:   tokens,
		logger:   opts.Logger.WithComponent("lox-parser"),
		reporter: opts.Reporter,
		options:  opts,
	}
}

// Parse parses tokens as one expression that must span the whole list
func Parse(tokens *scanner.TokenList, opts Options) (*mdwast.Tree, error) {
	return New(tokens, opts).Parse()
}

// Parse parses the whole token list as a single expression. On failure the
// tree is nil, the error is a *ParseError and HadError reports true.
func (p *Parser) Parse() (*mdwast.Tree, error) {
	p.current = 0
	tree, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !p.isAtEnd() {
		tree.Release()
		return nil, p.errorAt(p.peek(), msgExpectEnd)
	}

	p.logger.Debug("parse finished", mdwlog.Fields{
		"tokens": p.tokens.Len(),
		"nodes":  tree.Nodes(),
		"depth":  mdwast.Depth(tree.Root),
	})
	return tree, nil
}

// ParseExpression parses one expression starting at the cursor and leaves
// the cursor after it. Callers building statement grammars combine it with
// Synchronize.
func (p *Parser) ParseExpression() (*mdwast.Tree, error) {
	p.arena = mdwast.NewArena()
	p.depth = 0
	root, err := p.expression()
	if err != nil {
		p.arena.Release()
		p.arena = nil
		return nil, err
	}
	tree := mdwast.NewTree(root, p.arena)
	p.arena = nil
	return tree, nil
}

// HadError reports whether any parse error occurred on this parser
func (p *Parser) HadError() bool {
	return p.hadError
}

// ResetError clears the error flag
func (p *Parser) ResetError() {
	p.hadError = false
}

// Current returns the token under the cursor
func (p *Parser) Current() scanner.Token {
	return p.peek()
}

// Synchronize discards tokens until a statement boundary: just after a ';'
// or just before class, fun, var, for, if, while, print or return, or at EOF.
func (p *Parser) Synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == scanner.Semicolon {
			return
		}
		switch p.peek().Kind {
		case scanner.Class, scanner.Fun, scanner.Var, scanner.For,
			scanner.If, scanner.While, scanner.Print, scanner.Return:
			return
		}
		p.advance()
	}
}

// expression -> equality
func (p *Parser) expression() (mdwast.Expr, error) {
	return p.equality()
}

// equality -> comparison (("!=" | "==") comparison)*
func (p *Parser) equality() (mdwast.Expr, error) {
	return p.binary(p.comparison, scanner.BangEqual, scanner.EqualEqual)
}

// comparison -> term ((">" | ">=" | "<" | "<=") term)*
func (p *Parser) comparison() (mdwast.Expr, error) {
	return p.binary(p.term, scanner.Greater, scanner.GreaterEqual, scanner.Less, scanner.LessEqual)
}

// term -> factor (("-" | "+") factor)*
func (p *Parser) term() (mdwast.Expr, error) {
	return p.binary(p.factor, scanner.Minus, scanner.Plus)
}

// factor -> unary (("/" | "*") unary)*
func (p *Parser) factor() (mdwast.Expr, error) {
	return p.binary(p.unary, scanner.Slash, scanner.Star)
}

// binary folds a left-associative level
func (p *Parser) binary(operand func() (mdwast.Expr, error), ops ...scanner.Kind) (mdwast.Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		op := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = p.arena.NewBinary(left, op, right)
	}
	return left, nil
}

// unary -> ("!" | "-") unary | primary
func (p *Parser) unary() (mdwast.Expr, error) {
	if p.match(scanner.Bang, scanner.Minus) {
		op := p.previous()
		if err := p.enter(); err != nil {
			return nil, err
		}
		right, err := p.unary()
		p.leave()
		if err != nil {
			return nil, err
		}
		return p.arena.NewUnary(op, right), nil
	}
	return p.primary()
}

// primary -> NUMBER | STRING | "true" | "false" | "nil" | "(" expression ")"
func (p *Parser) primary() (mdwast.Expr, error) {
	switch {
	case p.match(scanner.False):
		return p.arena.NewLiteral(mdwast.BoolValue(false), p.previous().Line), nil
	case p.match(scanner.True):
		return p.arena.NewLiteral(mdwast.BoolValue(true), p.previous().Line), nil
	case p.match(scanner.Nil):
		return p.arena.NewLiteral(mdwast.NilValue(), p.previous().Line), nil
	case p.match(scanner.Number):
		return p.number(p.previous())
	case p.match(scanner.String):
		tok := p.previous()
		return p.arena.NewLiteral(mdwast.StringValue(tok.Lexeme), tok.Line), nil
	case p.match(scanner.LeftParen):
		line := p.previous().Line
		if err := p.enter(); err != nil {
			return nil, err
		}
		inner, err := p.expression()
		p.leave()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(scanner.RightParen, msgExpectRightParen); err != nil {
			return nil, err
		}
		return p.arena.NewGrouping(inner, line), nil
	}
	return nil, p.errorAt(p.peek(), msgExpectExpression)
}

func (p *Parser) number(tok scanner.Token) (mdwast.Expr, error) {
	if strings.ContainsRune(tok.Lexeme, '.') {
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorAt(tok, msgInvalidNumber)
		}
		return p.arena.NewLiteral(mdwast.FloatValue(f), tok.Line), nil
	}
	n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		return nil, p.errorAt(tok, msgInvalidNumber)
	}
	return p.arena.NewLiteral(mdwast.IntValue(n), tok.Line), nil
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.options.MaxDepth {
		p.depth--
		return p.errorAt(p.peek(), msgTooDeep)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// consume advances past a token of the expected kind, or reports message at
// the current token without advancing.
func (p *Parser) consume(kind scanner.Kind, message string) (scanner.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return p.peek(), p.errorAt(p.peek(), message)
}

func (p *Parser) match(kinds ...scanner.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(kind scanner.Kind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) advance() scanner.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == scanner.EOF
}

func (p *Parser) peek() scanner.Token {
	return p.tokens.At(p.current)
}

func (p *Parser) previous() scanner.Token {
	if p.current == 0 {
		return p.tokens.At(0)
	}
	return p.tokens.At(p.current - 1)
}

func (p *Parser) errorAt(tok scanner.Token, message string) *ParseError {
	where := diag.AtLexeme(tok.Lexeme)
	if tok.Kind == scanner.EOF {
		where = diag.AtEnd
	}
	d := diag.Diagnostic{Kind: diag.KindParse, Line: tok.Line, Where: where, Message: message}
	p.hadError = true
	p.reporter.Report(d)
	p.logger.Debug("parse error", mdwlog.Fields{"line": tok.Line, "message": message, "lexeme": tok.Lexeme})
	return &ParseError{Token: tok, Diagnostic: d}
}
