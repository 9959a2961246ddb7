// File: nodes.go
// Title: Expression Node Definitions
// Description: Defines the closed set of expression nodes (binary,
//              grouping, literal, unary) and the tagged literal value.
//              Nodes are allocated from an Arena and owned by a Tree.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial node definitions

package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/msto63/lox/foundation/lox/scanner"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// String returns the parenthesized prefix form of the node
	String() string

	// Accept implements the visitor pattern
	Accept(visitor Visitor) interface{}

	// Position returns the source position of the node
	Position() Position

	// Validate checks the structural invariants of the subtree
	Validate() error
}

// Position represents a position in the source code
type Position struct {
	Line int // 1-based
}

// Expr is an expression node
type Expr interface {
	Node
	exprNode() // marker method
}

// LiteralKind tags the payload of a Value
type LiteralKind int

const (
	LiteralInteger LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBoolean
	LiteralNil
)

// String returns the kind name
func (k LiteralKind) String() string {
	switch k {
	case LiteralInteger:
		return "integer"
	case LiteralFloat:
		return "float"
	case LiteralString:
		return "string"
	case LiteralBoolean:
		return "boolean"
	case LiteralNil:
		return "nil"
	default:
		return "unknown"
	}
}

// Value is a literal value. Only the field selected by Kind is meaningful.
type Value struct {
	Kind  LiteralKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

// IntValue returns an integer literal value
func IntValue(v int64) Value { return Value{Kind: LiteralInteger, Int: v} }

// FloatValue returns a floating literal value
func FloatValue(v float64) Value { return Value{Kind: LiteralFloat, Float: v} }

// StringValue returns a string literal value
func StringValue(v string) Value { return Value{Kind: LiteralString, Str: v} }

// BoolValue returns a boolean literal value
func BoolValue(v bool) Value { return Value{Kind: LiteralBoolean, Bool: v} }

// NilValue returns the nil literal value
func NilValue() Value { return Value{Kind: LiteralNil} }

// String renders the value the way the printer shows it. Floats always
// carry a fractional part so they stay distinguishable from integers.
func (v Value) String() string {
	switch v.Kind {
	case LiteralInteger:
		return strconv.FormatInt(v.Int, 10)
	case LiteralFloat:
		s := strconv.FormatFloat(v.Float, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case LiteralString:
		return `"` + v.Str + `"`
	case LiteralBoolean:
		return strconv.FormatBool(v.Bool)
	case LiteralNil:
		return "nil"
	default:
		return "<invalid>"
	}
}

// Interface returns the payload as a plain Go value (nil for LiteralNil)
func (v Value) Interface() interface{} {
	switch v.Kind {
	case LiteralInteger:
		return v.Int
	case LiteralFloat:
		return v.Float
	case LiteralString:
		return v.Str
	case LiteralBoolean:
		return v.Bool
	default:
		return nil
	}
}

// Binary is a left operand, an infix operator and a right operand
type Binary struct {
	Left     Expr
	Operator scanner.Token
	Right    Expr
}

// Grouping is a parenthesized expression
type Grouping struct {
	Expression Expr
	Pos        Position
}

// Literal is a number, string, boolean or nil
type Literal struct {
	Value Value
	Pos   Position
}

// Unary is a prefix operator applied to an operand
type Unary struct {
	Operator scanner.Token
	Right    Expr
}

func isBinaryOperator(k scanner.Kind) bool {
	switch k {
	case scanner.BangEqual, scanner.EqualEqual,
		scanner.Greater, scanner.GreaterEqual, scanner.Less, scanner.LessEqual,
		scanner.Minus, scanner.Plus, scanner.Slash, scanner.Star:
		return true
	default:
		return false
	}
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Operator.Lexeme, b.Left.String(), b.Right.String())
}

func (b *Binary) Accept(visitor Visitor) interface{} {
	return visitor.VisitBinary(b)
}

func (b *Binary) Position() Position {
	return Position{Line: b.Operator.Line}
}

func (b *Binary) Validate() error {
	if b.Left == nil {
		return fmt.Errorf("left operand is required")
	}
	if b.Right == nil {
		return fmt.Errorf("right operand is required")
	}
	if !isBinaryOperator(b.Operator.Kind) {
		return fmt.Errorf("%s is not a binary operator", b.Operator.Kind)
	}
	if err := b.Left.Validate(); err != nil {
		return fmt.Errorf("left operand: %w", err)
	}
	if err := b.Right.Validate(); err != nil {
		return fmt.Errorf("right operand: %w", err)
	}
	return nil
}

func (b *Binary) exprNode() {}

func (g *Grouping) String() string {
	return fmt.Sprintf("(group %s)", g.Expression.String())
}

func (g *Grouping) Accept(visitor Visitor) interface{} {
	return visitor.VisitGrouping(g)
}

func (g *Grouping) Position() Position {
	return g.Pos
}

func (g *Grouping) Validate() error {
	if g.Expression == nil {
		return fmt.Errorf("grouped expression is required")
	}
	return g.Expression.Validate()
}

func (g *Grouping) exprNode() {}

func (l *Literal) String() string {
	return l.Value.String()
}

func (l *Literal) Accept(visitor Visitor) interface{} {
	return visitor.VisitLiteral(l)
}

func (l *Literal) Position() Position {
	return l.Pos
}

func (l *Literal) Validate() error {
	if l.Value.Kind < LiteralInteger || l.Value.Kind > LiteralNil {
		return fmt.Errorf("invalid literal kind %d", l.Value.Kind)
	}
	return nil
}

func (l *Literal) exprNode() {}

func (u *Unary) String() string {
	return fmt.Sprintf("(%s %s)", u.Operator.Lexeme, u.Right.String())
}

func (u *Unary) Accept(visitor Visitor) interface{} {
	return visitor.VisitUnary(u)
}

func (u *Unary) Position() Position {
	return Position{Line: u.Operator.Line}
}

func (u *Unary) Validate() error {
	if u.Right == nil {
		return fmt.Errorf("operand is required")
	}
	if u.Operator.Kind != scanner.Bang && u.Operator.Kind != scanner.Minus {
		return fmt.Errorf("%s is not a unary operator", u.Operator.Kind)
	}
	return u.Right.Validate()
}

func (u *Unary) exprNode() {}
