// File: visitor.go
// Title: Expression Visitors
// Description: Implements the visitor pattern over expression nodes and the
//              visitors built on it: the debug printer, a node collector, a
//              depth counter and a map encoder for structured output.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial visitor implementation

package ast

import (
	"strings"
)

// Visitor interface for traversing expression nodes
type Visitor interface {
	VisitBinary(expr *Binary) interface{}
	VisitGrouping(expr *Grouping) interface{}
	VisitLiteral(expr *Literal) interface{}
	VisitUnary(expr *Unary) interface{}
}

// Walk calls fn for expr and its descendants in pre-order. Returning false
// from fn skips the children of that node.
func Walk(expr Expr, fn func(Expr) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	switch e := expr.(type) {
	case *Binary:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *Grouping:
		Walk(e.Expression, fn)
	case *Unary:
		Walk(e.Right, fn)
	}
}

// StringVisitor renders a tree in parenthesized prefix form, e.g.
// (* (- 123) (group 45.67))
type StringVisitor struct {
	buffer strings.Builder
}

// NewStringVisitor creates a new string visitor
func NewStringVisitor() *StringVisitor {
	return &StringVisitor{}
}

// String returns everything rendered so far
func (sv *StringVisitor) String() string {
	return sv.buffer.String()
}

func (sv *StringVisitor) parenthesize(name string, exprs ...Expr) {
	sv.buffer.WriteByte('(')
	sv.buffer.WriteString(name)
	for _, e := range exprs {
		sv.buffer.WriteByte(' ')
		e.Accept(sv)
	}
	sv.buffer.WriteByte(')')
}

func (sv *StringVisitor) VisitBinary(expr *Binary) interface{} {
	sv.parenthesize(expr.Operator.Lexeme, expr.Left, expr.Right)
	return nil
}

func (sv *StringVisitor) VisitGrouping(expr *Grouping) interface{} {
	sv.parenthesize("group", expr.Expression)
	return nil
}

func (sv *StringVisitor) VisitLiteral(expr *Literal) interface{} {
	sv.buffer.WriteString(expr.Value.String())
	return nil
}

func (sv *StringVisitor) VisitUnary(expr *Unary) interface{} {
	sv.parenthesize(expr.Operator.Lexeme, expr.Right)
	return nil
}

// Print renders expr with a StringVisitor
func Print(expr Expr) string {
	if expr == nil {
		return ""
	}
	sv := NewStringVisitor()
	expr.Accept(sv)
	return sv.String()
}

// CollectorVisitor gathers nodes by type
type CollectorVisitor struct {
	Binaries  []*Binary
	Groupings []*Grouping
	Literals  []*Literal
	Unaries   []*Unary
}

// NewCollectorVisitor creates a new collector
func NewCollectorVisitor() *CollectorVisitor {
	return &CollectorVisitor{}
}

// Collect walks expr and records every node
func (cv *CollectorVisitor) Collect(expr Expr) *CollectorVisitor {
	Walk(expr, func(e Expr) bool {
		e.Accept(cv)
		return true
	})
	return cv
}

// Total returns the number of collected nodes
func (cv *CollectorVisitor) Total() int {
	return len(cv.Binaries) + len(cv.Groupings) + len(cv.Literals) + len(cv.Unaries)
}

func (cv *CollectorVisitor) VisitBinary(expr *Binary) interface{} {
	cv.Binaries = append(cv.Binaries, expr)
	return nil
}

func (cv *CollectorVisitor) VisitGrouping(expr *Grouping) interface{} {
	cv.Groupings = append(cv.Groupings, expr)
	return nil
}

func (cv *CollectorVisitor) VisitLiteral(expr *Literal) interface{} {
	cv.Literals = append(cv.Literals, expr)
	return nil
}

func (cv *CollectorVisitor) VisitUnary(expr *Unary) interface{} {
	cv.Unaries = append(cv.Unaries, expr)
	return nil
}

// depthVisitor returns the height of a subtree as an int
type depthVisitor struct{}

func (d depthVisitor) VisitBinary(expr *Binary) interface{} {
	l := expr.Left.Accept(d).(int)
	r := expr.Right.Accept(d).(int)
	if r > l {
		l = r
	}
	return l + 1
}

func (d depthVisitor) VisitGrouping(expr *Grouping) interface{} {
	return expr.Expression.Accept(d).(int) + 1
}

func (d depthVisitor) VisitLiteral(*Literal) interface{} {
	return 1
}

func (d depthVisitor) VisitUnary(expr *Unary) interface{} {
	return expr.Right.Accept(d).(int) + 1
}

// Depth returns the height of expr (a single literal has depth 1)
func Depth(expr Expr) int {
	if expr == nil {
		return 0
	}
	return expr.Accept(depthVisitor{}).(int)
}

// MapVisitor encodes nodes as nested maps built only from strings, numbers,
// booleans, nil and maps, suitable for JSON and protobuf Struct values.
type MapVisitor struct{}

func (m MapVisitor) VisitBinary(expr *Binary) interface{} {
	return map[string]interface{}{
		"type":     "binary",
		"operator": expr.Operator.Lexeme,
		"line":     expr.Operator.Line,
		"left":     expr.Left.Accept(m),
		"right":    expr.Right.Accept(m),
	}
}

func (m MapVisitor) VisitGrouping(expr *Grouping) interface{} {
	return map[string]interface{}{
		"type":       "grouping",
		"line":       expr.Pos.Line,
		"expression": expr.Expression.Accept(m),
	}
}

func (m MapVisitor) VisitLiteral(expr *Literal) interface{} {
	return map[string]interface{}{
		"type":  "literal",
		"kind":  expr.Value.Kind.String(),
		"line":  expr.Pos.Line,
		"value": expr.Value.Interface(),
	}
}

func (m MapVisitor) VisitUnary(expr *Unary) interface{} {
	return map[string]interface{}{
		"type":     "unary",
		"operator": expr.Operator.Lexeme,
		"line":     expr.Operator.Line,
		"right":    expr.Right.Accept(m),
	}
}

// ToMap encodes expr with a MapVisitor; nil yields nil
func ToMap(expr Expr) map[string]interface{} {
	if expr == nil {
		return nil
	}
	return expr.Accept(MapVisitor{}).(map[string]interface{})
}
