// File: ast_test.go
// Title: Expression Tree Unit Tests
// Description: Tests for node rendering, validation, the arena lifecycle
//              and the visitors.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial test suite

package ast

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/msto63/lox/foundation/lox/scanner"
)

func tok(kind scanner.Kind, lexeme string) scanner.Token {
	return scanner.Token{Kind: kind, Lexeme: lexeme, Line: 1}
}

// sample builds (* (- 123) (group 45.67))
func sample(a *Arena) Expr {
	return a.NewBinary(
		a.NewUnary(tok(scanner.Minus, "-"), a.NewLiteral(IntValue(123), 1)),
		tok(scanner.Star, "*"),
		a.NewGrouping(a.NewLiteral(FloatValue(45.67), 1), 1),
	)
}

func TestPrint(t *testing.T) {
	a := NewArena()
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"sample", sample(a), "(* (- 123) (group 45.67))"},
		{"string", a.NewLiteral(StringValue("abc"), 1), `"abc"`},
		{"nil", a.NewLiteral(NilValue(), 1), "nil"},
		{"bool", a.NewUnary(tok(scanner.Bang, "!"), a.NewLiteral(BoolValue(true), 1)), "(! true)"},
		{"whole float", a.NewLiteral(FloatValue(2), 1), "2.0"},
		{"nil expr", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Print(tt.expr); got != tt.want {
				t.Errorf("Print() = %q, want %q", got, tt.want)
			}
			if tt.expr != nil && tt.expr.String() != tt.want {
				t.Errorf("String() = %q, want %q", tt.expr.String(), tt.want)
			}
		})
	}
}

func TestValueInterface(t *testing.T) {
	tests := []struct {
		v    Value
		want interface{}
	}{
		{IntValue(7), int64(7)},
		{FloatValue(1.5), 1.5},
		{StringValue("s"), "s"},
		{BoolValue(false), false},
		{NilValue(), nil},
	}
	for _, tt := range tests {
		if got := tt.v.Interface(); got != tt.want {
			t.Errorf("%v.Interface() = %v, want %v", tt.v.Kind, got, tt.want)
		}
	}
	if s := FloatValue(math.Inf(1)).String(); s != "+Inf" {
		t.Errorf("Inf renders as %q", s)
	}
}

func TestValidate(t *testing.T) {
	a := NewArena()
	if err := sample(a).Validate(); err != nil {
		t.Errorf("Validate() on well-formed tree = %v", err)
	}

	bad := []struct {
		name string
		expr Expr
	}{
		{"missing right", a.NewBinary(a.NewLiteral(IntValue(1), 1), tok(scanner.Plus, "+"), nil)},
		{"wrong operator", a.NewBinary(a.NewLiteral(IntValue(1), 1), tok(scanner.Comma, ","), a.NewLiteral(IntValue(2), 1))},
		{"unary plus", a.NewUnary(tok(scanner.Plus, "+"), a.NewLiteral(IntValue(1), 1))},
		{"empty group", a.NewGrouping(nil, 1)},
		{"nested", a.NewGrouping(a.NewUnary(tok(scanner.Minus, "-"), nil), 1)},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.expr.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestArenaChunking(t *testing.T) {
	a := NewArena()
	first := a.NewLiteral(IntValue(0), 1)
	for i := 1; i < chunkSize*3; i++ {
		a.NewLiteral(IntValue(int64(i)), 1)
	}
	if a.Len() != chunkSize*3 {
		t.Errorf("Len() = %d, want %d", a.Len(), chunkSize*3)
	}
	// earlier nodes are not moved by later allocations
	if first.Value.Int != 0 {
		t.Errorf("first node changed to %d", first.Value.Int)
	}
	first.Value.Int = 42
	if a.literals.chunks[0][0].Value.Int != 42 {
		t.Error("node pointer does not refer to arena storage")
	}
}

func TestTreeRelease(t *testing.T) {
	a := NewArena()
	tree := NewTree(sample(a), a)
	if tree.Nodes() != 5 {
		t.Errorf("Nodes() = %d, want 5", tree.Nodes())
	}

	tree.Release()
	if !tree.Released() || tree.Root != nil {
		t.Error("Release() should clear the root")
	}
	if !a.Released() || a.Len() != 0 {
		t.Error("Release() should release the arena")
	}
	tree.Release()
	if a.Release() {
		t.Error("arena released twice")
	}

	var nilTree *Tree
	nilTree.Release()
	if nilTree.Nodes() != 0 || nilTree.String() != "" {
		t.Error("nil tree should be empty")
	}
}

func TestArenaAllocAfterReleasePanics(t *testing.T) {
	a := NewArena()
	a.Release()
	defer func() {
		if recover() == nil {
			t.Error("allocation after Release should panic")
		}
	}()
	a.NewLiteral(NilValue(), 1)
}

func TestCollectorAndDepth(t *testing.T) {
	a := NewArena()
	expr := sample(a)

	c := NewCollectorVisitor().Collect(expr)
	if len(c.Binaries) != 1 || len(c.Unaries) != 1 || len(c.Groupings) != 1 || len(c.Literals) != 2 {
		t.Errorf("collected %d/%d/%d/%d", len(c.Binaries), len(c.Unaries), len(c.Groupings), len(c.Literals))
	}
	if c.Total() != 5 {
		t.Errorf("Total() = %d, want 5", c.Total())
	}
	if d := Depth(expr); d != 3 {
		t.Errorf("Depth() = %d, want 3", d)
	}
	if Depth(nil) != 0 {
		t.Error("Depth(nil) should be 0")
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	a := NewArena()
	visited := 0
	Walk(sample(a), func(e Expr) bool {
		visited++
		_, isGroup := e.(*Grouping)
		return !isGroup
	})
	// binary, unary, 123, group (children skipped)
	if visited != 4 {
		t.Errorf("visited %d nodes, want 4", visited)
	}
}

func TestToMap(t *testing.T) {
	a := NewArena()
	m := ToMap(a.NewBinary(a.NewLiteral(IntValue(1), 1), tok(scanner.Plus, "+"), a.NewLiteral(StringValue("x"), 1)))

	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"left":{"kind":"integer","line":1,"type":"literal","value":1},"line":1,"operator":"+",` +
		`"right":{"kind":"string","line":1,"type":"literal","value":"x"},"type":"binary"}`
	if string(raw) != want {
		t.Errorf("ToMap() JSON = %s\nwant %s", raw, want)
	}
	if ToMap(nil) != nil {
		t.Error("ToMap(nil) should be nil")
	}
}
