// File: arena.go
// Title: Node Arena
// Description: Chunked allocator for expression nodes. All nodes of one
//              parse come from one arena and are released together, so a
//              failed parse frees its partial tree in one step.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package ast

import (
	"github.com/msto63/lox/foundation/lox/scanner"
)

// chunkSize is the number of nodes per chunk and per node type
const chunkSize = 64

// pool hands out pointers into fixed-capacity chunks. A chunk never grows
// past its capacity, so pointers stay valid until the pool is dropped.
type pool[T any] struct {
	chunks [][]T
	n      int
}

func (p *pool[T]) alloc() *T {
	last := len(p.chunks) - 1
	if last < 0 || len(p.chunks[last]) == cap(p.chunks[last]) {
		p.chunks = append(p.chunks, make([]T, 0, chunkSize))
		last++
	}
	var zero T
	p.chunks[last] = append(p.chunks[last], zero)
	p.n++
	return &p.chunks[last][len(p.chunks[last])-1]
}

func (p *pool[T]) drop() {
	p.chunks = nil
	p.n = 0
}

// Arena allocates the nodes of one tree. It is owned by a single parse and
// must not be shared between goroutines.
type Arena struct {
	binaries  pool[Binary]
	groupings pool[Grouping]
	literals  pool[Literal]
	unaries   pool[Unary]
	released  bool
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) checkLive() {
	if a.released {
		panic("ast: allocation from released arena")
	}
}

// NewBinary allocates a binary node
func (a *Arena) NewBinary(left Expr, op scanner.Token, right Expr) *Binary {
	a.checkLive()
	n := a.binaries.alloc()
	n.Left, n.Operator, n.Right = left, op, right
	return n
}

// NewGrouping allocates a grouping node
func (a *Arena) NewGrouping(inner Expr, line int) *Grouping {
	a.checkLive()
	n := a.groupings.alloc()
	n.Expression, n.Pos = inner, Position{Line: line}
	return n
}

// NewLiteral allocates a literal node
func (a *Arena) NewLiteral(v Value, line int) *Literal {
	a.checkLive()
	n := a.literals.alloc()
	n.Value, n.Pos = v, Position{Line: line}
	return n
}

// NewUnary allocates a unary node
func (a *Arena) NewUnary(op scanner.Token, right Expr) *Unary {
	a.checkLive()
	n := a.unaries.alloc()
	n.Operator, n.Right = op, right
	return n
}

// Len returns the number of live nodes
func (a *Arena) Len() int {
	return a.binaries.n + a.groupings.n + a.literals.n + a.unaries.n
}

// Released reports whether Release has been called
func (a *Arena) Released() bool {
	return a.released
}

// Release drops every node. It reports whether this call did the release,
// so a second call is a no-op returning false.
func (a *Arena) Release() bool {
	if a.released {
		return false
	}
	a.binaries.drop()
	a.groupings.drop()
	a.literals.drop()
	a.unaries.drop()
	a.released = true
	return true
}
