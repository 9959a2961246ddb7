// File: tree.go
// Title: Owned Expression Tree
// Description: A parsed expression together with the arena that owns its
//              nodes.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package ast

// Tree owns the nodes reachable from Root
type Tree struct {
	Root  Expr
	arena *Arena
}

// NewTree ties root to the arena its nodes were allocated from
func NewTree(root Expr, arena *Arena) *Tree {
	return &Tree{Root: root, arena: arena}
}

// Nodes returns the number of nodes owned by the tree
func (t *Tree) Nodes() int {
	if t == nil || t.arena == nil {
		return 0
	}
	return t.arena.Len()
}

// String returns the printed form of the root, or "" once released
func (t *Tree) String() string {
	if t == nil || t.Root == nil {
		return ""
	}
	return Print(t.Root)
}

// Released reports whether the tree has been released
func (t *Tree) Released() bool {
	return t == nil || t.Root == nil
}

// Release frees all nodes. Root is nil afterwards. Calling Release more
// than once, or on a nil tree, is safe.
func (t *Tree) Release() {
	if t == nil {
		return
	}
	t.Root = nil
	if t.arena != nil {
		t.arena.Release()
	}
}
