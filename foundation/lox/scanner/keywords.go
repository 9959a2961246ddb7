// File: keywords.go
// Title: Reserved Words
// Description: The fixed reserved-word set and the construction of the
//              per-scan keyword table.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package scanner

import (
	mdwerror "github.com/msto63/lox/foundation/core/error"
	"github.com/msto63/lox/foundation/lox/table"
)

var reserved = [...]struct {
	word string
	kind Kind
}{
	{"and", And},
	{"class", Class},
	{"else", Else},
	{"false", False},
	{"for", For},
	{"fun", Fun},
	{"if", If},
	{"nil", Nil},
	{"or", Or},
	{"print", Print},
	{"return", Return},
	{"super", Super},
	{"this", This},
	{"true", True},
	{"var", Var},
	{"while", While},
}

// Keywords returns the reserved words in kind order
func Keywords() []string {
	out := make([]string, len(reserved))
	for i, r := range reserved {
		out[i] = r.word
	}
	return out
}

// IsKeyword reports whether word is reserved
func IsKeyword(word string) bool {
	for _, r := range reserved {
		if r.word == word {
			return true
		}
	}
	return false
}

// newKeywordTable builds the reserved-word table owned by one scan. The
// caller destroys it when the scan ends.
func newKeywordTable(capacity int, opts ...table.Option) (*table.Table[Kind], error) {
	t, err := table.New[Kind](capacity, opts...)
	if err != nil {
		return nil, mdwerror.Wrap(err, "create keyword table")
	}
	for _, r := range reserved {
		if err := t.Upsert(r.word, r.kind); err != nil {
			t.Destroy()
			return nil, mdwerror.Wrap(err, "insert keyword "+r.word)
		}
	}
	return t, nil
}
