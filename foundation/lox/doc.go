// File: doc.go
// Title: Lox Front End Package Documentation
// Description: Documents the lox front end: keyword table, scanner,
//              expression parser, tree model and the engine that runs
//              them together.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial documentation

/*
Package lox implements the front end of a tree-walk interpreter for the Lox
language: source text goes in, tokens and an owned expression tree come out.

Package: lox
Title: Lox Front End
Description: Scans source text into tokens, classifies reserved words with
             an open-addressing hash table and parses a single expression
             by precedence climbing. Nothing is evaluated.
Author: msto63 with Claude Sonnet 4.0
Version: v0.1.0
Created: 2026-10-14
Modified: 2026-10-14

Change History:
- 2026-10-14 v0.1.0: Initial implementation

Key Features:
  • Byte-oriented scanner with line tracking and error recovery
  • Keyword classification through a generic open-addressing table
  • Recursive descent expression parser with positioned diagnostics
  • Arena-owned expression trees released in one call
  • No package-level state: concurrent runs are independent

# Pipeline

	source ──scanner──▶ TokenList ──parser──▶ ast.Tree
	            │                      │
	            └────── diag.Reporter ◀┘

Every Process call builds its own scanner, keyword table and parser. The
keyword table lives for one scan and is destroyed at its end. The tree owns
all of its nodes through an ast.Arena and is freed by Tree.Release.

# Grammar

	expression → equality
	equality   → comparison ( ( "!=" | "==" ) comparison )*
	comparison → term ( ( ">" | ">=" | "<" | "<=" ) term )*
	term       → factor ( ( "-" | "+" ) factor )*
	factor     → unary ( ( "/" | "*" ) unary )*
	unary      → ( "!" | "-" ) unary | primary
	primary    → NUMBER | STRING | "true" | "false" | "nil" | "(" expression ")"

# Diagnostics

Each error becomes exactly one line:

	[line 1] Error at end: Expect ')' after expression.
	[line 3] Error: Unexpected character.

Lexical errors do not stop the scan; all of them are reported. A parse stops
at its first error and yields no tree.

# Usage

	import "github.com/msto63/lox/foundation/lox"

	engine, err := lox.New(lox.Options{})
	if err != nil {
		return err
	}
	res := engine.ProcessString("-123 * (45.67)")
	defer res.Release()
	fmt.Println(res) // (* (- 123) (group 45.67))

# Subpackages

  - table:   open-addressing hash table keyed by strings
  - scanner: tokens, token lists and the scanner
  - parser:  expression parser and ParseError
  - ast:     nodes, arena, tree and visitors (including the debug printer)
  - diag:    diagnostics and reporters
*/
package lox
