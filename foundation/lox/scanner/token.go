// File: token.go
// Title: Tokens and Token Lists
// Description: Defines the token kinds of the language, the immutable token
//              record and the append-only token list that owns every lexeme
//              produced by one scan.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation

package scanner

import (
	"encoding/json"
	"fmt"

	mdwerror "github.com/msto63/lox/foundation/core/error"
)

// Kind represents the kind of a lexical token
type Kind int

const (
	// Single-character tokens
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character tokens
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals
	Identifier
	String
	Number

	// Keywords
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	EOF
)

var kindNames = [...]string{
	LeftParen:    "LEFT_PAREN",
	RightParen:   "RIGHT_PAREN",
	LeftBrace:    "LEFT_BRACE",
	RightBrace:   "RIGHT_BRACE",
	Comma:        "COMMA",
	Dot:          "DOT",
	Minus:        "MINUS",
	Plus:         "PLUS",
	Semicolon:    "SEMICOLON",
	Slash:        "SLASH",
	Star:         "STAR",
	Bang:         "BANG",
	BangEqual:    "BANG_EQUAL",
	Equal:        "EQUAL",
	EqualEqual:   "EQUAL_EQUAL",
	Greater:      "GREATER",
	GreaterEqual: "GREATER_EQUAL",
	Less:         "LESS",
	LessEqual:    "LESS_EQUAL",
	Identifier:   "IDENTIFIER",
	String:       "STRING",
	Number:       "NUMBER",
	And:          "AND",
	Class:        "CLASS",
	Else:         "ELSE",
	False:        "FALSE",
	For:          "FOR",
	Fun:          "FUN",
	If:           "IF",
	Nil:          "NIL",
	Or:           "OR",
	Print:        "PRINT",
	Return:       "RETURN",
	Super:        "SUPER",
	This:         "THIS",
	True:         "TRUE",
	Var:          "VAR",
	While:        "WHILE",
	EOF:          "EOF",
}

// String returns the upper-case name of the kind
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	name := string(text)
	for i, n := range kindNames {
		if n == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown token kind %q", name)
}

// IsKeyword reports whether k is a reserved word kind
func (k Kind) IsKeyword() bool {
	return k >= And && k <= While
}

// Token is one lexical token. Lexeme is the source text the token was
// derived from, with the quotes removed for strings.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

// Length returns the byte length of the lexeme
func (t Token) Length() int {
	return len(t.Lexeme)
}

// String renders the token for debugging
func (t Token) String() string {
	return fmt.Sprintf("%s %q line %d", t.Kind, t.Lexeme, t.Line)
}

type tokenJSON struct {
	Kind   Kind   `json:"kind"`
	Lexeme string `json:"lexeme"`
	Length int    `json:"length"`
	Line   int    `json:"line"`
}

// MarshalJSON renders the token as {kind, lexeme, length, line}
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(tokenJSON{Kind: t.Kind, Lexeme: t.Lexeme, Length: t.Length(), Line: t.Line})
}

// UnmarshalJSON reads the {kind, lexeme, length, line} shape
func (t *Token) UnmarshalJSON(data []byte) error {
	var raw tokenJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Token{Kind: raw.Kind, Lexeme: raw.Lexeme, Line: raw.Line}
	return nil
}

// InitialListCapacity is the capacity of a new TokenList
const InitialListCapacity = 8

// TokenList is an ordered, append-only sequence of tokens. It grows by
// doubling from InitialListCapacity.
type TokenList struct {
	tokens    []Token
	maxTokens int
}

// NewTokenList creates an empty list. maxTokens > 0 caps the number of
// tokens the list will accept.
func NewTokenList(maxTokens int) *TokenList {
	return &TokenList{
		tokens:    make([]Token, 0, InitialListCapacity),
		maxTokens: maxTokens,
	}
}

// Append adds tok. When the limit is reached the list is left unchanged and
// an allocation error is returned.
func (l *TokenList) Append(tok Token) error {
	if l.maxTokens > 0 && len(l.tokens) >= l.maxTokens {
		return mdwerror.New("token list capacity exhausted").
			WithCode(mdwerror.CodeAllocation).
			WithOperation("tokenlist.append").
			WithDetail("limit", l.maxTokens)
	}
	if len(l.tokens) == cap(l.tokens) {
		grown := make([]Token, len(l.tokens), 2*cap(l.tokens))
		copy(grown, l.tokens)
		l.tokens = grown
	}
	l.tokens = append(l.tokens, tok)
	return nil
}

// terminate appends EOF even when the limit is reached, so every list a
// scan hands out ends with EOF.
func (l *TokenList) terminate(line int) {
	l.tokens = append(l.tokens, Token{Kind: EOF, Line: line})
}

// Len returns the number of tokens
func (l *TokenList) Len() int {
	return len(l.tokens)
}

// Cap returns the current storage capacity
func (l *TokenList) Cap() int {
	return cap(l.tokens)
}

// At returns the token at index i
func (l *TokenList) At(i int) Token {
	return l.tokens[i]
}

// Last returns the final token, or an EOF token on an empty list
func (l *TokenList) Last() Token {
	if len(l.tokens) == 0 {
		return Token{Kind: EOF}
	}
	return l.tokens[len(l.tokens)-1]
}

// Tokens returns a copy of the tokens
func (l *TokenList) Tokens() []Token {
	out := make([]Token, len(l.tokens))
	copy(out, l.tokens)
	return out
}

// Kinds returns the kind of every token, in order
func (l *TokenList) Kinds() []Kind {
	out := make([]Kind, len(l.tokens))
	for i, t := range l.tokens {
		out[i] = t.Kind
	}
	return out
}

// MarshalJSON renders the list as a JSON array of tokens
func (l *TokenList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.tokens)
}
