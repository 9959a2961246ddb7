// ============================================================================
// lox - Lox Front End
// ============================================================================
//
// Package:     server
// Description: Network front end (gRPC and WebSocket) for the lox engine
// Author:      Mike Stoffels with Claude
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package server

import (
	"encoding/json"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	"github.com/msto63/lox/foundation/lox"
	mdwast "github.com/msto63/lox/foundation/lox/ast"
	"github.com/msto63/lox/foundation/lox/diag"
	"github.com/msto63/lox/foundation/lox/scanner"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request is the body of a process call
type Request struct {
	Source string `json:"source"`
	Name   string `json:"name,omitempty"`
}

// Payload is the wire form of one engine result
type Payload struct {
	Tokens      []scanner.Token        `json:"tokens"`
	Tree        string                 `json:"tree"`
	AST         map[string]interface{} `json:"ast,omitempty"`
	Diagnostics []diag.Diagnostic      `json:"diagnostics"`
	LexError    bool                   `json:"lex_error"`
	ParseError  bool                   `json:"parse_error"`
	Error       string                 `json:"error,omitempty"`
	Code        string                 `json:"code,omitempty"`
	ExitCode    int                    `json:"exit_code"`
	DurationMS  float64                `json:"duration_ms"`
}

// NewPayload converts res. It must be called before res is released.
func NewPayload(res *lox.Result) *Payload {
	p := &Payload{
		Tree:        res.String(),
		Diagnostics: res.Diagnostics,
		LexError:    res.LexError,
		ParseError:  res.ParseError,
		ExitCode:    res.ExitCode(),
		DurationMS:  float64(res.Duration.Microseconds()) / 1000,
	}
	if p.Diagnostics == nil {
		p.Diagnostics = []diag.Diagnostic{}
	}
	if res.Tokens != nil {
		p.Tokens = res.Tokens.Tokens()
	}
	if res.Tree != nil {
		p.AST = mdwast.ToMap(res.Tree.Root)
	}
	if res.Err != nil {
		p.Error = res.Err.Error()
		p.Code = string(mdwerror.GetCode(res.Err))
	}
	return p
}

// ToStruct encodes any JSON-shaped value as a protobuf Struct
func ToStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// FromStruct decodes a protobuf Struct into v
func FromStruct(s *structpb.Struct, v interface{}) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
