// File: error_test.go
// Title: Error Tests
// Description: Tests for coded errors, wrapping, lookups and status mapping.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-14 v0.2.0: Front-end codes and exit statuses

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New("boom")
	if err.Error() != "boom" {
		t.Errorf("Error() = %q, want boom", err.Error())
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want medium", err.Severity())
	}
}

func TestWithCodeSetsDefaultSeverity(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{CodeLexError, SeverityLow},
		{CodeParseError, SeverityLow},
		{CodeAllocation, SeverityHigh},
		{CodeConfigError, SeverityMedium},
		{CodeInternal, SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New("x").WithCode(tt.code).Severity(); got != tt.want {
				t.Errorf("severity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExplicitSeverityWins(t *testing.T) {
	err := New("x").WithSeverity(SeverityCritical).WithCode(CodeLexError)
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want critical", err.Severity())
	}
}

func TestWrapInheritsCode(t *testing.T) {
	inner := New("table full").WithCode(CodeAllocation).WithDetail("capacity", 16)
	outer := Wrap(inner, "keyword table")

	if outer.Error() != "keyword table: table full" {
		t.Errorf("Error() = %q", outer.Error())
	}
	if outer.Code() != CodeAllocation {
		t.Errorf("Code() = %v, want %v", outer.Code(), CodeAllocation)
	}
	if v, ok := outer.Detail("capacity"); !ok || v != 16 {
		t.Errorf("Detail(capacity) = %v, %v", v, ok)
	}
	if !errors.Is(outer, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestLookupsThroughForeignWrapping(t *testing.T) {
	coded := New("bad").WithCode(CodeParseError)
	err := fmt.Errorf("run: %w", coded)

	if !HasCode(err, CodeParseError) {
		t.Error("HasCode() should see through fmt.Errorf")
	}
	if GetCode(err) != CodeParseError {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if GetSeverity(err) != SeverityLow {
		t.Errorf("GetSeverity() = %v", GetSeverity(err))
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("GetCode(plain) should be UNKNOWN")
	}
}

func TestWrapTruncatesDeepChains(t *testing.T) {
	var err error = New("root")
	for i := 0; i < MaxErrorChainDepth+2; i++ {
		err = Wrap(err, "layer")
	}
	if !strings.Contains(err.Error(), "chain truncated") {
		t.Errorf("deep chain was not truncated: %q", err.Error())
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New("x").WithCode(CodeLexError).WithOperation("scan").WithDetail("line", 3)
	raw, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatalf("Marshal() error = %v", mErr)
	}
	var got map[string]interface{}
	if uErr := json.Unmarshal(raw, &got); uErr != nil {
		t.Fatalf("Unmarshal() error = %v", uErr)
	}
	if got["code"] != "LOX_LEX" || got["operation"] != "scan" || got["severity"] != "low" {
		t.Errorf("unexpected JSON %s", raw)
	}
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeUsage, ExitUsage},
		{CodeLexError, ExitDataErr},
		{CodeParseError, ExitDataErr},
		{CodeIOError, ExitIOErr},
		{CodeInvalidConfig, ExitConfig},
		{CodeInternal, ExitSoftware},
	}
	for _, tt := range tests {
		if got := tt.code.ExitStatus(); got != tt.want {
			t.Errorf("%s.ExitStatus() = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestCodeClassification(t *testing.T) {
	if !CodeLexError.IsValid() || Code("NOPE").IsValid() {
		t.Error("IsValid() misclassifies codes")
	}
	if CodeParseError.Category() != "source" {
		t.Errorf("Category() = %q", CodeParseError.Category())
	}
	if !CodeParseError.IsUserError() || CodeAllocation.IsUserError() {
		t.Error("IsUserError() misclassifies codes")
	}
	if CodeLexError.HTTPStatus() != 400 {
		t.Errorf("HTTPStatus() = %d", CodeLexError.HTTPStatus())
	}
}
