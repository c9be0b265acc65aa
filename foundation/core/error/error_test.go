// File: error_test.go
// Title: Core Error Unit Tests
// Description: Unit tests for wrapping, code inheritance, unwrapping and
//              JSON rendering of structured errors.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-15
//
// Change History:
// - 2026-10-12 v0.1.0: Initial test suite

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestWrap(t *testing.T) {
	if Wrap(nil, "nothing") != nil {
		t.Error("Wrap(nil) must return nil")
	}

	err := Wrap(io.EOF, "reading script")
	if err.Error() != "reading script: EOF" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, io.EOF) {
		t.Error("wrapped cause not reachable through errors.Is")
	}
	if err.Code() != CodeUnknown || err.Severity() != SeverityMedium {
		t.Errorf("defaults = %s/%s", err.Code(), err.Severity())
	}
}

func TestWrap_InheritsFromInner(t *testing.T) {
	inner := New("bad tag").
		WithCode(CodeScriptParse).
		WithSeverity(SeverityLow).
		WithOperation("parse").
		WithDetail("line", 4)

	outer := Wrap(fmt.Errorf("context: %w", inner), "render failed")

	if outer.Code() != CodeScriptParse || outer.Severity() != SeverityLow {
		t.Errorf("inherited %s/%s", outer.Code(), outer.Severity())
	}
	if outer.Operation() != "parse" {
		t.Errorf("Operation() = %q", outer.Operation())
	}
	if outer.Details()["line"] != 4 {
		t.Errorf("Details() = %v", outer.Details())
	}
}

func TestGetCode(t *testing.T) {
	coded := New("x").WithCode(CodeScriptExecution)

	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"Direct", coded, CodeScriptExecution},
		{"Wrapped by fmt", fmt.Errorf("outer: %w", coded), CodeScriptExecution},
		{"Plain error", errors.New("plain"), CodeUnknown},
		{"Nil", nil, CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestCode_IsClientError(t *testing.T) {
	for _, code := range []Code{CodeScriptLex, CodeScriptParse, CodeScriptInput, CodeNotFound} {
		if !code.IsClientError() {
			t.Errorf("%s.IsClientError() = false", code)
		}
	}
	for _, code := range []Code{CodeScriptExecution, CodeInternal, CodeConfigError} {
		if code.IsClientError() {
			t.Errorf("%s.IsClientError() = true", code)
		}
	}
}

func TestError_MarshalJSON(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, "parsing failed").
		WithCode(CodeScriptParse).
		WithSeverity(SeverityLow).
		WithDetail("column", 7)

	data, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatal(marshalErr)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload["code"] != "SCRIPT_PARSE" || payload["severity"] != "low" {
		t.Errorf("payload = %s", data)
	}
	if payload["message"] != "parsing failed: unexpected EOF" {
		t.Errorf("message = %v", payload["message"])
	}
	if _, ok := payload["operation"]; ok {
		t.Errorf("empty operation rendered: %s", data)
	}
}
