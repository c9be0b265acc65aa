// File: context_test.go
// Title: SmartScript Request Context Unit Tests
// Description: Unit tests for header commit, encodings, parameters and the
//              raw HTTP committer.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-16 v0.1.0: Initial test suite
// - 2026-10-19 v0.1.1: Initial cookies

package request

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/frle10/smartscript/foundation/smartscript/executor"
	"github.com/frle10/smartscript/foundation/smartscript/parser"
)

var (
	_ executor.Sink           = (*RequestContext)(nil)
	_ executor.Params         = (*RequestContext)(nil)
	_ executor.MimeTypeSetter = (*RequestContext)(nil)
	_ executor.ParameterStore = (*RequestContext)(nil)
)

func TestRequestContext_RawHeader(t *testing.T) {
	var out bytes.Buffer
	rc := New(&out, nil, nil, WithCommitter(RawHTTPCommitter(&out)))

	if err := rc.SetStatusCode(404); err != nil {
		t.Fatal(err)
	}
	if err := rc.SetStatusText("Not Found"); err != nil {
		t.Fatal(err)
	}
	if err := rc.AddCookie(Cookie{Name: "korisnik", Value: "perica", Domain: "127.0.0.1", Path: "/", MaxAge: 3600}); err != nil {
		t.Fatal(err)
	}
	if _, err := rc.WriteString("body"); err != nil {
		t.Fatal(err)
	}

	expected := "HTTP/1.1 404 Not Found\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"Set-Cookie: korisnik=\"perica\"; Domain=127.0.0.1; Path=/; Max-Age=3600\r\n" +
		"\r\n" +
		"body"
	if out.String() != expected {
		t.Errorf("output =\n%q\nwant\n%q", out.String(), expected)
	}
}

func TestRequestContext_WithCookies(t *testing.T) {
	var out bytes.Buffer
	rc := New(&out, nil, nil,
		WithCommitter(RawHTTPCommitter(&out)),
		WithCookies(Cookie{Name: "session", Value: "abc", HTTPOnly: true}),
	)
	if err := rc.AddCookie(Cookie{Name: "theme", Value: "dark"}); err != nil {
		t.Fatal(err)
	}
	if err := rc.Flush(); err != nil {
		t.Fatal(err)
	}

	cookies := rc.Header().Cookies
	if len(cookies) != 2 || cookies[0].Name != "session" || cookies[1].Name != "theme" {
		t.Fatalf("cookies = %+v, want session then theme", cookies)
	}
	if !strings.Contains(out.String(), "Set-Cookie: session=\"abc\"; HttpOnly\r\n") {
		t.Errorf("header block missing session cookie:\n%q", out.String())
	}
}

func TestRequestContext_CommitOnce(t *testing.T) {
	commits := 0
	var out bytes.Buffer
	rc := New(&out, nil, nil, WithCommitter(CommitterFunc(func(h Header) error {
		commits++
		return nil
	})))

	if rc.Committed() {
		t.Fatal("committed before first write")
	}
	rc.WriteString("a")
	rc.Write([]byte("b"))

	if commits != 1 {
		t.Errorf("commits = %d, want 1", commits)
	}
	if out.String() != "ab" {
		t.Errorf("output = %q", out.String())
	}

	setters := map[string]error{
		"mime":     rc.SetMimeType("text/plain"),
		"encoding": rc.SetEncoding("ISO-8859-1"),
		"status":   rc.SetStatusCode(500),
		"text":     rc.SetStatusText("Error"),
		"cookie":   rc.AddCookie(Cookie{Name: "x"}),
	}
	for name, err := range setters {
		if !errors.Is(err, ErrHeadersCommitted) {
			t.Errorf("%s setter after commit: %v", name, err)
		}
	}
}

func TestRequestContext_CommitError(t *testing.T) {
	failure := errors.New("connection reset")
	var out bytes.Buffer
	rc := New(&out, nil, nil, WithCommitter(CommitterFunc(func(Header) error { return failure })))

	if _, err := rc.WriteString("x"); !errors.Is(err, failure) {
		t.Errorf("WriteString() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("body written after failed commit: %q", out.String())
	}
}

func TestRequestContext_Encoding(t *testing.T) {
	tests := []struct {
		name      string
		encoding  string
		canonical string
		input     string
		expected  []byte
	}{
		{"UTF-8 passthrough", "utf-8", "UTF-8", "čć", []byte("čć")},
		{"Latin-1 by alias", "latin1", "ISO-8859-1", "é", []byte{0xe9}},
		{"Windows-1250", "windows-1250", "windows-1250", "č", []byte{0xe8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rc := New(&out, nil, nil)
			if err := rc.SetEncoding(tt.encoding); err != nil {
				t.Fatalf("SetEncoding() error = %v", err)
			}
			if got := rc.Header().Encoding; got != tt.canonical {
				t.Errorf("Encoding = %q, want %q", got, tt.canonical)
			}
			n, err := rc.WriteString(tt.input)
			if err != nil {
				t.Fatalf("WriteString() error = %v", err)
			}
			if n != len(tt.input) {
				t.Errorf("n = %d, want %d", n, len(tt.input))
			}
			if !bytes.Equal(out.Bytes(), tt.expected) {
				t.Errorf("bytes = %x, want %x", out.Bytes(), tt.expected)
			}
		})
	}
}

func TestRequestContext_UnknownEncoding(t *testing.T) {
	rc := New(&bytes.Buffer{}, nil, nil)
	if err := rc.SetEncoding("no-such-charset"); !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("SetEncoding() error = %v", err)
	}
	if rc.Header().Encoding != DefaultEncoding {
		t.Errorf("encoding changed to %q", rc.Header().Encoding)
	}
}

func TestRequestContext_Parameters(t *testing.T) {
	persistent := map[string]string{"keep": "1"}
	rc := New(&bytes.Buffer{}, map[string]string{"b": "2", "a": "1"}, persistent)

	if v, ok := rc.Parameter("a"); !ok || v != "1" {
		t.Errorf("Parameter(a) = %q, %v", v, ok)
	}
	if got := strings.Join(rc.ParameterNames(), ","); got != "a,b" {
		t.Errorf("ParameterNames() = %s", got)
	}

	rc.SetPersistentParameter("new", "x")
	rc.RemovePersistentParameter("keep")
	if _, ok := persistent["keep"]; ok {
		t.Error("persistent removal not visible to owner")
	}
	if persistent["new"] != "x" {
		t.Error("persistent set not visible to owner")
	}

	rc.SetTemporaryParameter("t", "v")
	if v, ok := rc.TemporaryParameter("t"); !ok || v != "v" {
		t.Errorf("TemporaryParameter(t) = %q, %v", v, ok)
	}
	rc.RemoveTemporaryParameter("t")
	if _, ok := rc.TemporaryParameter("t"); ok {
		t.Error("temporary parameter not removed")
	}
}

func TestRequestContext_ScriptSetsMimeType(t *testing.T) {
	doc, err := parser.Parse(`{$= "text/plain" @setMimeType "visits" "0" @pparamGet 1 + "visits" @pparamSet $}ok`)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	persistent := map[string]string{"visits": "9"}
	rc := New(&out, map[string]string{}, persistent, WithCommitter(RawHTTPCommitter(&out)))
	if err := executor.New(executor.Options{}).Execute(doc, rc, rc); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.HasPrefix(out.String(), "HTTP/1.1 200 OK\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n") {
		t.Errorf("header = %q", out.String())
	}
	if !strings.HasSuffix(out.String(), "\r\n\r\nok") {
		t.Errorf("body = %q", out.String())
	}
	if persistent["visits"] != "10" {
		t.Errorf("visits = %q, want 10", persistent["visits"])
	}
}

func TestHeader_ContentType(t *testing.T) {
	h := Header{MimeType: "image/png", Encoding: "UTF-8"}
	if h.ContentType() != "image/png" {
		t.Errorf("ContentType() = %q", h.ContentType())
	}
}
