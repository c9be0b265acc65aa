package server

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/frle10/smartscript/foundation/smartscript"
	"github.com/frle10/smartscript/internal/scripts"
	"github.com/frle10/smartscript/internal/store"
	"github.com/frle10/smartscript/pkg/core/cache"
	"github.com/frle10/smartscript/pkg/core/config"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

var testScripts = map[string]string{
	"index.smscr":     "home",
	"hello.smscr":     "Hello {$= name $}!",
	"blog/post.smscr": "{$ FOR i 1 3 $}{$= i $}{$END$}",
	"counter.smscr":   `{$= "count" "0" @pparamGet 1 + "count" @pparamSet $}{$= "count" "0" @pparamGet $}`,
	"plain.smscr":     `{$= "text/plain" @setMimeType $}plain`,
	"json.smscr":      `{$= "application/json" @setMimeType $}{"n": {$= n 2 * $}}`,
	"fail.smscr":      `before{$= 1 0 / $}after{$= "x" "1" @pparamSet $}`,
	"broken.smscr":    "{$ END $}",
}

type testServer struct {
	*Server
	params *store.Params
	dir    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	for name, content := range testScripts {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default().Server
	cfg.ScriptDir = dir

	engine, err := smartscript.NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	c := cache.New(cache.Config{MaxItems: 16})
	t.Cleanup(c.Close)
	loader := scripts.NewLoader(scripts.Config{Dir: dir}, engine, c, nil)

	params, err := store.Open(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	return &testServer{Server: New(cfg, engine, loader, params, nil), params: params, dir: dir}
}

func (ts *testServer) do(t *testing.T, method, uri string) *fasthttp.RequestCtx {
	t.Helper()

	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	ts.Handler()(&ctx)
	return &ctx
}

func TestHandler_Scripts(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name        string
		method      string
		uri         string
		status      int
		body        string
		contentType string
	}{
		{"index", "GET", "/", 200, "home", "text/html; charset=UTF-8"},
		{"query parameter", "GET", "/hello?name=Ana", 200, "Hello Ana!", "text/html; charset=UTF-8"},
		{"missing parameter renders empty", "GET", "/hello", 200, "Hello !", ""},
		{"nested script", "GET", "/blog/post", 200, "123", ""},
		{"mime type from script", "GET", "/plain", 200, "plain", "text/plain; charset=UTF-8"},
		{"non text mime type", "GET", "/json?n=21", 200, `{"n": 42}`, "application/json"},
		{"missing script", "GET", "/nope", 404, "", ""},
		{"path traversal", "GET", "/../../etc/passwd", 404, "", ""},
		{"hidden file", "GET", "/.env", 404, "", ""},
		{"parse error", "GET", "/broken", 500, "", ""},
		{"method not allowed", "DELETE", "/hello", 405, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ts.do(t, tt.method, tt.uri)

			if got := ctx.Response.StatusCode(); got != tt.status {
				t.Fatalf("status = %d, want %d (body %q)", got, tt.status, ctx.Response.Body())
			}
			if tt.body != "" && string(ctx.Response.Body()) != tt.body {
				t.Errorf("body = %q, want %q", ctx.Response.Body(), tt.body)
			}
			if tt.contentType != "" && string(ctx.Response.Header.ContentType()) != tt.contentType {
				t.Errorf("content type = %q, want %q", ctx.Response.Header.ContentType(), tt.contentType)
			}
		})
	}
}

func TestHandler_PostForm(t *testing.T) {
	ts := newTestServer(t)

	var req fasthttp.Request
	req.Header.SetMethod("POST")
	req.SetRequestURI("/hello")
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString("name=Marko")

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	ts.Handler()(&ctx)

	if got := string(ctx.Response.Body()); got != "Hello Marko!" {
		t.Errorf("body = %q, want Hello Marko!", got)
	}
}

func TestHandler_PersistentParameters(t *testing.T) {
	ts := newTestServer(t)

	for i, want := range []string{"1", "2", "3"} {
		ctx := ts.do(t, "GET", "/counter")
		if got := string(ctx.Response.Body()); got != want {
			t.Errorf("request %d: body = %q, want %q", i, got, want)
		}
	}
	if v, _ := ts.params.Get("count"); v != "3" {
		t.Errorf("stored count = %q, want 3", v)
	}
}

func TestHandler_ExecutionErrorDiscardsOutput(t *testing.T) {
	ts := newTestServer(t)

	ctx := ts.do(t, "GET", "/fail")

	if ctx.Response.StatusCode() != 500 {
		t.Fatalf("status = %d, want 500", ctx.Response.StatusCode())
	}
	if strings.Contains(string(ctx.Response.Body()), "before") {
		t.Errorf("partial output leaked: %q", ctx.Response.Body())
	}
	if _, ok := ts.params.Get("x"); ok {
		t.Error("failed request must not store persistent parameters")
	}
}

func TestHandler_RequestID(t *testing.T) {
	ts := newTestServer(t)

	ctx := ts.do(t, "GET", "/")
	if id := ctx.Response.Header.Peek(RequestIDHeader); len(id) != 36 {
		t.Errorf("generated request id = %q", id)
	}

	var req fasthttp.Request
	req.SetRequestURI("/")
	req.Header.Set(RequestIDHeader, "2f1b6a1e-8a0c-4c1e-9d57-6f6b0d5b9c11")
	var ctx2 fasthttp.RequestCtx
	ctx2.Init(&req, nil, nil)
	ts.Handler()(&ctx2)

	if got := string(ctx2.Response.Header.Peek(RequestIDHeader)); got != "2f1b6a1e-8a0c-4c1e-9d57-6f6b0d5b9c11" {
		t.Errorf("request id = %q, want the client supplied one", got)
	}
}

func TestHandler_CachedDocuments(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, "GET", "/hello?name=a")
	ts.do(t, "GET", "/hello?name=b")

	if hits := ts.loader.Cache().Stats().Hits; hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}
}

func TestHandler_Health(t *testing.T) {
	ts := newTestServer(t)

	ctx := ts.do(t, "GET", HealthPath)
	if ctx.Response.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200", ctx.Response.StatusCode())
	}

	var report struct {
		Service string `json:"service"`
		Status  string `json:"status"`
		Checks  []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &report); err != nil {
		t.Fatalf("health body is not JSON: %v", err)
	}
	if report.Status != "healthy" || len(report.Checks) != 3 {
		t.Errorf("report = %+v", report)
	}

	os.RemoveAll(ts.dir)
	ctx = ts.do(t, "GET", HealthPath)
	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Errorf("status without script dir = %d, want 503", ctx.Response.StatusCode())
	}
}

func TestHandler_Stats(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, "GET", "/")

	ctx := ts.do(t, "GET", StatsPath+"?r=smartscript")
	if !strings.Contains(string(ctx.Response.Body()), "smartscriptRequests") {
		t.Errorf("stats body = %q", ctx.Response.Body())
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ts := newTestServer(t)
	ln := fasthttputil.NewInmemoryListener()

	done := make(chan error, 1)
	go func() { done <- ts.Serve(ln) }()

	client := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) { return ln.Dial() },
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://smartscript.test/hello?name=Net")
	if err := client.DoTimeout(req, resp, 2*time.Second); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got := string(resp.Body()); got != "Hello Net!" {
		t.Errorf("body = %q, want Hello Net!", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ts.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := ts.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}

	rejected := ts.do(t, "GET", "/")
	if rejected.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Errorf("status after shutdown = %d, want 503", rejected.Response.StatusCode())
	}
}
