// File: context.go
// Title: SmartScript Request Context
// Description: Output sink used when a document answers a request. It owns
//              the response metadata (status, mime type, encoding, cookies)
//              and the parameter maps visible to scripts. Metadata can be
//              changed until the first write commits it through a
//              Committer; after that it is frozen.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-16 v0.1.0: Initial request context
// - 2026-10-17 v0.1.1: Output encodings via IANA names

package request

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	DefaultMimeType   = "text/html"
	DefaultEncoding   = "UTF-8"
	DefaultStatusCode = 200
	DefaultStatusText = "OK"
)

var (
	// ErrHeadersCommitted is returned by setters after the first write
	ErrHeadersCommitted = errors.New("headers already committed")

	// ErrUnknownEncoding is returned for names without an IANA encoding
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// Cookie is an output cookie sent with the header block
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	MaxAge   int // seconds; 0 omits the attribute
	HTTPOnly bool
}

// Header is the response metadata committed on first write
type Header struct {
	StatusCode int
	StatusText string
	MimeType   string
	Encoding   string
	Cookies    []Cookie
}

// ContentType returns the Content-Type value; text types carry a charset
func (h Header) ContentType() string {
	if strings.HasPrefix(h.MimeType, "text/") {
		return h.MimeType + "; charset=" + h.Encoding
	}
	return h.MimeType
}

// Committer publishes the header before the first body byte
type Committer interface {
	Commit(h Header) error
}

// CommitterFunc adapts a function to Committer
type CommitterFunc func(h Header) error

// Commit calls f(h)
func (f CommitterFunc) Commit(h Header) error {
	return f(h)
}

// Option configures a RequestContext
type Option func(*RequestContext)

// WithCommitter sets the committer run on first write
func WithCommitter(c Committer) Option {
	return func(rc *RequestContext) {
		rc.committer = c
	}
}

// WithCookies adds cookies to the initial header
func WithCookies(cookies ...Cookie) Option {
	return func(rc *RequestContext) {
		rc.header.Cookies = append(rc.header.Cookies, cookies...)
	}
}

// RequestContext is a sink plus parameter storage for one request. It is
// not safe for concurrent use.
type RequestContext struct {
	w          io.Writer
	params     map[string]string
	persistent map[string]string
	temporary  map[string]string

	header    Header
	encoder   *encoding.Encoder // nil writes UTF-8 unchanged
	committer Committer
	committed bool
}

// New creates a context writing to w. params is read-only; persistent is
// owned by the caller and modified in place. Both may be nil.
func New(w io.Writer, params, persistent map[string]string, opts ...Option) *RequestContext {
	if params == nil {
		params = map[string]string{}
	}
	if persistent == nil {
		persistent = map[string]string{}
	}

	rc := &RequestContext{
		w:          w,
		params:     params,
		persistent: persistent,
		temporary:  map[string]string{},
		header: Header{
			StatusCode: DefaultStatusCode,
			StatusText: DefaultStatusText,
			MimeType:   DefaultMimeType,
			Encoding:   DefaultEncoding,
		},
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Parameter returns a read-only request parameter
func (rc *RequestContext) Parameter(name string) (string, bool) {
	v, ok := rc.params[name]
	return v, ok
}

// ParameterNames returns the request parameter names in sorted order
func (rc *RequestContext) ParameterNames() []string {
	return sortedKeys(rc.params)
}

func (rc *RequestContext) PersistentParameter(name string) (string, bool) {
	v, ok := rc.persistent[name]
	return v, ok
}

func (rc *RequestContext) SetPersistentParameter(name, value string) error {
	rc.persistent[name] = value
	return nil
}

func (rc *RequestContext) RemovePersistentParameter(name string) {
	delete(rc.persistent, name)
}

// PersistentParameterNames returns the persistent parameter names in sorted order
func (rc *RequestContext) PersistentParameterNames() []string {
	return sortedKeys(rc.persistent)
}

func (rc *RequestContext) TemporaryParameter(name string) (string, bool) {
	v, ok := rc.temporary[name]
	return v, ok
}

func (rc *RequestContext) SetTemporaryParameter(name, value string) error {
	rc.temporary[name] = value
	return nil
}

func (rc *RequestContext) RemoveTemporaryParameter(name string) {
	delete(rc.temporary, name)
}

// SetMimeType sets the Content-Type mime type
func (rc *RequestContext) SetMimeType(mime string) error {
	if rc.committed {
		return ErrHeadersCommitted
	}
	rc.header.MimeType = mime
	return nil
}

// SetEncoding selects the output encoding by IANA name or alias
func (rc *RequestContext) SetEncoding(name string) error {
	if rc.committed {
		return ErrHeadersCommitted
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}

	rc.header.Encoding = canonical
	rc.encoder = nil
	if !strings.EqualFold(canonical, DefaultEncoding) {
		rc.encoder = enc.NewEncoder()
	}
	return nil
}

// SetStatusCode sets the response status code
func (rc *RequestContext) SetStatusCode(code int) error {
	if rc.committed {
		return ErrHeadersCommitted
	}
	rc.header.StatusCode = code
	return nil
}

// SetStatusText sets the response reason phrase
func (rc *RequestContext) SetStatusText(text string) error {
	if rc.committed {
		return ErrHeadersCommitted
	}
	rc.header.StatusText = text
	return nil
}

// AddCookie queues a cookie for the header block
func (rc *RequestContext) AddCookie(c Cookie) error {
	if rc.committed {
		return ErrHeadersCommitted
	}
	rc.header.Cookies = append(rc.header.Cookies, c)
	return nil
}

// Header returns a copy of the current header
func (rc *RequestContext) Header() Header {
	h := rc.header
	h.Cookies = append([]Cookie(nil), rc.header.Cookies...)
	return h
}

// Committed reports whether the header has been committed
func (rc *RequestContext) Committed() bool {
	return rc.committed
}

// Write commits the header if needed and writes p in the output encoding
func (rc *RequestContext) Write(p []byte) (int, error) {
	if err := rc.commit(); err != nil {
		return 0, err
	}
	if rc.encoder == nil {
		return rc.w.Write(p)
	}

	encoded, err := rc.encoder.Bytes(p)
	if err != nil {
		return 0, fmt.Errorf("encode to %s: %w", rc.header.Encoding, err)
	}
	if _, err := rc.w.Write(encoded); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString is Write for strings
func (rc *RequestContext) WriteString(s string) (int, error) {
	return rc.Write([]byte(s))
}

// Flush commits the header even when nothing was written
func (rc *RequestContext) Flush() error {
	return rc.commit()
}

func (rc *RequestContext) commit() error {
	if rc.committed {
		return nil
	}
	rc.committed = true
	if rc.committer == nil {
		return nil
	}
	if err := rc.committer.Commit(rc.Header()); err != nil {
		return fmt.Errorf("commit headers: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
