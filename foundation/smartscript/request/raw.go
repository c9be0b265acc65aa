// File: raw.go
// Title: Raw HTTP Header Committer
// Description: Committer that writes an HTTP/1.1 status line and header
//              block in front of the body on the same writer.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial raw committer

package request

import (
	"io"
	"strconv"
	"strings"
)

// RawHTTPCommitter writes the header block to w
func RawHTTPCommitter(w io.Writer) Committer {
	return CommitterFunc(func(h Header) error {
		_, err := io.WriteString(w, FormatHeader(h))
		return err
	})
}

// FormatHeader renders h as an HTTP/1.1 header block ending in a blank line
func FormatHeader(h Header) string {
	var b strings.Builder
	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(h.StatusCode))
	b.WriteByte(' ')
	b.WriteString(h.StatusText)
	b.WriteString("\r\n")

	b.WriteString("Content-Type: ")
	b.WriteString(h.ContentType())
	b.WriteString("\r\n")

	for _, c := range h.Cookies {
		b.WriteString("Set-Cookie: ")
		b.WriteString(c.Name)
		b.WriteString(`="`)
		b.WriteString(c.Value)
		b.WriteByte('"')
		if c.Domain != "" {
			b.WriteString("; Domain=" + c.Domain)
		}
		if c.Path != "" {
			b.WriteString("; Path=" + c.Path)
		}
		if c.MaxAge != 0 {
			b.WriteString("; Max-Age=" + strconv.Itoa(c.MaxAge))
		}
		if c.HTTPOnly {
			b.WriteString("; HttpOnly")
		}
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	return b.String()
}
