// Package encoder turns SVG documents into percent-encoded data URIs that are
// safe to embed in a double-quoted CSS url() token.
package encoder

import (
	"strings"
)

// DataURIPrefix starts every replacement payload. Output beginning with it is
// recognized as already inlined, so re-running the rewriter is a no-op.
const DataURIPrefix = "data:image/svg+xml;charset=utf8,"

const upperhex = "0123456789ABCDEF"

// Encode builds the url("...") replacement for svg. Double quotes inside the
// document become single quotes; the wrapper is always double-quoted.
func Encode(svg []byte) string {
	var b strings.Builder
	b.Grow(len(`url("")`) + len(DataURIPrefix) + len(svg)*3/2)
	b.WriteString(`url("`)
	b.WriteString(DataURIPrefix)
	writePayload(&b, svg)
	b.WriteString(`")`)
	return b.String()
}

// Payload returns only the percent-encoded document, without prefix or wrapper.
func Payload(svg []byte) string {
	var b strings.Builder
	b.Grow(len(svg) * 3 / 2)
	writePayload(&b, svg)
	return b.String()
}

func writePayload(b *strings.Builder, svg []byte) {
	for _, c := range svg {
		if c == '"' {
			c = '\''
		}
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0F])
			continue
		}
		b.WriteByte(c)
	}
}

// shouldEscape reports whether c must be percent-encoded in the payload.
// Bytes >= 0x80 pass through; the payload is declared utf8.
func shouldEscape(c byte) bool {
	if c < 0x20 || c == 0x7F {
		return true
	}
	switch c {
	case '<', '>', '#', '%', '{', '}', '"', '\\', '^', '`', '|', '[', ']':
		return true
	}
	return false
}
