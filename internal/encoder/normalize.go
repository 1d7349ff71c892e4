package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var ErrUnknownCharset = errors.New("unknown charset")
var ErrTranscodeFail = errors.New("failed to transcode document")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normalize returns svg as UTF-8. A leading UTF-8 byte order mark is dropped.
// When the XML declaration names another encoding the document is transcoded
// and the declaration rewritten to UTF-8; otherwise svg is returned as is.
func Normalize(svg []byte) ([]byte, error) {
	svg = bytes.TrimPrefix(svg, utf8BOM)

	label, start, end, ok := declaredEncoding(svg)
	if !ok || isUTF8Label(label) {
		return svg, nil
	}

	reader, err := charset.NewReaderLabel(label, bytes.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharset, label)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTranscodeFail, err.Error())
	}

	// an ASCII-compatible encoding leaves the declaration bytes in place
	if len(decoded) < end || !bytes.Equal(decoded[:end], svg[:end]) {
		return nil, fmt.Errorf("%w: declaration changed while decoding %s", ErrTranscodeFail, label)
	}
	out := make([]byte, 0, len(decoded))
	out = append(out, decoded[:start]...)
	out = append(out, "UTF-8"...)
	out = append(out, decoded[end:]...)
	return out, nil
}

// declaredEncoding finds the value of the encoding pseudo-attribute in a
// leading <?xml ...?> declaration and its byte span.
func declaredEncoding(svg []byte) (string, int, int, bool) {
	trimmed := bytes.TrimLeft(svg, " \t\r\n")
	offset := len(svg) - len(trimmed)
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return "", 0, 0, false
	}
	declEnd := bytes.Index(trimmed, []byte("?>"))
	if declEnd < 0 {
		return "", 0, 0, false
	}
	decl := trimmed[:declEnd]

	i := bytes.Index(decl, []byte("encoding"))
	if i < 0 {
		return "", 0, 0, false
	}
	rest := decl[i+len("encoding"):]
	j := 0
	for j < len(rest) && (rest[j] == ' ' || rest[j] == '=' || rest[j] == '\t') {
		j++
	}
	if j >= len(rest) || (rest[j] != '"' && rest[j] != '\'') {
		return "", 0, 0, false
	}
	quote := rest[j]
	valueStart := j + 1
	valueLen := bytes.IndexByte(rest[valueStart:], quote)
	if valueLen < 0 {
		return "", 0, 0, false
	}

	start := offset + i + len("encoding") + valueStart
	end := start + valueLen
	return string(svg[start:end]), start, end, true
}

func isUTF8Label(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}
	return false
}
