package inliner

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/rohmanhakim/css-svg/pkg/urlutil"
)

// SkipDirective is the comment content that pins the preceding url() as is.
const SkipDirective = "base64:skip"

const urlOpen = "url("

type QuoteStyle int

const (
	QuoteNone QuoteStyle = iota
	QuoteSingle
	QuoteDouble
)

func (q QuoteStyle) String() string {
	switch q {
	case QuoteSingle:
		return "single"
	case QuoteDouble:
		return "double"
	default:
		return "none"
	}
}

// Occurrence is one url(...) token located in a stylesheet.
// Start and End are byte offsets of the whole token, End exclusive.
type Occurrence struct {
	key              string
	raw              string
	quote            QuoteStyle
	start            int
	end              int
	hasSuffix        bool
	hasSkipDirective bool
}

// Key is the content between the parentheses exactly as written, including
// whitespace and quotes. It identifies the occurrence in the conversion cache.
func (o Occurrence) Key() string {
	return o.key
}

// Raw is the reference with surrounding whitespace and one layer of quotes removed.
func (o Occurrence) Raw() string {
	return o.raw
}

func (o Occurrence) Quote() QuoteStyle {
	return o.quote
}

func (o Occurrence) Start() int {
	return o.start
}

func (o Occurrence) End() int {
	return o.end
}

// HasSuffix reports a ?query or #fragment after a resource name.
func (o Occurrence) HasSuffix() bool {
	return o.hasSuffix
}

// HasSkipDirective reports a /*base64:skip*/ comment right after the token.
func (o Occurrence) HasSkipDirective() bool {
	return o.hasSkipDirective
}

type token struct {
	tt     css.TokenType
	data   []byte
	offset int
}

// Scan locates every url(...) token of stylesheet in order. Only tokens
// written with a lowercase "url(" are reported; everything else, including
// malformed url tokens, is left to pass through untouched.
func Scan(stylesheet []byte) []Occurrence {
	tokens := tokenize(stylesheet)

	var occurrences []Occurrence
	for i, tok := range tokens {
		if tok.tt != css.URLToken {
			continue
		}
		occ, ok := newOccurrence(tok)
		if !ok {
			continue
		}
		occ.hasSkipDirective = followedBySkipDirective(tokens[i+1:])
		occurrences = append(occurrences, occ)
	}
	return occurrences
}

func tokenize(stylesheet []byte) []token {
	lexer := css.NewLexer(parse.NewInput(bytes.NewReader(stylesheet)))

	var tokens []token
	offset := 0
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		tokens = append(tokens, token{tt: tt, data: data, offset: offset})
		offset += len(data)
	}
	return tokens
}

func newOccurrence(tok token) (Occurrence, bool) {
	text := string(tok.data)
	if !strings.HasPrefix(text, urlOpen) || !strings.HasSuffix(text, ")") {
		return Occurrence{}, false
	}

	key := text[len(urlOpen) : len(text)-1]
	raw, quote := unquote(strings.Trim(key, " \t\n\r\f"))
	resource, suffix := urlutil.SplitSuffix(raw)

	return Occurrence{
		key:       key,
		raw:       raw,
		quote:     quote,
		start:     tok.offset,
		end:       tok.offset + len(tok.data),
		hasSuffix: resource != "" && suffix != "",
	}, true
}

func unquote(s string) (string, QuoteStyle) {
	if len(s) >= 2 {
		switch {
		case s[0] == '"' && s[len(s)-1] == '"':
			return s[1 : len(s)-1], QuoteDouble
		case s[0] == '\'' && s[len(s)-1] == '\'':
			return s[1 : len(s)-1], QuoteSingle
		}
	}
	return s, QuoteNone
}

// followedBySkipDirective looks past whitespace for a skip comment.
func followedBySkipDirective(rest []token) bool {
	for _, tok := range rest {
		switch tok.tt {
		case css.WhitespaceToken:
			continue
		case css.CommentToken:
			return isSkipDirective(tok.data)
		default:
			return false
		}
	}
	return false
}

func isSkipDirective(comment []byte) bool {
	inner := bytes.TrimSuffix(bytes.TrimPrefix(comment, []byte("/*")), []byte("*/"))
	return string(bytes.TrimSpace(inner)) == SkipDirective
}
