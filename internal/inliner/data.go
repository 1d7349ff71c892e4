package inliner

import "github.com/rohmanhakim/css-svg/internal/metadata"

// Inlined describes one occurrence replaced by a data URI.
type Inlined struct {
	Reference   string
	Location    string
	Digest      string
	EncodedSize int
	Cached      bool
}

// Skipped describes one occurrence left unmodified.
type Skipped struct {
	Reference string
	Reason    metadata.SkipReason
}

// Result is the outcome of one rewrite invocation.
type Result struct {
	content []byte
	inlined []Inlined
	skipped []Skipped
}

func (r Result) Content() []byte {
	return r.content
}

// Inlined lists replaced occurrences in discovery order.
func (r Result) Inlined() []Inlined {
	return r.inlined
}

// Skipped lists unmodified occurrences in discovery order.
func (r Result) Skipped() []Skipped {
	return r.skipped
}

// Changed reports whether at least one occurrence was replaced.
func (r Result) Changed() bool {
	return len(r.inlined) > 0
}
