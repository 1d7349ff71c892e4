package urlutil

import "strings"

// HasDataScheme reports whether raw is already an inlined data URI.
// The scheme token is matched case-insensitively.
func HasDataScheme(raw string) bool {
	return hasPrefixFold(raw, "data:")
}

// IsProtocolRelative reports whether raw is a scheme-less network reference
// such as //cdn.example.com/icon.svg.
func IsProtocolRelative(raw string) bool {
	return strings.HasPrefix(raw, "//")
}

// IsRemote reports whether raw points to an HTTP(S) resource, including
// protocol-relative references.
func IsRemote(raw string) bool {
	return hasPrefixFold(raw, "http://") ||
		hasPrefixFold(raw, "https://") ||
		IsProtocolRelative(raw)
}

// WithScheme upgrades a protocol-relative reference to an absolute URL using
// the given scheme. Any other reference is returned unchanged.
func WithScheme(raw string, scheme string) string {
	if !IsProtocolRelative(raw) {
		return raw
	}
	return lowerASCII(scheme) + ":" + raw
}

// SplitSuffix separates a reference into the resource part and its trailing
// query or fragment suffix (including the leading '?' or '#').
//
//	SplitSuffix("img/a.svg?v=2#x") == ("img/a.svg", "?v=2#x")
func SplitSuffix(raw string) (string, string) {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i], raw[i:]
	}
	return raw, ""
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && lowerASCII(s[:len(prefix)]) == prefix
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
