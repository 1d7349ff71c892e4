package cmd

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const diffContext = 3

// unifiedDiff renders the change from before to after as a unified diff.
// It returns an empty string when the contents are identical.
func unifiedDiff(name string, before, after []byte) string {
	if string(before) == string(after) {
		return ""
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(before)),
		B:        splitLinesKeepNL(string(after)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  diffContext,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return s
}

// splitLinesKeepNL splits into lines and keeps newline characters. A missing
// trailing newline is added so the last hunk line stays terminated.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	last := len(lines) - 1
	if !strings.HasSuffix(lines[last], "\n") {
		lines[last] += "\n"
	}
	return lines
}
