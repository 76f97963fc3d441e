package selector

import (
	"slices"
	"strings"
)

// Span is a half-open range of 0-based line indices [Start, End).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// MergeSpans returns the minimal sorted set of spans covering the same lines.
// Overlapping and touching spans are coalesced. The input is not modified.
func MergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b Span) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})

	merged := []Span{sorted[0]}
	for _, sp := range sorted[1:] {
		last := &merged[len(merged)-1]
		if sp.Start <= last.End {
			last.End = max(last.End, sp.End)
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

// ExtractSpans merges spans and joins the covered lines with "\n".
// Non-adjacent spans are concatenated with no gap marker.
func ExtractSpans(lines []string, spans []Span) string {
	var selected []string
	for _, sp := range MergeSpans(spans) {
		start, end := max(sp.Start, 0), min(sp.End, len(lines))
		if start < end {
			selected = append(selected, lines[start:end]...)
		}
	}
	return strings.Join(selected, "\n")
}

// splitLines splits content on "\n" without a trailing empty line, dropping
// any "\r" left by CRLF line endings. Row numbering matches tree-sitter's.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
