package selector

import (
	"strconv"
	"strings"
)

// resolveLines resolves a lines: value. Parts are comma-separated and 1-based:
//
//	N    single line
//	N-M  inclusive range
//	N-   from N to the end
//	-M   from the start to M
func resolveLines(total int, spec string) ([]Span, error) {
	var spans []Span
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		left, right, isRange := strings.Cut(part, "-")
		if !isRange {
			n, err := lineNumber(part, part)
			if err != nil {
				return nil, err
			}
			if n < 1 || n > total {
				return nil, newError(ErrLineOutOfRange, "Line %d out of range (file has %d lines)", n, total)
			}
			spans = append(spans, Span{Start: n - 1, End: n})
			continue
		}

		left, right = strings.TrimSpace(left), strings.TrimSpace(right)
		if left == "" && right == "" {
			return nil, newError(ErrInvalidLineRange, "Invalid line range: '%s'", part)
		}

		start, end := 0, total
		if left != "" {
			n, err := lineNumber(left, part)
			if err != nil {
				return nil, err
			}
			start = n - 1
		}
		if right != "" {
			n, err := lineNumber(right, part)
			if err != nil {
				return nil, err
			}
			end = n
		}
		start = max(start, 0)
		end = min(end, total)
		if start >= end {
			return nil, newError(ErrInvertedRange, "Empty or inverted line range: '%s' (resolved %d-%d)", part, start+1, end)
		}
		spans = append(spans, Span{Start: start, End: end})
	}

	if len(spans) == 0 {
		return nil, newError(ErrInvalidLineRange, "Invalid line range: '%s' selects no lines", spec)
	}
	return spans, nil
}

func lineNumber(s, part string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, wrapError(ErrInvalidLineRange, err, "Invalid line range: '%s' (%q is not a line number)", part, s)
	}
	return n, nil
}
