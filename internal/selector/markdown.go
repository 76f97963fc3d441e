package selector

import (
	"regexp"
	"strings"
)

var headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// heading parses a Markdown ATX heading line.
func heading(line string) (level int, text string, ok bool) {
	m := headingRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), strings.TrimSpace(m[2]), true
}

// resolveSection returns one span per heading whose text equals want. Each
// span runs until the next heading of the same or a higher level, or EOF.
func resolveSection(lines []string, want string) ([]Span, error) {
	want = strings.TrimSpace(want)

	var spans []Span
	for i := 0; i < len(lines); {
		level, text, ok := heading(lines[i])
		if !ok || text != want {
			i++
			continue
		}
		j := i + 1
		for ; j < len(lines); j++ {
			if next, _, ok := heading(lines[j]); ok && next <= level {
				break
			}
		}
		spans = append(spans, Span{Start: i, End: j})
		i = j
	}

	if len(spans) == 0 {
		return nil, newError(ErrSectionNotFound, "Markdown section '%s' not found", want)
	}
	return spans, nil
}
