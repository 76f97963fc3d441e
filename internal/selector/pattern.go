package selector

import (
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultRegexTimeout bounds a single line match on the backtracking engine.
const DefaultRegexTimeout = 250 * time.Millisecond

// lineMatcher tests one line against a compiled pattern.
type lineMatcher func(line string) (bool, error)

// compilePattern compiles expr with the linear-time RE2 engine. Expressions
// RE2 rejects (lookaround, backreferences) fall back to regexp2 with a
// per-match timeout.
func compilePattern(expr string, timeout time.Duration) (lineMatcher, error) {
	if re, err := regexp.Compile(expr); err == nil {
		return func(line string) (bool, error) {
			return re.MatchString(line), nil
		}, nil
	}

	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, wrapError(ErrInvalidPattern, err, "Invalid regex pattern '%s': %v", expr, err)
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re.MatchString, nil
}

// patternExpr strips the optional /.../ delimiters from a pattern: value.
func patternExpr(value string) string {
	expr := strings.TrimSpace(value)
	if len(expr) >= 2 && strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") {
		expr = expr[1 : len(expr)-1]
	}
	return expr
}

// resolvePattern returns a single-line span for every line the pattern
// matches anywhere in.
func resolvePattern(lines []string, value string, timeout time.Duration) ([]Span, error) {
	expr := patternExpr(value)
	if expr == "" {
		return nil, newError(ErrEmptyPattern, "Empty regex pattern")
	}

	match, err := compilePattern(expr, timeout)
	if err != nil {
		return nil, err
	}

	var spans []Span
	for i, line := range lines {
		ok, err := match(line)
		if err != nil {
			return nil, err
		}
		if ok {
			spans = append(spans, Span{Start: i, End: i + 1})
		}
	}
	if len(spans) == 0 {
		return nil, newError(ErrNoPatternMatch, "No lines matched pattern '%s'", expr)
	}
	return spans, nil
}
