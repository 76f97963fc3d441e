package selector

import (
	"regexp"
	"strings"
)

// Kind identifies the selector language a selector belongs to.
type Kind string

const (
	KindLines   Kind = "lines"
	KindDef     Kind = "def"
	KindClass   Kind = "class"
	KindSection Kind = "section"
	KindPattern Kind = "pattern"
	KindPath    Kind = "path"
)

// Kinds lists every selector kind in grammar order.
var Kinds = []Kind{KindLines, KindDef, KindClass, KindSection, KindPattern, KindPath}

// Selector is one parsed kind:value instruction. The set of implementations
// is closed: LinesSelector, DefSelector, ClassSelector, SectionSelector,
// PatternSelector and PathSelector.
type Selector interface {
	Kind() Kind
	// Value returns the raw text after the colon.
	Value() string
	// String returns the selector in kind:value form.
	String() string

	sealed()
}

// LinesSelector selects 1-based line ranges such as "2-4,7,10-".
type LinesSelector struct{ Spec string }

// DefSelector selects every function or async function with the given name.
type DefSelector struct{ Name string }

// ClassSelector selects a class, or one of its methods when Method is set.
type ClassSelector struct {
	Class  string
	Method string
}

// SectionSelector selects Markdown sections by heading text.
type SectionSelector struct{ Heading string }

// PatternSelector selects lines matching a regular expression, written either
// as /expr/ or bare.
type PatternSelector struct{ Expr string }

// PathSelector selects a value inside a JSON or YAML document.
type PathSelector struct{ Expr string }

func (LinesSelector) Kind() Kind   { return KindLines }
func (DefSelector) Kind() Kind     { return KindDef }
func (ClassSelector) Kind() Kind   { return KindClass }
func (SectionSelector) Kind() Kind { return KindSection }
func (PatternSelector) Kind() Kind { return KindPattern }
func (PathSelector) Kind() Kind    { return KindPath }

func (s LinesSelector) Value() string   { return s.Spec }
func (s DefSelector) Value() string     { return s.Name }
func (s SectionSelector) Value() string { return s.Heading }
func (s PatternSelector) Value() string { return s.Expr }
func (s PathSelector) Value() string    { return s.Expr }

func (s ClassSelector) Value() string {
	if s.Method == "" {
		return s.Class
	}
	return s.Class + "." + s.Method
}

func (s LinesSelector) String() string   { return format(s) }
func (s DefSelector) String() string     { return format(s) }
func (s ClassSelector) String() string   { return format(s) }
func (s SectionSelector) String() string { return format(s) }
func (s PatternSelector) String() string { return format(s) }
func (s PathSelector) String() string    { return format(s) }

func (LinesSelector) sealed()   {}
func (DefSelector) sealed()     {}
func (ClassSelector) sealed()   {}
func (SectionSelector) sealed() {}
func (PatternSelector) sealed() {}
func (PathSelector) sealed()    {}

func format(s Selector) string {
	return string(s.Kind()) + ":" + s.Value()
}

var selectorRegex = regexp.MustCompile(`^(lines|def|class|section|pattern|path):(.+)$`)

const selectorShapes = "lines:N-M | def:name | class:Name[.method] | section:Heading | pattern:/regex/ | path:key.path[0]"

// Parse parses a single selector string. Surrounding whitespace is ignored.
func Parse(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	m := selectorRegex.FindStringSubmatch(raw)
	if m == nil {
		e := newError(ErrMalformedSelector, "Malformed selector: '%s'. Expected format: %s", raw, selectorShapes)
		e.Selector = raw
		return nil, e
	}

	value := m[2]
	switch Kind(m[1]) {
	case KindLines:
		return LinesSelector{Spec: value}, nil
	case KindDef:
		return DefSelector{Name: value}, nil
	case KindClass:
		class, method, _ := strings.Cut(value, ".")
		return ClassSelector{Class: class, Method: method}, nil
	case KindSection:
		return SectionSelector{Heading: value}, nil
	case KindPattern:
		return PatternSelector{Expr: value}, nil
	default:
		return PathSelector{Expr: value}, nil
	}
}

// ParseSelectors parses each non-blank entry of raw, preserving order.
// The first malformed entry aborts parsing.
func ParseSelectors(raw []string) ([]Selector, error) {
	var out []Selector
	for _, r := range normalize(raw) {
		sel, err := Parse(r)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}

// SplitSelectors splits a comma-joined selector list on top-level commas,
// that is commas outside (), [] and {} nesting and outside the /…/ body of a
// pattern selector, so "pattern:/a{1,3}/" and "pattern:/a,b/" stay whole. A
// backslash escapes the next character. Pieces are trimmed and blank pieces
// dropped.
func SplitSelectors(s string) []string {
	var pieces []string
	depth, start := 0, 0
	inRegex := false
	for i := 0; i < len(s); i++ {
		if inRegex {
			switch s[i] {
			case '\\':
				i++
			case '/':
				inRegex = false
			}
			continue
		}
		switch s[i] {
		case '\\':
			i++
		case '/':
			if depth == 0 && strings.TrimSpace(s[start:i]) == string(KindPattern)+":" {
				inRegex = true
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				pieces = append(pieces, s[start:i])
				start = i + 1
			}
		}
	}
	pieces = append(pieces, s[start:])
	return normalize(pieces)
}

func normalize(raw []string) []string {
	var out []string
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
