// Package selector extracts regions of text files with declarative
// selectors: line ranges, Python functions and classes, Markdown sections,
// regex matches and JSON/YAML paths. Python results can be reduced to an
// interface view of signatures and docstrings.
package selector

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dusk-indust/excerpt/internal/pyast"
)

// Mode controls how selected Python code is rendered.
type Mode string

const (
	ModeFull      Mode = "full"
	ModeInterface Mode = "interface"
)

// ParseMode validates a mode name. The empty string means ModeFull.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.TrimSpace(s)) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeInterface:
		return ModeInterface, nil
	}
	return "", newError(ErrInvalidMode, "Invalid mode '%s': expected 'full' or 'interface'", s)
}

// Engine resolves selectors against in-memory content. It holds only
// immutable configuration and is safe for concurrent use.
type Engine struct {
	parser       *pyast.Parser
	yaml         YAMLSupport
	regexTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithYAML enables path selectors on YAML content.
func WithYAML(y YAMLSupport) Option {
	return func(e *Engine) { e.yaml = y }
}

// WithRegexTimeout bounds each line match of patterns that need the
// backtracking engine. Zero disables the bound.
func WithRegexTimeout(d time.Duration) Option {
	return func(e *Engine) { e.regexTimeout = d }
}

// New creates an Engine. Without WithYAML, YAML path selectors fail with
// ErrYAMLUnsupported.
func New(opts ...Option) *Engine {
	e := &Engine{
		parser:       pyast.NewParser(),
		regexTimeout: DefaultRegexTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HasYAML reports whether the engine can resolve YAML paths.
func (e *Engine) HasYAML() bool {
	return e.yaml != nil
}

// SelectString is Select with selectors given as one comma-joined string.
func (e *Engine) SelectString(content, selectors, filePath string, mode Mode) (string, error) {
	return e.Select(content, SplitSelectors(selectors), filePath, mode)
}

// Select returns the union of the regions of content matched by selectors.
// filePath is only a type hint and may be empty. With no selectors, content
// is returned unchanged, or reduced to its whole-file interface in
// ModeInterface. Every failure is a *Error and aborts the whole call.
func (e *Engine) Select(content string, selectors []string, filePath string, mode Mode) (string, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return "", err
	}

	raw := normalize(selectors)
	if len(raw) == 0 {
		if mode == ModeInterface {
			return e.moduleInterface(content)
		}
		return content, nil
	}

	sels, err := ParseSelectors(raw)
	if err != nil {
		return "", err
	}

	ft := DetectFileType(filePath)
	if err := checkFileTypes(sels, filePath, ft); err != nil {
		return "", err
	}

	lines := splitLines(content)

	var mod *pyast.Module
	if needsAST(sels) {
		if mod, err = e.parsePython(content); err != nil {
			return "", err
		}
	}

	var spans []Span
	var fragments []string
	for _, sel := range sels {
		got, fragment, err := e.resolve(sel, content, lines, ft, mod)
		if err != nil {
			return "", err
		}
		spans = append(spans, got...)
		if fragment != nil {
			fragments = append(fragments, *fragment)
		}
	}

	var parts []string
	if len(spans) > 0 {
		parts = append(parts, e.render(lines, spans, mod, mode))
	}
	parts = append(parts, fragments...)
	return strings.Join(parts, "\n"), nil
}

// resolve dispatches one selector. Line-based kinds return spans; path
// returns a text fragment. Failures that are not already selection errors,
// panics included, are wrapped as ErrProcessing naming the selector.
func (e *Engine) resolve(sel Selector, content string, lines []string, ft FileType, mod *pyast.Module) (spans []Span, fragment *string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			err = annotate(sel, err)
		}
	}()

	switch s := sel.(type) {
	case LinesSelector:
		spans, err = resolveLines(len(lines), s.Spec)
	case DefSelector:
		spans, err = resolveDef(mod, s)
	case ClassSelector:
		spans, err = resolveClass(mod, s)
	case SectionSelector:
		spans, err = resolveSection(lines, s.Heading)
	case PatternSelector:
		spans, err = resolvePattern(lines, s.Expr, e.regexTimeout)
	case PathSelector:
		var text string
		text, err = e.resolvePath(content, ft, s.Expr)
		fragment = &text
	}
	if err != nil {
		return nil, nil, err
	}
	return spans, fragment, nil
}

// annotate stamps the selector onto selection errors and wraps anything else.
func annotate(sel Selector, err error) error {
	var se *Error
	if errors.As(err, &se) {
		if se.Selector == "" {
			se.Selector = sel.String()
		}
		return se
	}
	return &Error{
		Kind:     ErrProcessing,
		Selector: sel.String(),
		Message:  fmt.Sprintf("Error processing selector '%s': %v", sel, err),
		Err:      err,
	}
}

// render turns the collected spans into text, projecting overlapping Python
// definitions in interface mode.
func (e *Engine) render(lines []string, spans []Span, mod *pyast.Module, mode Mode) string {
	merged := MergeSpans(spans)
	if mode == ModeInterface && mod != nil {
		selected := make([]pyast.Range, len(merged))
		for i, sp := range merged {
			selected[i] = pyast.Range{Start: sp.Start, End: sp.End}
		}
		if out := pyast.ProjectSelected(mod, lines, selected); out != nil {
			return strings.Join(out, "\n")
		}
	}
	return ExtractSpans(lines, merged)
}

func (e *Engine) moduleInterface(content string) (string, error) {
	mod, err := e.parsePython(content)
	if err != nil {
		return "", err
	}
	return strings.Join(pyast.ProjectModule(mod, splitLines(content)), "\n"), nil
}

func (e *Engine) parsePython(content string) (*pyast.Module, error) {
	mod, err := e.parser.Parse([]byte(content))
	if err != nil {
		return nil, wrapError(ErrParse, err, "Python parse error: %v", err)
	}
	return mod, nil
}

func needsAST(sels []Selector) bool {
	for _, sel := range sels {
		switch sel.(type) {
		case DefSelector, ClassSelector:
			return true
		}
	}
	return false
}
