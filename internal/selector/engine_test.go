//go:build cgo

package selector

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/excerpt/internal/pyast"
)

const calculatorPath = "calculator.py"

func selectOK(t *testing.T, e *Engine, content string, selectors []string, path string, mode Mode) string {
	t.Helper()
	out, err := e.Select(content, selectors, path, mode)
	require.NoError(t, err)
	return out
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, kind, se.Kind, "unexpected error: %v", err)
	return se
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func TestSelect_Lines(t *testing.T) {
	out := selectOK(t, New(), "L1\nL2\nL3\nL4\nL5", []string{"lines:2-4"}, "", ModeFull)
	assert.Equal(t, "L2\nL3\nL4", out)
}

func TestSelect_LineOutOfRange(t *testing.T) {
	_, err := New().Select("L1\nL2", []string{"lines:3"}, "", ModeFull)
	se := requireKind(t, err, ErrLineOutOfRange)
	assert.Equal(t, "Line 3 out of range (file has 2 lines)", se.Message)
	assert.Equal(t, "lines:3", se.Selector)
}

func TestSelect_Def(t *testing.T) {
	src := "def hello():\n    return 'hi'\n\nclass MyClass:\n    pass\n"
	out := selectOK(t, New(), src, []string{"def:hello"}, "", ModeFull)
	assert.Contains(t, out, "def hello")
	assert.NotContains(t, out, "class MyClass")
}

func TestSelect_Section(t *testing.T) {
	src := "## Section 1\nContent 1.\n### Subsection 1.1\nNested.\n## Section 2\nContent 2.\n"
	out := selectOK(t, New(), src, []string{"section:Section 1"}, "README.md", ModeFull)
	assert.Equal(t, "## Section 1\nContent 1.\n### Subsection 1.1\nNested.", out)
	assert.NotContains(t, out, "## Section 2")
}

func TestSelect_JSONPathRoundTrip(t *testing.T) {
	src := `{"items":[{"id":1},{"id":2}]}`
	out := selectOK(t, New(), src, []string{"path:items[1].id"}, "data.json", ModeFull)

	var got any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, float64(2), got)
}

func TestSelect_Malformed(t *testing.T) {
	_, err := New().Select("x", []string{"badformat"}, "", ModeFull)
	se := requireKind(t, err, ErrMalformedSelector)
	assert.Contains(t, se.Message, "'badformat'")
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestSelect_Idempotent(t *testing.T) {
	e := New()
	src := readFixture(t, calculatorPath)
	sels := []string{"class:Calculator.add", "def:greet", "pattern:/^import/"}

	first := selectOK(t, e, src, sels, calculatorPath, ModeFull)
	for range 3 {
		assert.Equal(t, first, selectOK(t, e, src, sels, calculatorPath, ModeFull))
	}
	iface := selectOK(t, e, src, sels, calculatorPath, ModeInterface)
	assert.Equal(t, iface, selectOK(t, e, src, sels, calculatorPath, ModeInterface))
}

func TestSelect_DefUnion(t *testing.T) {
	src := `def foo():
    return "top"


class Holder:
    def foo(self):
        return "method"
`
	out := selectOK(t, New(), src, []string{"def:foo"}, "mod.py", ModeFull)
	assert.Contains(t, out, `return "top"`)
	assert.Contains(t, out, `return "method"`)
	assert.NotContains(t, out, "class Holder")
}

func TestSelect_InterfaceElision(t *testing.T) {
	src := readFixture(t, calculatorPath)
	out := selectOK(t, New(), src, []string{"def:greet"}, calculatorPath, ModeInterface)
	assert.Equal(t, "def greet(name: str) -> str:\n    \"\"\"Return a greeting string.\"\"\"\n    ...", out)
	assert.NotContains(t, out, "Hello")
}

func TestSelect_InterfacePrivateExclusion(t *testing.T) {
	src := readFixture(t, calculatorPath)
	out := selectOK(t, New(), src, []string{"class:Calculator"}, calculatorPath, ModeInterface)
	assert.Contains(t, out, "def __init__(self, name: str = DEFAULT_NAME) -> None:")
	assert.Contains(t, out, pyast.Elision)
	assert.NotContains(t, out, "_reset")
	assert.NotContains(t, out, "self.name = name")

	out = selectOK(t, New(), src, []string{"class:Calculator._reset"}, calculatorPath, ModeInterface)
	assert.True(t, strings.HasSuffix(out, "\n\n    def _reset(self) -> None:\n        ..."), out)
	assert.Equal(t, 1, strings.Count(out, "_reset"))
}

func TestSelect_MergeEquivalence(t *testing.T) {
	lines := splitLines(readFixture(t, calculatorPath))
	spans := []Span{{40, 43}, {0, 3}, {2, 5}, {20, 21}}
	assert.Equal(t, ExtractSpans(lines, spans), ExtractSpans(lines, MergeSpans(spans)))
}

func TestSelect_JSONReserializationMatchesTraversal(t *testing.T) {
	src := readFixture(t, "settings.json")
	out := selectOK(t, New(), src, []string{"path:items"}, "settings.json", ModeFull)

	var direct map[string]any
	require.NoError(t, json.Unmarshal([]byte(src), &direct))
	var reparsed any
	require.NoError(t, json.Unmarshal([]byte(out), &reparsed))

	if diff := cmp.Diff(direct["items"], reparsed); diff != "" {
		t.Errorf("re-serialized value mismatch (-direct +reparsed):\n%s", diff)
	}
	assert.Contains(t, out, "café", "non-ASCII text is not escaped")
}

// ---------------------------------------------------------------------------
// Orchestration
// ---------------------------------------------------------------------------

func TestSelect_NoSelectors(t *testing.T) {
	e := New()
	src := readFixture(t, calculatorPath)

	assert.Equal(t, src, selectOK(t, e, src, nil, calculatorPath, ModeFull))
	assert.Equal(t, src, selectOK(t, e, src, []string{" ", ""}, calculatorPath, ModeFull))

	out := selectOK(t, e, src, nil, "", ModeInterface)
	assert.True(t, strings.HasPrefix(out, `"""Calculator utilities."""`))
	assert.NotContains(t, out, "_helper")
}

func TestSelect_SelectString(t *testing.T) {
	src := readFixture(t, calculatorPath)
	out, err := New().SelectString(src, "def:greet, lines:1", calculatorPath, ModeFull)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `"""Calculator utilities."""`+"\ndef greet"))
}

func TestSelect_Decorated(t *testing.T) {
	src := readFixture(t, calculatorPath)
	e := New()

	out := selectOK(t, e, src, []string{"class:Calculator.divide"}, calculatorPath, ModeFull)
	assert.True(t, strings.HasPrefix(out, "    @staticmethod\n    def divide("))
	assert.True(t, strings.HasSuffix(out, "        return a / b"))

	out = selectOK(t, e, src, []string{"class:Calculator"}, calculatorPath, ModeFull)
	assert.True(t, strings.HasPrefix(out, "@register\n@dataclass(frozen=True)\nclass Calculator:"))
	assert.True(t, strings.HasSuffix(out, "        self._history.clear()"))

	out = selectOK(t, e, src, []string{"def:fetch_data"}, calculatorPath, ModeFull)
	assert.True(t, strings.HasPrefix(out, "async def fetch_data("))
}

func TestSelect_NestedFunction(t *testing.T) {
	src := readFixture(t, calculatorPath)
	out := selectOK(t, New(), src, []string{"def:inner"}, calculatorPath, ModeFull)
	assert.Equal(t, "    def inner():\n        return 1", out)
}

func TestSelect_SpansBeforeFragments(t *testing.T) {
	src := readFixture(t, "settings.json")
	out := selectOK(t, New(), src, []string{"path:name", "lines:1", "path:limits.enabled"}, "settings.json", ModeFull)
	assert.Equal(t, "{\n\"excerpt\"\ntrue", out)
}

func TestSelect_InterfaceWithoutStructuralSelectors(t *testing.T) {
	src := readFixture(t, calculatorPath)
	out := selectOK(t, New(), src, []string{"lines:3"}, calculatorPath, ModeInterface)
	assert.Equal(t, "from __future__ import annotations", out)
}

func TestSelect_StructuralErrors(t *testing.T) {
	src := readFixture(t, calculatorPath)
	e := New()

	tests := []struct {
		selector string
		kind     ErrorKind
		message  string
	}{
		{"def:missing", ErrFunctionNotFound, "Function 'missing' not found in source"},
		{"class:Missing", ErrClassNotFound, "Class 'Missing' not found in source"},
		{"class:Missing.run", ErrClassNotFound, "Class 'Missing' (for method 'run') not found in source"},
		{"class:Calculator.nope", ErrMethodNotFound, "Method 'nope' not found in class 'Calculator'"},
		{"class:Calculator.inner", ErrMethodNotFound, "Method 'inner' not found in class 'Calculator'"},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			_, err := e.Select(src, []string{"def:greet", tt.selector}, calculatorPath, ModeFull)
			se := requireKind(t, err, tt.kind)
			assert.Equal(t, tt.message, se.Message)
			assert.Equal(t, tt.selector, se.Selector)
		})
	}
}

func TestSelect_ParseError(t *testing.T) {
	_, err := New().Select("def broken(:\n    pass\n", []string{"def:broken", "def:other"}, "", ModeFull)
	se := requireKind(t, err, ErrParse)
	assert.True(t, strings.HasPrefix(se.Message, "Python parse error: "))
}

func TestSelect_Python2SourceIsParseError(t *testing.T) {
	_, err := New().Select("def main():\n    print \"hi\"\n", []string{"def:main"}, "legacy.py", ModeFull)
	se := requireKind(t, err, ErrParse)
	assert.Contains(t, se.Message, "Python 2 print statement")
	assert.Contains(t, se.Message, "line 2")
}

func TestSelect_FileTypePreflight(t *testing.T) {
	e := New()
	notPython := "def broken(:"

	tests := []struct {
		name      string
		selectors []string
		path      string
		kind      ErrorKind
	}{
		{"ast on markdown", []string{"def:x"}, "notes.md", ErrASTFileType},
		{"ast before parse", []string{"lines:1", "class:X"}, "data.JSON", ErrASTFileType},
		{"section on python", []string{"section:Intro"}, "main.py", ErrSectionFileType},
		{"path without hint", []string{"path:a"}, "", ErrPathFileType},
		{"path on text", []string{"path:a"}, "notes.txt", ErrPathFileType},
		{"preflight beats bad lines", []string{"lines:999", "path:a"}, "x.py", ErrPathFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Select(notPython, tt.selectors, tt.path, ModeFull)
			requireKind(t, err, tt.kind)
		})
	}
}

func TestSelect_SectionWithoutPath(t *testing.T) {
	out := selectOK(t, New(), "# A\nx\n# B\ny", []string{"section:B"}, "", ModeFull)
	assert.Equal(t, "# B\ny", out)
}

func TestSelect_FirstErrorWins(t *testing.T) {
	_, err := New().Select("a\nb", []string{"pattern:/zzz/", "lines:9"}, "", ModeFull)
	requireKind(t, err, ErrNoPatternMatch)
}

func TestSelect_InvalidMode(t *testing.T) {
	_, err := New().Select("x", []string{"lines:1"}, "", Mode("outline"))
	requireKind(t, err, ErrInvalidMode)
}

func TestSelect_ProcessingErrorNamesSelector(t *testing.T) {
	e := New(WithRegexTimeout(10 * time.Millisecond))
	line := strings.Repeat("a", 60) + "!"
	sel := `pattern:/^(?=a)(a+)+$/`

	_, err := e.Select(line, []string{sel}, "", ModeFull)
	se := requireKind(t, err, ErrProcessing)
	assert.Equal(t, sel, se.Selector)
	assert.Contains(t, se.Message, "Error processing selector '"+sel+"'")
	assert.NotNil(t, se.Unwrap())
}

func TestSelect_Concurrent(t *testing.T) {
	e := New()
	src := readFixture(t, calculatorPath)
	want := selectOK(t, e, src, []string{"class:Calculator"}, calculatorPath, ModeInterface)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			got, err := e.Select(src, []string{"class:Calculator"}, calculatorPath, ModeInterface)
			if err != nil {
				return err
			}
			assert.Equal(t, want, got)
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	m, err = ParseMode(" interface ")
	require.NoError(t, err)
	assert.Equal(t, ModeInterface, m)

	_, err = ParseMode("brief")
	assert.True(t, IsKind(err, ErrInvalidMode))
}
