package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/excerpt/internal/selector"
)

func TestFormatError(t *testing.T) {
	_, err := selector.New().Select("x", []string{"section:Intro"}, "main.py", selector.ModeFull)
	require.Error(t, err)

	out := FormatError("main.py", err)
	assert.Contains(t, out, "excerpt error in")
	assert.Contains(t, out, "main.py")
	assert.Contains(t, out, "Section selector requires a .md file, got 'main.py'")
	assert.NotContains(t, out, "selector: ", "preflight errors are not tied to one selector")
}

func TestFormatError_NamesSelector(t *testing.T) {
	_, err := selector.New().Select("a", []string{"pattern:/zzz/"}, "", selector.ModeFull)
	require.Error(t, err)

	out := FormatError("", err)
	assert.Contains(t, out, "<stdin>")
	assert.Contains(t, out, "selector: ")
	assert.Contains(t, out, "pattern:/zzz/")
}

func TestFormatError_PlainError(t *testing.T) {
	out := NewTheme().FormatError("a.py", errors.New("permission denied"))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "  permission denied", lines[1])
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Title\n\nSome *text*.", 0)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "text")
}

func TestFencedCode(t *testing.T) {
	assert.Equal(t, "```python\ndef f(): ...\n```", FencedCode("def f(): ...", selector.FilePython))
	assert.Equal(t, "````\nx ``` y\n````", FencedCode("x ``` y", selector.FileUnknown))
}
