//go:build cgo

package export

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/excerpt/internal/pyast"
)

func TestGenerateMermaid(t *testing.T) {
	src, err := os.ReadFile("../../testdata/fixtures/selector/calculator.py")
	require.NoError(t, err)
	mod, err := pyast.NewParser().Parse(src)
	require.NoError(t, err)

	out := GenerateMermaid("testdata/fixtures/selector/calculator.py", mod)

	assert.True(t, strings.HasPrefix(out, "graph TD\n  %% selector/calculator.py\n"))
	assert.Contains(t, out, "  subgraph N0[\"class Calculator\"]\n    N1[\"__init__()\"]\n")
	assert.Contains(t, out, "    N4[\"_reset()\"]\n  end\n")
	assert.Contains(t, out, "  N6[\"async fetch_data()\"]\n")
	assert.Contains(t, out, "  N8 --> N9\n", "nested function hangs off its parent")
	assert.Equal(t, 1, strings.Count(out, "-->"))
}

func TestGenerateMermaid_NestedClass(t *testing.T) {
	src := "class Outer:\n    class Inner:\n        def run(self):\n            pass\n"
	mod, err := pyast.NewParser().Parse([]byte(src))
	require.NoError(t, err)

	out := GenerateMermaid("", mod)
	assert.Equal(t, "graph TD\n"+
		"  subgraph N0[\"class Outer\"]\n  end\n"+
		"  subgraph N1[\"class Inner\"]\n    N2[\"run()\"]\n  end\n"+
		"  N0 --> N1\n", out)
}
