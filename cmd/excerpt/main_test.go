//go:build cgo

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/excerpt/internal/export"
)

const (
	calculatorPy = "../../testdata/fixtures/selector/calculator.py"
	guideMd      = "../../testdata/fixtures/selector/guide.md"
	jobsYml      = "../../testdata/fixtures/batch/jobs.yml"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// execute runs the CLI with an empty config directory unless args set one.
func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	if !hasConfigDir(args) {
		args = append([]string{"--config-dir", t.TempDir()}, args...)
	}
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func hasConfigDir(args []string) bool {
	for _, a := range args {
		if a == "--config-dir" {
			return true
		}
	}
	return false
}

func TestSelect_Def(t *testing.T) {
	res := execute(t, "", "select", calculatorPy, "def:greet")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "def greet(name: str) -> str:\n"+
		"    \"\"\"Return a greeting string.\"\"\"\n"+
		"    return f\"Hello, {name}!\"\n", res.stdout)
}

func TestSelect_CommaSeparatedArgument(t *testing.T) {
	res := execute(t, "", "select", guideMd, "lines:1, lines:3")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "# Guide\nIntro text.\n", res.stdout)
}

func TestSelect_Stdin(t *testing.T) {
	data, err := os.ReadFile(guideMd)
	require.NoError(t, err)

	res := execute(t, string(data), "select", "-", "--as", "guide.md", "section:Usage")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "## Usage\nCall select.\n", res.stdout)
}

func TestSelect_InterfaceMode(t *testing.T) {
	res := execute(t, "", "select", calculatorPy, "def:greet", "--mode", "interface")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "def greet(name: str) -> str:\n"+
		"    \"\"\"Return a greeting string.\"\"\"\n"+
		"    ...\n", res.stdout)
}

func TestSelect_SelectionError(t *testing.T) {
	res := execute(t, "", "select", calculatorPy, "def:missing")
	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "excerpt error in")
	assert.Contains(t, res.stderr, calculatorPy)
	assert.Contains(t, res.stderr, "Function 'missing' not found in source")
	assert.Contains(t, res.stderr, "def:missing")
	assert.NotContains(t, res.stderr, "error: ", "reported errors are not printed twice")
}

func TestSelect_InvalidMode(t *testing.T) {
	res := execute(t, "", "select", calculatorPy, "def:greet", "--mode", "summary")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Invalid mode 'summary'")
}

func TestSelect_JSON(t *testing.T) {
	res := execute(t, "", "select", calculatorPy, "lines:1", "--json")
	require.Equal(t, 0, res.code, res.stderr)

	var rec export.Result
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rec))
	assert.Equal(t, calculatorPy, rec.File)
	assert.Equal(t, []string{"lines:1"}, rec.Selectors)
	assert.Equal(t, "full", rec.Mode)
	assert.Equal(t, "python", rec.FileType)
	assert.Equal(t, `"""Calculator utilities."""`, rec.Text)
}

func TestSelect_JSONFileTypeFromHint(t *testing.T) {
	res := execute(t, "{\"a\": 1}\n", "select", "-", "--as", "x.json", "path:a", "--json")
	require.Equal(t, 0, res.code, res.stderr)

	var rec export.Result
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rec))
	assert.Equal(t, "-", rec.File)
	assert.Equal(t, "json", rec.FileType)
	assert.Equal(t, "1", rec.Text)

	res = execute(t, "", "select", calculatorPy, "lines:1", "--as", "calc.txt", "--json")
	require.Equal(t, 0, res.code, res.stderr)
	rec = export.Result{}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rec))
	assert.Empty(t, rec.FileType)
}

func TestSelect_JSONError(t *testing.T) {
	res := execute(t, "", "select", calculatorPy, "class:Nope", "--json")
	assert.Equal(t, 1, res.code)

	var rec export.Result
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rec))
	assert.Equal(t, "class not found", rec.ErrorKind)
	assert.Equal(t, "class:Nope", rec.Selector)
	assert.Empty(t, rec.Text)
}

func TestSelect_Presets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "excerpt.yml"), []byte(
		"presets:\n  greeting:\n    - def:greet\n    - lines:1\n"), 0o644))

	res := execute(t, "", "--config-dir", dir, "select", calculatorPy, "@greeting")
	require.Equal(t, 0, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, `"""Calculator utilities."""`+"\ndef greet"))

	res = execute(t, "", "--config-dir", dir, "select", calculatorPy, "@nope")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `unknown selector preset "@nope"`)
}

func TestSelect_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "excerpt.yml"), []byte("mode: summary\n"), 0o644))

	res := execute(t, "", "--config-dir", dir, "select", calculatorPy, "lines:1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "invalid configuration")
}

func TestSelect_WatchNeedsFile(t *testing.T) {
	res := execute(t, "x = 1\n", "select", "-", "lines:1", "--watch")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "--watch needs a file path")
}

func TestSelect_MissingFile(t *testing.T) {
	res := execute(t, "", "select", "nope.py", "lines:1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "read nope.py")
}

func TestInterface(t *testing.T) {
	res := execute(t, "", "interface", calculatorPy)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "class Calculator:")
	assert.Contains(t, res.stdout, "async def fetch_data")
	assert.NotContains(t, res.stdout, "def _helper")
	assert.NotContains(t, res.stdout, "self._history.clear()")
}

func TestInterface_Mermaid(t *testing.T) {
	res := execute(t, "", "interface", calculatorPy, "--mermaid")
	require.Equal(t, 0, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "graph TD\n"))
	assert.Contains(t, res.stdout, "Calculator")
}

func TestBatch_JSON(t *testing.T) {
	res := execute(t, "", "batch", jobsYml, "--json", "--quiet")
	assert.Equal(t, 1, res.code, "failed jobs set the exit code")

	assert.NotContains(t, res.stderr, "complete\n")

	var summary export.BatchExport
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summary))
	assert.Equal(t, jobsYml, summary.Manifest)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Results, 5)
	assert.Equal(t, "calculator-api", summary.Results[0].Name)
	assert.Equal(t, "- 8080\n- 8443", summary.Results[2].Text)
}

func TestBatch_Text(t *testing.T) {
	res := execute(t, "", "batch", jobsYml)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "==> calculator-api (")
	assert.Contains(t, res.stdout, "Second install section.")
	assert.Contains(t, res.stdout, "Function 'missing' not found in source")
	assert.Contains(t, res.stderr, "✓ calculator-api complete")
	assert.Contains(t, res.stderr, "✗ broken failed")
	assert.Contains(t, res.stderr, "[5/5] ")
	assert.Equal(t, 5, strings.Count(res.stderr, "working"), res.stderr)
}

func TestBatch_MissingManifest(t *testing.T) {
	res := execute(t, "", "batch", "nope.yml")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "error: ")
}

func TestVersion(t *testing.T) {
	res := execute(t, "", "version")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "dev\n", res.stdout)
}
