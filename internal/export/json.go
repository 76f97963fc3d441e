package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/excerpt/internal/selector"
)

// Result is the JSON record of one selection.
type Result struct {
	Name      string   `json:"name,omitempty"`
	File      string   `json:"file"`
	Selectors []string `json:"selectors"`
	Mode      string   `json:"mode"`
	FileType  string   `json:"fileType,omitempty"`
	Text      string   `json:"text"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"errorKind,omitempty"`
	Selector  string   `json:"failedSelector,omitempty"`
}

// NewResult records the outcome of a Select call. A non-nil err fills the
// error fields and leaves Text empty.
func NewResult(name, file string, selectors []string, mode selector.Mode, text string, err error) Result {
	if mode == "" {
		mode = selector.ModeFull
	}
	r := Result{
		Name:      name,
		File:      file,
		Selectors: selectors,
		Mode:      string(mode),
		FileType:  string(selector.DetectFileType(file)),
		Text:      text,
	}
	if r.Selectors == nil {
		r.Selectors = []string{}
	}
	if err != nil {
		r.Text = ""
		r.Error = err.Error()
		var se *selector.Error
		if errors.As(err, &se) {
			r.ErrorKind = se.Kind.String()
			r.Selector = se.Selector
		}
	}
	return r
}

// WithFileType returns r with FileType detected from hint instead of File.
// An empty hint leaves r unchanged.
func (r Result) WithFileType(hint string) Result {
	if hint != "" {
		r.FileType = string(selector.DetectFileType(hint))
	}
	return r
}

// Failed reports whether the selection returned an error.
func (r Result) Failed() bool {
	return r.Error != ""
}

// BatchExport is the top-level JSON export of a manifest run.
type BatchExport struct {
	Manifest   string   `json:"manifest"`
	ExportedAt string   `json:"exportedAt"`
	Succeeded  int      `json:"succeeded"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// NewBatchExport summarizes results of the given manifest.
func NewBatchExport(manifest string, results []Result) *BatchExport {
	export := &BatchExport{
		Manifest:   manifest,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Results:    results,
	}
	if export.Results == nil {
		export.Results = []Result{}
	}
	for _, r := range results {
		if r.Failed() {
			export.Failed++
		} else {
			export.Succeeded++
		}
	}
	return export
}

// WriteJSON writes v as two-space indented JSON without HTML escaping.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
