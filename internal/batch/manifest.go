package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/excerpt/internal/selector"
)

// Manifest lists the selections of one batch run.
type Manifest struct {
	Jobs []Job `yaml:"jobs"`
}

// Job is a single selection: one file, its selectors and a mode.
type Job struct {
	Name      string    `yaml:"name,omitempty"`
	File      string    `yaml:"file"`
	Selectors Selectors `yaml:"selectors,omitempty"`
	Mode      string    `yaml:"mode,omitempty"`
	// As overrides the file-type hint taken from File.
	As string `yaml:"as,omitempty"`
}

// Selectors accepts either a YAML list or one comma-joined string.
type Selectors []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Selectors) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = selector.SplitSelectors(node.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	return fmt.Errorf("line %d: selectors must be a list or a comma-separated string", node.Line)
}

// Hint returns the path used for file-type detection.
func (j Job) Hint() string {
	if j.As != "" {
		return j.As
	}
	return j.File
}

// LoadManifest reads a YAML or JSON manifest. Relative job paths are
// resolved against the manifest's directory and unnamed jobs are named
// after their file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range m.Jobs {
		if !filepath.IsAbs(m.Jobs[i].File) {
			m.Jobs[i].File = filepath.Join(dir, m.Jobs[i].File)
		}
	}
	return m, nil
}

// ParseManifest decodes and validates manifest data. JSON is accepted as a
// subset of YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for i := range m.Jobs {
		job := &m.Jobs[i]
		if job.File == "" {
			return nil, fmt.Errorf("job %d: file is required", i+1)
		}
		if _, err := selector.ParseMode(job.Mode); err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		if job.Name == "" {
			job.Name = fmt.Sprintf("%s#%d", filepath.Base(job.File), i+1)
		}
	}
	return &m, nil
}
