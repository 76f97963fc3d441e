package mcptools

import "github.com/dusk-indust/excerpt/internal/export"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// SelectContentInput is the input for the select_content MCP tool.
type SelectContentInput struct {
	Content   string   `json:"content,omitempty" jsonschema:"text to select from; when empty the file at filePath is read"`
	FilePath  string   `json:"filePath,omitempty" jsonschema:"path of the file; also the file-type hint (.py, .md, .json, .yaml)"`
	Selectors []string `json:"selectors" jsonschema:"selectors such as lines:1-10, def:name, class:Name.method, section:Heading, pattern:/regex/, path:key[0]"`
	Mode      string   `json:"mode,omitempty" jsonschema:"full (default) or interface (Python signatures and docstrings only)"`
}

// SelectContentOutput is the result of the select_content MCP tool.
type SelectContentOutput struct {
	Text          string `json:"text"`
	FileType      string `json:"fileType,omitempty"`
	SelectorCount int    `json:"selectorCount"`
}

// InterfaceOutlineInput is the input for the interface_outline MCP tool.
type InterfaceOutlineInput struct {
	FilePath string `json:"filePath,omitempty" jsonschema:"path of a Python file"`
	Content  string `json:"content,omitempty" jsonschema:"Python source; takes precedence over filePath"`
	Format   string `json:"format,omitempty" jsonschema:"text (default) or mermaid"`
}

// InterfaceOutlineOutput is the result of the interface_outline MCP tool.
type InterfaceOutlineOutput struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

// ListSelectorsInput is the input for the list_selectors MCP tool.
type ListSelectorsInput struct{}

// ListSelectorsOutput is the result of the list_selectors MCP tool.
type ListSelectorsOutput struct {
	Selectors []SelectorInfo `json:"selectors"`
	Presets   []string       `json:"presets,omitempty"`
}

// SelectorInfo documents one selector kind.
type SelectorInfo struct {
	Kind        string   `json:"kind"`
	Syntax      string   `json:"syntax"`
	Description string   `json:"description"`
	FileTypes   []string `json:"fileTypes,omitempty"`
}

// RunManifestInput is the input for the run_manifest MCP tool.
type RunManifestInput struct {
	ManifestPath string `json:"manifestPath" jsonschema:"path to a YAML or JSON manifest listing selection jobs"`
}

// RunManifestOutput is the result of the run_manifest MCP tool.
type RunManifestOutput struct {
	Manifest  string          `json:"manifest"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []export.Result `json:"results"`
}
