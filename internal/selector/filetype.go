package selector

import "strings"

// FileType is the content type inferred from a file path hint.
type FileType string

const (
	FileUnknown  FileType = ""
	FilePython   FileType = "python"
	FileMarkdown FileType = "markdown"
	FileJSON     FileType = "json"
	FileYAML     FileType = "yaml"
)

var extToFileType = []struct {
	ext string
	ft  FileType
}{
	{".py", FilePython},
	{".md", FileMarkdown},
	{".markdown", FileMarkdown},
	{".json", FileJSON},
	{".yaml", FileYAML},
	{".yml", FileYAML},
}

// DetectFileType infers the file type from a case-insensitive suffix match.
// An empty or unrecognized path yields FileUnknown.
func DetectFileType(path string) FileType {
	lower := strings.ToLower(strings.TrimSpace(path))
	for _, e := range extToFileType {
		if strings.HasSuffix(lower, e.ext) {
			return e.ft
		}
	}
	return FileUnknown
}

// checkFileTypes validates every selector against the file type before any
// content is parsed. Structural selectors assume Python when no path is
// given; section selectors accept a missing path; path selectors never do.
func checkFileTypes(sels []Selector, path string, ft FileType) error {
	var needsAST, needsMarkdown, needsData bool
	for _, sel := range sels {
		switch sel.(type) {
		case DefSelector, ClassSelector:
			needsAST = true
		case SectionSelector:
			needsMarkdown = true
		case PathSelector:
			needsData = true
		}
	}

	if needsAST && path != "" && ft != FilePython {
		return newError(ErrASTFileType, "AST selectors require a .py file, got '%s'", path)
	}
	if needsMarkdown && path != "" && ft != FileMarkdown {
		return newError(ErrSectionFileType, "Section selector requires a .md file, got '%s'", path)
	}
	if needsData && ft != FileJSON && ft != FileYAML {
		if path == "" {
			return newError(ErrPathFileType, "Path selector requires a JSON or YAML file, got no file path")
		}
		return newError(ErrPathFileType, "Path selector requires a JSON or YAML file, got '%s'", path)
	}
	return nil
}
