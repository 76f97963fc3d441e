package mcptools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dusk-indust/excerpt/internal/batch"
	"github.com/dusk-indust/excerpt/internal/config"
	"github.com/dusk-indust/excerpt/internal/export"
	"github.com/dusk-indust/excerpt/internal/pyast"
	"github.com/dusk-indust/excerpt/internal/selector"
)

// SelectorService holds the engine and settings used by MCP tool handlers.
type SelectorService struct {
	engine *selector.Engine
	cfg    *config.ProjectConfig
	root   string // relative file paths resolve against this directory
	logger *zap.Logger
}

// NewSelectorService creates a SelectorService. Relative paths in tool
// inputs resolve against root.
func NewSelectorService(cfg *config.ProjectConfig, root string, logger *zap.Logger) *SelectorService {
	if cfg == nil {
		cfg = &config.ProjectConfig{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectorService{
		engine: cfg.NewEngine(),
		cfg:    cfg,
		root:   root,
		logger: logger,
	}
}

func (s *SelectorService) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || s.root == "" {
		return path
	}
	return filepath.Join(s.root, path)
}

// SelectContent runs selectors against inline content or a file. Selection
// errors are returned as tool errors carrying the engine's message.
func (s *SelectorService) SelectContent(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SelectContentInput,
) (*mcp.CallToolResult, SelectContentOutput, error) {
	start := time.Now()

	content := input.Content
	if content == "" {
		if input.FilePath == "" {
			return nil, SelectContentOutput{}, fmt.Errorf("content or filePath is required")
		}
		data, err := os.ReadFile(s.resolve(input.FilePath))
		if err != nil {
			return nil, SelectContentOutput{}, fmt.Errorf("read %s: %w", input.FilePath, err)
		}
		content = string(data)
	}

	mode := input.Mode
	if mode == "" {
		mode = string(s.cfg.DefaultMode())
	}
	sels, err := s.cfg.ExpandPresets(input.Selectors)
	if err != nil {
		return nil, SelectContentOutput{}, err
	}

	text, err := s.engine.Select(content, sels, input.FilePath, selector.Mode(mode))
	if err != nil {
		s.logger.Info("selection failed", zap.String("file", input.FilePath), zap.Error(err))
		return nil, SelectContentOutput{}, err
	}

	s.logger.Debug("selection complete",
		zap.String("file", input.FilePath),
		zap.Int("selectors", len(sels)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil, SelectContentOutput{
		Text:          text,
		FileType:      string(selector.DetectFileType(input.FilePath)),
		SelectorCount: len(sels),
	}, nil
}

// InterfaceOutline returns the whole-file interface of Python source, or a
// Mermaid diagram of its definitions.
func (s *SelectorService) InterfaceOutline(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input InterfaceOutlineInput,
) (*mcp.CallToolResult, InterfaceOutlineOutput, error) {
	content := input.Content
	if content == "" {
		if input.FilePath == "" {
			return nil, InterfaceOutlineOutput{}, fmt.Errorf("content or filePath is required")
		}
		data, err := os.ReadFile(s.resolve(input.FilePath))
		if err != nil {
			return nil, InterfaceOutlineOutput{}, fmt.Errorf("read %s: %w", input.FilePath, err)
		}
		content = string(data)
	}

	switch strings.ToLower(input.Format) {
	case "", "text":
		text, err := s.engine.Select(content, nil, input.FilePath, selector.ModeInterface)
		if err != nil {
			return nil, InterfaceOutlineOutput{}, err
		}
		return nil, InterfaceOutlineOutput{Text: text, Format: "text"}, nil

	case "mermaid":
		mod, err := pyast.NewParser().Parse([]byte(content))
		if err != nil {
			return nil, InterfaceOutlineOutput{}, fmt.Errorf("parse python: %w", err)
		}
		return nil, InterfaceOutlineOutput{Text: export.GenerateMermaid(input.FilePath, mod), Format: "mermaid"}, nil
	}
	return nil, InterfaceOutlineOutput{}, fmt.Errorf("unknown format %q: expected text or mermaid", input.Format)
}

var selectorDocs = map[selector.Kind]SelectorInfo{
	selector.KindLines: {
		Syntax:      "lines:N | lines:N-M | lines:N- | lines:-M (comma-separated, 1-based)",
		Description: "Line ranges. Open ends run to the start or end of the file.",
	},
	selector.KindDef: {
		Syntax:      "def:name",
		Description: "Every function or async function with this name, at any nesting depth, decorators included.",
		FileTypes:   []string{".py"},
	},
	selector.KindClass: {
		Syntax:      "class:Name | class:Name.method",
		Description: "A class, or one method defined directly in its body.",
		FileTypes:   []string{".py"},
	},
	selector.KindSection: {
		Syntax:      "section:Heading",
		Description: "Markdown sections whose heading text matches, up to the next heading of the same or higher level.",
		FileTypes:   []string{".md", ".markdown"},
	},
	selector.KindPattern: {
		Syntax:      "pattern:/regex/ | pattern:regex",
		Description: "Every line the regular expression matches anywhere in.",
	},
	selector.KindPath: {
		Syntax:      "path:key.sub[0]",
		Description: "A value inside a JSON or YAML document, re-serialized in the source format.",
		FileTypes:   []string{".json", ".yaml", ".yml"},
	},
}

// ListSelectors describes the selector grammar and the configured presets.
func (s *SelectorService) ListSelectors(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListSelectorsInput,
) (*mcp.CallToolResult, ListSelectorsOutput, error) {
	out := ListSelectorsOutput{}
	for _, kind := range selector.Kinds {
		info := selectorDocs[kind]
		info.Kind = string(kind)
		out.Selectors = append(out.Selectors, info)
	}
	for name := range s.cfg.Presets {
		out.Presets = append(out.Presets, config.PresetPrefix+name)
	}
	slices.Sort(out.Presets)
	return nil, out, nil
}

// RunManifest runs every job of a manifest and returns all results, failed
// jobs included.
func (s *SelectorService) RunManifest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunManifestInput,
) (*mcp.CallToolResult, RunManifestOutput, error) {
	if input.ManifestPath == "" {
		return nil, RunManifestOutput{}, fmt.Errorf("manifestPath is required")
	}
	m, err := batch.LoadManifest(s.resolve(input.ManifestPath))
	if err != nil {
		return nil, RunManifestOutput{}, err
	}

	runner := batch.NewRunner(s.engine,
		batch.WithConcurrency(s.cfg.Workers()),
		batch.WithPresets(s.cfg.ExpandPresets),
		batch.WithLogger(s.logger),
	)
	results, err := runner.Run(ctx, m.Jobs)
	if err != nil {
		return nil, RunManifestOutput{}, err
	}
	summary := export.NewBatchExport(input.ManifestPath, results)
	return nil, RunManifestOutput{
		Manifest:  summary.Manifest,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Results:   summary.Results,
	}, nil
}
