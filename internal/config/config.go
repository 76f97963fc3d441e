package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/excerpt/internal/logging"
	"github.com/dusk-indust/excerpt/internal/selector"
	"github.com/dusk-indust/excerpt/internal/yamlpath"
)

// DefaultConcurrency bounds batch jobs when the config leaves it unset.
const DefaultConcurrency = 4

// PresetPrefix marks a selector that names a preset instead of a region.
const PresetPrefix = "@"

// Environment variables that override the config file.
const (
	EnvMode         = "EXCERPT_MODE"
	EnvLogLevel     = "EXCERPT_LOG_LEVEL"
	EnvMCPAddr      = "EXCERPT_MCP_ADDR"
	EnvConcurrency  = "EXCERPT_CONCURRENCY"
	EnvYAML         = "EXCERPT_YAML"
	EnvRegexTimeout = "EXCERPT_REGEX_TIMEOUT"
)

// ProjectConfig holds project-level settings loaded from excerpt.yml.
type ProjectConfig struct {
	Mode         string              `yaml:"mode,omitempty"`
	LogLevel     string              `yaml:"logLevel,omitempty"`
	MCPAddr      string              `yaml:"mcpAddr,omitempty"`
	Concurrency  int                 `yaml:"concurrency,omitempty"`
	Render       bool                `yaml:"render,omitempty"`
	YAML         *bool               `yaml:"yaml,omitempty"`
	RegexTimeout time.Duration       `yaml:"regexTimeout,omitempty"`
	Presets      map[string][]string `yaml:"presets,omitempty"`
}

// Load reads excerpt.yml or excerpt.yaml from dir and applies EXCERPT_*
// environment overrides. Variables may come from a .env file in dir; it
// never overrides variables already set. A missing config file yields a
// zero-value config, not an error.
func Load(dir string) (*ProjectConfig, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &ProjectConfig{}
	for _, name := range []string{"excerpt.yml", "excerpt.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ProjectConfig) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvMode)); v != "" {
		c.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMCPAddr)); v != "" {
		c.MCPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvConcurrency)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConcurrency, err)
		}
		c.Concurrency = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvYAML)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvYAML, err)
		}
		c.YAML = &b
	}
	if v := strings.TrimSpace(os.Getenv(EnvRegexTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRegexTimeout, err)
		}
		c.RegexTimeout = d
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *ProjectConfig) Validate() error {
	if _, err := selector.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("config mode: %w", err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config logLevel: %w", err)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.RegexTimeout < 0 {
		return fmt.Errorf("config regexTimeout must not be negative, got %s", c.RegexTimeout)
	}
	for name, sels := range c.Presets {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("config preset with empty name")
		}
		if _, err := selector.ParseSelectors(sels); err != nil {
			return fmt.Errorf("config preset %q: %w", name, err)
		}
	}
	return nil
}

// DefaultMode returns the configured mode, ModeFull when unset or invalid.
func (c *ProjectConfig) DefaultMode() selector.Mode {
	mode, err := selector.ParseMode(c.Mode)
	if err != nil {
		return selector.ModeFull
	}
	return mode
}

// YAMLEnabled reports whether path selectors may read YAML. Default true.
func (c *ProjectConfig) YAMLEnabled() bool {
	return c.YAML == nil || *c.YAML
}

// Workers returns the batch concurrency limit.
func (c *ProjectConfig) Workers() int {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

// NewEngine builds a selector engine honoring the YAML and regex settings.
func (c *ProjectConfig) NewEngine() *selector.Engine {
	var opts []selector.Option
	if c.YAMLEnabled() {
		opts = append(opts, selector.WithYAML(yamlpath.New()))
	}
	if c.RegexTimeout > 0 {
		opts = append(opts, selector.WithRegexTimeout(c.RegexTimeout))
	}
	return selector.New(opts...)
}

// ExpandPresets replaces every "@name" entry with the selectors of that
// preset. Other entries pass through unchanged.
func (c *ProjectConfig) ExpandPresets(selectors []string) ([]string, error) {
	var out []string
	for _, raw := range selectors {
		trimmed := strings.TrimSpace(raw)
		name, ok := strings.CutPrefix(trimmed, PresetPrefix)
		if !ok {
			out = append(out, raw)
			continue
		}
		preset, found := c.Presets[name]
		if !found {
			return nil, fmt.Errorf("unknown selector preset %q", trimmed)
		}
		out = append(out, preset...)
	}
	return out, nil
}
