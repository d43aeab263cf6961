package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/grade"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/graph"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/layout"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "SYNTHETIX_CONFIG"

// Config holds the tunables of the layout pipeline and its collaborators.
// Secrets and endpoints are read from the environment instead.
type Config struct {
	Layout   layout.Params   `toml:"layout"`
	Viewport layout.Viewport `toml:"viewport"`
	Extract  ExtractConfig   `toml:"extract"`
	Grade    GradeConfig     `toml:"grade"`
}

// ExtractConfig controls concept extraction. MaxConcepts and MaxRelations
// of zero select the default of the chosen strategy.
type ExtractConfig struct {
	Strategy           string `toml:"strategy"`
	MaxConcepts        int    `toml:"max_concepts"`
	MaxRelations       int    `toml:"max_relations"`
	TokenEncoder       string `toml:"token_encoder"`
	MaxTokens          int    `toml:"max_tokens"`
	ParallelAiRequests int    `toml:"parallel_ai_requests"`
	MaxRetries         int    `toml:"max_retries"`
	Dedupe             bool   `toml:"dedupe"`
}

// GradeConfig controls answer scoring.
type GradeConfig struct {
	Strategy   string `toml:"strategy"`
	MaxRetries int    `toml:"max_retries"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout:   layout.DefaultParams(),
		Viewport: layout.DefaultViewport(),
		Extract: ExtractConfig{
			Strategy:           extract.DefaultStrategy,
			TokenEncoder:       graph.DefaultTokenEncoder,
			MaxTokens:          graph.DefaultMaxTokens,
			ParallelAiRequests: graph.DefaultParallelAiRequests,
			MaxRetries:         graph.DefaultMaxRetries,
			Dedupe:             true,
		},
		Grade: GradeConfig{
			Strategy:   grade.DefaultScorer,
			MaxRetries: 3,
		},
	}
}

// Path returns the config path from SYNTHETIX_CONFIG, or an empty string.
func Path() string {
	return os.Getenv(EnvPath)
}

// Load reads the config file at path on top of the defaults. An empty path
// or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Engine builds a layout engine from the [layout] section.
func (c *Config) Engine() *layout.Engine {
	return layout.NewEngine(c.Layout)
}

// ExtractOptions returns the per-call extraction options.
func (c *Config) ExtractOptions(progress extract.ProgressFunc) extract.Options {
	return extract.Options{
		MaxConcepts:  c.Extract.MaxConcepts,
		MaxRelations: c.Extract.MaxRelations,
		Progress:     progress,
	}
}

// GraphParams returns the parameters of the AI extraction strategy. The
// caller sets the AI client.
func (c *Config) GraphParams() graph.NewGraphClientParams {
	return graph.NewGraphClientParams{
		TokenEncoder:       c.Extract.TokenEncoder,
		MaxTokens:          c.Extract.MaxTokens,
		ParallelAiRequests: c.Extract.ParallelAiRequests,
		MaxRetries:         c.Extract.MaxRetries,
		Dedupe:             c.Extract.Dedupe,
	}
}
