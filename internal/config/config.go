// Package config provides configuration management for the sentiment pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoInput             = errors.New("input.csv or input.feed is required")
	ErrConflictingInputs   = errors.New("input.csv and input.feed are mutually exclusive")
	ErrMissingIDColumn     = errors.New("input.id_column is required")
	ErrMissingURLColumn    = errors.New("input.url_column is required")
	ErrMissingCacheDir     = errors.New("cache.dir is required")
	ErrMissingOutputPath   = errors.New("output.path is required")
	ErrInvalidPreviewRows  = errors.New("output.preview_rows must be non-negative")
	ErrMissingUserAgent    = errors.New("fetch.user_agent is required")
	ErrInvalidTimeout      = errors.New("fetch.timeout_sec must be at least 1")
	ErrInvalidConcurrency  = errors.New("fetch.concurrency must be at least 1")
	ErrInvalidRate         = errors.New("fetch.rate_per_sec must be non-negative")
	ErrMissingContainerTag = errors.New("extract.container_tag is required")
	ErrInvalidFallback     = errors.New("extract.fallback must be empty or 'readability'")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidBufferSize   = errors.New("advanced.buffer_size_kb must be at least 1")
)

// FallbackReadability is the only supported fallback extraction strategy.
const FallbackReadability = "readability"

// Config represents the complete pipeline configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Features FeaturesConfig `yaml:"features"`
	Advanced AdvancedConfig `yaml:"advanced"`
}

// PipelineConfig contains per-stage settings.
type PipelineConfig struct {
	Input     InputConfig     `yaml:"input"`
	Cache     CacheConfig     `yaml:"cache"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Extract   ExtractConfig   `yaml:"extract"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Output    OutputConfig    `yaml:"output"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// InputConfig names the source of (id, url) pairs. Exactly one of CSV or
// Feed must be set.
type InputConfig struct {
	CSV       string `yaml:"csv"`
	Feed      string `yaml:"feed"`
	IDColumn  string `yaml:"id_column"`
	URLColumn string `yaml:"url_column"`
}

// IsFeed returns true if this input reads from an RSS/Atom feed.
func (i *InputConfig) IsFeed() bool {
	return i.Feed != ""
}

// GetSource returns the feed URL if set, or the CSV path otherwise.
func (i *InputConfig) GetSource() string {
	if i.IsFeed() {
		return i.Feed
	}

	return i.CSV
}

// CacheConfig locates the on-disk HTML cache.
type CacheConfig struct {
	Dir string `yaml:"dir"`
}

// FetchConfig controls outbound HTTP behavior.
type FetchConfig struct {
	UserAgent    string  `yaml:"user_agent"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	Concurrency  int     `yaml:"concurrency"`
	RatePerSec   float64 `yaml:"rate_per_sec"`
	StrictDecode bool    `yaml:"strict_decode"`
}

// GetTimeout returns the per-request timeout duration.
func (f *FetchConfig) GetTimeout() time.Duration {
	return time.Duration(f.TimeoutSec) * time.Second
}

// ExtractConfig identifies the article content container and the optional
// fallback strategy used when the container is absent.
type ExtractConfig struct {
	ContainerTag   string `yaml:"container_tag"`
	ContainerClass string `yaml:"container_class"`
	Fallback       string `yaml:"fallback"`
}

// ContainerSelector builds the CSS selector for the content container.
func (e *ExtractConfig) ContainerSelector() string {
	if e.ContainerClass == "" {
		return e.ContainerTag
	}

	return e.ContainerTag + "." + e.ContainerClass
}

// NormalizeConfig points at an optional stopword list override. When empty
// the embedded English set is used.
type NormalizeConfig struct {
	StopwordsFile string `yaml:"stopwords_file"`
}

// OutputConfig defines the output artifact.
type OutputConfig struct {
	Path        string `yaml:"path"`
	PreviewRows int    `yaml:"preview_rows"`
}

// LedgerConfig locates the optional run ledger database. Empty disables it.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level"`
	ShowProgress bool   `yaml:"show_progress"`
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	StrictValidation   bool `yaml:"strict_validation"`
	EnablePreviewTable bool `yaml:"enable_preview_table"`
}

// AdvancedConfig contains advanced settings.
type AdvancedConfig struct {
	BufferSizeKb               int  `yaml:"buffer_size_kb"`
	ContinueOnValidationErrors bool `yaml:"continue_on_validation_errors"`
}

// DefaultConfig returns a configuration with every setting at its default.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Input: InputConfig{
				IDColumn:  "URL_ID",
				URLColumn: "URL",
			},
			Cache: CacheConfig{
				Dir: ".cache/pages",
			},
			Fetch: FetchConfig{
				UserAgent:   "newsmood/1.0 (article sentiment pipeline)",
				TimeoutSec:  30,
				Concurrency: 4,
				RatePerSec:  2,
			},
			Extract: ExtractConfig{
				ContainerTag:   "div",
				ContainerClass: "td-post-content",
			},
			Output: OutputConfig{
				Path:        "sentiment.csv",
				PreviewRows: 10,
			},
			Logging: LoggingConfig{
				Level:        "info",
				ShowProgress: true,
			},
		},
		Features: FeaturesConfig{
			StrictValidation:   true,
			EnablePreviewTable: true,
		},
		Advanced: AdvancedConfig{
			BufferSizeKb: 2048,
		},
	}
}

// LoadConfig loads configuration from a YAML file over the defaults, applies
// environment overrides, and validates the result.
func LoadConfig(filepath string) (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyEnvOverrides()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnvOverrides lets NEWSMOOD_* environment variables override file
// settings. Applied after the YAML load, so the environment wins.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("NEWSMOOD_INPUT_CSV"); v != "" {
		c.Pipeline.Input.CSV = v
	}

	if v := os.Getenv("NEWSMOOD_INPUT_FEED"); v != "" {
		c.Pipeline.Input.Feed = v
	}

	if v := os.Getenv("NEWSMOOD_CACHE_DIR"); v != "" {
		c.Pipeline.Cache.Dir = v
	}

	if v := os.Getenv("NEWSMOOD_OUTPUT_PATH"); v != "" {
		c.Pipeline.Output.Path = v
	}

	if v := os.Getenv("NEWSMOOD_LEDGER_PATH"); v != "" {
		c.Pipeline.Ledger.Path = v
	}

	if v := os.Getenv("NEWSMOOD_USER_AGENT"); v != "" {
		c.Pipeline.Fetch.UserAgent = v
	}

	if v := os.Getenv("NEWSMOOD_LOG_LEVEL"); v != "" {
		c.Pipeline.Logging.Level = v
	}

	if v := os.Getenv("NEWSMOOD_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Pipeline.Fetch.Concurrency = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Check input config
	if c.Pipeline.Input.CSV == "" && c.Pipeline.Input.Feed == "" {
		return ErrNoInput
	}

	if c.Pipeline.Input.CSV != "" && c.Pipeline.Input.Feed != "" {
		return ErrConflictingInputs
	}

	if c.Pipeline.Input.CSV != "" {
		if c.Pipeline.Input.IDColumn == "" {
			return ErrMissingIDColumn
		}

		if c.Pipeline.Input.URLColumn == "" {
			return ErrMissingURLColumn
		}
	}

	// Validate cache and output locations
	if c.Pipeline.Cache.Dir == "" {
		return ErrMissingCacheDir
	}

	if c.Pipeline.Output.Path == "" {
		return ErrMissingOutputPath
	}

	if c.Pipeline.Output.PreviewRows < 0 {
		return ErrInvalidPreviewRows
	}

	// Validate fetch config
	if c.Pipeline.Fetch.UserAgent == "" {
		return ErrMissingUserAgent
	}

	if c.Pipeline.Fetch.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Pipeline.Fetch.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if c.Pipeline.Fetch.RatePerSec < 0 {
		return ErrInvalidRate
	}

	// Validate extract config
	if c.Pipeline.Extract.ContainerTag == "" {
		return ErrMissingContainerTag
	}

	if c.Pipeline.Extract.Fallback != "" && c.Pipeline.Extract.Fallback != FallbackReadability {
		return fmt.Errorf("%w: %q", ErrInvalidFallback, c.Pipeline.Extract.Fallback)
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Pipeline.Logging.Level] {
		return ErrInvalidLogLevel
	}

	// Validate advanced config
	if c.Advanced.BufferSizeKb < 1 {
		return ErrInvalidBufferSize
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Input: %s, Cache: %s, Output: %s, Concurrency: %d}",
		c.Pipeline.Input.GetSource(),
		c.Pipeline.Cache.Dir,
		c.Pipeline.Output.Path,
		c.Pipeline.Fetch.Concurrency,
	)
}
