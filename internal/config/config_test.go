package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// Helper to build a fully valid configuration for mutation tests.
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Pipeline.Input.CSV = "./input/articles.csv"

	return cfg
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
pipeline:
  input:
    csv: "./input/articles.csv"
    id_column: "URL_ID"
    url_column: "URL"
  cache:
    dir: "./cache/pages"
  fetch:
    user_agent: "newsmood-test/1.0"
    timeout_sec: 15
    concurrency: 2
    rate_per_sec: 4
  extract:
    container_tag: "div"
    container_class: "td-post-content"
  output:
    path: "./out/sentiment.csv"
    preview_rows: 5
  logging:
    level: "info"
    show_progress: true
features:
  strict_validation: true
  enable_preview_table: false
advanced:
  buffer_size_kb: 1024
  continue_on_validation_errors: false
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg == nil {
		t.Fatal("Expected config, got nil")
	}

	if cfg.Pipeline.Input.CSV != "./input/articles.csv" {
		t.Errorf("Expected input CSV './input/articles.csv', got '%s'", cfg.Pipeline.Input.CSV)
	}

	if cfg.Pipeline.Fetch.Concurrency != 2 {
		t.Errorf("Expected concurrency 2, got %d", cfg.Pipeline.Fetch.Concurrency)
	}

	if cfg.Pipeline.Output.PreviewRows != 5 {
		t.Errorf("Expected preview_rows 5, got %d", cfg.Pipeline.Output.PreviewRows)
	}
}

func TestLoadConfig_DefaultsPreserved(t *testing.T) {
	// The file omits fetch.timeout_sec, so the default must survive.
	configPath := createTempConfigFile(t, `
pipeline:
  input:
    csv: "./input/articles.csv"
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Pipeline.Fetch.TimeoutSec != 30 {
		t.Errorf("Expected default timeout_sec 30, got %d", cfg.Pipeline.Fetch.TimeoutSec)
	}

	if cfg.Pipeline.Extract.ContainerClass != "td-post-content" {
		t.Errorf("Expected default container class, got '%s'", cfg.Pipeline.Extract.ContainerClass)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate_NoInput(t *testing.T) {
	cfg := DefaultConfig()

	err := cfg.Validate()
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("Expected ErrNoInput, got %v", err)
	}
}

func TestConfig_Validate_ConflictingInputs(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Input.Feed = "http://example.com/feed.xml"

	err := cfg.Validate()
	if !errors.Is(err, ErrConflictingInputs) {
		t.Fatalf("Expected ErrConflictingInputs, got %v", err)
	}
}

func TestConfig_Validate_MissingIDColumn(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Input.IDColumn = ""

	err := cfg.Validate()
	if !errors.Is(err, ErrMissingIDColumn) {
		t.Fatalf("Expected ErrMissingIDColumn, got %v", err)
	}
}

func TestConfig_Validate_FeedSkipsColumnChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Input.CSV = ""
	cfg.Pipeline.Input.Feed = "http://example.com/feed.xml"
	cfg.Pipeline.Input.IDColumn = ""
	cfg.Pipeline.Input.URLColumn = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Feed input should not require CSV columns, got %v", err)
	}
}

func TestConfig_Validate_MissingCacheDir(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Cache.Dir = ""

	err := cfg.Validate()
	if !errors.Is(err, ErrMissingCacheDir) {
		t.Fatalf("Expected ErrMissingCacheDir, got %v", err)
	}
}

func TestConfig_Validate_MissingOutputPath(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Output.Path = ""

	err := cfg.Validate()
	if !errors.Is(err, ErrMissingOutputPath) {
		t.Fatalf("Expected ErrMissingOutputPath, got %v", err)
	}
}

func TestConfig_Validate_InvalidTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Fetch.TimeoutSec = 0

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidTimeout) {
		t.Fatalf("Expected ErrInvalidTimeout, got %v", err)
	}
}

func TestConfig_Validate_InvalidConcurrency(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Fetch.Concurrency = 0

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConcurrency) {
		t.Fatalf("Expected ErrInvalidConcurrency, got %v", err)
	}
}

func TestConfig_Validate_NegativeRate(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Fetch.RatePerSec = -1

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("Expected ErrInvalidRate, got %v", err)
	}
}

func TestConfig_Validate_MissingContainerTag(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Extract.ContainerTag = ""

	err := cfg.Validate()
	if !errors.Is(err, ErrMissingContainerTag) {
		t.Fatalf("Expected ErrMissingContainerTag, got %v", err)
	}
}

func TestConfig_Validate_InvalidFallback(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Extract.Fallback = "boilerpipe"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidFallback) {
		t.Fatalf("Expected ErrInvalidFallback, got %v", err)
	}
}

func TestConfig_Validate_ReadabilityFallbackAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Extract.Fallback = FallbackReadability

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected readability fallback to validate, got %v", err)
	}
}

func TestConfig_Validate_InvalidLoggingLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Logging.Level = "verbose"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("Expected ErrInvalidLogLevel, got %v", err)
	}
}

func TestConfig_Validate_InvalidBufferSize(t *testing.T) {
	cfg := validConfig()
	cfg.Advanced.BufferSizeKb = 0

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidBufferSize) {
		t.Fatalf("Expected ErrInvalidBufferSize, got %v", err)
	}
}

// --- Env Override Tests ---

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("NEWSMOOD_CACHE_DIR", "/tmp/override-cache")
	t.Setenv("NEWSMOOD_CONCURRENCY", "8")

	cfg := validConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Pipeline.Cache.Dir != "/tmp/override-cache" {
		t.Errorf("Expected env cache dir override, got '%s'", cfg.Pipeline.Cache.Dir)
	}

	if cfg.Pipeline.Fetch.Concurrency != 8 {
		t.Errorf("Expected env concurrency override 8, got %d", cfg.Pipeline.Fetch.Concurrency)
	}
}

func TestConfig_ApplyEnvOverrides_BadInt(t *testing.T) {
	t.Setenv("NEWSMOOD_CONCURRENCY", "many")

	cfg := validConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Pipeline.Fetch.Concurrency != 4 {
		t.Errorf("Expected unparseable override to be ignored, got %d", cfg.Pipeline.Fetch.Concurrency)
	}
}

// --- InputConfig Tests ---

func TestInputConfig_IsFeed(t *testing.T) {
	tests := []struct {
		name     string
		input    InputConfig
		expected bool
	}{
		{"CSV only", InputConfig{CSV: "./articles.csv"}, false},
		{"Feed only", InputConfig{Feed: "http://example.com/feed.xml"}, true},
		{"Neither", InputConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.IsFeed(); got != tt.expected {
				t.Errorf("IsFeed() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInputConfig_GetSource(t *testing.T) {
	tests := []struct {
		name     string
		input    InputConfig
		expected string
	}{
		{"CSV only", InputConfig{CSV: "./articles.csv"}, "./articles.csv"},
		{"Feed only", InputConfig{Feed: "http://example.com/feed.xml"}, "http://example.com/feed.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.GetSource(); got != tt.expected {
				t.Errorf("GetSource() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// --- FetchConfig Tests ---

func TestFetchConfig_GetTimeout(t *testing.T) {
	fc := FetchConfig{TimeoutSec: 30}
	expected := 30 * time.Second

	if got := fc.GetTimeout(); got != expected {
		t.Errorf("GetTimeout() = %v, want %v", got, expected)
	}
}

// --- ExtractConfig Tests ---

func TestExtractConfig_ContainerSelector(t *testing.T) {
	tests := []struct {
		name     string
		extract  ExtractConfig
		expected string
	}{
		{"Tag and class", ExtractConfig{ContainerTag: "div", ContainerClass: "td-post-content"}, "div.td-post-content"},
		{"Tag only", ExtractConfig{ContainerTag: "article"}, "article"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.extract.ContainerSelector(); got != tt.expected {
				t.Errorf("ContainerSelector() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg := validConfig()

	str := cfg.String()
	if str == "" {
		t.Error("Expected non-empty string representation")
	}
}

func TestConfig_SaveConfig(t *testing.T) {
	cfg := validConfig()

	tmpDir := t.TempDir()
	savePath := filepath.Join(tmpDir, "saved_config.yaml")

	err := cfg.SaveConfig(savePath)
	if err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	// Verify file was created
	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Expected saved config file to exist")
	}

	// Verify we can load it back
	loaded, err := LoadConfig(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Pipeline.Input.CSV != "./input/articles.csv" {
		t.Error("Loaded config does not match saved config")
	}
}
