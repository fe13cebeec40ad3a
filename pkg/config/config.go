package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for boorudl
type Config struct {
	// Board connection settings
	Board BoardConfig `yaml:"board" json:"board"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BoardConfig holds the image board endpoint and credentials
type BoardConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	Login     string `yaml:"login" json:"login"`
	APIKey    string `yaml:"api_key" json:"api_key"`
}

// DownloadConfig holds concurrency and timeout settings
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	PageConcurrency     int           `yaml:"page_concurrency" json:"page_concurrency"`
	RequestTimeout      time.Duration `yaml:"request_timeout" json:"request_timeout"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	// FallbackDirectory is used when Directory cannot be created.
	FallbackDirectory string `yaml:"fallback_directory" json:"fallback_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Board: BoardConfig{
			BaseURL:   "https://danbooru.donmai.us",
			UserAgent: "boorudl/1.0.0",
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 3,
			PageConcurrency:     4,
			RequestTimeout:      30 * time.Second,
			DownloadTimeout:     5 * time.Minute,
		},
		Output: OutputConfig{
			Directory:         "output",
			FallbackDirectory: filepath.Join(os.TempDir(), "boorudl"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables. A .env
// file in the working directory is honored when present. LOGIN_NAME and
// API_KEY are the credential pair the board expects; BOORUDL_* variables
// override the remaining settings.
func (c *Config) LoadFromEnv() {
	// Missing .env is not an error, anonymous access is the default.
	_ = godotenv.Load()

	if login := os.Getenv("LOGIN_NAME"); login != "" {
		c.Board.Login = login
	}
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		c.Board.APIKey = apiKey
	}
	if baseURL := os.Getenv("BOORUDL_BASE_URL"); baseURL != "" {
		c.Board.BaseURL = baseURL
	}
	if outputDir := os.Getenv("BOORUDL_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if concurrent := os.Getenv("BOORUDL_CONCURRENT_DOWNLOADS"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Download.ConcurrentDownloads = val
		}
	}
	if level := os.Getenv("BOORUDL_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// ApplyFlags overrides configuration with command line flag values
func (c *Config) ApplyFlags(flags map[string]interface{}) {
	for key, value := range flags {
		switch key {
		case "output":
			if v, ok := value.(string); ok && v != "" {
				c.Output.Directory = v
			}
		case "concurrent-downloads":
			if v, ok := value.(int); ok && v > 0 {
				c.Download.ConcurrentDownloads = v
			}
		case "page-concurrency":
			if v, ok := value.(int); ok && v > 0 {
				c.Download.PageConcurrency = v
			}
		case "base-url":
			if v, ok := value.(string); ok && v != "" {
				c.Board.BaseURL = v
			}
		case "log-level":
			if v, ok := value.(string); ok && v != "" {
				c.Logging.Level = v
			}
		}
	}
}

// Validate checks the configuration for obvious mistakes
func (c *Config) Validate() error {
	if c.Board.BaseURL == "" {
		return fmt.Errorf("board base URL must not be empty")
	}
	if !strings.HasPrefix(c.Board.BaseURL, "http://") && !strings.HasPrefix(c.Board.BaseURL, "https://") {
		return fmt.Errorf("board base URL must start with http:// or https://")
	}
	if c.Download.ConcurrentDownloads < 1 {
		return fmt.Errorf("concurrent_downloads must be at least 1")
	}
	if c.Download.PageConcurrency < 1 {
		return fmt.Errorf("page_concurrency must be at least 1")
	}
	if c.Output.Directory == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	return nil
}

// DefaultConfigPath returns the default location of the config file
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".boorudl.yaml"), nil
}

// Load builds the effective configuration: defaults, then the config
// file (explicit path or ~/.boorudl.yaml when present), then environment
// variables, then command line flags.
func Load(configFile string, flags map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, err
		}
	} else {
		if path, err := DefaultConfigPath(); err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				if err := cfg.LoadFromFile(path); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg.LoadFromEnv()
	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
