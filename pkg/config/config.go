// Package config handles loading and managing readyscore configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration shared by the CLI and the daemon.
type Config struct {
	LogLevel  string          `yaml:"log_level" validate:"oneof=debug info warn error"`
	Generator GeneratorConfig `yaml:"generator"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	Improve   ImproveConfig   `yaml:"improve"`
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Blob      BlobConfig      `yaml:"blob"`
}

// GeneratorConfig selects and tunes the code generation backend.
// Provider "auto" picks groq, then gemini, by which API key is set, and
// falls back to the offline generator when neither is.
type GeneratorConfig struct {
	Provider          string        `yaml:"provider" validate:"oneof=auto groq gemini fallback"`
	Models            []string      `yaml:"models"`
	GeminiModel       string        `yaml:"gemini_model"`
	Language          string        `yaml:"language"`
	MaxTokens         int           `yaml:"max_tokens" validate:"min=0"`
	Timeout           time.Duration `yaml:"timeout" validate:"min=0"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"min=0"`
	Burst             int           `yaml:"burst" validate:"min=0"`
	Retries           int           `yaml:"retries" validate:"min=0,max=10"`

	GroqAPIKey   string `yaml:"-"`
	GeminiAPIKey string `yaml:"-"`
}

// AnalyzerConfig points at the external metrics analyzer.
// Commands maps a detected language to a dedicated analyzer command; code in
// any other language goes to Command.
type AnalyzerConfig struct {
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args"`
	Commands  map[string]string `yaml:"commands"`
	Timeout   time.Duration     `yaml:"timeout" validate:"min=0"`
	CacheSize int               `yaml:"cache_size" validate:"min=0"`
}

// ImproveConfig controls the improvement loop.
type ImproveConfig struct {
	MaxIterations    int           `yaml:"max_iterations" validate:"min=0,max=20"`
	IterationTimeout time.Duration `yaml:"iteration_timeout" validate:"min=0"`
	Patience         int           `yaml:"patience" validate:"min=0"`
}

// ServerConfig controls the HTTP daemon.
type ServerConfig struct {
	Port         int    `yaml:"port" validate:"min=1,max=65535"`
	APIKey       string `yaml:"-"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" validate:"min=0"`
}

// StoreConfig selects the run history database.
type StoreConfig struct {
	Backend string `yaml:"backend" validate:"oneof=sqlite postgres mysql none"`
	DSN     string `yaml:"dsn"`
}

// BlobConfig selects where report artifacts are written.
type BlobConfig struct {
	Backend  string `yaml:"backend" validate:"oneof=local s3 gcs none"`
	Path     string `yaml:"path"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Generator: GeneratorConfig{
			Provider:          "auto",
			Models:            []string{"llama-3.3-70b-versatile", "llama3-8b-8192"},
			GeminiModel:       "gemini-2.0-flash",
			Language:          "python",
			MaxTokens:         4096,
			Timeout:           60 * time.Second,
			RequestsPerMinute: 30,
			Burst:             1,
			Retries:           3,
		},
		Analyzer: AnalyzerConfig{
			Command:   "readyscore-analyzer",
			Timeout:   30 * time.Second,
			CacheSize: 256,
		},
		Improve: ImproveConfig{
			MaxIterations:    3,
			IterationTimeout: 2 * time.Minute,
		},
		Server: ServerConfig{
			Port:         8080,
			MaxBodyBytes: 1 << 20,
		},
		Store: StoreConfig{
			Backend: "sqlite",
			DSN:     filepath.Join(DataDir(), "runs.db"),
		},
		Blob: BlobConfig{
			Backend: "local",
			Path:    filepath.Join(DataDir(), "reports"),
		},
	}
}

// LoadDotEnv loads environment variables from .env files. Missing files are
// ignored and variables already set win.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// Load reads a config file from the given path, applies environment
// overrides and validates the result.
// If the file does not exist, the defaults are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays secrets and deployment settings from the environment.
func (c *Config) ApplyEnv() error {
	c.Generator.GroqAPIKey = firstEnv("GROQ_API_KEY", c.Generator.GroqAPIKey)
	c.Generator.GeminiAPIKey = firstEnv("GEMINI_API_KEY", firstEnv("GOOGLE_API_KEY", c.Generator.GeminiAPIKey))
	c.Generator.Provider = firstEnv("READYSCORE_GENERATOR", c.Generator.Provider)
	c.Server.APIKey = firstEnv("READYSCORE_API_KEY", c.Server.APIKey)
	c.Analyzer.Command = firstEnv("READYSCORE_ANALYZER", c.Analyzer.Command)
	c.Store.Backend = firstEnv("READYSCORE_STORE_BACKEND", c.Store.Backend)
	c.Store.DSN = firstEnv("READYSCORE_STORE_DSN", c.Store.DSN)
	c.Blob.Backend = firstEnv("READYSCORE_BLOB_BACKEND", c.Blob.Backend)
	c.Blob.Path = firstEnv("READYSCORE_BLOB_PATH", c.Blob.Path)
	c.Blob.Bucket = firstEnv("READYSCORE_BLOB_BUCKET", c.Blob.Bucket)
	c.Blob.Region = firstEnv("READYSCORE_BLOB_REGION", c.Blob.Region)
	c.Blob.Endpoint = firstEnv("READYSCORE_BLOB_ENDPOINT", c.Blob.Endpoint)
	c.LogLevel = firstEnv("READYSCORE_LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("READYSCORE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing READYSCORE_PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	switch c.Store.Backend {
	case "postgres", "mysql":
		if c.Store.DSN == "" {
			return fmt.Errorf("store backend %s requires a dsn", c.Store.Backend)
		}
	}
	switch c.Blob.Backend {
	case "s3", "gcs":
		if c.Blob.Bucket == "" {
			return fmt.Errorf("blob backend %s requires a bucket", c.Blob.Backend)
		}
	case "local":
		if c.Blob.Path == "" {
			return fmt.Errorf("blob backend local requires a path")
		}
	}
	return nil
}

// FindConfigFile looks for .readyscore/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".readyscore", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// DataDir returns the directory for local run history and reports.
// Uses ~/.cache/readyscore/ unless READYSCORE_HOME is set.
func DataDir() string {
	if d := os.Getenv("READYSCORE_HOME"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "readyscore")
}

func firstEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
