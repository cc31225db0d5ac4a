// Package config provides engine configuration loading and startup validation.
//
// Configuration is read once at process start and shared read-only across all
// concurrent pipeline invocations. Invalid configuration is a fatal startup
// error; it is never surfaced at request time.
package config

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all engine tunables. Zero values are filled from defaults.
type Config struct {
	Weights    Weights    `mapstructure:"weights"`
	Thresholds Thresholds `mapstructure:"thresholds"`
	Extraction Extraction `mapstructure:"extraction"`
	Gemini     Gemini     `mapstructure:"gemini"`

	// Catalog paths. Empty means the embedded defaults are used.
	SynonymsPath string `mapstructure:"synonyms-path"`
	RulesPath    string `mapstructure:"rules-path"`

	EmbedCacheSize int `mapstructure:"embed-cache-size"`

	Server Server `mapstructure:"server"`

	JSONLog bool `mapstructure:"json"`
	Debug   bool `mapstructure:"debug"`
}

// Weights are the aggregation weights for the three sub-scores.
// They must sum to 1.0.
type Weights struct {
	Hard       float64 `mapstructure:"hard"`
	Experience float64 `mapstructure:"experience"`
	Soft       float64 `mapstructure:"soft"`
}

// Thresholds are the minimum cosine similarities for a pairing to count.
type Thresholds struct {
	Hard float64 `mapstructure:"hard"`
	Soft float64 `mapstructure:"soft"`
}

// Extraction bounds the external capability calls.
type Extraction struct {
	MaxRetries     int           `mapstructure:"max-retries"`
	Timeout        time.Duration `mapstructure:"timeout"`
	InitialBackoff time.Duration `mapstructure:"initial-backoff"`
}

// Gemini selects the provider models. The API key comes from the environment
// only; it is never written to a config file.
type Gemini struct {
	APIKey         string `mapstructure:"api-key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
}

// Server configures the transport shim.
type Server struct {
	Port int `mapstructure:"port"`
}

const (
	// Default aggregation weights: 50% hard skills, 30% experience,
	// 20% soft skills.
	DefaultHardWeight       = 0.5
	DefaultExperienceWeight = 0.3
	DefaultSoftWeight       = 0.2

	// Default similarity thresholds. Soft skills use a lower threshold
	// reflecting looser language variability.
	DefaultHardThreshold = 0.75
	DefaultSoftThreshold = 0.6

	weightSumTolerance = 1e-9
)

// Load reads configuration from the given file (optional) and the
// MATCHENGINE_* environment, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("weights.hard", DefaultHardWeight)
	v.SetDefault("weights.experience", DefaultExperienceWeight)
	v.SetDefault("weights.soft", DefaultSoftWeight)
	v.SetDefault("thresholds.hard", DefaultHardThreshold)
	v.SetDefault("thresholds.soft", DefaultSoftThreshold)
	v.SetDefault("extraction.max-retries", 3)
	v.SetDefault("extraction.timeout", 30*time.Second)
	v.SetDefault("extraction.initial-backoff", 500*time.Millisecond)
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.embedding-model", "text-embedding-004")
	v.SetDefault("embed-cache-size", 1024)
	v.SetDefault("server.port", 8080)

	v.SetEnvPrefix("MATCHENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api-key", "GEMINI_API_KEY"); err != nil {
		return nil, &ConfigurationError{Field: "gemini.api-key", Message: err.Error()}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigurationError{Field: "config", Message: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigurationError{Field: "config", Message: err.Error()}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks all invariants that must hold before the engine serves
// requests.
func (c *Config) Validate() error {
	w := c.Weights
	if w.Hard < 0 || w.Experience < 0 || w.Soft < 0 {
		return &ConfigurationError{Field: "weights", Message: "weights must be non-negative"}
	}
	if sum := w.Hard + w.Experience + w.Soft; math.Abs(sum-1.0) > weightSumTolerance {
		return &ConfigurationError{Field: "weights", Message: "weights must sum to 1.0"}
	}

	if c.Thresholds.Hard <= 0 || c.Thresholds.Hard > 1 {
		return &ConfigurationError{Field: "thresholds.hard", Message: "threshold must be in (0,1]"}
	}
	if c.Thresholds.Soft <= 0 || c.Thresholds.Soft > 1 {
		return &ConfigurationError{Field: "thresholds.soft", Message: "threshold must be in (0,1]"}
	}

	if c.Extraction.MaxRetries < 0 {
		return &ConfigurationError{Field: "extraction.max-retries", Message: "must be non-negative"}
	}
	if c.Extraction.Timeout <= 0 {
		return &ConfigurationError{Field: "extraction.timeout", Message: "must be positive"}
	}
	if c.EmbedCacheSize <= 0 {
		return &ConfigurationError{Field: "embed-cache-size", Message: "must be positive"}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigurationError{Field: "server.port", Message: "must be a valid TCP port"}
	}

	return nil
}
