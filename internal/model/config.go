package model

import "time"

// Config is the full runtime configuration, layered from flags, ARGUS_* env
// vars, ~/.argus/config.yaml, and the defaults below.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Server      ServerConfig      `yaml:"server" json:"server"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// LLMConfig configures the reasoning-service gateway
type LLMConfig struct {
	Provider string `yaml:"provider" json:"provider"` // openai, anthropic, ollama
	Model    string `yaml:"model" json:"model"`
	APIKey   string `yaml:"-" json:"-"` // From env, never persisted
	BaseURL  string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout  int    `yaml:"timeout" json:"timeout"` // Seconds, per gateway call

	// RequestsPerSecond throttles gateway calls; the provider's own rate
	// limit is usually the binding constraint.
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// ConcurrencyConfig bounds the fan-out stages
type ConcurrencyConfig struct {
	GenerationWorkers int `yaml:"generation_workers" json:"generation_workers"` // Concurrent gateway calls per analysis
	BatchWorkers      int `yaml:"batch_workers" json:"batch_workers"`           // Concurrent analyses in batch mode
}

// CacheConfig controls the analysis result cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// HTTPConfig configures URL ingestion
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	IgnoreRobots bool          `yaml:"ignore_robots" json:"ignore_robots"`
}

// ServerConfig configures the serving layer
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:          "openai",
			Timeout:           60,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Concurrency: ConcurrencyConfig{
			GenerationWorkers: 5,
			BatchWorkers:      4,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     1 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Argus/0.1 (+https://github.com/ppiankov/argus)",
			MaxBodyBytes: 2_000_000,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
