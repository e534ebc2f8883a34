package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/argus/internal/cache"
	"github.com/ppiankov/argus/internal/llm"
	"github.com/ppiankov/argus/internal/model"
	"github.com/ppiankov/argus/internal/pipeline"
	"github.com/ppiankov/argus/internal/worker"
)

// Flags shared by the analysis commands
var (
	llmProvider string
	llmModel    string
	llmTimeout  int
	noCache     bool
	workers     int
)

// loadConfig layers defaults, the config file, and analysis flags
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	// Config file values, when present
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetInt("llm.timeout"); v > 0 {
		cfg.LLM.Timeout = v
	}
	if v := viper.GetFloat64("llm.requests_per_second"); v > 0 {
		cfg.LLM.RequestsPerSecond = v
	}
	if v := viper.GetInt("concurrency.generation_workers"); v > 0 {
		cfg.Concurrency.GenerationWorkers = v
	}
	if v := viper.GetInt("concurrency.batch_workers"); v > 0 {
		cfg.Concurrency.BatchWorkers = v
	}
	if v := viper.GetDuration("cache.ttl"); v > 0 {
		cfg.Cache.TTL = v
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}

	// Flags override the file
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if llmTimeout > 0 {
		cfg.LLM.Timeout = llmTimeout
	}
	if workers > 0 {
		cfg.Concurrency.GenerationWorkers = workers
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Output.Verbose = verbose

	return cfg
}

// resolveAPIKey fills the provider credential from the environment
func resolveAPIKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

// newLogger builds the command logger: development output when verbose,
// silent otherwise.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newPipeline assembles the analysis pipeline from configuration
func newPipeline(cfg *model.Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	if err := resolveAPIKey(cfg); err != nil {
		return nil, err
	}

	gateway, err := llm.NewGateway(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create gateway: %w", err)
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithLimiter(worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst)),
	}
	if cfg.Cache.Enabled {
		opts = append(opts, pipeline.WithCache(cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute), cfg.Cache.TTL))
	}

	return pipeline.New(gateway, cfg.Concurrency.GenerationWorkers, opts...), nil
}

// writeReports writes the JSON and optional Markdown reports
func writeReports(jsonPath, mdPath string, jsonData []byte, markdown string) error {
	if jsonPath != "" {
		if err := os.WriteFile(jsonPath, jsonData, 0o644); err != nil {
			return fmt.Errorf("write JSON report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ JSON report: %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
			return fmt.Errorf("write Markdown report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Markdown report: %s\n", mdPath)
		}
	}
	return nil
}
