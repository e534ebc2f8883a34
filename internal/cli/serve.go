package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argus/internal/cache"
	"github.com/ppiankov/argus/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Serve exposes the analysis pipeline over HTTP:

  GET  /              health check
  POST /analyze       full analysis of one argument
  POST /dialectic     multi-round attack/defense session
  POST /quick-score   robustness score and summary band only
  GET  /analysis/:id  retrieve a completed analysis
  GET  /personas      available critic personas
  GET  /stances       available analysis stances

Example:
  argus serve
  argus serve --addr :9090 --provider anthropic`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")

	serveCmd.Flags().StringVar(&llmProvider, "provider", "", "reasoning provider (openai, anthropic, ollama)")
	serveCmd.Flags().StringVar(&llmModel, "model", "", "reasoning model name")
	serveCmd.Flags().IntVar(&workers, "workers", 0, "concurrent generation calls per analysis")
	serveCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the analysis cache")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	// Completed analyses stay retrievable for the cache TTL
	store := cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
	s := server.New(p, store, cfg.Cache.TTL, logger)
	return s.Run(cfg.Server.Addr)
}
