package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argus/internal/ingest"
	"github.com/ppiankov/argus/internal/model"
	"github.com/ppiankov/argus/internal/pipeline"
	"github.com/ppiankov/argus/internal/render"
)

var (
	analyzeStance   string
	analyzePersona  string
	noFallacies     bool
	analyzeURL      string
	analyzeTimeout  time.Duration
	outJSON         string
	outMD           string
	httpUserAgent   string
	httpMaxBytes    int64
	httpSkipRobots  bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Analyze one argument: claims, attacks, defenses, robustness",
	Long: `Analyze decomposes an argument into atomic claims, attacks each claim
from the chosen persona, defends what can be defended, checks for logical
fallacies, and scores overall robustness from 0 to 100.

The argument comes from the positional text argument or from --url.

Example:
  argus analyze "Remote work increases productivity, so it should be mandatory"
  argus analyze --url https://example.com/essay --persona economist
  argus analyze "..." --stance attack --json report.json --md report.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeStance, "stance", "dialectic", "analysis stance (attack, defense, dialectic, neutral)")
	analyzeCmd.Flags().StringVar(&analyzePersona, "persona", "academic", "critic persona (see 'argus personas')")
	analyzeCmd.Flags().BoolVar(&noFallacies, "no-fallacies", false, "skip fallacy detection")
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "fetch the argument text from a URL")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 3*time.Minute, "overall analysis timeout")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")

	// HTTP flags, for --url
	analyzeCmd.Flags().StringVar(&httpUserAgent, "ua", "Argus/0.1 (+https://github.com/ppiankov/argus)", "HTTP User-Agent")
	analyzeCmd.Flags().Int64Var(&httpMaxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	analyzeCmd.Flags().BoolVar(&httpSkipRobots, "ignore-robots", false, "skip the robots.txt check")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "provider", "", "reasoning provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "model", "", "reasoning model name")
	analyzeCmd.Flags().IntVar(&llmTimeout, "llm-timeout", 0, "per-call reasoning timeout in seconds")
	analyzeCmd.Flags().IntVar(&workers, "workers", 0, "concurrent generation calls")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the analysis cache")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.HTTP.UserAgent = httpUserAgent
	cfg.HTTP.MaxBodyBytes = httpMaxBytes
	cfg.HTTP.IgnoreRobots = httpSkipRobots
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	input, err := resolveInput(ctx, cfg, args)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Analyzing (%s stance, %s persona)...\n", analyzeStance, analyzePersona)
	}

	graph, err := p.Analyze(ctx, buildRequest(input))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	render.Summary(os.Stdout, graph)

	jsonData, err := render.JSON(graph)
	if err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}
	if outJSON == "" && outMD == "" {
		fmt.Println()
		fmt.Println(string(jsonData))
		return nil
	}
	return writeReports(outJSON, outMD, jsonData, render.Markdown(graph))
}

// resolveInput picks the argument source: --url wins, otherwise the
// positional text. Either way the text is normalized before analysis.
func resolveInput(ctx context.Context, cfg *model.Config, args []string) (string, error) {
	if analyzeURL != "" {
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Fetching %s...\n", analyzeURL)
		}
		fetcher := ingest.NewFetcher(cfg.HTTP)
		return fetcher.Fetch(ctx, analyzeURL)
	}
	if len(args) == 0 {
		return "", fmt.Errorf("provide the argument text or --url")
	}
	return ingest.Normalize(args[0])
}

func buildRequest(input string) pipeline.Request {
	return pipeline.Request{
		Input:           input,
		Stance:          model.Stance(analyzeStance),
		Persona:         model.Persona(analyzePersona),
		DetectFallacies: !noFallacies,
	}
}
