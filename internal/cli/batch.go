package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argus/internal/model"
	"github.com/ppiankov/argus/internal/render"
	"github.com/ppiankov/argus/internal/worker"
)

var (
	batchConcurrency int
	batchOutputDir   string
	batchTimeout     time.Duration
	batchStance      string
	batchPersona     string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple arguments from a file in parallel",
	Long: `Batch analyzes many arguments concurrently:
- Read arguments from the input file (one per line, # comments skipped)
- Run analyses in parallel with a configurable worker count
- Write an individual JSON report per argument

Example:
  argus batch arguments.txt
  argus batch arguments.txt --concurrency 8 --output-dir ./reports
  argus batch arguments.txt --stance attack --persona engineer`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "number of concurrent analyses")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./argus-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchStance, "stance", "dialectic", "analysis stance for every argument")
	batchCmd.Flags().StringVar(&batchPersona, "persona", "academic", "critic persona for every argument")

	batchCmd.Flags().StringVar(&llmProvider, "provider", "", "reasoning provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "model", "", "reasoning model name")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent generation calls per analysis")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the analysis cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.Concurrency.BatchWorkers = batchConcurrency
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	fmt.Fprintf(os.Stderr, "Input file:  %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:     %d\n", batchConcurrency)
	fmt.Fprintf(os.Stderr, "Output dir:  %s\n", batchOutputDir)
	fmt.Fprintln(os.Stderr)

	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers,
		model.Stance(batchStance), model.Persona(batchPersona))

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ argument %d: %v\n", i+1, r.Err)
			continue
		}

		data, err := render.JSON(r.Graph)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ argument %d: render: %v\n", i+1, err)
			continue
		}
		path := filepath.Join(batchOutputDir, fmt.Sprintf("argument-%03d.json", i+1))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ argument %d: write: %v\n", i+1, err)
			continue
		}

		if r.Graph.RobustnessScore != nil {
			fmt.Fprintf(os.Stderr, "✓ argument %d: %.1f/100 -> %s\n", i+1, *r.Graph.RobustnessScore, path)
		}
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d analyzed, %d failed\n", len(results)-failed, failed)
	if failed == len(results) && len(results) > 0 {
		return fmt.Errorf("all %d analyses failed", len(results))
	}
	return nil
}
