package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argus/internal/ingest"
	"github.com/ppiankov/argus/internal/model"
	"github.com/ppiankov/argus/internal/render"
)

var (
	dialecticRounds  int
	dialecticPersona string
	dialecticTimeout time.Duration
)

// dialecticCmd represents the dialectic command
var dialecticCmd = &cobra.Command{
	Use:   "dialectic <text>",
	Short: "Run multi-round attack/defense cycles on an argument",
	Long: `Dialectic runs the full analysis repeatedly: each round's strengthened
claims become the next round's argument. The score trajectory across rounds
shows whether the argument hardens or keeps collapsing under critique.

Example:
  argus dialectic "Universal basic income reduces poverty" --rounds 3
  argus dialectic "..." --persona reddit_atheist --md debate.md`,
	Args: cobra.ExactArgs(1),
	RunE: runDialectic,
}

func init() {
	rootCmd.AddCommand(dialecticCmd)

	dialecticCmd.Flags().IntVar(&dialecticRounds, "rounds", 3, "number of attack/defense rounds")
	dialecticCmd.Flags().StringVar(&dialecticPersona, "persona", "academic", "critic persona (see 'argus personas')")
	dialecticCmd.Flags().DurationVar(&dialecticTimeout, "timeout", 10*time.Minute, "overall session timeout")

	dialecticCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	dialecticCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")

	dialecticCmd.Flags().StringVar(&llmProvider, "provider", "", "reasoning provider (openai, anthropic, ollama)")
	dialecticCmd.Flags().StringVar(&llmModel, "model", "", "reasoning model name")
	dialecticCmd.Flags().IntVar(&workers, "workers", 0, "concurrent generation calls")
	dialecticCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the analysis cache")
}

func runDialectic(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dialecticTimeout)
	defer cancel()

	cfg := loadConfig()
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	input, err := ingest.Normalize(args[0])
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Running %d dialectic rounds (%s persona)...\n", dialecticRounds, dialecticPersona)
	}

	session, err := p.RunDialectic(ctx, input, dialecticRounds, model.Persona(dialecticPersona))
	if err != nil {
		// Completed rounds are still worth reporting
		if session == nil || len(session.Graphs) == 0 {
			return fmt.Errorf("dialectic failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "⚠ Session ended early after %d round(s): %v\n", len(session.Graphs), err)
	}

	printTrajectory(session)

	jsonData, jeErr := render.SessionJSON(session)
	if jeErr != nil {
		return fmt.Errorf("render JSON: %w", jeErr)
	}
	if outJSON == "" && outMD == "" {
		fmt.Println()
		fmt.Println(string(jsonData))
		return nil
	}
	return writeReports(outJSON, outMD, jsonData, render.SessionMarkdown(session))
}

func printTrajectory(s *model.DialecticSession) {
	for i, g := range s.Graphs {
		if g.RobustnessScore != nil {
			fmt.Printf("Round %d: %.1f/100 (%d survived, %d collapsed)\n",
				i+1, *g.RobustnessScore, len(g.SurvivedClaims), len(g.CollapsedClaims))
		}
	}
}
