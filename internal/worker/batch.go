package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/argus/internal/model"
	"github.com/ppiankov/argus/internal/pipeline"
)

// Analyzer is the slice of the pipeline that batch mode needs
type Analyzer interface {
	Analyze(ctx context.Context, req pipeline.Request) (*model.ArgumentGraph, error)
}

// BatchResult pairs one input argument with its analysis outcome
type BatchResult struct {
	Input string
	Graph *model.ArgumentGraph
	Err   error
}

// BatchProcessor analyzes multiple arguments concurrently. Analyses share no
// state beyond the pipeline's gateway gate, so they run fully in parallel up
// to the worker limit.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	stance      model.Stance
	persona     model.Persona
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int, stance model.Stance, persona model.Persona) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		stance:      stance,
		persona:     persona,
	}
}

// Process analyzes all inputs, preserving input order in the results
func (b *BatchProcessor) Process(ctx context.Context, inputs []string) []BatchResult {
	if len(inputs) == 0 {
		return []BatchResult{}
	}

	results := make([]BatchResult, len(inputs))

	var group errgroup.Group
	group.SetLimit(b.concurrency)
	for i, input := range inputs {
		group.Go(func() error {
			graph, err := b.analyzer.Analyze(ctx, pipeline.Request{
				Input:           input,
				Stance:          b.stance,
				Persona:         b.persona,
				DetectFallacies: true,
			})
			results[i] = BatchResult{Input: input, Graph: graph, Err: err}
			return nil
		})
	}
	_ = group.Wait()

	return results
}

// ProcessFile reads arguments from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]BatchResult, error) {
	inputs, err := ReadArgumentsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read arguments: %w", err)
	}
	return b.Process(ctx, inputs), nil
}

// ReadArgumentsFromFile reads argument texts from a file, one per line.
// Empty lines and # comments are skipped; duplicate texts are analyzed once.
func ReadArgumentsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return inputs, nil
}
