// Package pipeline orchestrates the full analysis: decomposition into a
// claim graph, concurrent attack/defense/fallacy generation, and scoring.
// Graph construction and scoring are synchronous pure computation; the only
// suspension points are the gateway calls.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ppiankov/argus/internal/cache"
	"github.com/ppiankov/argus/internal/graph"
	"github.com/ppiankov/argus/internal/llm"
	"github.com/ppiankov/argus/internal/model"
	"github.com/ppiankov/argus/internal/score"
)

// Limiter is the slice of the worker rate limiter the pipeline needs;
// accepting the interface here keeps pipeline from importing worker, which
// imports pipeline for batch mode.
type Limiter interface {
	Wait(ctx context.Context, provider string) error
}

// Request describes one analysis
type Request struct {
	Input           string
	Stance          model.Stance
	Persona         model.Persona
	DetectFallacies bool
}

// Pipeline runs analyses against one reasoning gateway. Safe for concurrent
// use; independent analyses share only the concurrency gate and rate limiter.
type Pipeline struct {
	gateway llm.Gateway
	gate    *semaphore.Weighted
	limiter Limiter
	scorer  *score.Scorer
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger

	// Injectable for retry tests
	sleep func(ctx context.Context, d time.Duration) bool
}

// Option customizes a pipeline
type Option func(*Pipeline)

// WithGate injects a shared concurrency gate. Handing the same gate to every
// pipeline imposes a process-wide bound on concurrent gateway calls; tests
// hand in a gate of weight 1 for deterministic ordering.
func WithGate(gate *semaphore.Weighted) Option {
	return func(p *Pipeline) { p.gate = gate }
}

// WithLimiter injects a per-provider rate limiter
func WithLimiter(l Limiter) Option {
	return func(p *Pipeline) { p.limiter = l }
}

// WithCache injects a result cache with the given TTL
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(p *Pipeline) {
		p.cache = c
		p.ttl = ttl
	}
}

// WithLogger injects a logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func withSleep(sleep func(ctx context.Context, d time.Duration) bool) Option {
	return func(p *Pipeline) { p.sleep = sleep }
}

// New creates a pipeline over the given gateway. concurrency bounds the
// gateway calls in flight for this pipeline (default 5) unless a shared gate
// is injected.
func New(gateway llm.Gateway, concurrency int, opts ...Option) *Pipeline {
	if concurrency <= 0 {
		concurrency = 5
	}
	p := &Pipeline{
		gateway: gateway,
		gate:    semaphore.NewWeighted(int64(concurrency)),
		scorer:  score.NewScorer(),
		logger:  zap.NewNop(),
		sleep:   ctxSleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs the complete pipeline for one argument and returns a scored
// graph. After decomposition succeeds the result is best-effort: generation
// failures and deadline expiry degrade the graph (recorded in Failures and
// the Partial flag) instead of failing the analysis.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (*model.ArgumentGraph, error) {
	if req.Stance == "" {
		req.Stance = model.StanceDialectic
	}
	if req.Persona == "" {
		req.Persona = model.PersonaAcademic
	}
	if !req.Stance.Valid() {
		return nil, fmt.Errorf("unknown stance %q", req.Stance)
	}
	if !req.Persona.Valid() {
		return nil, fmt.Errorf("unknown persona %q", req.Persona)
	}

	key := cache.Key(req.Input, string(req.Stance), string(req.Persona), fmt.Sprint(req.DetectFallacies))
	if p.cache != nil {
		if data, ok := p.cache.Get(key); ok {
			var doc model.ArgumentGraph
			if err := json.Unmarshal(data, &doc); err == nil {
				p.logger.Debug("analysis cache hit", zap.String("key", key))
				return &doc, nil
			}
		}
	}

	start := time.Now()
	g, err := p.decompose(ctx, req.Input)
	if err != nil {
		return nil, err
	}
	p.logger.Info("decomposed argument",
		zap.Int("claims", len(g.Claims())),
		zap.String("stance", string(req.Stance)))

	failures, err := p.populate(ctx, g, req.Stance, req.Persona, req.DetectFallacies)
	if err != nil {
		return nil, err
	}

	// Structural circular-reasoning pass over the claim relation edges,
	// independent of what the reasoning service reports.
	if req.DetectFallacies {
		if err := p.flagCycles(g); err != nil {
			return nil, err
		}
	}

	doc := g.Snapshot()
	score.Apply(&doc, p.scorer.Calculate(doc))
	doc.Failures = failures
	if ctx.Err() != nil {
		doc.Partial = true
		doc.PartialReason = "timeout"
	}

	p.logger.Info("analysis complete",
		zap.Float64("robustness", *doc.RobustnessScore),
		zap.Int("attacks", len(doc.Attacks)),
		zap.Int("defenses", len(doc.Defenses)),
		zap.Int("fallacies", len(doc.Fallacies)),
		zap.Int("failures", len(doc.Failures)),
		zap.Bool("partial", doc.Partial),
		zap.Duration("elapsed", time.Since(start)))

	if p.cache != nil && !doc.Partial {
		if data, err := json.Marshal(doc); err == nil {
			_ = p.cache.Set(key, data, p.ttl)
		}
	}

	return &doc, nil
}

// flagCycles records a circular_reasoning fallacy for each loop in the
// supports/contradicts edge list, located at the smallest claim ID in the loop.
func (p *Pipeline) flagCycles(g *graph.Graph) error {
	for _, c := range g.Cycles() {
		explanation := "Claims form a reasoning loop: " + joinArrow(c.ClaimIDs)
		if err := g.AddFallacy(model.LogicalFallacy{
			FallacyType: model.FallacyCircularReasoning,
			Location:    c.ClaimIDs[0],
			Explanation: explanation,
			Severity:    model.SeverityModerate,
		}); err != nil {
			return fmt.Errorf("flag cycle: %w", err)
		}
	}
	return nil
}

func joinArrow(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += " -> "
		}
		out += id
	}
	return out + " -> " + ids[0]
}

// ctxSleep sleeps unless the context expires first; reports whether the full
// duration elapsed.
func ctxSleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
