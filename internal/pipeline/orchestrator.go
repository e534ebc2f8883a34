package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/argus/internal/graph"
	"github.com/ppiankov/argus/internal/llm"
	"github.com/ppiankov/argus/internal/model"
	"github.com/ppiankov/argus/internal/validate"
)

// gatewayMaxAttempts bounds retries for rate-limited gateway calls
const gatewayMaxAttempts = 3

// populate fans out the generation calls for one round and merges validated
// results into the graph. Attacks and the pass-level fallacy call run
// concurrently; defenses run after attacks settle because a defense prompt
// takes its claim's attacks as input. All calls share the injectable
// concurrency gate. A failed or malformed call degrades to a failure entry;
// only a graph-construction error (which would mean a dangling reference
// slipped through) is returned as an error.
func (p *Pipeline) populate(ctx context.Context, g *graph.Graph, stance model.Stance, persona model.Persona, detectFallacies bool) ([]model.GenerationFailure, error) {
	claims := g.Claims()
	wantAttacks := stance == model.StanceAttack || stance == model.StanceDialectic
	wantDefenses := stance == model.StanceDefense || stance == model.StanceDialectic

	var failures []model.GenerationFailure

	// Phase 1: per-claim attack calls plus the fallacy pass.
	attackResults := make([][]model.CounterArgument, len(claims))
	attackErrs := make([]error, len(claims))
	var fallacyResult []model.LogicalFallacy
	var fallacyErr error

	var group errgroup.Group
	if wantAttacks {
		for i, c := range claims {
			group.Go(func() error {
				attackResults[i], attackErrs[i] = p.generateAttacks(ctx, c, persona)
				return nil
			})
		}
	}
	if detectFallacies && len(claims) > 0 {
		group.Go(func() error {
			fallacyResult, fallacyErr = p.detectFallacies(ctx, g.Input(), claims)
			return nil
		})
	}
	_ = group.Wait()

	// Merge is single-threaded, in claim order, after all calls settled.
	if wantAttacks {
		for i, c := range claims {
			if attackErrs[i] != nil {
				failures = append(failures, model.GenerationFailure{
					Stage:   "attack",
					ClaimID: c.ID,
					Reason:  attackErrs[i].Error(),
				})
				continue
			}
			for _, a := range attackResults[i] {
				if err := g.AddAttack(a); err != nil {
					return nil, fmt.Errorf("merge attacks: %w", err)
				}
			}
		}
	}
	if detectFallacies && len(claims) > 0 {
		if fallacyErr != nil {
			failures = append(failures, model.GenerationFailure{
				Stage:  "fallacies",
				Reason: fallacyErr.Error(),
			})
		} else {
			for _, f := range fallacyResult {
				if f.Location != model.GlobalLocation && !g.HasClaim(f.Location) {
					failures = append(failures, model.GenerationFailure{
						Stage:  "fallacies",
						Reason: fmt.Sprintf("fallacy %s at unknown location %q dropped", f.FallacyType, f.Location),
					})
					continue
				}
				if err := g.AddFallacy(f); err != nil {
					return nil, fmt.Errorf("merge fallacies: %w", err)
				}
			}
		}
	}

	// Phase 2: per-claim defense calls, fed by the attacks just merged.
	if wantDefenses {
		attacksByClaim := make(map[string][]model.CounterArgument)
		for _, a := range g.Attacks() {
			attacksByClaim[a.TargetClaimID] = append(attacksByClaim[a.TargetClaimID], a)
		}

		defenseResults := make([]model.DefenseArgument, len(claims))
		defenseErrs := make([]error, len(claims))
		var defGroup errgroup.Group
		for i, c := range claims {
			defGroup.Go(func() error {
				defenseResults[i], defenseErrs[i] = p.generateDefense(ctx, c, attacksByClaim[c.ID])
				return nil
			})
		}
		_ = defGroup.Wait()

		for i, c := range claims {
			if defenseErrs[i] != nil {
				failures = append(failures, model.GenerationFailure{
					Stage:   "defense",
					ClaimID: c.ID,
					Reason:  defenseErrs[i].Error(),
				})
				continue
			}
			if err := g.AddDefense(defenseResults[i]); err != nil {
				return nil, fmt.Errorf("merge defenses: %w", err)
			}
		}
	}

	return failures, nil
}

func (p *Pipeline) generateAttacks(ctx context.Context, claim model.AtomicClaim, persona model.Persona) ([]model.CounterArgument, error) {
	raw, err := p.invokeWithRetry(ctx, llm.AttackTask(claim, persona))
	if err != nil {
		return nil, err
	}
	return validate.Attacks(raw, claim.ID)
}

func (p *Pipeline) generateDefense(ctx context.Context, claim model.AtomicClaim, attacks []model.CounterArgument) (model.DefenseArgument, error) {
	raw, err := p.invokeWithRetry(ctx, llm.DefendTask(claim, attacks))
	if err != nil {
		return model.DefenseArgument{}, err
	}
	return validate.Defense(raw, claim.ID)
}

func (p *Pipeline) detectFallacies(ctx context.Context, input string, claims []model.AtomicClaim) ([]model.LogicalFallacy, error) {
	raw, err := p.invokeWithRetry(ctx, llm.FallacyTask(input, claims))
	if err != nil {
		return nil, err
	}
	return validate.Fallacies(raw)
}

// invokeWithRetry runs one gateway call under the concurrency gate and the
// provider rate limiter. Rate-limited calls back off exponentially for a
// bounded number of attempts before the failure is surfaced.
func (p *Pipeline) invokeWithRetry(ctx context.Context, task llm.Task) (raw []byte, err error) {
	if err := p.gate.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("concurrency gate: %w", err)
	}
	defer p.gate.Release(1)

	for attempt := 0; attempt < gatewayMaxAttempts; attempt++ {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx, p.gateway.Name()); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		raw, err = p.gateway.Invoke(ctx, task)
		if err == nil || !errors.Is(err, llm.ErrRateLimited) {
			return raw, err
		}
		if attempt < gatewayMaxAttempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			p.logger.Debug("gateway rate limited, backing off",
				zap.String("task", string(task.Kind)),
				zap.Duration("backoff", backoff),
				zap.Int("attempt", attempt+1))
			if !p.sleep(ctx, backoff) {
				return nil, fmt.Errorf("backoff interrupted: %w", ctx.Err())
			}
		}
	}
	return nil, err
}
