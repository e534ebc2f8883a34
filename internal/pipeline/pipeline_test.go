package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"
	"golang.org/x/sync/semaphore"

	"github.com/ppiankov/argus/internal/cache"
	"github.com/ppiankov/argus/internal/llm"
	"github.com/ppiankov/argus/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeGateway scripts responses per task kind and counts calls
type fakeGateway struct {
	mu     sync.Mutex
	calls  map[llm.TaskKind]int
	handle func(task llm.Task) (json.RawMessage, error)
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) Invoke(_ context.Context, task llm.Task) (json.RawMessage, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[llm.TaskKind]int)
	}
	f.calls[task.Kind]++
	f.mu.Unlock()
	return f.handle(task)
}

func (f *fakeGateway) IsAvailable(context.Context) bool { return true }

func (f *fakeGateway) count(kind llm.TaskKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

const (
	twoClaimsPayload = `{"claims":[
		{"id":"c1","text":"Remote work increases productivity","claim_type":"empirical","confidence":0.8},
		{"id":"c2","text":"Companies should mandate remote work","claim_type":"normative"}
	]}`
	moderateAttackPayload = `{"attacks":[
		{"attack_vector":"counterexample","counterpoint":"Output fell at several firms after going remote","strength":0.5}
	]}`
	defensePayload = `{"strengthened_claim":"Remote work increases productivity for focused individual tasks",
		"additional_support":["Meta-analysis of 20 field studies"],
		"removed_weaknesses":["Scoped to task types where the effect holds"]}`
	noFallaciesPayload = `{"fallacies":[]}`
)

// happyGateway answers every task kind with a well-formed payload
func happyGateway() *fakeGateway {
	return &fakeGateway{handle: func(task llm.Task) (json.RawMessage, error) {
		switch task.Kind {
		case llm.TaskDecompose:
			return json.RawMessage(twoClaimsPayload), nil
		case llm.TaskAttack:
			return json.RawMessage(moderateAttackPayload), nil
		case llm.TaskDefend:
			return json.RawMessage(defensePayload), nil
		case llm.TaskDetectFallacies:
			return json.RawMessage(noFallaciesPayload), nil
		}
		return nil, fmt.Errorf("unexpected task kind %q", task.Kind)
	}}
}

// serialGate makes generation ordering deterministic in tests
func serialGate() Option {
	return WithGate(semaphore.NewWeighted(1))
}

func TestAnalyzeDialectic(t *testing.T) {
	gw := happyGateway()
	p := New(gw, 0, serialGate())

	doc, err := p.Analyze(context.Background(), Request{
		Input:           "Remote work increases productivity, so companies should mandate it.",
		Stance:          model.StanceDialectic,
		Persona:         model.PersonaAcademic,
		DetectFallacies: true,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(doc.Claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(doc.Claims))
	}
	if len(doc.Attacks) != 2 {
		t.Errorf("expected one attack per claim, got %d", len(doc.Attacks))
	}
	if len(doc.Defenses) != 2 {
		t.Errorf("expected one defense per claim, got %d", len(doc.Defenses))
	}
	if len(doc.Failures) != 0 {
		t.Errorf("unexpected failures: %+v", doc.Failures)
	}
	if doc.Partial {
		t.Error("complete analysis should not be partial")
	}

	// c1 takes a 0.5 attack and survives; c2 is normative
	if diff := cmp.Diff([]string{"c1"}, doc.SurvivedClaims); diff != "" {
		t.Errorf("survived mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c2"}, doc.ValueDependentClaims); diff != "" {
		t.Errorf("value-dependent mismatch (-want +got):\n%s", diff)
	}
	if doc.RobustnessScore == nil {
		t.Fatal("robustness score missing")
	}
	if got := *doc.RobustnessScore; got != 40 {
		t.Errorf("expected robustness 40, got %v", got)
	}

	if got := gw.count(llm.TaskDecompose); got != 1 {
		t.Errorf("expected 1 decompose call, got %d", got)
	}
	if got := gw.count(llm.TaskDetectFallacies); got != 1 {
		t.Errorf("expected 1 fallacy call, got %d", got)
	}
}

func TestAnalyzeStanceAttackSkipsDefenses(t *testing.T) {
	gw := happyGateway()
	p := New(gw, 0, serialGate())

	doc, err := p.Analyze(context.Background(), Request{
		Input:  "Remote work increases productivity.",
		Stance: model.StanceAttack,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(doc.Defenses) != 0 {
		t.Errorf("attack stance should produce no defenses, got %d", len(doc.Defenses))
	}
	if got := gw.count(llm.TaskDefend); got != 0 {
		t.Errorf("expected 0 defend calls, got %d", got)
	}
	if got := gw.count(llm.TaskAttack); got != 2 {
		t.Errorf("expected 2 attack calls, got %d", got)
	}
}

func TestAnalyzeStanceNeutral(t *testing.T) {
	gw := happyGateway()
	p := New(gw, 0, serialGate())

	doc, err := p.Analyze(context.Background(), Request{
		Input:           "Remote work increases productivity.",
		Stance:          model.StanceNeutral,
		DetectFallacies: true,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(doc.Attacks) != 0 || len(doc.Defenses) != 0 {
		t.Errorf("neutral stance runs no generation passes, got %d attacks %d defenses",
			len(doc.Attacks), len(doc.Defenses))
	}
	if got := gw.count(llm.TaskAttack) + gw.count(llm.TaskDefend); got != 0 {
		t.Errorf("expected no attack/defend calls, got %d", got)
	}
	if got := gw.count(llm.TaskDetectFallacies); got != 1 {
		t.Errorf("fallacy pass should still run, got %d calls", got)
	}
	if doc.RobustnessScore == nil {
		t.Error("neutral analysis still gets scored")
	}
}

func TestAnalyzeRejectsUnknownStance(t *testing.T) {
	p := New(happyGateway(), 0)
	if _, err := p.Analyze(context.Background(), Request{Input: "x", Stance: "sarcastic"}); err == nil {
		t.Error("expected error for unknown stance")
	}
	if _, err := p.Analyze(context.Background(), Request{Input: "x", Persona: "nobody"}); err == nil {
		t.Error("expected error for unknown persona")
	}
}

func TestAnalyzeAttackFailureDegrades(t *testing.T) {
	gw := happyGateway()
	base := gw.handle
	gw.handle = func(task llm.Task) (json.RawMessage, error) {
		if task.Kind == llm.TaskAttack && strings.Contains(task.Prompt, "mandate remote work") {
			return nil, llm.ErrUnavailable
		}
		return base(task)
	}
	p := New(gw, 0, serialGate())

	doc, err := p.Analyze(context.Background(), Request{
		Input:  "Remote work increases productivity, so companies should mandate it.",
		Stance: model.StanceDialectic,
	})
	if err != nil {
		t.Fatalf("Analyze should degrade, not fail: %v", err)
	}

	if len(doc.Attacks) != 1 {
		t.Errorf("expected the surviving attack call to merge, got %d attacks", len(doc.Attacks))
	}
	if len(doc.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %+v", doc.Failures)
	}
	f := doc.Failures[0]
	if f.Stage != "attack" || f.ClaimID != "c2" {
		t.Errorf("unexpected failure record: %+v", f)
	}
	if doc.Partial {
		t.Error("call-level failures alone should not mark the analysis partial")
	}
	if doc.RobustnessScore == nil {
		t.Error("degraded analysis still gets scored")
	}
}

func TestAnalyzeMalformedPayloadDegrades(t *testing.T) {
	gw := happyGateway()
	base := gw.handle
	gw.handle = func(task llm.Task) (json.RawMessage, error) {
		if task.Kind == llm.TaskDefend {
			return json.RawMessage(`{"strengthened_claim":""}`), nil
		}
		return base(task)
	}
	p := New(gw, 0, serialGate())

	doc, err := p.Analyze(context.Background(), Request{
		Input:  "Remote work increases productivity, so companies should mandate it.",
		Stance: model.StanceDialectic,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(doc.Defenses) != 0 {
		t.Errorf("malformed defenses must not merge, got %d", len(doc.Defenses))
	}
	if len(doc.Failures) != 2 {
		t.Fatalf("expected a failure per defense call, got %+v", doc.Failures)
	}
	for _, f := range doc.Failures {
		if f.Stage != "defense" {
			t.Errorf("unexpected failure stage %q", f.Stage)
		}
	}
}

func TestAnalyzeDropsFallaciesAtUnknownLocations(t *testing.T) {
	gw := happyGateway()
	base := gw.handle
	gw.handle = func(task llm.Task) (json.RawMessage, error) {
		if task.Kind == llm.TaskDetectFallacies {
			return json.RawMessage(`{"fallacies":[
				{"fallacy_type":"hasty_generalization","location":"c1","explanation":"One study generalized to all work","severity":"minor"},
				{"fallacy_type":"appeal_to_emotion","location":"global","explanation":"Leans on fear of decline","severity":"minor"},
				{"fallacy_type":"strawman","location":"c9","explanation":"No such claim","severity":"severe"}
			]}`), nil
		}
		return base(task)
	}
	p := New(gw, 0, serialGate())

	doc, err := p.Analyze(context.Background(), Request{
		Input:           "Remote work increases productivity, so companies should mandate it.",
		Stance:          model.StanceAttack,
		DetectFallacies: true,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(doc.Fallacies) != 2 {
		t.Fatalf("expected the claim-located and global fallacies only, got %+v", doc.Fallacies)
	}
	if len(doc.Failures) != 1 || doc.Failures[0].Stage != "fallacies" {
		t.Errorf("dropped fallacy should be recorded as a failure, got %+v", doc.Failures)
	}
}

func TestAnalyzeRetriesRateLimits(t *testing.T) {
	var decomposeCalls int
	var mu sync.Mutex
	gw := happyGateway()
	base := gw.handle
	gw.handle = func(task llm.Task) (json.RawMessage, error) {
		if task.Kind == llm.TaskDecompose {
			mu.Lock()
			decomposeCalls++
			n := decomposeCalls
			mu.Unlock()
			if n < 3 {
				return nil, llm.ErrRateLimited
			}
		}
		return base(task)
	}

	var slept []time.Duration
	p := New(gw, 0, serialGate(), withSleep(func(_ context.Context, d time.Duration) bool {
		slept = append(slept, d)
		return true
	}))

	doc, err := p.Analyze(context.Background(), Request{
		Input:  "Remote work increases productivity.",
		Stance: model.StanceAttack,
	})
	if err != nil {
		t.Fatalf("Analyze should succeed after retries: %v", err)
	}
	if len(doc.Claims) != 2 {
		t.Errorf("expected decomposition to land on the third attempt")
	}

	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if diff := cmp.Diff(want, slept); diff != "" {
		t.Errorf("backoff schedule mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeRateLimitExhausted(t *testing.T) {
	gw := &fakeGateway{handle: func(llm.Task) (json.RawMessage, error) {
		return nil, llm.ErrRateLimited
	}}

	var sleeps int
	p := New(gw, 0, withSleep(func(context.Context, time.Duration) bool {
		sleeps++
		return true
	}))

	_, err := p.Analyze(context.Background(), Request{Input: "x"})
	if err == nil {
		t.Fatal("expected decomposition failure")
	}
	var dErr *DecompositionError
	if !errors.As(err, &dErr) {
		t.Errorf("expected DecompositionError, got %T", err)
	}
	if !errors.Is(err, llm.ErrRateLimited) {
		t.Errorf("error should expose the rate-limit kind: %v", err)
	}
	if sleeps != gatewayMaxAttempts-1 {
		t.Errorf("expected %d backoffs, got %d", gatewayMaxAttempts-1, sleeps)
	}
	if got := gw.count(llm.TaskDecompose); got != gatewayMaxAttempts {
		t.Errorf("expected %d attempts, got %d", gatewayMaxAttempts, got)
	}
}

func TestAnalyzeDeadlineMarksPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := happyGateway()
	base := gw.handle
	gw.handle = func(task llm.Task) (json.RawMessage, error) {
		if task.Kind == llm.TaskAttack {
			cancel()
			return nil, llm.ErrTimeout
		}
		return base(task)
	}
	p := New(gw, 0, serialGate())

	doc, err := p.Analyze(ctx, Request{
		Input:  "Remote work increases productivity.",
		Stance: model.StanceAttack,
	})
	if err != nil {
		t.Fatalf("expired generation should degrade, not fail: %v", err)
	}
	if !doc.Partial {
		t.Error("expected partial flag after deadline expiry")
	}
	if doc.PartialReason != "timeout" {
		t.Errorf("unexpected partial reason %q", doc.PartialReason)
	}
	if doc.RobustnessScore == nil {
		t.Error("partial results still carry a score")
	}
}

func TestAnalyzeCachesCompleteResults(t *testing.T) {
	gw := happyGateway()
	p := New(gw, 0, serialGate(),
		WithCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute))

	req := Request{
		Input:           "Remote work increases productivity, so companies should mandate it.",
		Stance:          model.StanceDialectic,
		DetectFallacies: true,
	}
	first, err := p.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	second, err := p.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}

	if got := gw.count(llm.TaskDecompose); got != 1 {
		t.Errorf("second analysis should come from cache, saw %d decompose calls", got)
	}
	if diff := cmp.Diff(first, second, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("cached result differs (-first +second):\n%s", diff)
	}

	// A different persona misses the cache
	other := req
	other.Persona = model.PersonaEngineer
	if _, err := p.Analyze(context.Background(), other); err != nil {
		t.Fatalf("third Analyze: %v", err)
	}
	if got := gw.count(llm.TaskDecompose); got != 2 {
		t.Errorf("different parameters must not share cache entries, saw %d decompose calls", got)
	}
}

func TestAnalyzeFlagsStructuralCycles(t *testing.T) {
	gw := happyGateway()
	base := gw.handle
	gw.handle = func(task llm.Task) (json.RawMessage, error) {
		if task.Kind == llm.TaskDecompose {
			return json.RawMessage(`{"claims":[
				{"id":"c1","text":"The policy works because outcomes improved","claim_type":"causal","supports":["c2"]},
				{"id":"c2","text":"Outcomes improved because the policy works","claim_type":"causal","supports":["c1"]}
			]}`), nil
		}
		if task.Kind == llm.TaskAttack {
			return json.RawMessage(`{"attacks":[]}`), nil
		}
		return base(task)
	}
	p := New(gw, 0, serialGate())

	doc, err := p.Analyze(context.Background(), Request{
		Input:           "The policy works because outcomes improved, and outcomes improved because the policy works.",
		Stance:          model.StanceAttack,
		DetectFallacies: true,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var found *model.LogicalFallacy
	for i, f := range doc.Fallacies {
		if f.FallacyType == model.FallacyCircularReasoning {
			found = &doc.Fallacies[i]
		}
	}
	if found == nil {
		t.Fatalf("expected a circular_reasoning fallacy, got %+v", doc.Fallacies)
	}
	if found.Location != "c1" {
		t.Errorf("cycle should be located at the smallest claim ID, got %q", found.Location)
	}
	if !strings.Contains(found.Explanation, "c1 -> c2 -> c1") {
		t.Errorf("explanation should spell the loop, got %q", found.Explanation)
	}
	if found.Severity != model.SeverityModerate {
		t.Errorf("unexpected severity %q", found.Severity)
	}
}
