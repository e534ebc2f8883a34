package graph

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/argus/internal/model"
)

func claim(id string, ct model.ClaimType) model.AtomicClaim {
	return model.AtomicClaim{ID: id, Text: "claim " + id, ClaimType: ct}
}

func TestAddClaims_RejectsWholeBatchOnDuplicate(t *testing.T) {
	g := New("input")

	err := g.AddClaims([]model.AtomicClaim{
		claim("c1", model.ClaimEmpirical),
		claim("c2", model.ClaimCausal),
		claim("c1", model.ClaimNormative),
	})
	if !errors.Is(err, ErrDuplicateClaim) {
		t.Fatalf("expected ErrDuplicateClaim, got %v", err)
	}
	if len(g.Claims()) != 0 {
		t.Errorf("expected no partial insert, got %d claims", len(g.Claims()))
	}

	// A clean batch after the rejected one goes in normally
	if err := g.AddClaims([]model.AtomicClaim{claim("c1", model.ClaimEmpirical)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddClaims([]model.AtomicClaim{claim("c1", model.ClaimEmpirical)}); !errors.Is(err, ErrDuplicateClaim) {
		t.Errorf("expected ErrDuplicateClaim against existing claim, got %v", err)
	}
}

func TestAddClaims_EmptyID(t *testing.T) {
	g := New("input")
	err := g.AddClaims([]model.AtomicClaim{{Text: "no id", ClaimType: model.ClaimEmpirical}})
	if err == nil {
		t.Fatal("expected error for empty claim id")
	}
}

func TestAddAttack_DanglingReference(t *testing.T) {
	g := New("input")
	if err := g.AddClaims([]model.AtomicClaim{claim("c1", model.ClaimEmpirical)}); err != nil {
		t.Fatal(err)
	}

	err := g.AddAttack(model.CounterArgument{
		TargetClaimID: "missing",
		AttackVector:  model.VectorCounterexample,
		Counterpoint:  "nope",
		Strength:      0.5,
	})
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
	if len(g.Attacks()) != 0 {
		t.Error("graph modified by rejected attack")
	}

	if err := g.AddAttack(model.CounterArgument{
		TargetClaimID: "c1",
		AttackVector:  model.VectorCounterexample,
		Counterpoint:  "yep",
		Strength:      0.5,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddDefense_DuplicateAndDangling(t *testing.T) {
	g := New("input")
	if err := g.AddClaims([]model.AtomicClaim{claim("c1", model.ClaimEmpirical)}); err != nil {
		t.Fatal(err)
	}

	d := model.DefenseArgument{OriginalClaimID: "c1", StrengthenedClaim: "stronger"}
	if err := g.AddDefense(d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddDefense(d); !errors.Is(err, ErrDuplicateDefense) {
		t.Errorf("expected ErrDuplicateDefense, got %v", err)
	}
	if err := g.AddDefense(model.DefenseArgument{OriginalClaimID: "ghost"}); !errors.Is(err, ErrDanglingReference) {
		t.Errorf("expected ErrDanglingReference, got %v", err)
	}
	if len(g.Defenses()) != 1 {
		t.Errorf("expected 1 defense, got %d", len(g.Defenses()))
	}
}

func TestAddFallacy_LocationRule(t *testing.T) {
	g := New("input")
	if err := g.AddClaims([]model.AtomicClaim{claim("c1", model.ClaimEmpirical)}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		location string
		wantErr  bool
	}{
		{"c1", false},
		{model.GlobalLocation, false},
		{"c99", true},
		{"", true},
	}
	for _, tc := range cases {
		err := g.AddFallacy(model.LogicalFallacy{
			FallacyType: model.FallacyStrawman,
			Location:    tc.location,
			Explanation: "x",
			Severity:    model.SeverityMinor,
		})
		if tc.wantErr && !errors.Is(err, ErrDanglingReference) {
			t.Errorf("location %q: expected ErrDanglingReference, got %v", tc.location, err)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("location %q: unexpected error %v", tc.location, err)
		}
	}
}

func TestSnapshot_SortedAndStable(t *testing.T) {
	g := New("input")
	if err := g.AddClaims([]model.AtomicClaim{
		claim("c2", model.ClaimCausal),
		claim("c1", model.ClaimEmpirical),
	}); err != nil {
		t.Fatal(err)
	}

	// Insert out of claim order, as completion order would
	attacks := []model.CounterArgument{
		{TargetClaimID: "c2", AttackVector: model.VectorMissingEvidence, Counterpoint: "b", Strength: 0.4},
		{TargetClaimID: "c1", AttackVector: model.VectorWeakAssumption, Counterpoint: "a", Strength: 0.7},
		{TargetClaimID: "c1", AttackVector: model.VectorCounterexample, Counterpoint: "c", Strength: 0.2},
	}
	for _, a := range attacks {
		if err := g.AddAttack(a); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddFallacy(model.LogicalFallacy{FallacyType: model.FallacyPostHoc, Location: "global", Explanation: "x", Severity: model.SeverityMinor}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddFallacy(model.LogicalFallacy{FallacyType: model.FallacyAdHominem, Location: "c1", Explanation: "y", Severity: model.SeverityModerate}); err != nil {
		t.Fatal(err)
	}

	snap := g.Snapshot()

	if snap.Claims[0].ID != "c1" || snap.Claims[1].ID != "c2" {
		t.Errorf("claims not sorted by ID: %v, %v", snap.Claims[0].ID, snap.Claims[1].ID)
	}
	wantAttackOrder := []string{"c1", "c1", "c2"}
	for i, a := range snap.Attacks {
		if a.TargetClaimID != wantAttackOrder[i] {
			t.Errorf("attack %d targets %s, want %s", i, a.TargetClaimID, wantAttackOrder[i])
		}
	}
	if snap.Attacks[0].AttackVector != model.VectorCounterexample {
		t.Errorf("attacks for one claim not sorted by vector: got %s", snap.Attacks[0].AttackVector)
	}
	if snap.Fallacies[0].Location != "c1" {
		t.Errorf("fallacies not sorted by location: got %s", snap.Fallacies[0].Location)
	}

	// Identical call, identical document
	if diff := cmp.Diff(snap, g.Snapshot()); diff != "" {
		t.Errorf("snapshot not deterministic (-first +second):\n%s", diff)
	}
}
