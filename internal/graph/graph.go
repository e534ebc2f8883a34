// Package graph holds the append-only argument graph builder. A graph is
// monotonically built: claims first, then attacks/defenses/fallacies that
// must reference existing claims. Nothing is ever edited or removed after
// insertion, so a completed graph is safe for any number of readers.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/argus/internal/model"
)

var (
	// ErrDanglingReference means an attack or defense referenced a claim ID
	// not present in the graph. This indicates a gateway contract violation
	// and is never silently dropped.
	ErrDanglingReference = errors.New("dangling claim reference")

	// ErrDuplicateDefense means a second defense was added for a claim that
	// already has one. At most one defense per claim per round.
	ErrDuplicateDefense = errors.New("duplicate defense for claim")

	// ErrDuplicateClaim means a claim batch contained a repeated or already
	// present claim ID.
	ErrDuplicateClaim = errors.New("duplicate claim id")
)

// Graph accumulates one round of analysis. Not safe for concurrent writers;
// the orchestrator merges from a single goroutine after its calls settle.
type Graph struct {
	input     string
	claims    []model.AtomicClaim
	claimIDs  map[string]bool
	attacks   []model.CounterArgument
	defenses  []model.DefenseArgument
	defended  map[string]bool
	fallacies []model.LogicalFallacy
}

// New creates an empty graph for the given input text
func New(inputText string) *Graph {
	return &Graph{
		input:    inputText,
		claimIDs: make(map[string]bool),
		defended: make(map[string]bool),
	}
}

// AddClaims appends a batch of claims. The whole batch is rejected, and the
// graph left unmodified, if any ID is empty or duplicated (within the batch
// or against claims already present).
func (g *Graph) AddClaims(claims []model.AtomicClaim) error {
	fresh := make(map[string]bool, len(claims))
	for _, c := range claims {
		if c.ID == "" {
			return fmt.Errorf("claim with empty id: %w", ErrDuplicateClaim)
		}
		if g.claimIDs[c.ID] || fresh[c.ID] {
			return fmt.Errorf("claim %q: %w", c.ID, ErrDuplicateClaim)
		}
		fresh[c.ID] = true
	}
	for _, c := range claims {
		g.claims = append(g.claims, c)
		g.claimIDs[c.ID] = true
	}
	return nil
}

// AddAttack appends one counterargument. Fails if the target claim is unknown.
func (g *Graph) AddAttack(a model.CounterArgument) error {
	if !g.claimIDs[a.TargetClaimID] {
		return fmt.Errorf("attack target %q: %w", a.TargetClaimID, ErrDanglingReference)
	}
	g.attacks = append(g.attacks, a)
	return nil
}

// AddDefense appends one defense. Fails if the claim is unknown or already
// defended in this graph.
func (g *Graph) AddDefense(d model.DefenseArgument) error {
	if !g.claimIDs[d.OriginalClaimID] {
		return fmt.Errorf("defense of %q: %w", d.OriginalClaimID, ErrDanglingReference)
	}
	if g.defended[d.OriginalClaimID] {
		return fmt.Errorf("defense of %q: %w", d.OriginalClaimID, ErrDuplicateDefense)
	}
	g.defenses = append(g.defenses, d)
	g.defended[d.OriginalClaimID] = true
	return nil
}

// AddFallacy appends one fallacy. The location must be a known claim ID or
// the global sentinel.
func (g *Graph) AddFallacy(f model.LogicalFallacy) error {
	if f.Location != model.GlobalLocation && !g.claimIDs[f.Location] {
		return fmt.Errorf("fallacy location %q: %w", f.Location, ErrDanglingReference)
	}
	g.fallacies = append(g.fallacies, f)
	return nil
}

// HasClaim reports whether the graph contains the given claim ID
func (g *Graph) HasClaim(id string) bool {
	return g.claimIDs[id]
}

// Claims returns the claims in decomposition order
func (g *Graph) Claims() []model.AtomicClaim {
	out := make([]model.AtomicClaim, len(g.claims))
	copy(out, g.claims)
	return out
}

// Attacks returns all attacks in insertion order
func (g *Graph) Attacks() []model.CounterArgument {
	out := make([]model.CounterArgument, len(g.attacks))
	copy(out, g.attacks)
	return out
}

// Defenses returns all defenses in insertion order
func (g *Graph) Defenses() []model.DefenseArgument {
	out := make([]model.DefenseArgument, len(g.defenses))
	copy(out, g.defenses)
	return out
}

// Fallacies returns all fallacies in insertion order
func (g *Graph) Fallacies() []model.LogicalFallacy {
	out := make([]model.LogicalFallacy, len(g.fallacies))
	copy(out, g.fallacies)
	return out
}

// Input returns the original input text
func (g *Graph) Input() string {
	return g.input
}

// Snapshot produces the serializable document for this graph. Every sequence
// is sorted by a stable key so two snapshots of the same graph are identical
// byte for byte, regardless of the completion order that built it.
func (g *Graph) Snapshot() model.ArgumentGraph {
	doc := model.ArgumentGraph{
		OriginalInput: g.input,
		Claims:        g.Claims(),
		Attacks:       g.Attacks(),
		Defenses:      g.Defenses(),
		Fallacies:     g.Fallacies(),
	}

	sort.Slice(doc.Claims, func(i, j int) bool {
		return doc.Claims[i].ID < doc.Claims[j].ID
	})
	sort.Slice(doc.Attacks, func(i, j int) bool {
		a, b := doc.Attacks[i], doc.Attacks[j]
		if a.TargetClaimID != b.TargetClaimID {
			return a.TargetClaimID < b.TargetClaimID
		}
		if a.AttackVector != b.AttackVector {
			return a.AttackVector < b.AttackVector
		}
		return a.Counterpoint < b.Counterpoint
	})
	sort.Slice(doc.Defenses, func(i, j int) bool {
		return doc.Defenses[i].OriginalClaimID < doc.Defenses[j].OriginalClaimID
	})
	sort.Slice(doc.Fallacies, func(i, j int) bool {
		a, b := doc.Fallacies[i], doc.Fallacies[j]
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.FallacyType < b.FallacyType
	})

	return doc
}
