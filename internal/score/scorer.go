// Package score computes the robustness score and claim categorization for a
// populated argument graph. Scoring is pure: no side effects, deterministic
// for a given graph, and transparent about its weighting.
package score

import (
	"sort"

	"github.com/ppiankov/argus/internal/model"
)

// Collapse thresholds. A defense neutralizes a moderate attack (strength in
// [0.6, 0.8)) but not a severe one (>= 0.8).
const (
	collapseThreshold = 0.6
	severeThreshold   = 0.8
)

// severityWeights feed the fallacy penalty
var severityWeights = map[model.Severity]float64{
	model.SeverityMinor:    0.3,
	model.SeverityModerate: 0.6,
	model.SeveritySevere:   1.0,
}

// Result is the scoring output. The three claim-ID sets partition the full
// claim set; each is sorted by claim ID.
type Result struct {
	Robustness     float64
	Survived       []string
	Collapsed      []string
	ValueDependent []string
}

// Scorer calculates argument robustness
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate scores a graph document. Weighting: 60% claim survival, 20%
// empirical mix, 20% fallacy penalty, clamped to [0,100]. An empty claim set
// scores 0 with all categorization sets empty.
func (s *Scorer) Calculate(g model.ArgumentGraph) Result {
	total := len(g.Claims)
	if total == 0 {
		return Result{}
	}

	maxAttack := make(map[string]float64, total)
	for _, a := range g.Attacks {
		if a.Strength > maxAttack[a.TargetClaimID] {
			maxAttack[a.TargetClaimID] = a.Strength
		}
	}
	defended := make(map[string]bool, len(g.Defenses))
	for _, d := range g.Defenses {
		defended[d.OriginalClaimID] = true
	}

	var res Result
	empirical := 0
	for _, c := range g.Claims {
		if c.ClaimType == model.ClaimEmpirical {
			empirical++
		}
		// Normative claims are not fact-checkable by construction
		if c.ClaimType == model.ClaimNormative {
			res.ValueDependent = append(res.ValueDependent, c.ID)
			continue
		}
		if collapses(maxAttack[c.ID], defended[c.ID]) {
			res.Collapsed = append(res.Collapsed, c.ID)
		} else {
			res.Survived = append(res.Survived, c.ID)
		}
	}
	sort.Strings(res.Survived)
	sort.Strings(res.Collapsed)
	sort.Strings(res.ValueDependent)

	survivedRatio := float64(len(res.Survived)) / float64(total)
	empiricalRatio := float64(empirical) / float64(total)

	penalty := 0.0
	for _, f := range g.Fallacies {
		penalty += severityWeights[f.Severity]
	}
	if penalty > 1 {
		penalty = 1
	}

	score := survivedRatio*60 + empiricalRatio*20 - penalty*20
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	res.Robustness = score
	return res
}

// collapses applies the attack/defense survival rule to one claim
func collapses(maxAttack float64, hasDefense bool) bool {
	if maxAttack < collapseThreshold {
		return false
	}
	if hasDefense && maxAttack < severeThreshold {
		return false
	}
	return true
}

// Apply writes a scoring result back onto a graph document
func Apply(g *model.ArgumentGraph, r Result) {
	score := r.Robustness
	g.RobustnessScore = &score
	g.SurvivedClaims = r.Survived
	g.CollapsedClaims = r.Collapsed
	g.ValueDependentClaims = r.ValueDependent
}

// Summary maps a robustness score to the human-readable band used by the
// quick-score endpoint.
func Summary(score float64) string {
	switch {
	case score >= 70:
		return "Strong argument - withstands critical analysis"
	case score >= 40:
		return "Moderate argument - has vulnerabilities"
	default:
		return "Weak argument - significant logical issues"
	}
}
