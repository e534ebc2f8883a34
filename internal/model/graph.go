package model

// ArgumentGraph is the complete analysis result for one round: the decomposed
// claims plus everything the generation passes attached to them, with scoring.
// It is a self-contained snapshot; sequences are sorted by stable keys (claim
// ID, then attack vector / fallacy type) so the document is deterministic
// regardless of generation completion order.
type ArgumentGraph struct {
	OriginalInput string `json:"original_input"`

	Claims    []AtomicClaim     `json:"claims"`
	Attacks   []CounterArgument `json:"attacks,omitempty"`
	Defenses  []DefenseArgument `json:"defenses,omitempty"`
	Fallacies []LogicalFallacy  `json:"fallacies,omitempty"`

	// Scoring. RobustnessScore is nil until the scorer has run; once it has,
	// the three claim-ID sets partition the full claim set.
	RobustnessScore      *float64 `json:"robustness_score,omitempty"`
	SurvivedClaims       []string `json:"survived_claims,omitempty"`
	CollapsedClaims      []string `json:"collapsed_claims,omitempty"`
	ValueDependentClaims []string `json:"value_dependent_claims,omitempty"`

	// Partial is set when the analysis deadline expired mid-generation:
	// merged results are kept, missing ones are listed in Failures.
	Partial       bool                `json:"partial,omitempty"`
	PartialReason string              `json:"partial_reason,omitempty"`
	Failures      []GenerationFailure `json:"failures,omitempty"`
}

// GenerationFailure records one non-fatal generation miss: the claim (or pass)
// simply has no result for this round. Metadata, never an error.
type GenerationFailure struct {
	Stage   string `json:"stage"`              // "attack", "defense", "fallacies"
	ClaimID string `json:"claim_id,omitempty"` // Empty for the pass-level fallacy call
	Reason  string `json:"reason"`
}

// DialecticSession is an ordered sequence of per-round graphs. Round k+1's
// input text is derived only from round k's defenses.
type DialecticSession struct {
	Persona Persona         `json:"persona"`
	Rounds  int             `json:"rounds"`
	Graphs  []ArgumentGraph `json:"graphs"`
}
