package model

// CounterArgument is a generated attack targeting one claim
type CounterArgument struct {
	TargetClaimID      string       `json:"target_claim_id"`
	AttackVector       AttackVector `json:"attack_vector"`
	Counterpoint       string       `json:"counterpoint"`
	SupportingEvidence string       `json:"supporting_evidence,omitempty"`
	Strength           float64      `json:"strength"` // [0,1]
}

// AttackVector tags how a counterargument attacks its target
type AttackVector string

const (
	VectorWeakAssumption         AttackVector = "weak_assumption"
	VectorCounterexample         AttackVector = "counterexample"
	VectorAlternativeExplanation AttackVector = "alternative_explanation"
	VectorMissingEvidence        AttackVector = "missing_evidence"
	VectorScopeLimitation        AttackVector = "scope_limitation"
)

// Valid reports whether v is one of the known attack vectors
func (v AttackVector) Valid() bool {
	switch v {
	case VectorWeakAssumption, VectorCounterexample, VectorAlternativeExplanation,
		VectorMissingEvidence, VectorScopeLimitation:
		return true
	}
	return false
}

// DefenseArgument is a steelmanned restatement of one claim.
// At most one defense per claim per round.
type DefenseArgument struct {
	OriginalClaimID   string   `json:"original_claim_id"`
	StrengthenedClaim string   `json:"strengthened_claim"`
	AdditionalSupport []string `json:"additional_support,omitempty"`
	RemovedWeaknesses []string `json:"removed_weaknesses,omitempty"`
}

// LogicalFallacy is a detected structural reasoning error, attached to a
// claim by ID or to the argument globally.
type LogicalFallacy struct {
	FallacyType FallacyType `json:"fallacy_type"`
	Location    string      `json:"location"` // Claim ID or GlobalLocation
	Explanation string      `json:"explanation"`
	Severity    Severity    `json:"severity"`
}

// GlobalLocation marks a fallacy that applies to the argument as a whole
const GlobalLocation = "global"

// FallacyType tags the kind of reasoning error
type FallacyType string

const (
	FallacyStrawman            FallacyType = "strawman"
	FallacyAdHominem           FallacyType = "ad_hominem"
	FallacyFalseDichotomy      FallacyType = "false_dichotomy"
	FallacyCircularReasoning   FallacyType = "circular_reasoning"
	FallacyAppealToAuthority   FallacyType = "appeal_to_authority"
	FallacySlipperySlope       FallacyType = "slippery_slope"
	FallacyHastyGeneralization FallacyType = "hasty_generalization"
	FallacyPostHoc             FallacyType = "post_hoc"
	FallacyAppealToEmotion     FallacyType = "appeal_to_emotion"
	FallacyTuQuoque            FallacyType = "tu_quoque"
)

// FallacyCatalog maps each fallacy type to a short description.
// Used in detection prompts and the serving layer listing.
var FallacyCatalog = map[FallacyType]string{
	FallacyStrawman:            "Misrepresenting opponent's position",
	FallacyAdHominem:           "Attacking person instead of argument",
	FallacyFalseDichotomy:      "Presenting only two options when more exist",
	FallacyCircularReasoning:   "Conclusion assumed in premises",
	FallacyAppealToAuthority:   "Citing authority instead of evidence",
	FallacySlipperySlope:       "Assuming chain reaction without justification",
	FallacyHastyGeneralization: "Drawing broad conclusion from limited data",
	FallacyPostHoc:             "Assuming causation from correlation/sequence",
	FallacyAppealToEmotion:     "Using emotions instead of logic",
	FallacyTuQuoque:            "You too / hypocrisy attack",
}

// Valid reports whether t is one of the known fallacy types
func (t FallacyType) Valid() bool {
	_, ok := FallacyCatalog[t]
	return ok
}

// Severity grades how damaging a fallacy is
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Valid reports whether s is one of the known severities
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}
