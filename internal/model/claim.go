package model

// AtomicClaim is a single decomposed proposition extracted from an argument.
// Claims are immutable once inserted into a graph; later stages only append
// attacks, defenses, and fallacies that reference them.
type AtomicClaim struct {
	ID               string    `json:"id"`
	Text             string    `json:"text"`
	ClaimType        ClaimType `json:"claim_type"`
	Assumptions      []string  `json:"assumptions,omitempty"`       // Hidden assumptions the claim relies on
	EvidenceRequired string    `json:"evidence_required,omitempty"` // What would verify or falsify it
	Confidence       *float64  `json:"confidence,omitempty"`        // [0,1], optional

	// Directed edges to other claims in the same graph, keyed by claim ID
	Supports    []string `json:"supports,omitempty"`
	Contradicts []string `json:"contradicts,omitempty"`
}

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimEmpirical    ClaimType = "empirical"    // Testable, fact-based
	ClaimNormative    ClaimType = "normative"    // Value judgment, "should" statements
	ClaimCausal       ClaimType = "causal"       // X causes Y
	ClaimPredictive   ClaimType = "predictive"   // Future-oriented
	ClaimDefinitional ClaimType = "definitional" // What something means
)

// Valid reports whether t is one of the known claim types
func (t ClaimType) Valid() bool {
	switch t {
	case ClaimEmpirical, ClaimNormative, ClaimCausal, ClaimPredictive, ClaimDefinitional:
		return true
	}
	return false
}
