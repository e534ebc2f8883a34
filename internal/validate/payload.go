// Package validate checks the shape of raw reasoning-service payloads and
// materializes them into model records. Each call's payload is validated
// independently: a bad payload fails that one call, nothing else.
package validate

import (
	"encoding/json"
	"fmt"

	"github.com/ppiankov/argus/internal/llm"
	"github.com/ppiankov/argus/internal/model"
)

type claimsPayload struct {
	Claims []claimRecord `json:"claims"`
}

type claimRecord struct {
	ID               string   `json:"id"`
	Text             string   `json:"text"`
	ClaimType        string   `json:"claim_type"`
	Assumptions      []string `json:"assumptions"`
	EvidenceRequired string   `json:"evidence_required"`
	Confidence       *float64 `json:"confidence"`
	Supports         []string `json:"supports"`
	Contradicts      []string `json:"contradicts"`
}

// Claims validates a decomposition payload. Every record must carry a
// non-empty id, non-empty text, and a known claim type; confidence, when
// present, must be in [0,1]. An empty claim list is valid.
func Claims(raw json.RawMessage) ([]model.AtomicClaim, error) {
	var payload claimsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decompose payload: %v: %w", err, llm.ErrMalformedResponse)
	}

	claims := make([]model.AtomicClaim, 0, len(payload.Claims))
	for i, r := range payload.Claims {
		if r.ID == "" {
			return nil, fmt.Errorf("claim %d: empty id: %w", i, llm.ErrMalformedResponse)
		}
		if r.Text == "" {
			return nil, fmt.Errorf("claim %q: empty text: %w", r.ID, llm.ErrMalformedResponse)
		}
		ct := model.ClaimType(r.ClaimType)
		if !ct.Valid() {
			return nil, fmt.Errorf("claim %q: unknown claim_type %q: %w", r.ID, r.ClaimType, llm.ErrMalformedResponse)
		}
		if r.Confidence != nil && (*r.Confidence < 0 || *r.Confidence > 1) {
			return nil, fmt.Errorf("claim %q: confidence %v out of range: %w", r.ID, *r.Confidence, llm.ErrMalformedResponse)
		}
		claims = append(claims, model.AtomicClaim{
			ID:               r.ID,
			Text:             r.Text,
			ClaimType:        ct,
			Assumptions:      r.Assumptions,
			EvidenceRequired: r.EvidenceRequired,
			Confidence:       r.Confidence,
			Supports:         r.Supports,
			Contradicts:      r.Contradicts,
		})
	}
	return claims, nil
}

type attacksPayload struct {
	Attacks []attackRecord `json:"attacks"`
}

type attackRecord struct {
	AttackVector       string   `json:"attack_vector"`
	Counterpoint       string   `json:"counterpoint"`
	SupportingEvidence string   `json:"supporting_evidence"`
	Strength           *float64 `json:"strength"`
}

// Attacks validates an attack payload for one target claim. The target ID is
// assigned here, from the claim the call was dispatched for, so a confused
// payload can never produce a dangling reference.
func Attacks(raw json.RawMessage, targetClaimID string) ([]model.CounterArgument, error) {
	var payload attacksPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("attack payload: %v: %w", err, llm.ErrMalformedResponse)
	}

	attacks := make([]model.CounterArgument, 0, len(payload.Attacks))
	for i, r := range payload.Attacks {
		vector := model.AttackVector(r.AttackVector)
		if !vector.Valid() {
			return nil, fmt.Errorf("attack %d: unknown attack_vector %q: %w", i, r.AttackVector, llm.ErrMalformedResponse)
		}
		if r.Counterpoint == "" {
			return nil, fmt.Errorf("attack %d: empty counterpoint: %w", i, llm.ErrMalformedResponse)
		}
		if r.Strength == nil || *r.Strength < 0 || *r.Strength > 1 {
			return nil, fmt.Errorf("attack %d: strength missing or out of range: %w", i, llm.ErrMalformedResponse)
		}
		attacks = append(attacks, model.CounterArgument{
			TargetClaimID:      targetClaimID,
			AttackVector:       vector,
			Counterpoint:       r.Counterpoint,
			SupportingEvidence: r.SupportingEvidence,
			Strength:           *r.Strength,
		})
	}
	return attacks, nil
}

type defenseRecord struct {
	StrengthenedClaim string   `json:"strengthened_claim"`
	AdditionalSupport []string `json:"additional_support"`
	RemovedWeaknesses []string `json:"removed_weaknesses"`
}

// Defense validates a defense payload for one claim
func Defense(raw json.RawMessage, claimID string) (model.DefenseArgument, error) {
	var r defenseRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.DefenseArgument{}, fmt.Errorf("defense payload: %v: %w", err, llm.ErrMalformedResponse)
	}
	if r.StrengthenedClaim == "" {
		return model.DefenseArgument{}, fmt.Errorf("defense of %q: empty strengthened_claim: %w", claimID, llm.ErrMalformedResponse)
	}
	return model.DefenseArgument{
		OriginalClaimID:   claimID,
		StrengthenedClaim: r.StrengthenedClaim,
		AdditionalSupport: r.AdditionalSupport,
		RemovedWeaknesses: r.RemovedWeaknesses,
	}, nil
}

type fallaciesPayload struct {
	Fallacies []fallacyRecord `json:"fallacies"`
}

type fallacyRecord struct {
	FallacyType string `json:"fallacy_type"`
	Location    string `json:"location"`
	Explanation string `json:"explanation"`
	Severity    string `json:"severity"`
}

// Fallacies validates a fallacy-detection payload. Locations are shape-checked
// for presence only; whether a location names a real claim is decided by the
// orchestrator against the graph, per entry.
func Fallacies(raw json.RawMessage) ([]model.LogicalFallacy, error) {
	var payload fallaciesPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("fallacy payload: %v: %w", err, llm.ErrMalformedResponse)
	}

	fallacies := make([]model.LogicalFallacy, 0, len(payload.Fallacies))
	for i, r := range payload.Fallacies {
		ft := model.FallacyType(r.FallacyType)
		if !ft.Valid() {
			return nil, fmt.Errorf("fallacy %d: unknown fallacy_type %q: %w", i, r.FallacyType, llm.ErrMalformedResponse)
		}
		sev := model.Severity(r.Severity)
		if !sev.Valid() {
			return nil, fmt.Errorf("fallacy %d: unknown severity %q: %w", i, r.Severity, llm.ErrMalformedResponse)
		}
		if r.Location == "" {
			return nil, fmt.Errorf("fallacy %d: empty location: %w", i, llm.ErrMalformedResponse)
		}
		if r.Explanation == "" {
			return nil, fmt.Errorf("fallacy %d: empty explanation: %w", i, llm.ErrMalformedResponse)
		}
		fallacies = append(fallacies, model.LogicalFallacy{
			FallacyType: ft,
			Location:    r.Location,
			Explanation: r.Explanation,
			Severity:    sev,
		})
	}
	return fallacies, nil
}
