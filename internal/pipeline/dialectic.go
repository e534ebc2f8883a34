package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/argus/internal/model"
)

// RunDialectic runs the pipeline once per round, feeding each round's
// strengthened claims back in as the next round's input. Exactly `rounds`
// rounds run; there is no convergence check. A fatal round failure returns
// the completed prefix of the session alongside the error, so finished rounds
// are never discarded.
func (p *Pipeline) RunDialectic(ctx context.Context, inputText string, rounds int, persona model.Persona) (*model.DialecticSession, error) {
	if rounds < 1 {
		return nil, fmt.Errorf("rounds must be >= 1, got %d", rounds)
	}
	if persona == "" {
		persona = model.PersonaAcademic
	}

	session := &model.DialecticSession{
		Persona: persona,
		Rounds:  rounds,
	}

	currentText := inputText
	for round := 1; round <= rounds; round++ {
		p.logger.Info("dialectic round starting",
			zap.Int("round", round),
			zap.Int("rounds", rounds))

		doc, err := p.Analyze(ctx, Request{
			Input:           currentText,
			Stance:          model.StanceDialectic,
			Persona:         persona,
			DetectFallacies: true,
		})
		if err != nil {
			return session, fmt.Errorf("round %d: %w", round, err)
		}
		session.Graphs = append(session.Graphs, *doc)

		// Next round argues the steelmanned position. With no defenses this
		// round, the input carries over unchanged.
		if next := synthesize(doc.Defenses); next != "" {
			currentText = next
		}
	}

	return session, nil
}

// synthesize concatenates the round's strengthened claims in claim-ID order
func synthesize(defenses []model.DefenseArgument) string {
	if len(defenses) == 0 {
		return ""
	}
	// Snapshot defenses are already sorted by claim ID
	parts := make([]string, 0, len(defenses))
	for _, d := range defenses {
		parts = append(parts, d.StrengthenedClaim)
	}
	return strings.Join(parts, "\n")
}
