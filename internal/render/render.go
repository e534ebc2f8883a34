// Package render produces the report formats: JSON for machine consumers,
// Markdown for humans, and a short stdout summary.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/argus/internal/model"
	"github.com/ppiankov/argus/internal/score"
)

// JSON renders a scored graph as indented JSON
func JSON(g *model.ArgumentGraph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// SessionJSON renders a dialectic session as indented JSON
func SessionJSON(s *model.DialecticSession) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Markdown renders a scored graph as a Markdown report
func Markdown(g *model.ArgumentGraph) string {
	var b strings.Builder

	b.WriteString("# Argument Analysis\n\n")
	fmt.Fprintf(&b, "> %s\n\n", g.OriginalInput)

	if g.RobustnessScore != nil {
		fmt.Fprintf(&b, "**Robustness: %.1f/100** - %s\n\n", *g.RobustnessScore, score.Summary(*g.RobustnessScore))
	}
	if g.Partial {
		fmt.Fprintf(&b, "_Partial analysis (%s): some generation passes did not complete._\n\n", g.PartialReason)
	}

	writeClaims(&b, g)
	writeAttacks(&b, g)
	writeDefenses(&b, g)
	writeFallacies(&b, g)
	writeFailures(&b, g)

	return b.String()
}

func writeClaims(b *strings.Builder, g *model.ArgumentGraph) {
	if len(g.Claims) == 0 {
		b.WriteString("## Claims\n\nNo atomic claims were extracted.\n\n")
		return
	}

	status := make(map[string]string, len(g.Claims))
	for _, id := range g.SurvivedClaims {
		status[id] = "survived"
	}
	for _, id := range g.CollapsedClaims {
		status[id] = "collapsed"
	}
	for _, id := range g.ValueDependentClaims {
		status[id] = "value-dependent"
	}

	b.WriteString("## Claims\n\n")
	b.WriteString("| ID | Claim | Type | Status |\n")
	b.WriteString("|----|-------|------|--------|\n")
	for _, c := range g.Claims {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", c.ID, escapeCell(c.Text), c.ClaimType, status[c.ID])
	}
	b.WriteString("\n")

	for _, c := range g.Claims {
		if len(c.Assumptions) == 0 && c.EvidenceRequired == "" {
			continue
		}
		fmt.Fprintf(b, "**%s**\n\n", c.ID)
		for _, a := range c.Assumptions {
			fmt.Fprintf(b, "- Assumes: %s\n", a)
		}
		if c.EvidenceRequired != "" {
			fmt.Fprintf(b, "- Evidence required: %s\n", c.EvidenceRequired)
		}
		b.WriteString("\n")
	}
}

func writeAttacks(b *strings.Builder, g *model.ArgumentGraph) {
	if len(g.Attacks) == 0 {
		return
	}
	b.WriteString("## Attacks\n\n")
	for _, a := range g.Attacks {
		fmt.Fprintf(b, "- **%s** on %s (strength %.2f): %s\n", a.AttackVector, a.TargetClaimID, a.Strength, a.Counterpoint)
		if a.SupportingEvidence != "" {
			fmt.Fprintf(b, "  - Evidence: %s\n", a.SupportingEvidence)
		}
	}
	b.WriteString("\n")
}

func writeDefenses(b *strings.Builder, g *model.ArgumentGraph) {
	if len(g.Defenses) == 0 {
		return
	}
	b.WriteString("## Defenses\n\n")
	for _, d := range g.Defenses {
		fmt.Fprintf(b, "**%s** strengthened:\n\n> %s\n\n", d.OriginalClaimID, d.StrengthenedClaim)
		for _, s := range d.AdditionalSupport {
			fmt.Fprintf(b, "- Support: %s\n", s)
		}
		for _, w := range d.RemovedWeaknesses {
			fmt.Fprintf(b, "- Addressed: %s\n", w)
		}
		b.WriteString("\n")
	}
}

func writeFallacies(b *strings.Builder, g *model.ArgumentGraph) {
	if len(g.Fallacies) == 0 {
		return
	}
	b.WriteString("## Fallacies\n\n")
	for _, f := range g.Fallacies {
		fmt.Fprintf(b, "- **%s** (%s, at %s): %s\n", f.FallacyType, f.Severity, f.Location, f.Explanation)
	}
	b.WriteString("\n")
}

func writeFailures(b *strings.Builder, g *model.ArgumentGraph) {
	if len(g.Failures) == 0 {
		return
	}
	b.WriteString("## Generation failures\n\n")
	for _, f := range g.Failures {
		if f.ClaimID != "" {
			fmt.Fprintf(b, "- %s (%s): %s\n", f.Stage, f.ClaimID, f.Reason)
		} else {
			fmt.Fprintf(b, "- %s: %s\n", f.Stage, f.Reason)
		}
	}
	b.WriteString("\n")
}

// SessionMarkdown renders a dialectic session with its score trajectory
func SessionMarkdown(s *model.DialecticSession) string {
	var b strings.Builder

	b.WriteString("# Dialectic Session\n\n")
	fmt.Fprintf(&b, "Persona: %s, rounds: %d\n\n", s.Persona, s.Rounds)

	b.WriteString("## Score trajectory\n\n")
	b.WriteString("| Round | Score | Survived | Collapsed | Attacks | Defenses |\n")
	b.WriteString("|-------|-------|----------|-----------|---------|----------|\n")
	for i, g := range s.Graphs {
		scoreCell := "-"
		if g.RobustnessScore != nil {
			scoreCell = fmt.Sprintf("%.1f", *g.RobustnessScore)
		}
		fmt.Fprintf(&b, "| %d | %s | %d | %d | %d | %d |\n",
			i+1, scoreCell, len(g.SurvivedClaims), len(g.CollapsedClaims), len(g.Attacks), len(g.Defenses))
	}
	b.WriteString("\n")

	for i := range s.Graphs {
		fmt.Fprintf(&b, "## Round %d\n\n", i+1)
		b.WriteString(Markdown(&s.Graphs[i]))
	}

	return b.String()
}

// Summary writes the short stdout summary for one analysis
func Summary(w io.Writer, g *model.ArgumentGraph) {
	if g.RobustnessScore != nil {
		fmt.Fprintf(w, "Robustness: %.1f/100 - %s\n", *g.RobustnessScore, score.Summary(*g.RobustnessScore))
	}
	fmt.Fprintf(w, "Claims: %d (%d survived, %d collapsed, %d value-dependent)\n",
		len(g.Claims), len(g.SurvivedClaims), len(g.CollapsedClaims), len(g.ValueDependentClaims))
	fmt.Fprintf(w, "Attacks: %d, defenses: %d, fallacies: %d\n",
		len(g.Attacks), len(g.Defenses), len(g.Fallacies))
	if len(g.Failures) > 0 {
		fmt.Fprintf(w, "Generation failures: %d\n", len(g.Failures))
	}
	if g.Partial {
		fmt.Fprintf(w, "Partial result (%s)\n", g.PartialReason)
	}
}

// escapeCell keeps claim text from breaking the Markdown table
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
