package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/argus/internal/model"
)

const systemPrompt = "You are ARGUS, a reasoning system that dissects arguments. You always return valid JSON matching the requested structure, with no commentary outside the JSON."

// Per-task tuning: structured extraction runs cool, adversarial generation
// runs warmer.
type taskTuning struct {
	temperature float64
	maxTokens   int
}

var tuning = map[TaskKind]taskTuning{
	TaskDecompose:       {temperature: 0.3, maxTokens: 4000},
	TaskAttack:          {temperature: 0.7, maxTokens: 3000},
	TaskDefend:          {temperature: 0.5, maxTokens: 2000},
	TaskDetectFallacies: {temperature: 0.2, maxTokens: 2500},
}

// personaStyles maps each persona to its attack-prompt style instruction.
// A closed lookup table: the core only ever carries the tag.
var personaStyles = map[model.Persona]string{
	model.PersonaAcademic:      "Use rigorous logic, cite research methods, question operationalization",
	model.PersonaPolitician:    "Appeal to constituencies, point out unintended consequences",
	model.PersonaEngineer:      "Think in systems, find edge cases, ask about failure modes",
	model.PersonaTeenager:      "Use relatable examples, emotional appeals, 'what if' scenarios",
	model.PersonaReligious:     "Appeal to moral frameworks, tradition, and spiritual consequences",
	model.PersonaEconomist:     "Focus on incentives, opportunity costs, and unintended effects",
	model.PersonaTwitter:       "Be punchy and provocative, use memorable examples",
	model.PersonaRedditAtheist: "Demand evidence, challenge authority, use formal logic",
	model.PersonaCorporate:     "Focus on risks, stakeholders, and ROI impacts",
}

func newTask(kind TaskKind, prompt string) Task {
	t := tuning[kind]
	return Task{
		Kind:        kind,
		Prompt:      prompt,
		System:      systemPrompt,
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
	}
}

// DecomposeTask builds the claim-decomposition task for an input argument
func DecomposeTask(inputText string) Task {
	prompt := fmt.Sprintf(`Decompose this argument into atomic claims.

Input argument:
%q

Rules:
- Each claim is ONE independently verifiable statement
- Classify each claim: empirical, normative, causal, definitional, or predictive
- Extract hidden assumptions that are not stated
- Identify what evidence would verify or falsify each claim
- Map which claims support or contradict each other, by id
- Do not add claims that are not in the original argument

Return valid JSON:
{
  "claims": [
    {
      "id": "claim_1",
      "text": "The exact claim statement",
      "claim_type": "empirical",
      "assumptions": ["Hidden assumption"],
      "evidence_required": "What evidence would verify this",
      "confidence": 0.8,
      "supports": [],
      "contradicts": []
    }
  ]
}`, inputText)
	return newTask(TaskDecompose, prompt)
}

// AttackTask builds the devil's-advocate task against one claim
func AttackTask(claim model.AtomicClaim, persona model.Persona) Task {
	style, ok := personaStyles[persona]
	if !ok {
		style = personaStyles[model.PersonaAcademic]
	}

	assumptions := "None identified"
	if len(claim.Assumptions) > 0 {
		assumptions = strings.Join(claim.Assumptions, "; ")
	}

	prompt := fmt.Sprintf(`You are in ATTACK mode, arguing as a %s.

Target claim: %q
Claim type: %s
Hidden assumptions: %s

Your style: %s

Generate 3-5 strong counterarguments using these attack vectors:
- weak_assumption: which assumptions are questionable?
- counterexample: what real or hypothetical cases contradict this?
- alternative_explanation: what else could explain the same observations?
- missing_evidence: what evidence is claimed but not provided?
- scope_limitation: where does this claim break down?

Rate each attack's strength from 0.0 to 1.0. Attack the logic, not the person.

Return valid JSON:
{
  "attacks": [
    {
      "attack_vector": "weak_assumption",
      "counterpoint": "The specific counterargument",
      "supporting_evidence": "Optional evidence",
      "strength": 0.8
    }
  ]
}`, persona, claim.Text, claim.ClaimType, assumptions, style)
	return newTask(TaskAttack, prompt)
}

// DefendTask builds the steelman task for one claim given the attacks it
// received this round (possibly none).
func DefendTask(claim model.AtomicClaim, attacks []model.CounterArgument) Task {
	var b strings.Builder
	if len(attacks) == 0 {
		b.WriteString("(none - strengthen the claim proactively)")
	}
	for _, a := range attacks {
		fmt.Fprintf(&b, "- %s: %s (strength: %.2f)\n", a.AttackVector, a.Counterpoint, a.Strength)
	}

	prompt := fmt.Sprintf(`You are in DEFENSE mode.

Original claim: %q

Attacks received:
%s

Create the STRONGEST possible version of this claim:
1. Fix any valid criticisms from the attacks
2. Add qualifications: scope, limitations, conditions
3. Add supporting data or reasoning
4. Define ambiguous terms
5. Be honest about what the claim does not cover

You are building the best possible case, even if you would personally disagree.

Return valid JSON:
{
  "strengthened_claim": "The improved claim statement",
  "additional_support": ["Supporting point"],
  "removed_weaknesses": ["How an attack was addressed"]
}`, claim.Text, b.String())
	return newTask(TaskDefend, prompt)
}

// FallacyTask builds the pass-level fallacy-detection task over the whole
// claim set.
func FallacyTask(originalInput string, claims []model.AtomicClaim) Task {
	var listed strings.Builder
	for _, c := range claims {
		fmt.Fprintf(&listed, "%s: %s\n", c.ID, c.Text)
	}

	var catalog strings.Builder
	for _, ft := range []model.FallacyType{
		model.FallacyStrawman, model.FallacyAdHominem, model.FallacyFalseDichotomy,
		model.FallacyCircularReasoning, model.FallacyAppealToAuthority,
		model.FallacySlipperySlope, model.FallacyHastyGeneralization,
		model.FallacyPostHoc, model.FallacyAppealToEmotion, model.FallacyTuQuoque,
	} {
		fmt.Fprintf(&catalog, "- %s: %s\n", ft, model.FallacyCatalog[ft])
	}

	prompt := fmt.Sprintf(`Analyze this argument for logical fallacies.

Original argument:
%q

Decomposed claims:
%s
Check for:
%s
For each fallacy found, identify the exact claim by id (or "global" for the
argument as a whole), explain why it is a fallacy, and rate its severity as
minor, moderate, or severe. If none are found, return an empty array.

Return valid JSON:
{
  "fallacies": [
    {
      "fallacy_type": "false_dichotomy",
      "location": "claim_3",
      "explanation": "Why this is a false dichotomy",
      "severity": "moderate"
    }
  ]
}`, originalInput, listed.String(), catalog.String())
	return newTask(TaskDetectFallacies, prompt)
}
