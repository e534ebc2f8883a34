package model

// Stance selects which generation passes run
type Stance string

const (
	StanceAttack    Stance = "attack"    // Devil's advocate: attacks only
	StanceDefense   Stance = "defense"   // Steelman: defenses only
	StanceDialectic Stance = "dialectic" // Both, defenses fed by attacks
	StanceNeutral   Stance = "neutral"   // No generation passes
)

// Valid reports whether s is one of the known stances
func (s Stance) Valid() bool {
	switch s {
	case StanceAttack, StanceDefense, StanceDialectic, StanceNeutral:
		return true
	}
	return false
}

// StanceDescriptions maps each stance to a human-readable description
var StanceDescriptions = map[Stance]string{
	StanceAttack:    "Devil's advocate - ruthlessly challenges claims",
	StanceDefense:   "Steelman - builds strongest version of argument",
	StanceDialectic: "Full debate - attack, defense, and synthesis",
	StanceNeutral:   "Objective analysis without taking sides",
}

// Persona selects the argument delivery style. The core only carries the tag;
// prompt construction parameters live in a lookup table in the llm package.
type Persona string

const (
	PersonaAcademic      Persona = "academic"
	PersonaPolitician    Persona = "politician"
	PersonaEngineer      Persona = "engineer"
	PersonaTeenager      Persona = "teenager"
	PersonaReligious     Persona = "religious"
	PersonaEconomist     Persona = "economist"
	PersonaTwitter       Persona = "twitter"
	PersonaRedditAtheist Persona = "reddit_atheist"
	PersonaCorporate     Persona = "corporate"
)

// PersonaDescriptions maps each persona to a human-readable description
var PersonaDescriptions = map[Persona]string{
	PersonaAcademic:      "Rigorous, evidence-based, formal citations",
	PersonaPolitician:    "Persuasive, appeals to values and constituency",
	PersonaEngineer:      "Systems-thinking, first-principles, technical",
	PersonaTeenager:      "Informal, emotional, relatable examples",
	PersonaReligious:     "Appeals to scripture, tradition, moral framework",
	PersonaEconomist:     "Cost-benefit analysis, incentives, data-driven",
	PersonaTwitter:       "Punchy, provocative, meme-aware",
	PersonaRedditAtheist: "Skeptical, logical, anti-authority",
	PersonaCorporate:     "ROI-focused, stakeholder-aware, diplomatic",
}

// Valid reports whether p is one of the known personas
func (p Persona) Valid() bool {
	_, ok := PersonaDescriptions[p]
	return ok
}

// Personas returns every known persona in a stable order
func Personas() []Persona {
	return []Persona{
		PersonaAcademic, PersonaPolitician, PersonaEngineer, PersonaTeenager,
		PersonaReligious, PersonaEconomist, PersonaTwitter, PersonaRedditAtheist,
		PersonaCorporate,
	}
}

// Stances returns every known stance in a stable order
func Stances() []Stance {
	return []Stance{StanceAttack, StanceDefense, StanceDialectic, StanceNeutral}
}
