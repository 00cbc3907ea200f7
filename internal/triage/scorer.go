package triage

import "strings"

// rule associates an urgency level with the phrase cues that trigger it.
// Matching is case-insensitive substring containment.
type rule struct {
	level    int
	keywords []string
}

// rules is the prioritized rule set, evaluated top-down: the first rule with
// any matching keyword wins. Higher-urgency rules come first so that a text
// mentioning both "inconsciente" and "tos" lands on level 1, never level 4.
var rules = []rule{
	{
		level: 1,
		keywords: []string{
			"inconsciente", "no respira", "paro cardiaco", "paro cardíaco",
			"paro respiratorio", "convulsion", "convulsión", "convulsiones",
			"hemorragia masiva", "asfixia", "ahogamiento", "shock",
			"sin pulso", "sobredosis",
		},
	},
	{
		level: 2,
		keywords: []string{
			"dolor torácico", "dolor toracico", "dolor en el pecho",
			"dificultad para respirar", "falta de aire", "sangrado abundante",
			"hemorragia", "desmayo", "pérdida de conocimiento",
			"perdida de conocimiento", "quemadura grave", "intenso",
			"insoportable", "severo", "severa",
		},
	},
	{
		level: 3,
		keywords: []string{
			"fiebre alta", "vómitos", "vomitos", "dolor abdominal",
			"fractura", "herida profunda", "quemadura", "reacción alérgica",
			"reaccion alergica", "deshidratación", "deshidratacion",
			"desde hace", "empeora",
		},
	},
	{
		level: 4,
		keywords: []string{
			"fiebre", "dolor", "tos", "diarrea", "mareo", "erupción",
			"erupcion", "inflamación", "inflamacion", "esguince", "náuseas",
			"nauseas",
		},
	},
}

// Score maps a raw symptom description to exactly one urgency level. The
// highest-priority rule containing any of its keywords wins; text that
// matches no rule (including the empty string) defaults to the
// lowest-urgency level.
func Score(rawText string) Level {
	text := strings.ToLower(rawText)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return ByNumber(r.level)
			}
		}
	}
	return Levels[4]
}
