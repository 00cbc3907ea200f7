// Package triage implements Manchester-style urgency scoring for free-text
// symptom descriptions.
//
// Scoring is a total function: every input string, including the empty
// string, maps to exactly one of five ordered urgency levels. The rules are
// evaluated over the raw (un-normalized) text because phrasing cues such as
// explicit severity markers are part of the signal and must not be stripped
// first.
package triage

// Level is one of the five fixed Manchester urgency levels, ordered from
// most urgent (1) to least urgent (5). Each level carries the canonical
// name, display color, and maximum target wait time shown on the triage card.
type Level struct {
	// Number is the level ordinal in [1, 5]. Lower is more urgent.
	Number int

	// Name is the canonical Spanish level name (e.g., "Muy urgente").
	Name string

	// Color is the hex display color associated with the level.
	Color string

	// MaxWait is the human-readable target wait time (e.g., "60 minutos").
	MaxWait string
}

// Levels is the fixed, ordered Manchester table. Index i holds level i+1.
// The table is read-only; callers must not modify it.
var Levels = [5]Level{
	{Number: 1, Name: "Inmediato", Color: "#E53935", MaxWait: "Atención inmediata"},
	{Number: 2, Name: "Muy urgente", Color: "#FB8C00", MaxWait: "10 minutos"},
	{Number: 3, Name: "Urgente", Color: "#FDD835", MaxWait: "60 minutos"},
	{Number: 4, Name: "Normal", Color: "#43A047", MaxWait: "120 minutos"},
	{Number: 5, Name: "No urgente", Color: "#1E88E5", MaxWait: "240 minutos"},
}

// ByNumber returns the level with the given ordinal. Ordinals outside [1, 5]
// return the lowest-urgency level, keeping every caller total.
func ByNumber(n int) Level {
	if n < 1 || n > 5 {
		return Levels[4]
	}
	return Levels[n-1]
}
