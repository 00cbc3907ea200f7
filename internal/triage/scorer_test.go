package triage

import "testing"

func TestScore_LevelPerCue(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"El paciente está inconsciente y no respira", 1},
		{"Convulsiones desde hace unos minutos", 1},
		{"Dolor torácico con falta de aire", 2},
		{"Dolor abdominal intenso desde hace 2 horas", 2}, // severity marker outranks duration
		{"Fiebre alta y vómitos desde ayer", 3},
		{"Dolor abdominal desde hace 2 horas, náuseas", 3},
		{"Tos seca y mareo leve", 4},
		{"Consulta por certificado médico", 5},
	}
	for _, tc := range cases {
		got := Score(tc.text)
		if got.Number != tc.want {
			t.Errorf("Score(%q) = level %d, want %d", tc.text, got.Number, tc.want)
		}
	}
}

func TestScore_EmptyInputDefaultsToLowest(t *testing.T) {
	got := Score("")
	if got.Number != 5 {
		t.Fatalf("Score(\"\") = level %d, want 5", got.Number)
	}
}

func TestScore_CaseInsensitive(t *testing.T) {
	lower := Score("paciente inconsciente")
	upper := Score("PACIENTE INCONSCIENTE")
	if lower != upper {
		t.Fatalf("case sensitivity: %+v != %+v", lower, upper)
	}
}

func TestScore_AlwaysReturnsKnownLevel(t *testing.T) {
	inputs := []string{"", "x", "dolor", "🤒", "texto sin síntomas reconocibles"}
	for _, in := range inputs {
		got := Score(in)
		found := false
		for _, lvl := range Levels {
			if got == lvl {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Score(%q) returned level outside the fixed table: %+v", in, got)
		}
	}
}

func TestScore_HighestPriorityRuleWins(t *testing.T) {
	// Mentions cues from levels 1, 3 and 4 at once.
	got := Score("tos, fiebre alta y paro respiratorio")
	if got.Number != 1 {
		t.Fatalf("Score() = level %d, want 1", got.Number)
	}
}

func TestLevels_ShapeIsFixed(t *testing.T) {
	if len(Levels) != 5 {
		t.Fatalf("len(Levels) = %d, want 5", len(Levels))
	}
	for i, lvl := range Levels {
		if lvl.Number != i+1 {
			t.Errorf("Levels[%d].Number = %d, want %d", i, lvl.Number, i+1)
		}
		if lvl.Name == "" || lvl.Color == "" || lvl.MaxWait == "" {
			t.Errorf("Levels[%d] has empty field: %+v", i, lvl)
		}
	}
}

func TestByNumber_OutOfRangeFallsBack(t *testing.T) {
	for _, n := range []int{0, -3, 6, 42} {
		if got := ByNumber(n); got.Number != 5 {
			t.Errorf("ByNumber(%d) = level %d, want 5", n, got.Number)
		}
	}
}
