package refer

import (
	"testing"

	"github.com/pvillacis/triaje593/internal/triage"
)

func TestRoute_TotalOverAllLevelsAndSpecialties(t *testing.T) {
	specialties := []string{
		"Cardiología", "Neumología", "Medicina General",
		"Especialidad Inventada", "", "Oncología",
	}
	for _, lvl := range triage.Levels {
		for _, sp := range specialties {
			plan := Route(lvl, sp)
			if plan.Pathway == "" || plan.Action == "" || plan.Message == "" || plan.Icon == "" {
				t.Errorf("Route(level %d, %q) returned incomplete plan: %+v", lvl.Number, sp, plan)
			}
		}
	}
}

func TestRoute_EmergencyLevels(t *testing.T) {
	for _, n := range []int{1, 2} {
		plan := Route(triage.ByNumber(n), "Cardiología")
		if plan.Pathway != "Emergencias" {
			t.Errorf("level %d pathway = %q, want Emergencias", n, plan.Pathway)
		}
	}
}

func TestRoute_LowestLevelIsPrimaryCare(t *testing.T) {
	plan := Route(triage.ByNumber(5), "Dermatología")
	if plan.Pathway != "Atención primaria" {
		t.Fatalf("pathway = %q, want Atención primaria", plan.Pathway)
	}
}

func TestRoute_UnknownSpecialtyUsesGenericDepartment(t *testing.T) {
	known := Route(triage.ByNumber(3), "Cardiología")
	unknown := Route(triage.ByNumber(3), "Astrología")

	if known.Message == unknown.Message {
		t.Fatalf("unknown specialty produced the same message as a known one: %q", unknown.Message)
	}
	if unknown.Pathway != known.Pathway {
		t.Fatalf("unknown specialty changed the pathway: %q vs %q", unknown.Pathway, known.Pathway)
	}
}

func TestRoute_Deterministic(t *testing.T) {
	a := Route(triage.ByNumber(2), "Neumología")
	b := Route(triage.ByNumber(2), "Neumología")
	if a != b {
		t.Fatalf("Route is not deterministic: %+v vs %+v", a, b)
	}
}
