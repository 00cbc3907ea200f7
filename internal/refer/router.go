// Package refer selects the suggested referral pathway for a triaged case.
//
// Routing is a pure lookup combining the assigned urgency level with the
// predicted specialty. It is a total function: every reachable (level,
// specialty) pair — including specialties the classifier has never seen —
// yields a fully populated plan.
package refer

import (
	"fmt"

	"github.com/pvillacis/triaje593/internal/triage"
)

// Plan is the suggested next step for a case. All four fields are always
// populated.
type Plan struct {
	// Pathway is the care pathway type (e.g., "Emergencias").
	Pathway string `json:"pathway"`

	// Action is the recommended action in imperative form.
	Action string `json:"action"`

	// Message is the explanatory text shown alongside the plan.
	Message string `json:"message"`

	// Icon is the pictogram displayed on the referral card.
	Icon string `json:"icon"`
}

// departments maps the specialties the classifier is trained on to the
// hospital department named in referral messages. Specialties outside this
// directory route through the generic fallback.
var departments = map[string]string{
	"Cardiología":       "el servicio de Cardiología",
	"Neurología":        "el servicio de Neurología",
	"Gastroenterología": "el servicio de Gastroenterología",
	"Neumología":        "el servicio de Neumología",
	"Traumatología":     "el servicio de Traumatología",
	"Dermatología":      "el servicio de Dermatología",
	"Pediatría":         "el servicio de Pediatría",
	"Medicina General":   "Medicina General",
}

// fallbackDepartment is used when the predicted specialty is not in the
// directory, so routing never fails on unknown labels.
const fallbackDepartment = "el servicio de valoración general"

// Route returns the referral plan for the given urgency level and predicted
// specialty. An unknown specialty falls back to the generic department for
// that level rather than failing.
func Route(level triage.Level, specialty string) Plan {
	dept, known := departments[specialty]
	if !known || specialty == "" {
		dept = fallbackDepartment
	}

	switch level.Number {
	case 1:
		return Plan{
			Pathway: "Emergencias",
			Action:  "Activar atención de emergencia inmediata",
			Message: "Riesgo vital. Trasladar al paciente a la sala de emergencias sin demora y notificar a " + dept + ".",
			Icon:    "🚨",
		}
	case 2:
		return Plan{
			Pathway: "Emergencias",
			Action:  "Trasladar a urgencias",
			Message: "Cuadro muy urgente. Atención en urgencias dentro de los próximos " + level.MaxWait + ", con interconsulta a " + dept + ".",
			Icon:    "⚠️",
		}
	case 3:
		return Plan{
			Pathway: "Consulta prioritaria",
			Action:  "Agendar consulta prioritaria",
			Message: "Derivar a " + dept + " en las próximas 24 a 48 horas. Tiempo objetivo de espera en sala: " + level.MaxWait + ".",
			Icon:    "🏥",
		}
	case 4:
		return Plan{
			Pathway: "Consulta externa",
			Action:  "Programar consulta externa",
			Message: "Derivación programada a " + dept + ". El caso no requiere atención de urgencia.",
			Icon:    "📅",
		}
	default:
		return Plan{
			Pathway: "Atención primaria",
			Action:  "Orientar a atención primaria",
			Message: fmt.Sprintf("Manejo en atención primaria con seguimiento por %s si los síntomas persisten.", dept),
			Icon:    "🩺",
		}
	}
}
