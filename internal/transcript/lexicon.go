package transcript

// DefaultLexicon is the clinical vocabulary used to correct dictated symptom
// descriptions. The canonical forms carry the spelling and accents the
// analysis rules expect.
func DefaultLexicon() []string {
	return []string{
		// Cardiovascular.
		"dolor torácico",
		"dolor en el pecho",
		"taquicardia",
		"palpitaciones",
		"hipertensión",
		"infarto",

		// Respiratory.
		"dificultad para respirar",
		"neumonía",
		"bronquitis",
		"asma",
		"tos con flema",
		"ahogo",

		// Digestive.
		"dolor abdominal",
		"gastritis",
		"vómitos",
		"náuseas",
		"diarrea",
		"estreñimiento",
		"acidez",

		// Neurological.
		"dolor de cabeza",
		"cefalea",
		"migraña",
		"mareos",
		"convulsiones",
		"hormigueo",
		"pérdida de conocimiento",

		// Trauma and musculoskeletal.
		"fractura",
		"esguince",
		"dolor lumbar",
		"dolor articular",
		"hemorragia",
		"sangrado abundante",

		// General.
		"fiebre alta",
		"fiebre",
		"escalofríos",
		"erupción",
		"alergia",
		"inconsciente",
		"no respira",
	}
}
