package classify

// Band is the certainty band a confidence value falls into. Bands drive the
// presentation layer's review hints; they are derived per call and never
// stored on the entity.
type Band string

const (
	// BandHigh covers confidence strictly above 0.8.
	BandHigh Band = "high"

	// BandMedium covers confidence strictly above 0.5 up to and including 0.8.
	// Review of the prediction is suggested.
	BandMedium Band = "medium"

	// BandLow covers confidence up to and including 0.5. The prediction
	// requires human evaluation.
	BandLow Band = "low"
)

// BandFor maps a confidence value to its certainty band. Boundaries are
// exact and inclusive: 0.8 is medium, 0.5 is low.
func BandFor(confidence float64) Band {
	switch {
	case confidence > 0.8:
		return BandHigh
	case confidence > 0.5:
		return BandMedium
	default:
		return BandLow
	}
}

// Label returns the Spanish presentation text for the band.
func (b Band) Label() string {
	switch b {
	case BandHigh:
		return "Nivel de certeza: Alto"
	case BandMedium:
		return "Nivel de certeza: Medio (Revisar)"
	case BandLow:
		return "Nivel de certeza: Bajo (Requiere valoración humana)"
	default:
		return "Nivel de certeza: Desconocido"
	}
}
