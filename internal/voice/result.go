package voice

// Outcome discriminates the four possible endings of a transcription
// attempt. Switch over it exhaustively; there is no fifth case.
type Outcome int

const (
	// OutcomeSuccess means the service produced a transcript.
	OutcomeSuccess Outcome = iota

	// OutcomeUnrecognized means the service could not extract any utterance.
	// Recoverable: re-prompt the user to dictate again or type manually.
	OutcomeUnrecognized

	// OutcomeServiceError means the remote service was unreachable or
	// rejected the request. Transient; safe to retry.
	OutcomeServiceError

	// OutcomeProcessingError means a local failure (storage I/O, malformed
	// audio). Terminal for this attempt.
	OutcomeProcessingError
)

// String returns the machine-readable outcome name used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnrecognized:
		return "unrecognized"
	case OutcomeServiceError:
		return "service_error"
	case OutcomeProcessingError:
		return "processing_error"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of one transcription attempt. Text is set
// only for [OutcomeSuccess]; Detail only for the two error outcomes.
type Result struct {
	Outcome Outcome
	Text    string
	Detail  string
}

// Success wraps a transcript in a successful Result.
func Success(text string) Result {
	return Result{Outcome: OutcomeSuccess, Text: text}
}

// Unrecognized is the Result for audio the service could not understand.
func Unrecognized() Result {
	return Result{Outcome: OutcomeUnrecognized}
}

// ServiceFailure wraps a remote-service failure.
func ServiceFailure(err error) Result {
	return Result{Outcome: OutcomeServiceError, Detail: err.Error()}
}

// ProcessingFailure wraps a local processing failure.
func ProcessingFailure(err error) Result {
	return Result{Outcome: OutcomeProcessingError, Detail: err.Error()}
}
