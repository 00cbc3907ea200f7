// Package recognizer defines the Provider interface for speech-recognition
// backends.
//
// A recognizer provider wraps a remote recognition service (e.g., Google
// Speech or an OpenAI Whisper endpoint) behind a uniform request/response
// call: one audio clip in, one transcript out. Providers are constructed once
// at startup and must be safe for concurrent use, although the transcription
// pipeline issues at most one call per clip.
//
// Error taxonomy: [ErrNoSpeech] means the service processed the audio but
// found no utterance (the user should re-dictate); a [*ServiceError] means
// the service was unreachable or rejected the request (transient, safe to
// retry). Any other error is a local processing failure.
package recognizer

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSpeech is returned when the recognition service could not extract any
// utterance from the audio. Recoverable: re-prompt the user.
var ErrNoSpeech = errors.New("recognizer: no speech recognized")

// ServiceError reports that the remote recognition service was unreachable
// or rejected the request. Transient by contract; callers may retry.
type ServiceError struct {
	// Provider is the provider name (e.g., "google").
	Provider string

	// Status is the HTTP status code when the service answered with an
	// error, 0 when it was unreachable.
	Status int

	// Err is the underlying cause.
	Err error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("recognizer %s: service returned status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("recognizer %s: service unreachable: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Request carries one audio clip and its recognition parameters.
type Request struct {
	// PCM is 16-bit signed little-endian mono audio.
	PCM []byte

	// SampleRate is the PCM sample rate in Hz.
	SampleRate int

	// Language is the BCP-47 recognition language tag (e.g., "es-ES").
	Language string
}

// Provider is the abstraction over any speech-recognition backend.
type Provider interface {
	// Recognize transcribes the request's audio. It blocks until the remote
	// service answers or ctx is done. On success the transcript is non-empty;
	// an empty recognition result is reported as [ErrNoSpeech].
	Recognize(ctx context.Context, req Request) (string, error)
}
