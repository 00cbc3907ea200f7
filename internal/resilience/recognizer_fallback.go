package resilience

import (
	"context"
	"errors"

	"github.com/pvillacis/triaje593/pkg/recognizer"
)

// RecognizerFallback implements [recognizer.Provider] with automatic failover
// across multiple recognition backends. Each backend has its own circuit
// breaker.
type RecognizerFallback struct {
	group *FallbackGroup[recognizer.Provider]
}

// Compile-time interface assertion.
var _ recognizer.Provider = (*RecognizerFallback)(nil)

// NewRecognizerFallback creates a [RecognizerFallback] with primary as the
// preferred backend.
func NewRecognizerFallback(primary recognizer.Provider, primaryName string, cfg FallbackConfig) *RecognizerFallback {
	return &RecognizerFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional recognition provider as a fallback.
func (f *RecognizerFallback) AddFallback(name string, provider recognizer.Provider) {
	f.group.AddFallback(name, provider)
}

// Recognize transcribes the clip against the first healthy backend.
//
// [recognizer.ErrNoSpeech] is a definitive answer, not a backend failure: it
// neither trips the circuit breaker nor triggers failover, since another
// backend would only re-hear the same silence.
func (f *RecognizerFallback) Recognize(ctx context.Context, req recognizer.Request) (string, error) {
	var noSpeech bool
	text, err := ExecuteWithResult(f.group, func(p recognizer.Provider) (string, error) {
		t, rErr := p.Recognize(ctx, req)
		if errors.Is(rErr, recognizer.ErrNoSpeech) {
			noSpeech = true
			return "", nil
		}
		return t, rErr
	})
	if noSpeech {
		return "", recognizer.ErrNoSpeech
	}
	return text, err
}
