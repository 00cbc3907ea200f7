// Package mock provides a test double for the recognizer package interfaces.
//
// Use Provider to feed controlled transcripts or errors to the transcription
// pipeline and inspect the requests it issued.
//
// Example:
//
//	p := &mock.Provider{Text: "fiebre alta"}
//	got, err := p.Recognize(ctx, req)
package mock

import (
	"context"
	"sync"

	"github.com/pvillacis/triaje593/pkg/recognizer"
)

// RecognizeCall records a single invocation of Provider.Recognize.
type RecognizeCall struct {
	// Ctx is the context passed to Recognize.
	Ctx context.Context

	// Req is the request passed to Recognize.
	Req recognizer.Request
}

// Provider is a mock implementation of recognizer.Provider.
type Provider struct {
	mu sync.Mutex

	// Text is the transcript returned by Recognize when Err is nil.
	Text string

	// Err, if non-nil, is returned as the error from every Recognize call.
	Err error

	// RecognizeCalls records every call to Recognize in order.
	RecognizeCalls []RecognizeCall
}

// Recognize records the call and returns Text, Err.
func (p *Provider) Recognize(ctx context.Context, req recognizer.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.RecognizeCalls = append(p.RecognizeCalls, RecognizeCall{Ctx: ctx, Req: req})
	if p.Err != nil {
		return "", p.Err
	}
	return p.Text, nil
}

// CallCount returns the number of Recognize calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.RecognizeCalls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.RecognizeCalls = nil
}

// Ensure Provider implements recognizer.Provider at compile time.
var _ recognizer.Provider = (*Provider)(nil)
