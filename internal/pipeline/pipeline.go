// Package pipeline orchestrates a full consultation analysis: free-text
// symptom description in, specialty classification, urgency level, and
// referral plan out.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pvillacis/triaje593/internal/classify"
	"github.com/pvillacis/triaje593/internal/normalize"
	"github.com/pvillacis/triaje593/internal/observe"
	"github.com/pvillacis/triaje593/internal/refer"
	"github.com/pvillacis/triaje593/internal/triage"
)

// minInputRunes is the shortest symptom description worth analyzing. Anything
// briefer cannot carry enough signal for a meaningful classification.
const minInputRunes = 10

var (
	// ErrTooBrief is returned when the trimmed input is shorter than
	// [minInputRunes]. Nothing downstream runs.
	ErrTooBrief = errors.New("pipeline: symptom description too brief")

	// ErrModelUnavailable is returned when no classification model is
	// loaded. The service stays up in degraded mode; only analysis is
	// refused.
	ErrModelUnavailable = errors.New("pipeline: classification model unavailable")
)

// Analysis is the complete outcome of one consultation.
type Analysis struct {
	// Classification carries the predicted specialty, its confidence, the
	// full probability distribution, and the leading candidates.
	Classification classify.Result

	// Urgency is the triage level assigned from the raw text.
	Urgency triage.Level

	// Referral is the routing plan derived from urgency and specialty.
	Referral refer.Plan
}

// Option is a functional option for configuring an [Orchestrator].
type Option func(*Orchestrator)

// WithMetrics attaches metric instruments to the orchestrator. When nil (the
// default), no metrics are recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// Orchestrator wires the analysis stages together. A nil classifier is
// allowed: the orchestrator then refuses analyses with [ErrModelUnavailable]
// so the surrounding service can keep serving its other endpoints.
//
// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	classifier *classify.Classifier
	metrics    *observe.Metrics
}

// New creates an [Orchestrator]. classifier may be nil when no model could
// be loaded.
func New(classifier *classify.Classifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{classifier: classifier}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ready reports whether a classification model is loaded.
func (o *Orchestrator) Ready() bool {
	return o.classifier != nil
}

// Analyze runs the full analysis over one symptom description.
//
// The urgency rules read the raw text, keeping duration phrases and
// punctuation that normalization reshapes; classification reads the
// normalized form. Both see the same consultation.
func (o *Orchestrator) Analyze(ctx context.Context, raw string) (Analysis, error) {
	start := time.Now()
	analysis, err := o.analyze(ctx, raw)
	if o.metrics != nil {
		o.metrics.AnalyzeDuration.Record(ctx, time.Since(start).Seconds())
		o.metrics.RecordAnalysis(ctx, analyzeStatus(err))
	}
	return analysis, err
}

func (o *Orchestrator) analyze(ctx context.Context, raw string) (Analysis, error) {
	trimmed := strings.TrimSpace(raw)
	if utf8.RuneCountInString(trimmed) < minInputRunes {
		return Analysis{}, ErrTooBrief
	}
	if o.classifier == nil {
		return Analysis{}, ErrModelUnavailable
	}

	ctx, span := observe.StartSpan(ctx, "pipeline.Analyze")
	defer span.End()

	classifyStart := time.Now()
	result, err := o.classifier.Classify(normalize.Normalize(trimmed))
	if o.metrics != nil {
		o.metrics.ClassifyDuration.Record(ctx, time.Since(classifyStart).Seconds())
	}
	if err != nil {
		return Analysis{}, err
	}

	level := triage.Score(trimmed)

	return Analysis{
		Classification: result,
		Urgency:        level,
		Referral:       refer.Route(level, result.Specialty),
	}, nil
}

// analyzeStatus maps an analysis error to the metric status attribute.
func analyzeStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTooBrief):
		return "too_brief"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	default:
		return "error"
	}
}

// MergeTranscript appends a newly dictated fragment to the existing symptom
// text. A blank existing text is replaced outright; otherwise the fragment is
// appended after a single space.
func MergeTranscript(existing, incoming string) string {
	if strings.TrimSpace(existing) == "" {
		return incoming
	}
	return existing + " " + incoming
}
