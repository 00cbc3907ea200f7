// Package api exposes the triage service over HTTP.
//
// The router serves the JSON consultation API under /api, the liveness and
// readiness probes from the health package, and the Prometheus scrape
// endpoint. All /api routes run through the observe middleware so every
// request carries trace context and a latency observation.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pvillacis/triaje593/internal/health"
	"github.com/pvillacis/triaje593/internal/history"
	"github.com/pvillacis/triaje593/internal/observe"
	"github.com/pvillacis/triaje593/internal/pipeline"
	"github.com/pvillacis/triaje593/internal/transcript"
	"github.com/pvillacis/triaje593/internal/voice"
)

// Transcriber converts a recorded clip into a tagged transcription result.
// *voice.Transcriber satisfies it; tests substitute fakes.
type Transcriber interface {
	Transcribe(ctx context.Context, clip []byte, language string) voice.Result
}

// Handler holds the wired service dependencies behind the HTTP surface.
// Optional dependencies may be nil; the affected endpoints then report the
// capability as unavailable instead of failing.
type Handler struct {
	orch        *pipeline.Orchestrator
	transcriber Transcriber
	corrector   *transcript.Corrector
	store       history.Store
	health      *health.Handler
	metrics     *observe.Metrics

	recognizerName string
	recentLimit    int
}

// Option configures a [Handler].
type Option func(*Handler)

// WithTranscriber enables the /api/transcribe endpoint. name identifies the
// configured recognition backend on /api/status.
func WithTranscriber(t Transcriber, name string) Option {
	return func(h *Handler) {
		h.transcriber = t
		h.recognizerName = name
	}
}

// WithCorrector applies lexicon-based transcript correction to successful
// transcriptions before they are returned.
func WithCorrector(c *transcript.Corrector) Option {
	return func(h *Handler) {
		h.corrector = c
	}
}

// WithHistory persists completed analyses and serves the recent-consultation
// listing on /api/status, capped at limit entries.
func WithHistory(store history.Store, limit int) Option {
	return func(h *Handler) {
		h.store = store
		if limit > 0 {
			h.recentLimit = limit
		}
	}
}

// WithHealth mounts the given health handler's probes on the router.
func WithHealth(hh *health.Handler) Option {
	return func(h *Handler) {
		h.health = hh
	}
}

// WithMetrics attaches request metrics and enables the observe middleware.
func WithMetrics(m *observe.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// New builds a Handler around the analysis orchestrator.
func New(orch *pipeline.Orchestrator, opts ...Option) *Handler {
	h := &Handler{
		orch:        orch,
		recentLimit: history.DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.health == nil {
		h.health = health.New()
	}
	return h
}

// Router assembles the full HTTP route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if h.metrics != nil {
			r.Use(observe.Middleware(h.metrics))
		}
		r.Post("/analyze", h.handleAnalyze)
		r.Post("/transcribe", h.handleTranscribe)
		r.Get("/status", h.handleStatus)
	})

	return r
}
