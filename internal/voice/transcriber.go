// Package voice converts captured audio clips into text through an external
// speech-recognition provider.
//
// A transcription attempt spools the clip to an exclusively-owned temporary
// file, decodes it, calibrates the energy threshold against the leading
// ambient-noise window, and issues exactly one bounded recognition call. The
// temporary file is removed on every exit path; removal failures are logged
// and swallowed, never surfaced as pipeline errors.
package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pvillacis/triaje593/internal/observe"
	"github.com/pvillacis/triaje593/pkg/recognizer"
)

// dynamicFactor scales the measured ambient RMS into the effective energy
// threshold when dynamic thresholding is enabled.
const dynamicFactor = 1.5

// energyWindow is the slice length used when scanning the clip for speech
// energy.
const energyWindow = 100 * time.Millisecond

// Params holds the externally configurable recognition parameters.
type Params struct {
	// Language is the default BCP-47 recognition language tag.
	Language string

	// EnergyThreshold is the minimum RMS amplitude (raw 16-bit sample
	// units) a clip must reach to be considered speech.
	EnergyThreshold float64

	// DynamicThreshold raises the effective threshold above the measured
	// ambient noise floor when enabled.
	DynamicThreshold bool

	// AmbientDuration is the leading portion of the clip used for noise
	// calibration. That portion is consumed by calibration and excluded
	// from recognition.
	AmbientDuration time.Duration

	// CallTimeout bounds the external recognition call.
	CallTimeout time.Duration
}

// DefaultParams returns the stock recognition parameters.
func DefaultParams() Params {
	return Params{
		Language:         "es-ES",
		EnergyThreshold:  4000,
		DynamicThreshold: true,
		AmbientDuration:  500 * time.Millisecond,
		CallTimeout:      30 * time.Second,
	}
}

// Option is a functional option for [Transcriber].
type Option func(*Transcriber)

// WithSpoolDir sets the directory for temporary clip files. Defaults to the
// system temp directory.
func WithSpoolDir(dir string) Option {
	return func(t *Transcriber) {
		t.spoolDir = dir
	}
}

// WithMetrics attaches pipeline metrics. When nil, instrumentation is
// skipped.
func WithMetrics(m *observe.Metrics) Option {
	return func(t *Transcriber) {
		t.metrics = m
	}
}

// Transcriber performs single-shot transcriptions against a recognizer
// provider. It is read-only after construction and safe for concurrent use,
// though callers must not pipeline two attempts over the same clip.
type Transcriber struct {
	provider recognizer.Provider
	params   Params
	spoolDir string
	metrics  *observe.Metrics
}

// New creates a Transcriber. The provider must not be nil.
func New(provider recognizer.Provider, params Params, opts ...Option) (*Transcriber, error) {
	if provider == nil {
		return nil, errors.New("voice: provider must not be nil")
	}
	t := &Transcriber{provider: provider, params: params}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Transcribe converts one WAV-encoded clip into text. language overrides the
// configured default when non-empty. The returned Result is always one of
// the four tagged outcomes; Transcribe itself never fails.
func (t *Transcriber) Transcribe(ctx context.Context, clip []byte, language string) Result {
	start := time.Now()
	res := t.transcribe(ctx, clip, language)
	if t.metrics != nil {
		t.metrics.TranscribeDuration.Record(ctx, time.Since(start).Seconds())
		t.metrics.RecordTranscription(ctx, res.Outcome.String())
	}
	return res
}

func (t *Transcriber) transcribe(ctx context.Context, clip []byte, language string) Result {
	if language == "" {
		language = t.params.Language
	}
	if len(clip) == 0 {
		return ProcessingFailure(errors.New("voice: empty audio clip"))
	}

	// Spool the clip to an exclusively-owned temporary file. The file lives
	// only for this call; the deferred removal covers every exit path.
	spool, err := os.CreateTemp(t.spoolDir, "clip-*.wav")
	if err != nil {
		return ProcessingFailure(fmt.Errorf("voice: create spool file: %w", err))
	}
	spoolPath := spool.Name()
	defer func() {
		if err := os.Remove(spoolPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove spooled clip", "path", spoolPath, "err", err)
		}
	}()

	if _, err := spool.Write(clip); err != nil {
		spool.Close()
		return ProcessingFailure(fmt.Errorf("voice: write spool file: %w", err))
	}
	if err := spool.Close(); err != nil {
		return ProcessingFailure(fmt.Errorf("voice: close spool file: %w", err))
	}

	data, err := os.ReadFile(spoolPath)
	if err != nil {
		return ProcessingFailure(fmt.Errorf("voice: read spool file: %w", err))
	}

	wav, err := decodeWAV(data)
	if err != nil {
		return ProcessingFailure(err)
	}
	pcm := downmixMono(wav.pcm, wav.channels)

	// Calibrate against the leading ambient window; that window is consumed
	// and excluded from recognition.
	ambientBytes := 2 * int(float64(wav.sampleRate)*t.params.AmbientDuration.Seconds())
	if ambientBytes > len(pcm) {
		ambientBytes = len(pcm)
	}
	threshold := t.params.EnergyThreshold
	if t.params.DynamicThreshold {
		if calibrated := rmsEnergy(pcm[:ambientBytes]) * dynamicFactor; calibrated > threshold {
			threshold = calibrated
		}
	}

	speech := pcm[ambientBytes:]
	if len(speech) == 0 {
		return Unrecognized()
	}
	window := int(float64(wav.sampleRate) * energyWindow.Seconds())
	if peakWindowEnergy(speech, window) < threshold {
		// Nothing in the clip rises above the noise floor; skip the remote
		// call entirely.
		return Unrecognized()
	}

	callCtx := ctx
	if t.params.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, t.params.CallTimeout)
		defer cancel()
	}

	text, err := t.provider.Recognize(callCtx, recognizer.Request{
		PCM:        speech,
		SampleRate: wav.sampleRate,
		Language:   language,
	})

	var svcErr *recognizer.ServiceError
	switch {
	case err == nil:
		return Success(text)
	case errors.Is(err, recognizer.ErrNoSpeech):
		return Unrecognized()
	case errors.As(err, &svcErr):
		if t.metrics != nil {
			kind := "unreachable"
			if svcErr.Status != 0 {
				kind = "rejected"
			}
			t.metrics.RecordRecognizerError(ctx, svcErr.Provider, kind)
		}
		return ServiceFailure(err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		if t.metrics != nil {
			t.metrics.RecordRecognizerError(ctx, "", "timeout")
		}
		return ServiceFailure(err)
	default:
		return ProcessingFailure(err)
	}
}
