package voice

import (
	"context"
	"errors"
	"os"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/pvillacis/triaje593/internal/observe"
	"github.com/pvillacis/triaje593/pkg/recognizer"
	"github.com/pvillacis/triaje593/pkg/recognizer/mock"
)

const testRate = 16000

// speechClip builds a WAV clip with a quiet 0.5s ambient lead-in followed by
// one second of loud speech-like audio.
func speechClip(t *testing.T) []byte {
	t.Helper()
	samples := make([]int16, 0, testRate+testRate/2)
	samples = append(samples, squareWave(testRate/2, 50)...)
	samples = append(samples, squareWave(testRate, 8000)...)
	return encodeWAV(t, testRate, 1, samples)
}

// silentClip builds a WAV clip that never rises above the noise floor.
func silentClip(t *testing.T) []byte {
	t.Helper()
	return encodeWAV(t, testRate, 1, squareWave(testRate+testRate/2, 40))
}

func newTestTranscriber(t *testing.T, provider recognizer.Provider) (*Transcriber, string) {
	t.Helper()
	spool := t.TempDir()
	tr, err := New(provider, DefaultParams(), WithSpoolDir(spool))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr, spool
}

// assertSpoolEmpty verifies no temporary clip survived the call.
func assertSpoolEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read spool dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("spool dir not empty after transcription: %d files left", len(entries))
	}
}

func TestTranscribe_Success(t *testing.T) {
	provider := &mock.Provider{Text: "me duele el pecho"}
	tr, spool := newTestTranscriber(t, provider)

	res := tr.Transcribe(context.Background(), speechClip(t), "")
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s, want success (detail: %s)", res.Outcome, res.Detail)
	}
	if res.Text != "me duele el pecho" {
		t.Errorf("text = %q, want the provider transcript", res.Text)
	}
	if provider.CallCount() != 1 {
		t.Fatalf("provider called %d times, want 1", provider.CallCount())
	}

	req := provider.RecognizeCalls[0].Req
	if req.SampleRate != testRate {
		t.Errorf("request sample rate = %d, want %d", req.SampleRate, testRate)
	}
	if req.Language != "es-ES" {
		t.Errorf("request language = %q, want default es-ES", req.Language)
	}
	// The half-second ambient window must be consumed, not recognized.
	if want := testRate * 2; len(req.PCM) != want {
		t.Errorf("request PCM = %d bytes, want %d (speech only)", len(req.PCM), want)
	}
	assertSpoolEmpty(t, spool)
}

func TestTranscribe_LanguageOverride(t *testing.T) {
	provider := &mock.Provider{Text: "hola"}
	tr, _ := newTestTranscriber(t, provider)

	tr.Transcribe(context.Background(), speechClip(t), "es-EC")
	if got := provider.RecognizeCalls[0].Req.Language; got != "es-EC" {
		t.Fatalf("request language = %q, want es-EC", got)
	}
}

func TestTranscribe_NoSpeechFromService(t *testing.T) {
	provider := &mock.Provider{Err: recognizer.ErrNoSpeech}
	tr, spool := newTestTranscriber(t, provider)

	res := tr.Transcribe(context.Background(), speechClip(t), "")
	if res.Outcome != OutcomeUnrecognized {
		t.Fatalf("outcome = %s, want unrecognized", res.Outcome)
	}
	if res.Text != "" {
		t.Errorf("text = %q, want empty", res.Text)
	}
	assertSpoolEmpty(t, spool)
}

func TestTranscribe_ServiceError(t *testing.T) {
	provider := &mock.Provider{Err: &recognizer.ServiceError{
		Provider: "google",
		Status:   503,
		Err:      errors.New("upstream unavailable"),
	}}
	tr, spool := newTestTranscriber(t, provider)

	res := tr.Transcribe(context.Background(), speechClip(t), "")
	if res.Outcome != OutcomeServiceError {
		t.Fatalf("outcome = %s, want service_error", res.Outcome)
	}
	if res.Detail == "" {
		t.Error("service error result carries no detail")
	}
	assertSpoolEmpty(t, spool)
}

func TestTranscribe_ServiceErrorCountsProviderFailure(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	provider := &mock.Provider{Err: &recognizer.ServiceError{
		Provider: "google",
		Status:   503,
		Err:      errors.New("upstream unavailable"),
	}}
	tr, err := New(provider, DefaultParams(), WithSpoolDir(t.TempDir()), WithMetrics(metrics))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := tr.Transcribe(context.Background(), speechClip(t), "")
	if res.Outcome != OutcomeServiceError {
		t.Fatalf("outcome = %s, want service_error", res.Outcome)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != "triaje.recognizer.errors" {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatal("recognizer errors metric is not a sum")
			}
			for _, dp := range sum.DataPoints {
				attrs := map[string]string{}
				for _, kv := range dp.Attributes.ToSlice() {
					attrs[string(kv.Key)] = kv.Value.AsString()
				}
				if attrs["provider"] != "google" {
					t.Errorf("provider attribute = %q, want google", attrs["provider"])
				}
				if attrs["kind"] != "rejected" {
					t.Errorf("kind attribute = %q, want rejected", attrs["kind"])
				}
				if dp.Value != 1 {
					t.Errorf("counter value = %d, want 1", dp.Value)
				}
				return
			}
			t.Fatal("recognizer errors metric has no data points")
		}
	}
	t.Fatal("recognizer errors metric not found")
}

func TestTranscribe_UnexpectedProviderError(t *testing.T) {
	provider := &mock.Provider{Err: errors.New("codec exploded")}
	tr, spool := newTestTranscriber(t, provider)

	res := tr.Transcribe(context.Background(), speechClip(t), "")
	if res.Outcome != OutcomeProcessingError {
		t.Fatalf("outcome = %s, want processing_error", res.Outcome)
	}
	assertSpoolEmpty(t, spool)
}

func TestTranscribe_MalformedClip(t *testing.T) {
	provider := &mock.Provider{Text: "should not be reached"}
	tr, spool := newTestTranscriber(t, provider)

	res := tr.Transcribe(context.Background(), []byte("this is not audio"), "")
	if res.Outcome != OutcomeProcessingError {
		t.Fatalf("outcome = %s, want processing_error", res.Outcome)
	}
	if provider.CallCount() != 0 {
		t.Errorf("provider called %d times for a malformed clip, want 0", provider.CallCount())
	}
	assertSpoolEmpty(t, spool)
}

func TestTranscribe_EmptyClip(t *testing.T) {
	provider := &mock.Provider{}
	tr, spool := newTestTranscriber(t, provider)

	res := tr.Transcribe(context.Background(), nil, "")
	if res.Outcome != OutcomeProcessingError {
		t.Fatalf("outcome = %s, want processing_error", res.Outcome)
	}
	assertSpoolEmpty(t, spool)
}

func TestTranscribe_SilentClipSkipsService(t *testing.T) {
	provider := &mock.Provider{Text: "should not be reached"}
	tr, spool := newTestTranscriber(t, provider)

	res := tr.Transcribe(context.Background(), silentClip(t), "")
	if res.Outcome != OutcomeUnrecognized {
		t.Fatalf("outcome = %s, want unrecognized", res.Outcome)
	}
	if provider.CallCount() != 0 {
		t.Errorf("provider called %d times for silent audio, want 0", provider.CallCount())
	}
	assertSpoolEmpty(t, spool)
}

func TestTranscribe_DynamicThresholdRaisesFloor(t *testing.T) {
	// A noisy ambient window (RMS 3000) raises the effective threshold to
	// 4500, so speech at 4200 that would pass the static 4000 floor is
	// treated as noise.
	samples := make([]int16, 0, testRate+testRate/2)
	samples = append(samples, squareWave(testRate/2, 3000)...)
	samples = append(samples, squareWave(testRate, 4200)...)
	clip := encodeWAV(t, testRate, 1, samples)

	provider := &mock.Provider{Text: "should not be reached"}
	tr, _ := newTestTranscriber(t, provider)

	res := tr.Transcribe(context.Background(), clip, "")
	if res.Outcome != OutcomeUnrecognized {
		t.Fatalf("outcome = %s, want unrecognized", res.Outcome)
	}
	if provider.CallCount() != 0 {
		t.Errorf("provider called %d times, want 0", provider.CallCount())
	}
}

func TestTranscribe_StereoClipIsDownmixed(t *testing.T) {
	mono := make([]int16, 0, testRate+testRate/2)
	mono = append(mono, squareWave(testRate/2, 50)...)
	mono = append(mono, squareWave(testRate, 8000)...)
	stereo := make([]int16, 0, len(mono)*2)
	for _, s := range mono {
		stereo = append(stereo, s, s)
	}

	provider := &mock.Provider{Text: "tos con flema"}
	tr, _ := newTestTranscriber(t, provider)

	res := tr.Transcribe(context.Background(), encodeWAV(t, testRate, 2, stereo), "")
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s, want success (detail: %s)", res.Outcome, res.Detail)
	}
	if want := testRate * 2; len(provider.RecognizeCalls[0].Req.PCM) != want {
		t.Errorf("request PCM = %d bytes, want %d mono bytes", len(provider.RecognizeCalls[0].Req.PCM), want)
	}
}

func TestNew_NilProvider(t *testing.T) {
	if _, err := New(nil, DefaultParams()); err == nil {
		t.Fatal("New(nil, ...) succeeded, want error")
	}
}
