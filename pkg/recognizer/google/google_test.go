package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pvillacis/triaje593/pkg/recognizer"
)

func testRequest() recognizer.Request {
	return recognizer.Request{
		PCM:        []byte{0x00, 0x01, 0x02, 0x03},
		SampleRate: 16000,
		Language:   "es-ES",
	}
}

func TestRecognize_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/speech:recognize" {
			t.Errorf("path = %q, want /speech:recognize", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		var req recognizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Config.Encoding != "LINEAR16" || req.Config.SampleRateHertz != 16000 {
			t.Errorf("unexpected config: %+v", req.Config)
		}
		if req.Config.LanguageCode != "es-ES" {
			t.Errorf("language = %q, want es-ES", req.Config.LanguageCode)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"alternatives": []map[string]any{{"transcript": "fiebre alta", "confidence": 0.93}}},
				{"alternatives": []map[string]any{{"transcript": "y tos seca", "confidence": 0.88}}},
			},
		})
	}))
	defer srv.Close()

	p, err := New("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := p.Recognize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if want := "fiebre alta y tos seca"; got != want {
		t.Fatalf("transcript = %q, want %q", got, want)
	}
}

func TestRecognize_EmptyResultIsNoSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p, _ := New("test-key", WithBaseURL(srv.URL))
	_, err := p.Recognize(context.Background(), testRequest())
	if !errors.Is(err, recognizer.ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech", err)
	}
}

func TestRecognize_ServerErrorIsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	p, _ := New("test-key", WithBaseURL(srv.URL))
	_, err := p.Recognize(context.Background(), testRequest())

	var se *recognizer.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %T (%v), want *recognizer.ServiceError", err, err)
	}
	if se.Status != http.StatusForbidden {
		t.Fatalf("Status = %d, want 403", se.Status)
	}
	if se.Provider != "google" {
		t.Fatalf("Provider = %q, want google", se.Provider)
	}
}

func TestRecognize_UnreachableIsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	p, _ := New("test-key", WithBaseURL(srv.URL))
	_, err := p.Recognize(context.Background(), testRequest())

	var se *recognizer.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %T (%v), want *recognizer.ServiceError", err, err)
	}
	if se.Status != 0 {
		t.Fatalf("Status = %d, want 0 for unreachable service", se.Status)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
