package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pvillacis/triaje593/internal/classify"
	"github.com/pvillacis/triaje593/internal/history"
	"github.com/pvillacis/triaje593/internal/observe"
	"github.com/pvillacis/triaje593/internal/pipeline"
	"github.com/pvillacis/triaje593/internal/voice"
)

// maxClipBytes bounds the request body for /api/transcribe. A minute of
// 16 kHz mono PCM is under 2 MB, so 10 MB leaves ample headroom.
const maxClipBytes = 10 << 20

type analyzeRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

type classificationResponse struct {
	Specialty    string                `json:"specialty"`
	Confidence   float64               `json:"confidence"`
	Band         classify.Band         `json:"band"`
	BandLabel    string                `json:"band_label"`
	Distribution map[string]float64    `json:"distribution"`
	Top          []classify.Prediction `json:"top"`
}

type urgencyResponse struct {
	Level   int    `json:"level"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	MaxWait string `json:"max_wait"`
}

type analyzeResponse struct {
	ID             string                 `json:"id,omitempty"`
	Classification classificationResponse `json:"classification"`
	Urgency        urgencyResponse        `json:"urgency"`
	Referral       referralResponse       `json:"referral"`
}

type referralResponse struct {
	Pathway string `json:"pathway"`
	Action  string `json:"action"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
}

type correctionResponse struct {
	Original   string  `json:"original"`
	Corrected  string  `json:"corrected"`
	Confidence float64 `json:"confidence"`
}

type transcribeResponse struct {
	Text        string               `json:"text"`
	Merged      string               `json:"merged"`
	Corrections []correctionResponse `json:"corrections,omitempty"`
}

type statusResponse struct {
	Model      string          `json:"model"`
	Recognizer string          `json:"recognizer"`
	Recent     []history.Entry `json:"recent,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "request body must be JSON with a text field")
		return
	}

	analysis, err := h.orch.Analyze(r.Context(), req.Text)
	switch {
	case errors.Is(err, pipeline.ErrTooBrief):
		writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	case errors.Is(err, pipeline.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", "no classification model is loaded")
		return
	case err != nil:
		observe.Logger(r.Context()).Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}

	resp := analyzeResponse{
		Classification: classificationResponse{
			Specialty:    analysis.Classification.Specialty,
			Confidence:   analysis.Classification.Confidence,
			Band:         classify.BandFor(analysis.Classification.Confidence),
			BandLabel:    classify.BandFor(analysis.Classification.Confidence).Label(),
			Distribution: analysis.Classification.Distribution,
			Top:          analysis.Classification.Top,
		},
		Urgency: urgencyResponse{
			Level:   analysis.Urgency.Number,
			Name:    analysis.Urgency.Name,
			Color:   analysis.Urgency.Color,
			MaxWait: analysis.Urgency.MaxWait,
		},
		Referral: referralResponse{
			Pathway: analysis.Referral.Pathway,
			Action:  analysis.Referral.Action,
			Message: analysis.Referral.Message,
			Icon:    analysis.Referral.Icon,
		},
	}

	if h.store != nil {
		entry := history.Entry{
			Text:       req.Text,
			Specialty:  analysis.Classification.Specialty,
			Confidence: analysis.Classification.Confidence,
			Level:      analysis.Urgency.Number,
			Pathway:    analysis.Referral.Pathway,
		}
		if err := h.store.Save(r.Context(), entry); err != nil {
			// The analysis itself succeeded; a persistence failure must not
			// turn a usable triage result into an error response.
			observe.Logger(r.Context()).Warn("failed to save consultation", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if h.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "recognizer_unavailable", "no speech recognition backend is configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxClipBytes)
	if err := r.ParseMultipartForm(maxClipBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "audio clip exceeds the upload limit")
			return
		}
		writeError(w, http.StatusBadRequest, "validation", "request must be multipart form data with an audio file")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "missing audio file field")
		return
	}
	defer file.Close()

	clip, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "could not read audio file")
		return
	}

	res := h.transcriber.Transcribe(r.Context(), clip, r.FormValue("language"))
	if res.Outcome != voice.OutcomeSuccess {
		switch res.Outcome {
		case voice.OutcomeUnrecognized:
			writeError(w, http.StatusUnprocessableEntity, "unrecognized", "no speech could be understood; please try again")
		case voice.OutcomeServiceError:
			writeError(w, http.StatusBadGateway, "service_error", res.Detail)
		default:
			writeError(w, http.StatusInternalServerError, "processing_error", res.Detail)
		}
		return
	}

	text := res.Text
	var corrections []correctionResponse
	if h.corrector != nil {
		corrected, applied := h.corrector.Correct(text)
		text = corrected
		for _, c := range applied {
			corrections = append(corrections, correctionResponse{
				Original:   c.Original,
				Corrected:  c.Corrected,
				Confidence: c.Confidence,
			})
		}
	}

	writeJSON(w, http.StatusOK, transcribeResponse{
		Text:        text,
		Merged:      pipeline.MergeTranscript(r.FormValue("existing"), text),
		Corrections: corrections,
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Model:      "unavailable",
		Recognizer: "none",
	}
	if h.orch.Ready() {
		resp.Model = "ok"
	}
	if h.transcriber != nil {
		resp.Recognizer = h.recognizerName
	}

	if h.store != nil {
		recent, err := h.store.Recent(r.Context(), h.recentLimit)
		if err != nil {
			observe.Logger(r.Context()).Warn("failed to list recent consultations", "error", err)
		} else {
			resp.Recent = recent
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
