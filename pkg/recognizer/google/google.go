// Package google provides a recognizer backed by the Google Speech
// recognition REST API.
//
// Audio is submitted as base64-encoded LINEAR16 PCM in a JSON body to the
// speech:recognize endpoint, authenticated with an API key passed as a query
// parameter. An answer without any result alternative maps to
// [recognizer.ErrNoSpeech]; transport failures and non-2xx answers map to
// [*recognizer.ServiceError].
package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pvillacis/triaje593/pkg/recognizer"
)

// DefaultBaseURL is the production Google Speech REST endpoint.
const DefaultBaseURL = "https://speech.googleapis.com/v1"

// providerName identifies this backend in error values and logs.
const providerName = "google"

// Ensure Provider implements the recognizer.Provider interface.
var _ recognizer.Provider = (*Provider)(nil)

// Option is a functional option for [Provider].
type Option func(*Provider)

// WithBaseURL overrides the default API base URL. Used to point the provider
// at a test server or a regional endpoint.
func WithBaseURL(u string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements recognizer.Provider against the Google Speech REST API.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New constructs a Google Speech provider. The apiKey must not be empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google recognizer: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// recognizeRequest is the JSON body of a speech:recognize call.
type recognizeRequest struct {
	Config recognizeConfig `json:"config"`
	Audio  recognizeAudio  `json:"audio"`
}

type recognizeConfig struct {
	Encoding        string `json:"encoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	LanguageCode    string `json:"languageCode"`
}

type recognizeAudio struct {
	Content string `json:"content"`
}

// recognizeResponse is the subset of the answer this provider consumes.
type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Recognize implements recognizer.Provider.
func (p *Provider) Recognize(ctx context.Context, req recognizer.Request) (string, error) {
	body, err := json.Marshal(recognizeRequest{
		Config: recognizeConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: req.SampleRate,
			LanguageCode:    req.Language,
		},
		Audio: recognizeAudio{
			Content: base64.StdEncoding.EncodeToString(req.PCM),
		},
	})
	if err != nil {
		return "", fmt.Errorf("google recognizer: marshal request: %w", err)
	}

	endpoint := p.baseURL + "/speech:recognize?key=" + url.QueryEscape(p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("google recognizer: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", &recognizer.ServiceError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &recognizer.ServiceError{
			Provider: providerName,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s", strings.TrimSpace(string(detail))),
		}
	}

	var parsed recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &recognizer.ServiceError{Provider: providerName, Status: resp.StatusCode, Err: err}
	}

	transcript := bestTranscript(parsed)
	if transcript == "" {
		return "", recognizer.ErrNoSpeech
	}
	return transcript, nil
}

// bestTranscript joins the first alternative of every result segment. The
// service splits long clips into sequential result segments; their first
// alternatives concatenate into the full utterance.
func bestTranscript(resp recognizeResponse) string {
	var parts []string
	for _, res := range resp.Results {
		if len(res.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(res.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
