package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidRecognizerNames lists the recognizer backends shipped with the server.
// Used by [Validate] to warn about unrecognised backend names.
var ValidRecognizerNames = []string{"google", "whisper", "mock"}

// maxAmbientSeconds bounds the calibration window; anything longer eats the
// start of the dictation itself.
const maxAmbientSeconds = 5

// defaultListenAddr is used when server.listen_addr is not set.
const defaultListenAddr = ":8080"

// Load reads the YAML configuration file at path and returns a validated
// [Config]. References of the form ${VAR} are expanded from the environment
// before parsing, so secrets such as API keys can stay out of the file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}

	cfg, err := LoadFromReader(strings.NewReader(os.ExpandEnv(string(raw))))
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = defaultListenAddr
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Model artifacts come as a pair.
	if (cfg.Model.ClassifierPath == "") != (cfg.Model.LabelsPath == "") {
		errs = append(errs, errors.New("model.classifier_path and model.labels_path must be set together"))
	}
	if cfg.Model.ClassifierPath == "" {
		slog.Warn("no classification model configured; analysis requests will be refused")
	}

	// Voice
	if cfg.Voice.EnergyThreshold < 0 {
		errs = append(errs, fmt.Errorf("voice.energy_threshold %.1f must not be negative", cfg.Voice.EnergyThreshold))
	}
	if cfg.Voice.AmbientDurationSeconds < 0 || cfg.Voice.AmbientDurationSeconds > maxAmbientSeconds {
		errs = append(errs, fmt.Errorf("voice.ambient_duration_seconds %.1f is out of range [0, %d]", cfg.Voice.AmbientDurationSeconds, maxAmbientSeconds))
	}
	if cfg.Voice.CallTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("voice.call_timeout_seconds %.1f must not be negative", cfg.Voice.CallTimeoutSeconds))
	}
	validateRecognizerName("voice.recognizer", cfg.Voice.Recognizer.Name)
	validateRecognizerName("voice.fallback", cfg.Voice.Fallback.Name)
	if cfg.Voice.Fallback.Name != "" && cfg.Voice.Recognizer.Name == "" {
		errs = append(errs, errors.New("voice.fallback requires voice.recognizer to be configured"))
	}
	if cfg.Voice.Recognizer.Name == "" {
		slog.Warn("no recognizer configured; dictation will not be available")
	}

	// History
	if cfg.History.PostgresDSN == "" {
		slog.Warn("history.postgres_dsn is empty; consultations will not be persisted")
	}
	if cfg.History.RecentLimit < 0 {
		errs = append(errs, fmt.Errorf("history.recent_limit %d must not be negative", cfg.History.RecentLimit))
	}

	return errors.Join(errs...)
}

// validateRecognizerName logs a warning if name is non-empty and not one of
// the shipped backends.
func validateRecognizerName(field, name string) {
	if name == "" || slices.Contains(ValidRecognizerNames, name) {
		return
	}
	slog.Warn("unknown recognizer name — may be a typo",
		"field", field,
		"name", name,
		"known", ValidRecognizerNames,
	)
}
