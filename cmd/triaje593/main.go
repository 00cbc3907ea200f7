// Command triaje593 is the main entry point for the TrIAje 593 triage server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/pvillacis/triaje593/internal/api"
	"github.com/pvillacis/triaje593/internal/classify"
	"github.com/pvillacis/triaje593/internal/config"
	"github.com/pvillacis/triaje593/internal/health"
	"github.com/pvillacis/triaje593/internal/history"
	historypg "github.com/pvillacis/triaje593/internal/history/postgres"
	"github.com/pvillacis/triaje593/internal/observe"
	"github.com/pvillacis/triaje593/internal/pipeline"
	"github.com/pvillacis/triaje593/internal/resilience"
	"github.com/pvillacis/triaje593/internal/transcript"
	"github.com/pvillacis/triaje593/internal/voice"
	"github.com/pvillacis/triaje593/pkg/recognizer"
	"github.com/pvillacis/triaje593/pkg/recognizer/google"
	recognizermock "github.com/pvillacis/triaje593/pkg/recognizer/mock"
	"github.com/pvillacis/triaje593/pkg/recognizer/whisper"
)

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "triaje593: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "triaje593: %v\n", err)
		}
		return 1
	}

	// The level var lets the config watcher adjust verbosity at runtime.
	levelVar := new(slog.LevelVar)
	levelVar.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)

	slog.Info("triaje593 starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Classification model ──────────────────────────────────────────────────
	// A missing or unreadable model degrades the service instead of killing
	// it: transcription and status stay up, analysis returns 503.
	var classifier *classify.Classifier
	if cfg.Model.ClassifierPath != "" {
		classifier, err = classify.Load(cfg.Model.ClassifierPath, cfg.Model.LabelsPath)
		if err != nil {
			slog.Warn("failed to load classification model; analysis disabled",
				"classifier_path", cfg.Model.ClassifierPath, "err", err)
			classifier = nil
		} else {
			slog.Info("classification model loaded",
				"classes", len(classifier.Classes()), "path", cfg.Model.ClassifierPath)
		}
	}

	orch := pipeline.New(classifier, pipeline.WithMetrics(metrics))

	// ── Speech recognition ────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinRecognizers(reg)

	var (
		provider       recognizer.Provider
		recognizerName string
	)
	if cfg.Voice.Recognizer.Name != "" {
		provider, err = reg.CreateRecognizer(cfg.Voice.Recognizer)
		if err != nil {
			slog.Error("failed to create recognizer", "name", cfg.Voice.Recognizer.Name, "err", err)
			return 1
		}
		recognizerName = cfg.Voice.Recognizer.Name

		if cfg.Voice.Fallback.Name != "" {
			secondary, err := reg.CreateRecognizer(cfg.Voice.Fallback)
			if err != nil {
				slog.Error("failed to create fallback recognizer", "name", cfg.Voice.Fallback.Name, "err", err)
				return 1
			}
			fb := resilience.NewRecognizerFallback(provider, recognizerName, resilience.FallbackConfig{})
			fb.AddFallback(cfg.Voice.Fallback.Name, secondary)
			provider = fb
			slog.Info("recognizer fallback enabled",
				"primary", recognizerName, "fallback", cfg.Voice.Fallback.Name)
		}
	}

	var transcriber *voice.Transcriber
	if provider != nil {
		transcriber, err = voice.New(provider, voiceParams(cfg.Voice),
			voice.WithSpoolDir(cfg.Voice.SpoolDir),
			voice.WithMetrics(metrics),
		)
		if err != nil {
			slog.Error("failed to create transcriber", "err", err)
			return 1
		}
	} else {
		slog.Warn("no recognizer configured; transcription endpoint disabled")
	}

	// ── Consultation history ──────────────────────────────────────────────────
	var (
		store   history.Store
		pgStore *historypg.Store
	)
	if cfg.History.PostgresDSN != "" {
		pgStore, err = historypg.NewStore(ctx, cfg.History.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect to history store", "err", err)
			return 1
		}
		defer pgStore.Close()
		store = pgStore
		slog.Info("history store connected")
	} else {
		slog.Warn("history disabled: no postgres_dsn configured")
	}

	// ── Health checks ─────────────────────────────────────────────────────────
	checkers := []health.Checker{{
		Name: "model",
		Check: func(context.Context) error {
			if !orch.Ready() {
				return errors.New("no classification model loaded")
			}
			return nil
		},
	}}
	if pgStore != nil {
		checkers = append(checkers, health.Checker{Name: "history", Check: pgStore.Ping})
	}

	// ── HTTP surface ──────────────────────────────────────────────────────────
	apiOpts := []api.Option{
		api.WithMetrics(metrics),
		api.WithHealth(health.New(checkers...)),
		api.WithCorrector(transcript.NewCorrector(transcript.DefaultLexicon())),
	}
	if transcriber != nil {
		apiOpts = append(apiOpts, api.WithTranscriber(transcriber, recognizerName))
	}
	if store != nil {
		apiOpts = append(apiOpts, api.WithHistory(store, cfg.History.RecentLimit))
	}
	handler := api.New(orch, apiOpts...)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── Config watcher ────────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		diff := config.Diff(old, new)
		if !diff.Any() {
			return
		}
		if diff.LogLevelChanged {
			levelVar.Set(slogLevel(diff.NewLogLevel))
			slog.Info("log level changed", "level", diff.NewLogLevel)
		}
		if diff.VoiceTuningChanged && transcriber != nil {
			slog.Warn("voice tuning changed; restart to apply")
		}
		if diff.RecentLimitChanged {
			slog.Info("recent limit changed; restart to apply", "limit", diff.NewRecentLimit)
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Serve ─────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening", "addr", srv.Addr, "tls", cfg.Server.TLS != nil)
		var err error
		if cfg.Server.TLS != nil {
			err = srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping")
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// registerBuiltinRecognizers wires the recognition backends that ship with
// the server into reg.
func registerBuiltinRecognizers(reg *config.Registry) {
	reg.RegisterRecognizer("google", func(entry config.ProviderEntry) (recognizer.Provider, error) {
		var opts []google.Option
		if entry.BaseURL != "" {
			opts = append(opts, google.WithBaseURL(entry.BaseURL))
		}
		return google.New(entry.APIKey, opts...)
	})

	reg.RegisterRecognizer("whisper", func(entry config.ProviderEntry) (recognizer.Provider, error) {
		var opts []whisper.Option
		if entry.BaseURL != "" {
			opts = append(opts, whisper.WithBaseURL(entry.BaseURL))
		}
		return whisper.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterRecognizer("mock", func(config.ProviderEntry) (recognizer.Provider, error) {
		return &recognizermock.Provider{Text: "transcripción de prueba"}, nil
	})
}

// voiceParams maps the YAML voice section onto recognition parameters,
// filling defaults for unset knobs.
func voiceParams(vc config.VoiceConfig) voice.Params {
	p := voice.DefaultParams()
	if vc.Language != "" {
		p.Language = vc.Language
	}
	if vc.EnergyThreshold > 0 {
		p.EnergyThreshold = vc.EnergyThreshold
	}
	if vc.DynamicThreshold != nil {
		p.DynamicThreshold = *vc.DynamicThreshold
	}
	if vc.AmbientDurationSeconds > 0 {
		p.AmbientDuration = time.Duration(vc.AmbientDurationSeconds * float64(time.Second))
	}
	if vc.CallTimeoutSeconds > 0 {
		p.CallTimeout = time.Duration(vc.CallTimeoutSeconds * float64(time.Second))
	}
	return p
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
