package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"home-ai/config"
	"home-ai/internal/application"
	"home-ai/internal/device"
	"home-ai/internal/infra/anthropic"
	"home-ai/internal/infra/gemini"
	"home-ai/internal/infra/openai"
	"home-ai/internal/infra/pushover"
	"home-ai/internal/infra/sqlite"
	"home-ai/internal/server"
	"home-ai/internal/tools"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	registry := device.NewRegistry()
	dispatcher := tools.NewDispatcher(registry, logger)

	provider, err := createProvider(cfg, logger)
	if err != nil {
		logger.Error("configuring model provider", "error", err)
		os.Exit(1)
	}

	orchestrator := application.NewOrchestrator(provider, dispatcher, cfg.Conversation.MaxTurns, logger)

	stt, tts := createSpeech(cfg)

	store, closeStore, err := createStore(cfg, logger)
	if err != nil {
		logger.Error("opening request store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	assistant := application.NewAssistant(stt, tts, orchestrator, store, notifier, logger)

	srv := server.New(cfg.Server.Addr, assistant, registry, dispatcher, store, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("starting home AI server",
		"addr", cfg.Server.Addr,
		"provider", cfg.Provider.LLM,
	)

	if err := srv.Start(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func createProvider(cfg *config.Config, logger *slog.Logger) (application.ModelProvider, error) {
	switch cfg.Provider.LLM {
	case "claude":
		return anthropic.NewClaudeClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model), nil
	case "openai":
		return openai.NewChatClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nil
	case "gemini":
		return gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model), nil
	default:
		return nil, errors.New("provider.llm must be claude, openai, or gemini")
	}
}

// createSpeech wires Whisper transcription and speech synthesis when an
// OpenAI key is present; otherwise audio input is rejected and replies stay
// text-only.
func createSpeech(cfg *config.Config) (application.SpeechToText, application.TextToSpeech) {
	if cfg.OpenAI.APIKey == "" {
		return &application.NoopSTT{}, &application.NoopTTS{}
	}
	return openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language),
		openai.NewSpeechClient(cfg.OpenAI.APIKey, cfg.OpenAI.Voice)
}

func createStore(cfg *config.Config, logger *slog.Logger) (application.RequestStore, func(), error) {
	if cfg.Store.Path == "" {
		logger.Info("request logging disabled: no store path configured")
		return &application.NoopStore{}, func() {}, nil
	}

	db, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	return sqlite.NewStore(db), func() { _ = db.Close() }, nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
