package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mindgarden/backend/internal/analysis"
	"github.com/mindgarden/backend/internal/classify"
	"github.com/mindgarden/backend/internal/config"
	"github.com/mindgarden/backend/internal/db"
	httpapi "github.com/mindgarden/backend/internal/http"
	"github.com/mindgarden/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "mindgarden-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	detector := analysis.NewDetector()

	var sentiment analysis.Provider = analysis.RuleProvider{}
	if cfg.SentimentURL == "" {
		logger.Info().Msg("using rule-based sentiment scorer")
	} else {
		sentiment = analysis.FallbackProvider{
			Primary: analysis.HTTPProvider{BaseURL: cfg.SentimentURL, Timeout: cfg.SentimentTimeout},
			Logger:  logger,
		}
	}

	orchestrator := &service.Orchestrator{
		Store:      store,
		Classifier: classify.Classifier{Sentiment: sentiment, Detector: detector},
		Logger:     logger,
	}

	var responder analysis.Responder = analysis.RuleResponder{Detector: detector}
	if cfg.AssistantBaseURL != "" {
		responder = analysis.FallbackResponder{
			Primary: analysis.OpenAICompatResponder{
				BaseURL:   cfg.AssistantBaseURL,
				Model:     cfg.AssistantModel,
				APIKey:    cfg.AssistantAPIKey,
				MaxTokens: 300,
				Detector:  detector,
			},
			Fallback: analysis.RuleResponder{Detector: detector},
		}
	}

	router := httpapi.Router(cfg, store, orchestrator, responder, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
