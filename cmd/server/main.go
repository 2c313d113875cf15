package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dodobird181/sambot2/internal/api"
	"github.com/dodobird181/sambot2/internal/api/middleware"
	"github.com/dodobird181/sambot2/internal/bot"
	"github.com/dodobird181/sambot2/internal/config"
	"github.com/dodobird181/sambot2/internal/gpt"
	"github.com/dodobird181/sambot2/internal/handlers"
	"github.com/dodobird181/sambot2/internal/knowledge"
	"github.com/dodobird181/sambot2/internal/render"
	"github.com/dodobird181/sambot2/internal/session"
	"github.com/dodobird181/sambot2/internal/store"
)

const ellipsisTick = 500 * time.Millisecond

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Initialize conversation store
	fileStore, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("conversation store init failed")
	}
	logger.Info().Str("dir", cfg.DataDir).Msg("conversation store ready")

	// Initialize Redis (optional, backs rate limiting)
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Load the knowledge base
	base, err := knowledge.LoadBase(cfg.KnowledgeDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("knowledge base load failed")
	}

	// Completion client: scripted in dummy mode, OpenAI otherwise
	var completer gpt.Completer
	var embedder gpt.Embedder
	if cfg.DummyMode {
		completer = gpt.NewScripted(gpt.DefaultScript, 150*time.Millisecond)
		logger.Info().Msg("running in dummy mode with scripted responses")
	} else {
		client := gpt.NewClient(cfg.OpenAIKey)
		completer = client
		embedder = client
	}

	composer := bot.NewComposer(completer, base, cfg.ComposerModel, cfg.ComposeTimeout, logger)
	if cfg.EmbeddingsFile != "" && embedder != nil {
		embeddings, err := knowledge.LoadEmbeddings(cfg.EmbeddingsFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("embeddings load failed")
		}
		composer = composer.WithEmbeddings(embeddings, embedder, 5)
		logger.Info().Int("count", len(embeddings)).Msg("embeddings retrieval enabled")
	}

	chatbot := bot.New(completer, composer, fileStore, cfg.ChatModel, ellipsisTick, logger)

	renderer, err := render.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("template parse failed")
	}

	sessions := session.NewManager(cfg.SecretKey, !cfg.IsDevelopment())
	pills := bot.NewPills(rand.NewSource(time.Now().UnixNano()))

	var redisClient *redis.Client
	if redisStore != nil {
		redisClient = redisStore.Client()
	}
	limiter := middleware.NewRateLimiter(redisClient, logger, cfg.RateLimitWhitelist)

	h := handlers.NewHandler(fileStore, redisStore, chatbot, pills, renderer, sessions, limiter, logger)

	// Create router
	router := api.NewRouter(logger, h, limiter)

	// Create server. The write timeout stays generous because replies
	// stream over long-lived connections.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting sambot server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
