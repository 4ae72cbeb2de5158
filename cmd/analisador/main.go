package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contracheques/internal/amqp"
	"contracheques/internal/config"
	apphttp "contracheques/internal/http"
	"contracheques/internal/rubricas"
	"contracheques/internal/services"
	"contracheques/internal/session"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Rubric vocabulary; a missing file disables matching but keeps the
	// rest of the pipeline usable.
	vocab, err := rubricas.Load(cfg.VocabularyPath)
	if err != nil {
		logger.Error("Failed to load vocabulary", "error", err, "path", cfg.VocabularyPath)
		os.Exit(1)
	}
	logger.Info("Vocabulary loaded", "path", cfg.VocabularyPath, "entries", len(vocab))

	// AMQP audit events are optional.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	sessions, closeSessions, err := session.NewStore(session.Options{
		Backend:      cfg.SessionBackend,
		TTL:          cfg.SessionTTL,
		MaxSessions:  cfg.MaxSessions,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize session store", "error", err, "backend", cfg.SessionBackend)
		os.Exit(1)
	}
	defer closeSessions()

	svc := services.NewAnalysisService(vocab, amqpClient)
	defer svc.Close()

	srv := apphttp.NewServer(":"+cfg.Port, svc, sessions, cfg.MatchThreshold, cfg.MaxUploadBytes)

	// Configure server timeouts and limits
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting analisador server",
		"port", cfg.Port,
		"session_backend", cfg.SessionBackend,
		"threshold", cfg.MatchThreshold)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
