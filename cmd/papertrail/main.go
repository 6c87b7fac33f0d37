// Command papertrail runs the streaming-claim pipeline's HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/NefariousNiru/papertrail-go/pkg/api"
	"github.com/NefariousNiru/papertrail-go/pkg/config"
	"github.com/NefariousNiru/papertrail-go/pkg/kvstore"
	"github.com/NefariousNiru/papertrail-go/pkg/llm"
	"github.com/NefariousNiru/papertrail-go/pkg/metrics"
	"github.com/NefariousNiru/papertrail-go/pkg/repository"
	"github.com/NefariousNiru/papertrail-go/pkg/services"
	"github.com/NefariousNiru/papertrail-go/pkg/stream"
	"github.com/NefariousNiru/papertrail-go/pkg/verify"
	"github.com/NefariousNiru/papertrail-go/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := kvstore.NewFromURL(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	jobs := repository.NewJobRepository(store, cfg.PersistenceTTL, log)
	buffer := repository.NewClaimBufferRepository(store, cfg.PersistenceTTL, log)
	verifications := repository.NewVerificationRepository(store, cfg.PersistenceTTL)
	blobs := repository.NewBlobRepository(store, cfg.PersistenceTTL)

	llmClient := llm.New(cfg.AnthropicAPIURL, cfg.AnthropicModel, cfg.AnthropicVersion)

	orchestrator := stream.New(jobs, buffer, verifications, blobs, llmClient, cfg.ExtractConcurrency, log)
	pipeline := verify.New(llmClient, verify.NewHashEmbedder())
	paper := services.New(jobs, buffer, verifications, blobs, orchestrator, pipeline, cfg.MaxFileBytes())

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	server := api.NewServer(cfg, paper, llmClient)

	addr := ":" + getEnv("HTTP_PORT", "8080")
	log.Info("starting server", "version", version.Full(), "addr", addr, "app_env", cfg.AppEnv)

	go func() {
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
