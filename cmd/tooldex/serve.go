package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tooldex/tooldex"
	"github.com/tooldex/tooldex/infrastructure/api"
	"github.com/tooldex/tooldex/internal/config"
	"github.com/tooldex/tooldex/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                    Server host to bind to (default: 0.0.0.0)
  PORT                    Server port to listen on (default: 3000)
  DATA_DIR                Data directory (default: ~/.tooldex)
  DB_URL                  Database URL (sqlite:///path or postgres://...)
  USE_DATABASE            Route persistence through the database (default: false)
  LOG_LEVEL               Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT              Log format: pretty, json (default: pretty)

  EMBEDDING_*             Embedding service configuration
    BASE_URL              Base URL (e.g., https://api.openai.com/v1)
    MODEL                 Model identifier (default: text-embedding-3-small)
    API_KEY               API key for authentication
    TIMEOUT_SECONDS       Request timeout in seconds
    MAX_RETRIES           Retry attempts
    MAX_CHARS             Input truncation length (default: 8000)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = cfg.WithAddr(host, port)

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	logger := log.NewLogger(cfg)
	slogger := logger.Slog()

	slogger.Info("starting tooldex",
		"version", version,
		"addr", cfg.Addr(),
		"data_dir", cfg.DataDir(),
		"use_database", cfg.UseDatabase(),
	)

	client, err := tooldex.New(buildClientOptions(cfg, slogger)...)
	if err != nil {
		return fmt.Errorf("create tooldex client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close tooldex client", "error", err)
		}
	}()

	apiServer := api.NewAPIServer(client)
	apiServer.MountRoutes()
	router := apiServer.Router()

	router.Get("/health", healthHandler)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"name":"tooldex","version":"%s"}`, version)
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	server := api.NewServer(cfg.Addr(), slogger)
	server.Router().Mount("/", router)

	go func() {
		<-sigChan
		slogger.Info("shutting down server")
		shutdownServer(&server, slogger, 15*time.Second)
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

type shutdowner interface {
	Shutdown(context.Context) error
}

// shutdownServer stops the HTTP server with a bounded drain window. The
// context is created fresh here: an already-canceled context would abort
// the drain instead of waiting for in-flight requests.
func shutdownServer(server shutdowner, logger *slog.Logger, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
