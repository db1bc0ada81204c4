package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/agent"
	"github.com/UnknownOlympus/asclepius/internal/config"
	"github.com/UnknownOlympus/asclepius/internal/metrics"
	"github.com/UnknownOlympus/asclepius/internal/provider"
	"github.com/UnknownOlympus/asclepius/internal/repository"
	"github.com/UnknownOlympus/asclepius/internal/service"
	"github.com/UnknownOlympus/asclepius/internal/tool"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/genai"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// Constants for the inbound surfaces.
const (
	modeMCP  = "mcp"
	modeChat = "chat"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	// Stdout belongs to the MCP transport and the chat answers, so logs go to stderr.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Build the Maps provider once. When it cannot be built the finder keeps
	// running and answers every lookup with the "not initialized" message.
	var mapsProvider provider.Provider
	googleProvider, err := provider.NewProvider(provider.ProviderConfig{
		APIKey:  cfg.Maps.APIKey,
		BaseURL: cfg.Maps.BaseURL,
		Logger:  logger,
		Metrics: appMetrics,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize Google Maps client", "error", err)
	} else {
		mapsProvider = googleProvider
		logger.InfoContext(ctx, "Google Maps client initialized")
	}

	finder := service.NewPlaceFinder(logger, mapsProvider, appMetrics)
	pharmacyTool := tool.New(finder, logger)

	// Initialize the session state store.
	store, closeStore, err := repository.NewRepository(ctx, cfg.State, logger)
	if err != nil {
		log.Fatalf("Failed to initialize session state store: %v", err)
	}
	defer closeStore()

	logger.InfoContext(ctx, "Session state store initialized", "backend", cfg.State.Backend)

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, logger, reg, store, cfg.Port)

	logger.InfoContext(ctx, "Application started", "mode", cfg.Mode, "version", version)

	switch cfg.Mode {
	case modeMCP:
		err = serveMCP(ctx, logger, pharmacyTool)
	case modeChat:
		err = serveChat(ctx, cfg.Agent, logger, appMetrics, store, pharmacyTool)
	default:
		err = fmt.Errorf("unsupported mode: %s", cfg.Mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Application stopped with error", "error", err)
		stop()
		closeStore()
		os.Exit(1)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// serveMCP exposes the pharmacy tool to MCP clients over stdio until ctx is canceled
// or the client closes stdin.
func serveMCP(ctx context.Context, logger *slog.Logger, pharmacyTool *tool.PharmacyTool) error {
	mcpServer := server.NewMCPServer(
		"asclepius",
		version,
		server.WithToolCapabilities(true),
	)
	mcpServer.AddTool(pharmacyTool.MCPTool(), pharmacyTool.MCPHandler())

	stdio := server.NewStdioServer(mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	logger.InfoContext(ctx, "Serving MCP over stdio", "tool", tool.Name)

	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// serveChat runs the maps agent against lines read from stdin.
func serveChat(
	ctx context.Context,
	cfg config.AgentConfig,
	logger *slog.Logger,
	appMetrics *metrics.Metrics,
	store repository.Interface,
	pharmacyTool *tool.PharmacyTool,
) error {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}

	mapsAgent := agent.New(client.Models, agent.Options{
		Model:    cfg.Model,
		MaxSteps: cfg.MaxSteps,
		Timeout:  cfg.Timeout,
	}, store, logger, appMetrics, pharmacyTool)

	sessionID := fmt.Sprintf("chat-%d", time.Now().UnixNano())
	done := make(chan error, 1)

	// The scanner cannot be interrupted, so the loop runs aside and main waits on ctx.
	go func() {
		done <- runChat(ctx, mapsAgent, sessionID, os.Stdin, os.Stdout, logger)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err = <-done:
		return err
	}
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and shuts down when ctx is canceled.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - store: The session state store, pinged by the health check.
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	store repository.Interface,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(req.Context(), "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := store.Ping(req.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "state store ping failed"
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(req.Context(), "failed to write reply", "error", err)
		}

		log.DebugContext(req.Context(), "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(readTimeout)*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				AddSource:   false,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:       slog.LevelError,
				AddSource:   false,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
