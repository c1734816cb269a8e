// Debatkamer - debate practice server for secondary-school students
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jdeboer/debatkamer/internal/api"
	"github.com/jdeboer/debatkamer/internal/chat"
	"github.com/jdeboer/debatkamer/internal/coach"
	"github.com/jdeboer/debatkamer/internal/config"
	"github.com/jdeboer/debatkamer/internal/debate"
	"github.com/jdeboer/debatkamer/internal/middleware"
	"github.com/jdeboer/debatkamer/internal/store"
	"github.com/jdeboer/debatkamer/internal/topics"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Topic supplier is optional: without an API key the catalog serves
	// only the seed topics.
	var supplier topics.Supplier
	if cfg.SupplierEnabled() {
		client, err := topics.NewPerplexityClient(topics.PerplexityConfig{
			APIKey:         cfg.Supplier.APIKey,
			Model:          cfg.Supplier.Model,
			RequestTimeout: cfg.Supplier.RequestTimeout,
		})
		if err != nil {
			slog.Warn("Failed to initialize topic supplier, topic generation disabled", "error", err)
		} else {
			supplier = client
			slog.Info("Topic supplier initialized", "model", cfg.Supplier.Model)
		}
	} else {
		slog.Info("Topic generation disabled (PERPLEXITY_API_KEY not set)")
	}

	catalog := topics.NewCatalog(repo, supplier)
	if err := catalog.Seed(context.Background()); err != nil {
		slog.Error("Failed to seed topic catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("Topic catalog seeded")

	// Initialize services and handlers.
	selector := coach.NewSelector()
	engine := debate.NewEngine(repo, selector)
	baseHandler := api.NewHandler(engine, catalog)
	debateHandler := api.NewDebateHandler(baseHandler, selector)
	wsHandler := chat.NewWebSocketHandler(engine, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	allowedOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		allowedOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(allowedOrigins))

	debateHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/debate", wsHandler.ServeHTTP)

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout, WebSocket sessions are long-lived
		IdleTimeout:  120 * time.Second,
	}

	// Start topic refresh worker.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog.StartRefreshWorker(ctx, cfg.Supplier.RefreshInterval, cfg.Supplier.RefreshCount)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
