// ApiWp - WhatsApp notification relay server
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

	"github.com/TheRibeiro/ApiWp/internal/api"
	"github.com/TheRibeiro/ApiWp/internal/config"
	"github.com/TheRibeiro/ApiWp/internal/middleware"
	"github.com/TheRibeiro/ApiWp/internal/store"
	"github.com/TheRibeiro/ApiWp/internal/wagateway"
	"github.com/TheRibeiro/ApiWp/internal/whatsapp"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
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

	slog.Info("Starting server", "port", cfg.Port, "store_driver", cfg.StoreDriver)

	// Initialize the session store.
	var sessions store.SessionStore
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		sessions, err = store.NewSQLite(cfg.DBPath)
	default:
		sessions, err = store.NewPostgres(cfg.DatabaseURL)
	}
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	if err := sessions.Ping(context.Background()); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Session store connected")

	// Connection manager over the gateway transport.
	gateway := wagateway.New(cfg.GatewayURL)
	keeper := whatsapp.NewCredentialKeeper(sessions)
	mgr := whatsapp.NewManager(gateway, keeper, whatsapp.Options{
		SessionID:      cfg.SessionID,
		CountryCode:    cfg.CountryCode,
		ReconnectDelay: cfg.ReconnectDelay,
		DialRetryDelay: cfg.DialRetryDelay,
		SendDelayMin:   cfg.SendDelayMin,
		SendDelayMax:   cfg.SendDelayMax,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go mgr.Run(ctx)
	slog.Info("Connection manager started", "session_id", cfg.SessionID)

	// Initialize handlers.
	notifyHandler := api.NewHandler(mgr)
	healthHandler := api.NewHealthHandler(mgr)

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	// Public routes.
	healthHandler.RegisterHealth(r)

	// Notification routes require the shared secret.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.APISecret))
		notifyHandler.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

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
