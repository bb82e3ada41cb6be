// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asiacuisine/reservation-api/internal/clock"
	"github.com/asiacuisine/reservation-api/internal/config"
	"github.com/asiacuisine/reservation-api/internal/database"
	"github.com/asiacuisine/reservation-api/internal/handler"
	"github.com/asiacuisine/reservation-api/internal/notify"
	"github.com/asiacuisine/reservation-api/internal/repository"
	"github.com/asiacuisine/reservation-api/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// ── 1. Configuration ─────────────────────────────────────────────────
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// ── 2. Connect to PostgreSQL and ensure the schema ───────────────────
	pool, err := database.NewPool(ctx, cfg.PostgresURL, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	bookingRepo := repository.NewBookingRepository(pool)
	if err := bookingRepo.EnsureSchema(ctx); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	var mailer notify.Mailer
	if cfg.ResendAPIKey != "" {
		mailer = notify.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom, cfg.MailNotify, cfg.MailAdminTo)
	} else {
		logger.Warn("RESEND_API_KEY not set, notification emails disabled")
		mailer = notify.NewLogMailer(logger)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, admin login will not issue tokens")
	}

	clk := clock.NewSystem()
	availabilitySvc := service.NewAvailabilityService(bookingRepo, clk)
	bookingSvc := service.NewBookingService(bookingRepo, mailer, logger)
	adminSvc := service.NewAdminService(bookingRepo, cfg.AdminPassword, cfg.JWTSecret, clk)
	h := handler.New(availabilitySvc, bookingSvc, adminSvc)

	// ── 4. Build the router ──────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger(logger))  // structured access log
	r.Use(handler.CORS)            // permissive CORS for the public site

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/disponibilites", h.Disponibilites)
		r.Post("/reserver", h.Reserver)
		r.Post("/login", h.Login)
		r.Post("/get-bookings", h.GetBookings)
		r.Post("/delete-booking", h.DeleteBooking)
	})

	// ── 5. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
