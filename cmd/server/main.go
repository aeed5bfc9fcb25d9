package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	webAdapter "medstock-agent/internal/adapters/web"
	"medstock-agent/internal/ai"
	"medstock-agent/internal/app"
	"medstock-agent/internal/config"
	"medstock-agent/internal/core"
	"medstock-agent/internal/db"
	"medstock-agent/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("MEDSTOCK_CONFIG"))
	if err != nil {
		fallback := logger.New("prod")
		fallback.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer pool.Close()

	ledger := core.NewLedger(pool)
	analytics := core.NewAnalytics(pool, cfg.SafetyFactor())
	catalog := core.NewCatalog(pool)

	var assistant ai.AssistantService
	if cfg.OpenAI.APIKey != "" {
		assistant = ai.NewAssistant(cfg.OpenAI.APIKey, cfg.OpenAI.Model, app.NewAssistantTools(analytics))
	} else {
		log.Warn().Msg("OpenAI API key is not set, assistant disabled")
	}

	svc := app.NewAppService(pool, ledger, analytics, catalog, assistant)

	handler := webAdapter.NewHandler(svc, pool, webAdapter.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
		AdminUser:      cfg.Auth.AdminUser,
		AdminPassword:  cfg.Auth.AdminPassword,
		MetricsEnabled: cfg.Metrics.Enabled,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
