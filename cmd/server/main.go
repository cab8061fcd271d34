package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"ringside-bot/internal/config"
	"ringside-bot/internal/constants"
	fxmodules "ringside-bot/internal/fx"
	"ringside-bot/internal/middleware"
	"ringside-bot/internal/scheduler"
	"ringside-bot/internal/server"
	"ringside-bot/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	WebhookPath     = "/webhook"
	LeaderboardPath = "/api/leaderboard"
	SetWebhookPath  = "/set-webhook"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
		fx.Invoke(scheduler.Register),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	botServer *server.BotServer,
	bot server.BotAPI,
	registry *service.PlayerRegistry,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	requestIDMiddleware := middleware.RequestID(logger)
	secretMiddleware := middleware.WebhookSecret(cfg.WebhookSecret)

	mux.Handle(WebhookPath, requestIDMiddleware(secretMiddleware(http.HandlerFunc(botServer.Webhook))))
	mux.Handle(LeaderboardPath, requestIDMiddleware(c.Handler(http.HandlerFunc(botServer.Leaderboard))))
	mux.Handle(SetWebhookPath, requestIDMiddleware(server.SetWebhook(cfg, bot)))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		botServer.Health(w, r)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: mux,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := registry.Load(ctx); err != nil {
				return fmt.Errorf("failed to load players: %w", err)
			}
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			shutdownErr := srv.Shutdown(shutdownCtx)
			registry.Flush(shutdownCtx)

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if shutdownErr != nil {
				logger.Error().Err(shutdownErr).Msg("server shutdown failed")
				return shutdownErr
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
