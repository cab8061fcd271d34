package fx

import (
	"database/sql"

	"ringside-bot/internal/config"
	"ringside-bot/internal/database"
	"ringside-bot/internal/db"
	"ringside-bot/internal/logger"
	"ringside-bot/internal/repository"
	"ringside-bot/internal/scheduler"
	"ringside-bot/internal/server"
	"ringside-bot/internal/service"
	"ringside-bot/internal/telegram"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideBotAPI(client *telegram.Client) server.BotAPI {
	return client
}

// ProvideRenderer returns the card renderer. None is configured, so stats and
// winner announcements stay text-only.
func ProvideRenderer() service.CardRenderer {
	return nil
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(
		fx.Annotate(repository.NewPlayerRepository, fx.As(new(service.StatsStore))),
		fx.Annotate(repository.NewMatchHistoryRepository, fx.As(new(service.HistoryStore))),
	),
	// telegram
	fx.Provide(telegram.NewClient, ProvideBotAPI),
	fx.Provide(fx.Annotate(telegram.NewNotifier, fx.As(new(service.Notifier)))),
	fx.Provide(ProvideRenderer),
	// svc
	fx.Provide(
		service.NewArenaTable,
		service.NewPlayerRegistry,
		service.NewMatchEngine,
		service.NewLobbyManager,
	),
	fx.Provide(scheduler.NewSweeper),
	// server
	fx.Provide(server.NewBotServer),
)
