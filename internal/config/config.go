package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	BotToken        string
	TelegramAPIBase string
	WebhookBaseURL  string
	WebhookSecret   string
	DBPath          string
	ServerPort      string
	LogLevel        string

	// RoundTimeout of zero waits for moves forever.
	RoundTimeout time.Duration
	ResultPause  time.Duration
	HypePause    time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		BotToken:        getEnv("BOT_TOKEN", os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramAPIBase: strings.TrimRight(getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"), "/"),
		WebhookBaseURL:  strings.TrimRight(getEnv("WEBHOOK_BASE_URL", ""), "/"),
		WebhookSecret:   getEnv("WEBHOOK_SECRET", ""),
		DBPath:          getEnv("DB_PATH", "ringside.db"),
		ServerPort:      getEnv("SERVER_PORT", getEnv("PORT", "8000")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN or TELEGRAM_BOT_TOKEN is required")
	}

	var err error
	if cfg.RoundTimeout, err = getDuration("ROUND_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.ResultPause, err = getDuration("RESULT_PAUSE", time.Second); err != nil {
		return nil, err
	}
	if cfg.HypePause, err = getDuration("HYPE_PAUSE", 500*time.Millisecond); err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("webhook_base_url", cfg.WebhookBaseURL).
		Bool("webhook_secret", cfg.WebhookSecret != "").
		Dur("round_timeout", cfg.RoundTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

var Module = fx.Provide(Load)
