package constants

import "time"

const (
	TelegramAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	WebhookBodyLimit   = 1 << 20
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
	SweepInterval   = 15 * time.Second
)

const (
	MaxNameLength    = 16
	LeaderboardLimit = 10
	RecentMatches    = 5
)
