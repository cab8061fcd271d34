package service

import (
	"context"

	"ringside-bot/internal/domain"
	"ringside-bot/internal/game"
)

// PromptHandle identifies a prompt message so it can be retracted later.
type PromptHandle struct {
	Chat      string
	MessageID int
}

func (h PromptHandle) Valid() bool {
	return h.MessageID != 0
}

// Notifier is how the engine talks to players. The chat layer implements it.
type Notifier interface {
	Announce(ctx context.Context, arena domain.ArenaID, text string) error
	AnnounceImage(ctx context.Context, arena domain.ArenaID, png []byte, caption string) error
	PromptLobby(ctx context.Context, arena domain.ArenaID, host domain.PlayerID, text string) (PromptHandle, error)
	PromptMoves(ctx context.Context, arena domain.ArenaID, text string, moves []game.Move) (PromptHandle, error)
	PromptEndConfirm(ctx context.Context, arena domain.ArenaID, text string) (PromptHandle, error)
	PromptForfeitConfirm(ctx context.Context, player domain.PlayerID, text string) (PromptHandle, error)
	RetractPrompt(ctx context.Context, h PromptHandle) error
	PrivateNotice(ctx context.Context, player domain.PlayerID, text string) error
	PrivateImage(ctx context.Context, player domain.PlayerID, png []byte, caption string) error
}

// StatsStore persists player records.
type StatsStore interface {
	Load(ctx context.Context) (map[domain.PlayerID]domain.PlayerRecord, error)
	Save(ctx context.Context, records map[domain.PlayerID]domain.PlayerRecord) error
}

// HistoryStore keeps a log of settled matches.
type HistoryStore interface {
	Append(ctx context.Context, h domain.MatchHistory) error
	RecentForPlayer(ctx context.Context, id domain.PlayerID, limit int) ([]domain.MatchHistory, error)
}

// CardRenderer draws stat and winner cards. It is optional; a nil renderer
// means the deployment has no image support.
type CardRenderer interface {
	RenderStats(rec domain.PlayerRecord) ([]byte, error)
	RenderWinner(name string, hp int) ([]byte, error)
}
