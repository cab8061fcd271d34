package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ringside-bot/internal/db"
	"ringside-bot/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type MatchHistoryRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewMatchHistoryRepository(queries *db.Queries, logger zerolog.Logger) *MatchHistoryRepository {
	return &MatchHistoryRepository{
		queries: queries,
		logger:  logger,
	}
}

// Append stores a settled match. Appending the same match twice is a no-op.
func (r *MatchHistoryRepository) Append(ctx context.Context, h domain.MatchHistory) error {
	id := h.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	err := r.queries.InsertMatchHistory(ctx, db.InsertMatchHistoryParams{
		ID:        id,
		MatchID:   h.MatchID,
		Arena:     string(h.Arena),
		Player1:   string(h.Player1),
		Player2:   string(h.Player2),
		Winner:    sql.NullString{String: string(h.Winner), Valid: h.Winner != ""},
		Result:    string(h.Result),
		Rounds:    int64(h.Rounds),
		Player1Hp: int64(h.Player1HP),
		Player2Hp: int64(h.Player2HP),
		StartedAt: h.StartedAt,
		EndedAt:   h.EndedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert match history: %w", err)
	}

	r.logger.Debug().
		Str("match_id", h.MatchID).
		Str("result", string(h.Result)).
		Msg("match history stored")
	return nil
}

func (r *MatchHistoryRepository) RecentForPlayer(ctx context.Context, id domain.PlayerID, limit int) ([]domain.MatchHistory, error) {
	rows, err := r.queries.GetMatchHistoryByPlayer(ctx, db.GetMatchHistoryByPlayerParams{
		Player1: string(id),
		Limit:   int64(limit),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.MatchHistory, len(rows))
	for i, row := range rows {
		out[i] = domain.MatchHistory{
			ID:        row.ID,
			MatchID:   row.MatchID,
			Arena:     domain.ArenaID(row.Arena),
			Player1:   domain.PlayerID(row.Player1),
			Player2:   domain.PlayerID(row.Player2),
			Winner:    domain.PlayerID(row.Winner.String),
			Result:    domain.ResultKind(row.Result),
			Rounds:    int(row.Rounds),
			Player1HP: int(row.Player1Hp),
			Player2HP: int(row.Player2Hp),
			StartedAt: row.StartedAt,
			EndedAt:   row.EndedAt,
		}
	}
	return out, nil
}
