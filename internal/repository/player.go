package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ringside-bot/internal/db"
	"ringside-bot/internal/domain"

	"github.com/rs/zerolog"
)

// PlayerRepository stores player records in SQLite.
type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func toDomainPlayer(p db.Player) domain.PlayerRecord {
	return domain.PlayerRecord{
		ID:                 domain.PlayerID(p.ID),
		Name:               p.Name.String,
		Wins:               int(p.Wins),
		Losses:             int(p.Losses),
		Draws:              int(p.Draws),
		SpecialsUsed:       int(p.SpecialsUsed),
		SpecialsSuccessful: int(p.SpecialsSuccessful),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// Load returns every stored record keyed by player.
func (r *PlayerRepository) Load(ctx context.Context) (map[domain.PlayerID]domain.PlayerRecord, error) {
	rows, err := r.queries.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	out := make(map[domain.PlayerID]domain.PlayerRecord, len(rows))
	for _, p := range rows {
		out[domain.PlayerID(p.ID)] = toDomainPlayer(p)
	}
	r.logger.Debug().Int("count", len(out)).Msg("players loaded")
	return out, nil
}

// Save upserts the given records in one transaction.
func (r *PlayerRepository) Save(ctx context.Context, records map[domain.PlayerID]domain.PlayerRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	for _, rec := range records {
		if err := qtx.UpsertPlayer(ctx, db.UpsertPlayerParams{
			ID:                 string(rec.ID),
			Name:               sql.NullString{String: rec.Name, Valid: rec.Name != ""},
			Wins:               int64(rec.Wins),
			Losses:             int64(rec.Losses),
			Draws:              int64(rec.Draws),
			SpecialsUsed:       int64(rec.SpecialsUsed),
			SpecialsSuccessful: int64(rec.SpecialsSuccessful),
			CreatedAt:          rec.CreatedAt,
			UpdatedAt:          rec.UpdatedAt,
		}); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}
