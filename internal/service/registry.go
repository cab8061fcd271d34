package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"ringside-bot/internal/constants"
	"ringside-bot/internal/domain"

	"github.com/rs/zerolog"
)

// PlayerRegistry owns every PlayerRecord. Memory is authoritative; the store
// is written after each mutation and failures are only logged.
type PlayerRegistry struct {
	store  StatsStore
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	records map[domain.PlayerID]*domain.PlayerRecord

	// saveMu spans snapshot and Save so writes reach the store in snapshot order.
	saveMu sync.Mutex
}

func NewPlayerRegistry(store StatsStore, logger zerolog.Logger) *PlayerRegistry {
	return &PlayerRegistry{
		store:   store,
		logger:  logger.With().Str("component", "registry").Logger(),
		now:     time.Now,
		records: make(map[domain.PlayerID]*domain.PlayerRecord),
	}
}

// Load replaces the in-memory records with the store's contents.
func (r *PlayerRegistry) Load(ctx context.Context) error {
	recs, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load player records: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[domain.PlayerID]*domain.PlayerRecord, len(recs))
	for id, rec := range recs {
		rec := rec
		r.records[id] = &rec
	}
	r.logger.Info().Int("count", len(recs)).Msg("player records loaded")
	return nil
}

// Ensure creates an unnamed record the first time a player shows up.
func (r *PlayerRegistry) Ensure(ctx context.Context, id domain.PlayerID) domain.PlayerRecord {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		now := r.now()
		rec = &domain.PlayerRecord{ID: id, CreatedAt: now, UpdatedAt: now}
		r.records[id] = rec
	}
	out := *rec
	r.mu.Unlock()

	if !ok {
		r.logger.Debug().Str("player", string(id)).Msg("player record created")
		r.Flush(ctx, id)
	}
	return out
}

// Register sets the player's display name. Names are unique ignoring case and
// cannot be changed once set.
func (r *PlayerRegistry) Register(ctx context.Context, id domain.PlayerID, name string) (domain.PlayerRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > constants.MaxNameLength {
		return domain.PlayerRecord{}, domain.ErrNameInvalid
	}

	r.mu.Lock()
	if rec, ok := r.records[id]; ok && rec.Registered() {
		r.mu.Unlock()
		return domain.PlayerRecord{}, domain.ErrAlreadyRegistered
	}
	for other, rec := range r.records {
		if other != id && strings.EqualFold(rec.Name, name) {
			r.mu.Unlock()
			return domain.PlayerRecord{}, domain.ErrNameTaken
		}
	}
	now := r.now()
	rec, ok := r.records[id]
	if !ok {
		rec = &domain.PlayerRecord{ID: id, CreatedAt: now}
		r.records[id] = rec
	}
	rec.Name = name
	rec.UpdatedAt = now
	out := *rec
	r.mu.Unlock()

	r.logger.Info().Str("player", string(id)).Str("name", name).Msg("player registered")
	r.Flush(ctx, id)
	return out, nil
}

func (r *PlayerRegistry) Get(id domain.PlayerID) (domain.PlayerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return domain.PlayerRecord{}, domain.ErrNotFound
	}
	return *rec, nil
}

func (r *PlayerRegistry) IsRegistered(id domain.PlayerID) bool {
	rec, err := r.Get(id)
	return err == nil && rec.Registered()
}

// Name returns the display name, or a placeholder for unknown players.
func (r *PlayerRegistry) Name(id domain.PlayerID) string {
	if rec, err := r.Get(id); err == nil && rec.Registered() {
		return rec.Name
	}
	return "Player" + string(id)
}

// RecordOutcome bumps one result counter. Callers flush afterwards.
func (r *PlayerRegistry) RecordOutcome(id domain.PlayerID, outcome domain.Outcome) {
	r.mutate(id, func(rec *domain.PlayerRecord) {
		switch outcome {
		case domain.OutcomeWin:
			rec.Wins++
		case domain.OutcomeLoss:
			rec.Losses++
		case domain.OutcomeDraw:
			rec.Draws++
		}
	})
}

func (r *PlayerRegistry) RecordSpecialAttempt(id domain.PlayerID, succeeded bool) {
	r.mutate(id, func(rec *domain.PlayerRecord) {
		rec.SpecialsUsed++
		if succeeded {
			rec.SpecialsSuccessful++
		}
	})
}

func (r *PlayerRegistry) mutate(id domain.PlayerID, fn func(*domain.PlayerRecord)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		now := r.now()
		rec = &domain.PlayerRecord{ID: id, CreatedAt: now}
		r.records[id] = rec
	}
	fn(rec)
	rec.UpdatedAt = r.now()
}

// Flush writes the named records to the store. With no ids every record is written.
func (r *PlayerRegistry) Flush(ctx context.Context, ids ...domain.PlayerID) {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.RLock()
	batch := make(map[domain.PlayerID]domain.PlayerRecord, len(ids))
	if len(ids) == 0 {
		for id, rec := range r.records {
			batch[id] = *rec
		}
	}
	for _, id := range ids {
		if rec, ok := r.records[id]; ok {
			batch[id] = *rec
		}
	}
	r.mu.RUnlock()

	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	if err := r.store.Save(ctx, batch); err != nil {
		r.logger.Error().Err(err).Int("count", len(batch)).Msg("failed to persist player records")
		return
	}
	r.logger.Debug().Int("count", len(batch)).Msg("player records persisted")
}

// Leaderboard returns registered players ordered by wins, then fewest losses.
func (r *PlayerRegistry) Leaderboard(limit int) []domain.PlayerRecord {
	if limit <= 0 {
		limit = constants.LeaderboardLimit
	}
	r.mu.RLock()
	out := make([]domain.PlayerRecord, 0, len(r.records))
	for _, rec := range r.records {
		if rec.Registered() {
			out = append(out, *rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		if out[i].Losses != out[j].Losses {
			return out[i].Losses < out[j].Losses
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
