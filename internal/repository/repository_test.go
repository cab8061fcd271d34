package repository

import (
	"context"
	"testing"
	"time"

	"ringside-bot/internal/database"
	"ringside-bot/internal/db"
	"ringside-bot/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func newTestQueries(t *testing.T) (*PlayerRepository, *MatchHistoryRepository) {
	t.Helper()
	sqlDB, err := database.Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	q := db.New(sqlDB)
	return NewPlayerRepository(sqlDB, q, zerolog.Nop()), NewMatchHistoryRepository(q, zerolog.Nop())
}

func TestPlayerRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	players, _ := newTestQueries(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	recs := map[domain.PlayerID]domain.PlayerRecord{
		"1": {ID: "1", Name: "Rocky", Wins: 3, Losses: 1, SpecialsUsed: 4, SpecialsSuccessful: 2, CreatedAt: now, UpdatedAt: now},
		"2": {ID: "2", CreatedAt: now, UpdatedAt: now},
	}
	if err := players.Save(ctx, recs); err != nil {
		t.Fatalf("save: %v", err)
	}

	recs["1"] = domain.PlayerRecord{ID: "1", Name: "Rocky", Wins: 4, Losses: 1, SpecialsUsed: 4, SpecialsSuccessful: 2, CreatedAt: now, UpdatedAt: now.Add(time.Minute)}
	if err := players.Save(ctx, map[domain.PlayerID]domain.PlayerRecord{"1": recs["1"]}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := players.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(recs, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPlayerRepository_NameUniqueIgnoringCase(t *testing.T) {
	ctx := context.Background()
	players, _ := newTestQueries(t)
	now := time.Now().UTC()

	if err := players.Save(ctx, map[domain.PlayerID]domain.PlayerRecord{
		"1": {ID: "1", Name: "Rocky", CreatedAt: now, UpdatedAt: now},
	}); err != nil {
		t.Fatal(err)
	}
	err := players.Save(ctx, map[domain.PlayerID]domain.PlayerRecord{
		"2": {ID: "2", Name: "rocky", CreatedAt: now, UpdatedAt: now},
	})
	if err == nil {
		t.Fatal("expected unique index violation")
	}
	stored, err := players.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := stored["2"]; ok || len(stored) != 1 {
		t.Fatalf("failed batch must roll back, got %+v", stored)
	}
}

func TestMatchHistoryRepository(t *testing.T) {
	ctx := context.Background()
	_, history := newTestQueries(t)
	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	rows := []domain.MatchHistory{
		{MatchID: "m1", Arena: "-1", Player1: "1", Player2: "2", Winner: "1", Result: domain.ResultKO, Rounds: 7, Player1HP: 40, StartedAt: start, EndedAt: start.Add(time.Minute)},
		{MatchID: "m2", Arena: "-1", Player1: "2", Player2: "1", Result: domain.ResultDraw, Rounds: 9, StartedAt: start, EndedAt: start.Add(2 * time.Minute)},
		{MatchID: "m3", Arena: "-2", Player1: "3", Player2: "2", Winner: "3", Result: domain.ResultForfeit, Rounds: 1, Player1HP: 200, Player2HP: 200, StartedAt: start, EndedAt: start.Add(3 * time.Minute)},
	}
	for _, h := range rows {
		if err := history.Append(ctx, h); err != nil {
			t.Fatalf("append %s: %v", h.MatchID, err)
		}
	}
	if err := history.Append(ctx, rows[0]); err != nil {
		t.Fatalf("duplicate append should be ignored: %v", err)
	}

	got, err := history.RecentForPlayer(ctx, "1", 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].MatchID != "m2" || got[0].OutcomeFor("1") != domain.OutcomeDraw {
		t.Fatalf("newest first expected, got %+v", got[0])
	}
	if got[1].ID == "" || got[1].Winner != "1" || got[1].Player1HP != 40 {
		t.Fatalf("unexpected row: %+v", got[1])
	}

	limited, err := history.RecentForPlayer(ctx, "2", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].MatchID != "m3" {
		t.Fatalf("limit not applied: %+v", limited)
	}
}
