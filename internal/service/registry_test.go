package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ringside-bot/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	r := NewPlayerRegistry(newFakeStatsStore(), zerolog.Nop())

	if _, err := r.Register(ctx, "1", "  Rocky "); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name string
		id   domain.PlayerID
		in   string
		want error
	}{
		{"case-insensitive duplicate", "2", "rocky", domain.ErrNameTaken},
		{"empty", "2", "   ", domain.ErrNameInvalid},
		{"too long", "2", strings.Repeat("x", 17), domain.ErrNameInvalid},
		{"rename", "1", "Balboa", domain.ErrAlreadyRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Register(ctx, tt.id, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("Register(%q) error = %v, want %v", tt.in, err, tt.want)
			}
		})
	}

	rec, err := r.Get("1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Name != "Rocky" {
		t.Fatalf("name = %q, want trimmed Rocky", rec.Name)
	}
	if _, err := r.Register(ctx, "2", strings.Repeat("é", 16)); err != nil {
		t.Fatalf("16 runes should be accepted: %v", err)
	}
}

func TestEnsurePersistsNewRecord(t *testing.T) {
	store := newFakeStatsStore()
	r := NewPlayerRegistry(store, zerolog.Nop())

	rec := r.Ensure(context.Background(), "42")
	if rec.Registered() {
		t.Fatal("fresh record should be unnamed")
	}
	if _, ok := store.saved["42"]; !ok {
		t.Fatal("record not persisted")
	}

	r.Ensure(context.Background(), "42")
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1 for repeat Ensure", store.saves)
	}
	if r.IsRegistered("42") {
		t.Fatal("unnamed player reported registered")
	}
	if _, err := r.Get("nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordOutcomeSurvivesStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatsStore()
	r := NewPlayerRegistry(store, zerolog.Nop())
	if _, err := r.Register(ctx, "1", "Rocky"); err != nil {
		t.Fatal(err)
	}

	store.saveErr = errors.New("disk full")
	r.RecordOutcome("1", domain.OutcomeWin)
	r.RecordOutcome("1", domain.OutcomeLoss)
	r.RecordOutcome("1", domain.OutcomeDraw)
	r.RecordSpecialAttempt("1", true)
	r.RecordSpecialAttempt("1", false)
	r.Flush(ctx, "1")

	got, _ := r.Get("1")
	want := domain.PlayerRecord{ID: "1", Name: "Rocky", Wins: 1, Losses: 1, Draws: 1, SpecialsUsed: 2, SpecialsSuccessful: 1}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(domain.PlayerRecord{}, "CreatedAt", "UpdatedAt")); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if store.get("1").Wins != 0 {
		t.Fatal("failed save should not reach the store")
	}
}

func TestLoadReplacesRecords(t *testing.T) {
	store := newFakeStatsStore()
	store.saved["7"] = domain.PlayerRecord{ID: "7", Name: "Stone Cold", Wins: 3}
	r := NewPlayerRegistry(store, zerolog.Nop())

	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !r.IsRegistered("7") || r.Name("7") != "Stone Cold" {
		t.Fatalf("loaded record missing: %+v", r.Leaderboard(0))
	}
	if got := r.Name("8"); got != "Player8" {
		t.Fatalf("placeholder name = %q", got)
	}
}

func TestLeaderboard(t *testing.T) {
	store := newFakeStatsStore()
	store.saved = map[domain.PlayerID]domain.PlayerRecord{
		"a": {ID: "a", Name: "Andre", Wins: 5, Losses: 3},
		"b": {ID: "b", Name: "bret", Wins: 5, Losses: 1},
		"c": {ID: "c", Name: "Chyna", Wins: 7},
		"d": {ID: "d", Wins: 99},
		"e": {ID: "e", Name: "Edge", Wins: 5, Losses: 1},
	}
	r := NewPlayerRegistry(store, zerolog.Nop())
	if err := r.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, rec := range r.Leaderboard(4) {
		names = append(names, rec.Name)
	}
	want := []string{"Chyna", "bret", "Edge", "Andre"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("leaderboard order (-want +got):\n%s", diff)
	}
}

// gatedStore holds the first Save until release is closed.
type gatedStore struct {
	*fakeStatsStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Save(ctx context.Context, recs map[domain.PlayerID]domain.PlayerRecord) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.fakeStatsStore.Save(ctx, recs)
}

func TestFlushWritesInSnapshotOrder(t *testing.T) {
	ctx := context.Background()
	base := newFakeStatsStore()
	base.saved["x"] = domain.PlayerRecord{ID: "x", Name: "Rocky"}
	store := &gatedStore{fakeStatsStore: base, entered: make(chan struct{}), release: make(chan struct{})}
	r := NewPlayerRegistry(store, zerolog.Nop())
	if err := r.Load(ctx); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.RecordOutcome("x", domain.OutcomeWin)
		r.Flush(ctx, "x")
	}()
	<-store.entered

	go func() {
		defer wg.Done()
		r.RecordOutcome("x", domain.OutcomeWin)
		r.Flush(ctx, "x")
	}()
	time.Sleep(20 * time.Millisecond)
	close(store.release)
	wg.Wait()

	mem, _ := r.Get("x")
	if got := base.get("x").Wins; got != 2 || mem.Wins != 2 {
		t.Fatalf("stored wins = %d, memory wins = %d, want 2", got, mem.Wins)
	}
}
