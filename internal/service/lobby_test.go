package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ringside-bot/internal/domain"
)

func TestOpenLobby(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.registry.Ensure(ctx, "unnamed")

	if _, err := h.lobbies.Open(ctx, testArena, "unnamed"); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("unregistered host: got %v", err)
	}

	lobby, err := h.lobbies.Open(ctx, testArena, "p1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if lobby.Host != "p1" || lobby.HostName != "Rocky" || !lobby.Prompt.Valid() {
		t.Fatalf("unexpected lobby: %+v", lobby)
	}
	if _, err := h.lobbies.Open(ctx, testArena, "p2"); !errors.Is(err, domain.ErrArenaBusy) {
		t.Fatalf("second lobby: got %v, want ErrArenaBusy", err)
	}

	if _, err := h.lobbies.Open(ctx, "-200", "p1"); err != nil {
		t.Fatalf("host may open a lobby in another arena: %v", err)
	}
}

func TestCancelLobby(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	if err := h.lobbies.Cancel(ctx, testArena, "p1"); !errors.Is(err, domain.ErrNoSuchLobby) {
		t.Fatalf("cancel without lobby: got %v", err)
	}
	if _, err := h.lobbies.Open(ctx, testArena, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := h.lobbies.Cancel(ctx, testArena, "p2"); !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("non-host cancel: got %v", err)
	}
	if err := h.lobbies.Cancel(ctx, testArena, "p1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, ok := h.lobbies.Get(testArena); ok {
		t.Fatal("lobby still present after cancel")
	}
	if live := h.notifier.live(); len(live) != 0 {
		t.Fatalf("lobby prompt not retracted: %v", live)
	}
	if _, err := h.lobbies.Open(ctx, testArena, "p2"); err != nil {
		t.Fatalf("arena should be free after cancel: %v", err)
	}
}

func TestJoinLobby(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.registry.Ensure(ctx, "unnamed")

	if err := h.lobbies.Join(ctx, testArena, "p2"); !errors.Is(err, domain.ErrNoSuchLobby) {
		t.Fatalf("join without lobby: got %v", err)
	}
	if _, err := h.lobbies.Open(ctx, testArena, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := h.lobbies.Join(ctx, testArena, "p1"); !errors.Is(err, domain.ErrSelfJoin) {
		t.Fatalf("self join: got %v", err)
	}
	if err := h.lobbies.Join(ctx, testArena, "unnamed"); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("unregistered join: got %v", err)
	}
	if err := h.lobbies.Join(ctx, testArena, "p2"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if _, ok := h.lobbies.Get(testArena); ok {
		t.Fatal("lobby should be consumed by join")
	}
	m, ok := h.engine.Active(testArena)
	if !ok {
		t.Fatal("no match after join")
	}
	if m.Fighters[0].ID != "p1" || m.Fighters[1].ID != "p2" || m.Fighters[0].Name != "Rocky" {
		t.Fatalf("unexpected fighters: %+v", m.Fighters)
	}
	if live := h.notifier.live(); len(live) != 1 || live[0] != "moves" {
		t.Fatalf("expected only the round prompt live, got %v", live)
	}
	if err := h.lobbies.Join(ctx, testArena, "p3"); !errors.Is(err, domain.ErrNoSuchLobby) {
		t.Fatalf("late joiner: got %v", err)
	}
	if _, err := h.lobbies.Open(ctx, testArena, "p3"); !errors.Is(err, domain.ErrArenaBusy) {
		t.Fatalf("lobby during match: got %v", err)
	}
}

func TestExpireStaleLobbies(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if _, err := h.lobbies.Open(ctx, testArena, "p1"); err != nil {
		t.Fatal(err)
	}
	h.advance(30 * time.Minute)
	if n := h.lobbies.ExpireStale(ctx, time.Hour); n != 0 {
		t.Fatalf("young lobby expired: %d", n)
	}
	h.advance(30 * time.Minute)
	if n := h.lobbies.ExpireStale(ctx, time.Hour); n != 1 {
		t.Fatalf("expired = %d, want 1", n)
	}
	if _, ok := h.lobbies.Get(testArena); ok {
		t.Fatal("stale lobby still open")
	}
}

func TestJoinKeepsLobbyWhenStartFails(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if _, err := h.lobbies.Open(ctx, testArena, "p1"); err != nil {
		t.Fatal(err)
	}

	idErr := errors.New("entropy exhausted")
	next := h.engine.newID
	h.engine.newID = func() (string, error) { return "", idErr }
	if err := h.lobbies.Join(ctx, testArena, "p2"); !errors.Is(err, idErr) {
		t.Fatalf("join error = %v, want %v", err, idErr)
	}
	if _, ok := h.lobbies.Get(testArena); !ok {
		t.Fatal("lobby should survive a failed start")
	}
	if _, ok := h.engine.Active(testArena); ok {
		t.Fatal("no match should exist")
	}
	if live := h.notifier.live(); len(live) != 1 || live[0] != "lobby" {
		t.Fatalf("lobby prompt should stay posted, live = %v", live)
	}

	h.engine.newID = next
	if err := h.lobbies.Join(ctx, testArena, "p2"); err != nil {
		t.Fatalf("retry join: %v", err)
	}
	if _, ok := h.engine.Active(testArena); !ok {
		t.Fatal("match should start on retry")
	}
}
