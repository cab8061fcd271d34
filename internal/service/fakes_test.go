package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"ringside-bot/internal/config"
	"ringside-bot/internal/domain"
	"ringside-bot/internal/game"

	"github.com/rs/zerolog"
)

type sentMessage struct {
	Arena domain.ArenaID
	Text  string
}

type fakeNotifier struct {
	mu        sync.Mutex
	nextID    int
	announced []sentMessage
	private   map[domain.PlayerID][]string
	images    int
	prompts   map[int]string
	retracted []int
	offers    [][]game.Move
	failSends bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		private: make(map[domain.PlayerID][]string),
		prompts: make(map[int]string),
	}
}

var errSendFailed = errors.New("send failed")

func (f *fakeNotifier) Announce(_ context.Context, arena domain.ArenaID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSends {
		return errSendFailed
	}
	f.announced = append(f.announced, sentMessage{arena, text})
	return nil
}

func (f *fakeNotifier) AnnounceImage(context.Context, domain.ArenaID, []byte, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images++
	return nil
}

func (f *fakeNotifier) prompt(kind string, chat string) (PromptHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSends {
		return PromptHandle{}, errSendFailed
	}
	f.nextID++
	f.prompts[f.nextID] = kind
	return PromptHandle{Chat: chat, MessageID: f.nextID}, nil
}

func (f *fakeNotifier) PromptLobby(_ context.Context, arena domain.ArenaID, _ domain.PlayerID, _ string) (PromptHandle, error) {
	return f.prompt("lobby", string(arena))
}

func (f *fakeNotifier) PromptMoves(_ context.Context, arena domain.ArenaID, _ string, moves []game.Move) (PromptHandle, error) {
	f.mu.Lock()
	f.offers = append(f.offers, moves)
	f.mu.Unlock()
	return f.prompt("moves", string(arena))
}

func (f *fakeNotifier) PromptEndConfirm(_ context.Context, arena domain.ArenaID, _ string) (PromptHandle, error) {
	return f.prompt("end", string(arena))
}

func (f *fakeNotifier) PromptForfeitConfirm(_ context.Context, player domain.PlayerID, _ string) (PromptHandle, error) {
	return f.prompt("forfeit", string(player))
}

func (f *fakeNotifier) RetractPrompt(_ context.Context, h PromptHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retracted = append(f.retracted, h.MessageID)
	delete(f.prompts, h.MessageID)
	return nil
}

func (f *fakeNotifier) PrivateNotice(_ context.Context, player domain.PlayerID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.private[player] = append(f.private[player], text)
	return nil
}

func (f *fakeNotifier) PrivateImage(context.Context, domain.PlayerID, []byte, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images++
	return nil
}

// live returns the kinds of prompts not yet retracted.
func (f *fakeNotifier) live() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, k := range f.prompts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (f *fakeNotifier) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.announced))
	for i, m := range f.announced {
		out[i] = m.Text
	}
	return out
}

type fakeStatsStore struct {
	mu      sync.Mutex
	saved   map[domain.PlayerID]domain.PlayerRecord
	saves   int
	saveErr error
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{saved: make(map[domain.PlayerID]domain.PlayerRecord)}
}

func (s *fakeStatsStore) Load(context.Context) (map[domain.PlayerID]domain.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.PlayerID]domain.PlayerRecord, len(s.saved))
	for k, v := range s.saved {
		out[k] = v
	}
	return out, nil
}

func (s *fakeStatsStore) Save(_ context.Context, recs map[domain.PlayerID]domain.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	for k, v := range recs {
		s.saved[k] = v
	}
	return nil
}

func (s *fakeStatsStore) get(id domain.PlayerID) domain.PlayerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[id]
}

type fakeHistory struct {
	mu   sync.Mutex
	rows []domain.MatchHistory
}

func (h *fakeHistory) Append(_ context.Context, row domain.MatchHistory) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows = append(h.rows, row)
	return nil
}

func (h *fakeHistory) RecentForPlayer(_ context.Context, id domain.PlayerID, limit int) ([]domain.MatchHistory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []domain.MatchHistory
	for i := len(h.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if h.rows[i].Player1 == id || h.rows[i].Player2 == id {
			out = append(out, h.rows[i])
		}
	}
	return out, nil
}

func (h *fakeHistory) all() []domain.MatchHistory {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.MatchHistory(nil), h.rows...)
}

type fakeRenderer struct{}

func (fakeRenderer) RenderStats(domain.PlayerRecord) ([]byte, error) { return []byte("png"), nil }
func (fakeRenderer) RenderWinner(string, int) ([]byte, error)        { return []byte("png"), nil }

type harness struct {
	registry *PlayerRegistry
	lobbies  *LobbyManager
	engine   *MatchEngine
	notifier *fakeNotifier
	store    *fakeStatsStore
	history  *fakeHistory
	clock    *time.Time
}

const testArena domain.ArenaID = "-100"

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zerolog.Nop()
	h := &harness{
		notifier: newFakeNotifier(),
		store:    newFakeStatsStore(),
		history:  &fakeHistory{},
	}
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	h.clock = &now
	clock := func() time.Time { return *h.clock }

	table := NewArenaTable()
	h.registry = NewPlayerRegistry(h.store, logger)
	h.registry.now = clock
	h.engine = NewMatchEngine(&config.Config{}, table, h.registry, h.notifier, h.history, nil, logger)
	h.engine.now = clock
	ids := 0
	h.engine.newID = func() (string, error) {
		ids++
		return "match-" + string(rune('a'+ids-1)), nil
	}
	h.lobbies = NewLobbyManager(table, h.registry, h.engine, h.notifier, logger)
	h.lobbies.now = clock

	ctx := context.Background()
	for id, name := range map[domain.PlayerID]string{"p1": "Rocky", "p2": "Apollo", "p3": "Ivan"} {
		if _, err := h.registry.Register(ctx, id, name); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	return h
}

func (h *harness) advance(d time.Duration) {
	*h.clock = h.clock.Add(d)
}

// startMatch opens a lobby hosted by host and has joiner accept it.
func (h *harness) startMatch(t *testing.T, a domain.ArenaID, host, joiner domain.PlayerID) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.lobbies.Open(ctx, a, host); err != nil {
		t.Fatalf("open lobby: %v", err)
	}
	if err := h.lobbies.Join(ctx, a, joiner); err != nil {
		t.Fatalf("join lobby: %v", err)
	}
}

func (h *harness) submit(t *testing.T, a domain.ArenaID, p domain.PlayerID, m game.Move) SubmitResult {
	t.Helper()
	res, err := h.engine.SubmitMove(context.Background(), a, p, m)
	if err != nil {
		t.Fatalf("submit %s %v: %v", p, m, err)
	}
	return res
}

func (h *harness) setHP(t *testing.T, a domain.ArenaID, hp1, hp2 int) {
	t.Helper()
	err := h.engine.table.With(a, func(s *arenaState) error {
		if s.match == nil {
			return domain.ErrNoActiveMatch
		}
		s.match.Fighters[0].HP = hp1
		s.match.Fighters[1].HP = hp2
		return nil
	})
	if err != nil {
		t.Fatalf("set hp: %v", err)
	}
}
