package service

import (
	"sort"
	"sync"

	"ringside-bot/internal/domain"
	"ringside-bot/internal/game"
)

// arenaState is everything one arena holds. It is only touched under the
// owning slot's mutex.
type arenaState struct {
	lobby      *Lobby
	match      *game.Match
	prompts    []PromptHandle
	endPrompts []PromptHandle
}

func (s *arenaState) busy() bool {
	return s.lobby != nil || s.match != nil
}

func (s *arenaState) empty() bool {
	return !s.busy() && len(s.prompts) == 0 && len(s.endPrompts) == 0
}

type arenaSlot struct {
	mu    sync.Mutex
	state arenaState
	// gone is set once the slot has been dropped from the table.
	gone bool
}

// ArenaTable serializes all lobby and match mutations per arena. Distinct
// arenas never contend with each other.
type ArenaTable struct {
	mu    sync.Mutex
	slots map[domain.ArenaID]*arenaSlot
}

func NewArenaTable() *ArenaTable {
	return &ArenaTable{slots: make(map[domain.ArenaID]*arenaSlot)}
}

func (t *ArenaTable) slot(arena domain.ArenaID) *arenaSlot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[arena]
	if !ok {
		s = &arenaSlot{}
		t.slots[arena] = s
	}
	return s
}

// With runs fn while holding the arena's exclusive section. Slots left empty
// afterwards are dropped, so lookups of unknown arenas leave nothing behind.
func (t *ArenaTable) With(arena domain.ArenaID, fn func(*arenaState) error) error {
	for {
		s := t.slot(arena)
		s.mu.Lock()
		if s.gone {
			s.mu.Unlock()
			continue
		}
		err := fn(&s.state)
		if s.state.empty() {
			t.mu.Lock()
			delete(t.slots, arena)
			t.mu.Unlock()
			s.gone = true
		}
		s.mu.Unlock()
		return err
	}
}

// Arenas lists every arena that has been touched, sorted for stable iteration.
func (t *ArenaTable) Arenas() []domain.ArenaID {
	t.mu.Lock()
	out := make([]domain.ArenaID, 0, len(t.slots))
	for id := range t.slots {
		out = append(out, id)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Each visits arenas one at a time, each under its own lock.
func (t *ArenaTable) Each(fn func(domain.ArenaID, *arenaState)) {
	for _, id := range t.Arenas() {
		_ = t.With(id, func(s *arenaState) error {
			fn(id, s)
			return nil
		})
	}
}
