package service

import (
	"context"
	"fmt"
	"time"

	"ringside-bot/internal/domain"

	"github.com/rs/zerolog"
)

// Lobby is an open invitation to fight in an arena.
type Lobby struct {
	Arena    domain.ArenaID
	Host     domain.PlayerID
	HostName string
	OpenedAt time.Time
	Prompt   PromptHandle
}

type LobbyManager struct {
	table    *ArenaTable
	registry *PlayerRegistry
	engine   *MatchEngine
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewLobbyManager(table *ArenaTable, registry *PlayerRegistry, engine *MatchEngine, notifier Notifier, logger zerolog.Logger) *LobbyManager {
	return &LobbyManager{
		table:    table,
		registry: registry,
		engine:   engine,
		notifier: notifier,
		logger:   logger.With().Str("component", "lobby").Logger(),
		now:      time.Now,
	}
}

// Open creates a lobby hosted by host and posts the join prompt.
func (l *LobbyManager) Open(ctx context.Context, arena domain.ArenaID, host domain.PlayerID) (Lobby, error) {
	if !l.registry.IsRegistered(host) {
		return Lobby{}, domain.ErrNotRegistered
	}
	var out Lobby
	err := l.table.With(arena, func(s *arenaState) error {
		if s.busy() {
			return domain.ErrArenaBusy
		}
		lobby := &Lobby{
			Arena:    arena,
			Host:     host,
			HostName: l.registry.Name(host),
			OpenedAt: l.now(),
		}
		h, err := l.notifier.PromptLobby(ctx, arena, host, msgLobbyOpened(lobby.HostName))
		if err != nil {
			return fmt.Errorf("failed to post lobby prompt: %w", err)
		}
		lobby.Prompt = h
		s.lobby = lobby
		out = *lobby
		return nil
	})
	if err != nil {
		return Lobby{}, err
	}
	l.logger.Info().Str("arena", string(arena)).Str("host", string(host)).Msg("lobby opened")
	return out, nil
}

// Cancel closes the arena's lobby. Only the host may cancel.
func (l *LobbyManager) Cancel(ctx context.Context, arena domain.ArenaID, requester domain.PlayerID) error {
	return l.table.With(arena, func(s *arenaState) error {
		if s.lobby == nil {
			return domain.ErrNoSuchLobby
		}
		if s.lobby.Host != requester {
			return domain.ErrNotHost
		}
		l.close(ctx, arena, s, msgLobbyCancelled(s.lobby.HostName))
		l.logger.Info().Str("arena", string(arena)).Msg("lobby cancelled")
		return nil
	})
}

func (l *LobbyManager) close(ctx context.Context, arena domain.ArenaID, s *arenaState, text string) {
	if s.lobby.Prompt.Valid() {
		if err := l.notifier.RetractPrompt(ctx, s.lobby.Prompt); err != nil {
			l.logger.Debug().Err(err).Str("arena", string(arena)).Msg("failed to retract lobby prompt")
		}
	}
	s.lobby = nil
	if err := l.notifier.Announce(ctx, arena, text); err != nil {
		l.logger.Warn().Err(err).Str("arena", string(arena)).Msg("failed to announce lobby close")
	}
}

// Join consumes the lobby and starts the match in one step, so no other
// lobby or match can slip in between.
func (l *LobbyManager) Join(ctx context.Context, arena domain.ArenaID, joiner domain.PlayerID) error {
	return l.table.With(arena, func(s *arenaState) error {
		if s.lobby == nil {
			return domain.ErrNoSuchLobby
		}
		host := s.lobby.Host
		if host == joiner {
			return domain.ErrSelfJoin
		}
		if !l.registry.IsRegistered(joiner) {
			return domain.ErrNotRegistered
		}
		// The lobby survives a failed start.
		id, err := l.engine.matchID()
		if err != nil {
			return err
		}
		prompt := s.lobby.Prompt
		s.lobby = nil
		if prompt.Valid() {
			if err := l.notifier.RetractPrompt(ctx, prompt); err != nil {
				l.logger.Debug().Err(err).Str("arena", string(arena)).Msg("failed to retract lobby prompt")
			}
		}
		l.engine.start(ctx, arena, s, id, host, joiner)
		return nil
	})
}

// Get returns the arena's open lobby, if any.
func (l *LobbyManager) Get(arena domain.ArenaID) (Lobby, bool) {
	var (
		out Lobby
		ok  bool
	)
	_ = l.table.With(arena, func(s *arenaState) error {
		if s.lobby != nil {
			out, ok = *s.lobby, true
		}
		return nil
	})
	return out, ok
}

// ExpireStale closes lobbies that nobody joined within maxAge.
func (l *LobbyManager) ExpireStale(ctx context.Context, maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}
	now := l.now()
	expired := 0
	l.table.Each(func(arena domain.ArenaID, s *arenaState) {
		if s.lobby == nil || now.Sub(s.lobby.OpenedAt) < maxAge {
			return
		}
		l.close(ctx, arena, s, msgLobbyExpired)
		expired++
	})
	return expired
}
