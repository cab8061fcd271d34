package service

import (
	"context"
	"fmt"
	"time"

	"ringside-bot/internal/config"
	"ringside-bot/internal/constants"
	"ringside-bot/internal/domain"
	"ringside-bot/internal/game"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SubmitResult tells the caller what a legal submission caused.
type SubmitResult struct {
	Resolved bool
	Result   game.RoundResult
}

// MatchOver reports whether the submission ended the match.
func (r SubmitResult) MatchOver() bool {
	return r.Resolved && r.Result.Outcome != game.OutcomeContinue
}

// MatchEngine drives active matches from start to settlement.
type MatchEngine struct {
	table    *ArenaTable
	registry *PlayerRegistry
	notifier Notifier
	history  HistoryStore
	renderer CardRenderer
	logger   zerolog.Logger

	resultPause time.Duration
	hypePause   time.Duration

	now   func() time.Time
	newID func() (string, error)
	sleep func(context.Context, time.Duration)
}

func NewMatchEngine(
	cfg *config.Config,
	table *ArenaTable,
	registry *PlayerRegistry,
	notifier Notifier,
	history HistoryStore,
	renderer CardRenderer,
	logger zerolog.Logger,
) *MatchEngine {
	return &MatchEngine{
		table:       table,
		registry:    registry,
		notifier:    notifier,
		history:     history,
		renderer:    renderer,
		logger:      logger.With().Str("component", "engine").Logger(),
		resultPause: cfg.ResultPause,
		hypePause:   cfg.HypePause,
		now:         time.Now,
		newID:       func() (string, error) { return gonanoid.New() },
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (e *MatchEngine) matchID() (string, error) {
	id, err := e.newID()
	if err != nil {
		return "", fmt.Errorf("failed to generate match id: %w", err)
	}
	return id, nil
}

// start seats both players in a fresh match. Called with the arena locked.
func (e *MatchEngine) start(ctx context.Context, arena domain.ArenaID, s *arenaState, id string, host, joiner domain.PlayerID) {
	p1 := game.Participant{ID: host, Name: e.registry.Name(host)}
	p2 := game.Participant{ID: joiner, Name: e.registry.Name(joiner)}
	s.match = game.NewMatch(id, arena, p1, p2, e.now())

	e.logger.Info().
		Str("arena", string(arena)).
		Str("match_id", id).
		Str("p1", string(host)).
		Str("p2", string(joiner)).
		Msg("match started")

	e.announce(ctx, arena, msgMatchStart(p1.Name, p2.Name))
	e.promptRound(ctx, arena, s)
}

func (e *MatchEngine) announce(ctx context.Context, arena domain.ArenaID, text string) {
	if err := e.notifier.Announce(ctx, arena, text); err != nil {
		e.logger.Warn().Err(err).Str("arena", string(arena)).Msg("failed to announce")
	}
}

func (e *MatchEngine) promptRound(ctx context.Context, arena domain.ArenaID, s *arenaState) {
	h, err := e.notifier.PromptMoves(ctx, arena, msgRoundPrompt, s.match.Offers())
	if err != nil {
		e.logger.Warn().Err(err).Str("arena", string(arena)).Msg("failed to send round prompt")
		return
	}
	if h.Valid() {
		s.prompts = append(s.prompts, h)
	}
}

func (e *MatchEngine) retract(ctx context.Context, handles []PromptHandle) {
	for _, h := range handles {
		if err := e.notifier.RetractPrompt(ctx, h); err != nil {
			e.logger.Debug().Err(err).Int("message_id", h.MessageID).Msg("failed to retract prompt")
		}
	}
}

// SubmitMove records a player's move. When it completes the round, the round
// is resolved before SubmitMove returns.
func (e *MatchEngine) SubmitMove(ctx context.Context, arena domain.ArenaID, player domain.PlayerID, move game.Move) (SubmitResult, error) {
	var out SubmitResult
	err := e.table.With(arena, func(s *arenaState) error {
		m := s.match
		if m == nil {
			return domain.ErrNoActiveMatch
		}
		if err := m.Choose(player, move); err != nil {
			if mb, ok := domain.IsMoveBlocked(err); ok {
				seat, _ := m.Seat(player)
				e.notifyBlocked(ctx, arena, m.Fighter(seat), move, mb)
			}
			return err
		}

		e.logger.Debug().
			Str("arena", string(arena)).
			Str("match_id", m.ID).
			Int("round", m.Round).
			Str("player", string(player)).
			Msg("move recorded")

		if !m.Ready() {
			return nil
		}
		res, err := e.resolve(ctx, arena, s)
		if err != nil {
			return err
		}
		out = SubmitResult{Resolved: true, Result: res}
		return nil
	})
	return out, err
}

func (e *MatchEngine) notifyBlocked(ctx context.Context, arena domain.ArenaID, f *game.Fighter, move game.Move, mb *domain.MoveBlockedError) {
	e.logger.Debug().
		Str("arena", string(arena)).
		Str("player", string(f.ID)).
		Str("move", move.Key()).
		Str("reason", mb.Reason).
		Msg("move blocked")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.notifier.PrivateNotice(gCtx, f.ID, msgBlockedPrivate(mb.Reason))
	})
	g.Go(func() error {
		return e.notifier.Announce(gCtx, arena, msgBlockedPublic(f.Name, move))
	})
	if err := g.Wait(); err != nil {
		e.logger.Warn().Err(err).Str("arena", string(arena)).Msg("failed to deliver blocked-move notice")
	}
}

// resolve runs the exchange, reports it, and settles or continues the match.
func (e *MatchEngine) resolve(ctx context.Context, arena domain.ArenaID, s *arenaState) (game.RoundResult, error) {
	m := s.match
	e.retract(ctx, s.prompts)
	s.prompts = nil

	res, err := m.Resolve(e.now())
	if err != nil {
		return res, err
	}

	for seat := range m.Fighters {
		if res.SpecialAttempt[seat] {
			e.registry.RecordSpecialAttempt(m.Fighters[seat].ID, res.SpecialLanded[seat])
		}
	}

	e.logger.Info().
		Str("arena", string(arena)).
		Str("match_id", m.ID).
		Int("round", res.Round).
		Str("move1", res.Moves[0].Key()).
		Str("move2", res.Moves[1].Key()).
		Ints("hp", res.HP[:]).
		Msg("round resolved")

	for seat := range m.Fighters {
		e.announce(ctx, arena, msgAction(res, m, seat))
		e.announce(ctx, arena, msgHP(m.Fighters[seat].Name, res.HP[seat]))
	}
	if res.SpecialAttempt[0] || res.SpecialAttempt[1] {
		e.registry.Flush(ctx, m.Fighters[0].ID, m.Fighters[1].ID)
	}

	e.sleep(ctx, e.resultPause)
	if res.Hype() {
		e.announce(ctx, arena, crowdHype())
		e.sleep(ctx, e.hypePause)
	}

	switch res.Outcome {
	case game.OutcomeDraw:
		e.settle(ctx, arena, s, domain.ResultDraw, -1)
		e.announce(ctx, arena, msgDoubleKO)
	case game.OutcomeKO:
		winner := m.Fighters[res.Winner]
		e.settle(ctx, arena, s, domain.ResultKO, res.Winner)
		e.announce(ctx, arena, msgWinnerKO(winner.Name))
		e.sendWinnerCard(ctx, arena, winner)
	default:
		e.announce(ctx, arena, msgNextRound)
		e.promptRound(ctx, arena, s)
	}
	return res, nil
}

func (e *MatchEngine) sendWinnerCard(ctx context.Context, arena domain.ArenaID, winner game.Fighter) {
	if e.renderer == nil {
		return
	}
	png, err := e.renderer.RenderWinner(winner.Name, winner.HP)
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to render winner card")
		return
	}
	if err := e.notifier.AnnounceImage(ctx, arena, png, winner.Name); err != nil {
		e.logger.Warn().Err(err).Str("arena", string(arena)).Msg("failed to send winner card")
	}
}

// settle records the result, persists it and frees the arena. winnerSeat is
// -1 when nobody won.
func (e *MatchEngine) settle(ctx context.Context, arena domain.ArenaID, s *arenaState, kind domain.ResultKind, winnerSeat int) {
	m := s.match
	p1, p2 := m.Fighters[0].ID, m.Fighters[1].ID

	h := domain.MatchHistory{
		MatchID:   m.ID,
		Arena:     arena,
		Player1:   p1,
		Player2:   p2,
		Result:    kind,
		Rounds:    m.Round,
		Player1HP: m.Fighters[0].HP,
		Player2HP: m.Fighters[1].HP,
		StartedAt: m.StartedAt,
		EndedAt:   e.now(),
	}

	switch {
	case winnerSeat >= 0:
		winner, loser := m.Fighters[winnerSeat].ID, m.Fighters[1-winnerSeat].ID
		e.registry.RecordOutcome(winner, domain.OutcomeWin)
		e.registry.RecordOutcome(loser, domain.OutcomeLoss)
		h.Winner = winner
	case kind == domain.ResultDraw:
		e.registry.RecordOutcome(p1, domain.OutcomeDraw)
		e.registry.RecordOutcome(p2, domain.OutcomeDraw)
	}

	g, gCtx := errgroup.WithContext(ctx)
	if kind != domain.ResultAbandoned {
		g.Go(func() error {
			e.registry.Flush(gCtx, p1, p2)
			return nil
		})
	}
	g.Go(func() error {
		dbCtx, cancel := context.WithTimeout(gCtx, constants.DatabaseTimeout)
		defer cancel()
		return e.history.Append(dbCtx, h)
	})
	if err := g.Wait(); err != nil {
		e.logger.Error().Err(err).Str("match_id", m.ID).Msg("failed to record match history")
	}

	e.logger.Info().
		Str("arena", string(arena)).
		Str("match_id", m.ID).
		Str("result", string(kind)).
		Str("winner", string(h.Winner)).
		Int("rounds", m.Round).
		Msg("match settled")

	e.retract(ctx, s.prompts)
	e.retract(ctx, s.endPrompts)
	s.prompts, s.endPrompts = nil, nil
	s.match = nil
}

// RequestEnd asks the requester to confirm ending the match with a loss.
func (e *MatchEngine) RequestEnd(ctx context.Context, arena domain.ArenaID, requester domain.PlayerID) error {
	return e.table.With(arena, func(s *arenaState) error {
		if s.match == nil {
			return domain.ErrNoActiveMatch
		}
		if _, ok := s.match.Seat(requester); !ok {
			return domain.ErrNotAParticipant
		}
		h, err := e.notifier.PromptEndConfirm(ctx, arena, msgEndConfirm)
		if err != nil {
			return fmt.Errorf("failed to send end confirmation: %w", err)
		}
		if h.Valid() {
			s.endPrompts = append(s.endPrompts, h)
		}
		return nil
	})
}

// ConfirmEnd settles the match as a loss for the confirming player when yes
// is true. Declining leaves the match untouched.
func (e *MatchEngine) ConfirmEnd(ctx context.Context, arena domain.ArenaID, requester domain.PlayerID, yes bool) error {
	return e.table.With(arena, func(s *arenaState) error {
		m := s.match
		if m == nil {
			return domain.ErrNoActiveMatch
		}
		seat, ok := m.Seat(requester)
		if !ok {
			return domain.ErrNotAParticipant
		}
		if !yes {
			return nil
		}
		quitter, winner := m.Fighter(seat).Name, m.Opponent(seat).Name
		e.settle(ctx, arena, s, domain.ResultEnded, 1-seat)
		e.announce(ctx, arena, msgEnded(quitter, winner))
		return nil
	})
}

// findMatch returns the arena of the player's earliest-started active match.
func (e *MatchEngine) findMatch(player domain.PlayerID) (domain.ArenaID, bool) {
	var (
		found   domain.ArenaID
		started time.Time
		ok      bool
	)
	e.table.Each(func(arena domain.ArenaID, s *arenaState) {
		if s.match == nil {
			return
		}
		if _, in := s.match.Seat(player); !in {
			return
		}
		if !ok || s.match.StartedAt.Before(started) {
			found, started, ok = arena, s.match.StartedAt, true
		}
	})
	return found, ok
}

// RequestForfeit sends the player a private forfeit confirmation.
func (e *MatchEngine) RequestForfeit(ctx context.Context, player domain.PlayerID) error {
	if _, ok := e.findMatch(player); !ok {
		return domain.ErrNoActiveMatch
	}
	if _, err := e.notifier.PromptForfeitConfirm(ctx, player, msgForfeitPrompt); err != nil {
		return fmt.Errorf("failed to send forfeit confirmation: %w", err)
	}
	return nil
}

// ConfirmForfeit forfeits the player's earliest-started match. It returns the
// arena that was forfeited.
func (e *MatchEngine) ConfirmForfeit(ctx context.Context, player domain.PlayerID, yes bool) (domain.ArenaID, error) {
	if !yes {
		return "", nil
	}
	arena, ok := e.findMatch(player)
	if !ok {
		return "", domain.ErrNoActiveMatch
	}
	err := e.table.With(arena, func(s *arenaState) error {
		m := s.match
		if m == nil {
			return domain.ErrNoActiveMatch
		}
		seat, ok := m.Seat(player)
		if !ok {
			return domain.ErrNoActiveMatch
		}
		quitter, winner := m.Fighter(seat).Name, m.Opponent(seat).Name
		e.settle(ctx, arena, s, domain.ResultForfeit, 1-seat)
		e.announce(ctx, arena, msgForfeited(quitter, winner))
		return nil
	})
	if err != nil {
		return "", err
	}
	return arena, nil
}

// ExpireIdle settles every match whose current round has been open longer
// than timeout. The fighter who has not chosen loses; if neither has, the
// match is abandoned without touching stats.
func (e *MatchEngine) ExpireIdle(ctx context.Context, timeout time.Duration) int {
	if timeout <= 0 {
		return 0
	}
	expired := 0
	now := e.now()
	e.table.Each(func(arena domain.ArenaID, s *arenaState) {
		m := s.match
		if m == nil || now.Sub(m.RoundStartedAt) < timeout {
			return
		}
		waiting := m.Waiting()
		switch len(waiting) {
		case 1:
			idle := waiting[0]
			idleName, winnerName := m.Fighter(idle).Name, m.Opponent(idle).Name
			e.settle(ctx, arena, s, domain.ResultTimeout, 1-idle)
			e.announce(ctx, arena, msgTimedOut(idleName, winnerName))
		default:
			e.settle(ctx, arena, s, domain.ResultAbandoned, -1)
			e.announce(ctx, arena, msgAbandoned)
		}
		expired++
	})
	return expired
}

// Active returns a snapshot of the arena's match.
func (e *MatchEngine) Active(arena domain.ArenaID) (game.Match, bool) {
	var (
		m  game.Match
		ok bool
	)
	_ = e.table.With(arena, func(s *arenaState) error {
		if s.match != nil {
			m, ok = *s.match, true
		}
		return nil
	})
	return m, ok
}

// History returns the player's most recent settled matches.
func (e *MatchEngine) History(ctx context.Context, player domain.PlayerID) []domain.MatchHistory {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	out, err := e.history.RecentForPlayer(ctx, player, constants.RecentMatches)
	if err != nil {
		e.logger.Warn().Err(err).Str("player", string(player)).Msg("failed to load match history")
		return nil
	}
	return out
}
