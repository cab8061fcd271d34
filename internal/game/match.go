package game

import (
	"errors"
	"fmt"
	"time"

	"ringside-bot/internal/domain"
)

// Phase is the round state of a match.
type Phase int

const (
	PhaseAwaitingMoves Phase = iota // nobody has chosen
	PhaseAwaitingOne                // one fighter has chosen
	PhaseResolving                  // both chosen, exchange pending
	PhaseTerminal                   // at least one fighter is down
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingMoves:
		return "awaiting_moves"
	case PhaseAwaitingOne:
		return "awaiting_one"
	case PhaseResolving:
		return "resolving"
	case PhaseTerminal:
		return "terminal"
	}
	return "unknown"
}

const (
	ReasonSpecialCooldown  = "Can't use special back-to-back (cooldown)."
	ReasonNoSpecials       = "No specials left."
	ReasonReversalCooldown = "Can't use reversal back-to-back (cooldown)."
	ReasonNoReversals      = "No reversals left."
)

var ErrRoundNotReady = errors.New("both fighters must choose before the round resolves")

type Fighter struct {
	ID            domain.PlayerID
	Name          string
	HP            int
	SpecialsLeft  int
	ReversalsLeft int
	LastMove      Move
	Pending       Move
}

func newFighter(id domain.PlayerID, name string) Fighter {
	return Fighter{
		ID:            id,
		Name:          name,
		HP:            MaxHP,
		SpecialsLeft:  MaxSpecials,
		ReversalsLeft: MaxReversals,
	}
}

// Chosen reports whether the fighter has locked in a move this round.
func (f *Fighter) Chosen() bool {
	return f.Pending != MoveNone
}

// Check returns a MoveBlockedError if the fighter may not use move this round.
func (f *Fighter) Check(move Move) error {
	reason := ""
	switch {
	case move.IsFinisher():
		if f.LastMove.IsFinisher() {
			reason = ReasonSpecialCooldown
		} else if f.SpecialsLeft <= 0 {
			reason = ReasonNoSpecials
		}
	case move == MoveReversal:
		if f.LastMove == MoveReversal {
			reason = ReasonReversalCooldown
		} else if f.ReversalsLeft <= 0 {
			reason = ReasonNoReversals
		}
	}
	if reason == "" {
		return nil
	}
	return &domain.MoveBlockedError{Move: move.String(), Reason: reason}
}

type Match struct {
	ID             string
	Arena          domain.ArenaID
	Fighters       [2]Fighter
	Round          int
	StartedAt      time.Time
	RoundStartedAt time.Time
}

// Participant is a player entering a match.
type Participant struct {
	ID   domain.PlayerID
	Name string
}

func NewMatch(id string, arena domain.ArenaID, p1, p2 Participant, now time.Time) *Match {
	return &Match{
		ID:             id,
		Arena:          arena,
		Fighters:       [2]Fighter{newFighter(p1.ID, p1.Name), newFighter(p2.ID, p2.Name)},
		Round:          1,
		StartedAt:      now,
		RoundStartedAt: now,
	}
}

// Seat returns the fighter index of the player.
func (m *Match) Seat(id domain.PlayerID) (int, bool) {
	for i := range m.Fighters {
		if m.Fighters[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (m *Match) Fighter(seat int) *Fighter {
	return &m.Fighters[seat]
}

func (m *Match) Opponent(seat int) *Fighter {
	return &m.Fighters[1-seat]
}

func (m *Match) Phase() Phase {
	if m.Fighters[0].HP == 0 || m.Fighters[1].HP == 0 {
		return PhaseTerminal
	}
	switch n := m.chosenCount(); n {
	case 0:
		return PhaseAwaitingMoves
	case 1:
		return PhaseAwaitingOne
	default:
		return PhaseResolving
	}
}

func (m *Match) chosenCount() int {
	n := 0
	for i := range m.Fighters {
		if m.Fighters[i].Chosen() {
			n++
		}
	}
	return n
}

// Ready reports whether both fighters have chosen and the round can resolve.
func (m *Match) Ready() bool {
	return m.Phase() == PhaseResolving
}

// Offers is the shared keyboard for the round. Finishers and reversal only
// appear while at least one fighter can still use them.
func (m *Match) Offers() []Move {
	out := []Move{MovePunch, MoveKick, MoveSlam, MoveDropkick}
	if m.Fighters[0].SpecialsLeft > 0 || m.Fighters[1].SpecialsLeft > 0 {
		out = append(out, MoveSuplex, MoveRKO)
	}
	if m.Fighters[0].ReversalsLeft > 0 || m.Fighters[1].ReversalsLeft > 0 {
		out = append(out, MoveReversal)
	}
	return out
}

// Choose records the player's move for the current round.
func (m *Match) Choose(id domain.PlayerID, move Move) error {
	if !move.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidMove, int(move))
	}
	seat, ok := m.Seat(id)
	if !ok {
		return domain.ErrNotAParticipant
	}
	f := &m.Fighters[seat]
	if f.Chosen() {
		return domain.ErrAlreadyChosen
	}
	if err := f.Check(move); err != nil {
		return err
	}
	f.Pending = move
	return nil
}

// Waiting returns the seats that have not chosen yet this round.
func (m *Match) Waiting() []int {
	var seats []int
	for i := range m.Fighters {
		if !m.Fighters[i].Chosen() {
			seats = append(seats, i)
		}
	}
	return seats
}

type RoundOutcome int

const (
	OutcomeContinue RoundOutcome = iota
	OutcomeDraw
	OutcomeKO
)

// RoundResult describes one resolved exchange.
type RoundResult struct {
	Round          int
	Moves          [2]Move
	DamageTaken    [2]int
	HP             [2]int
	Reversed       [2]bool // seat landed an unmatched reversal
	SpecialAttempt [2]bool
	SpecialLanded  [2]bool
	Outcome        RoundOutcome
	Winner         int // seat, -1 unless Outcome == OutcomeKO
}

// Hype reports whether the exchange deserves a crowd reaction.
func (r RoundResult) Hype() bool {
	return r.Moves[0].Hype() || r.Moves[1].Hype()
}

// Resolve applies the round's exchange. It runs exactly once per round:
// pending moves are cleared when the match continues.
func (m *Match) Resolve(now time.Time) (RoundResult, error) {
	if !m.Ready() {
		return RoundResult{}, ErrRoundNotReady
	}
	a, b := &m.Fighters[0], &m.Fighters[1]
	res := RoundResult{Round: m.Round, Moves: [2]Move{a.Pending, b.Pending}, Winner: -1}

	toA, toB := Exchange(a.Pending, b.Pending)
	res.DamageTaken = [2]int{toA, toB}
	res.Reversed = [2]bool{Reversed(a.Pending, b.Pending), Reversed(b.Pending, a.Pending)}

	for seat := range m.Fighters {
		f := &m.Fighters[seat]
		f.HP = max(0, f.HP-res.DamageTaken[seat])
		res.HP[seat] = f.HP
		switch {
		case f.Pending.IsFinisher():
			f.SpecialsLeft = max(0, f.SpecialsLeft-1)
			res.SpecialAttempt[seat] = true
			res.SpecialLanded[seat] = res.DamageTaken[1-seat] > 0
		case f.Pending == MoveReversal:
			f.ReversalsLeft = max(0, f.ReversalsLeft-1)
		}
		f.LastMove = f.Pending
	}

	switch {
	case a.HP == 0 && b.HP == 0:
		res.Outcome = OutcomeDraw
	case a.HP == 0:
		res.Outcome, res.Winner = OutcomeKO, 1
	case b.HP == 0:
		res.Outcome, res.Winner = OutcomeKO, 0
	default:
		res.Outcome = OutcomeContinue
		a.Pending, b.Pending = MoveNone, MoveNone
		m.Round++
		m.RoundStartedAt = now
	}
	return res, nil
}
