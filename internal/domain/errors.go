package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("player not found")
	ErrNameTaken         = errors.New("that name is already taken")
	ErrNameInvalid       = errors.New("name is empty or too long")
	ErrAlreadyRegistered = errors.New("player already has a name")
	ErrNotRegistered     = errors.New("player is not registered")

	ErrArenaBusy   = errors.New("a lobby or match is already active in this arena")
	ErrNoSuchLobby = errors.New("no open lobby in this arena")
	ErrNotHost     = errors.New("only the lobby host can do that")
	ErrSelfJoin    = errors.New("host cannot join their own lobby")

	ErrNoActiveMatch   = errors.New("no active match")
	ErrNotAParticipant = errors.New("player is not part of this match")
	ErrAlreadyChosen   = errors.New("move already chosen this round")
	ErrInvalidMove     = errors.New("unknown move")
)

// MoveBlockedError is returned when a move is illegal for the player this round.
// The round is unchanged and the player may choose again.
type MoveBlockedError struct {
	Move   string
	Reason string
}

func (e *MoveBlockedError) Error() string {
	return fmt.Sprintf("move %s blocked: %s", e.Move, e.Reason)
}

// IsMoveBlocked reports whether err carries a MoveBlockedError.
func IsMoveBlocked(err error) (*MoveBlockedError, bool) {
	var mb *MoveBlockedError
	if errors.As(err, &mb) {
		return mb, true
	}
	return nil, false
}
