package game

import "strings"

// Move is one of the closed set of moves a fighter can pick in a round.
type Move int

const (
	MoveNone Move = iota
	MovePunch
	MoveKick
	MoveSlam
	MoveDropkick
	MoveSuplex
	MoveRKO
	MoveReversal
)

// AllMoves lists every selectable move in keyboard order.
var AllMoves = []Move{MovePunch, MoveKick, MoveSlam, MoveDropkick, MoveSuplex, MoveRKO, MoveReversal}

const (
	MaxHP        = 200
	MaxSpecials  = 4
	MaxReversals = 3
)

// Damage is the base damage a move deals when it lands.
func (m Move) Damage() int {
	switch m {
	case MovePunch:
		return 5
	case MoveKick:
		return 15
	case MoveSlam:
		return 25
	case MoveDropkick:
		return 30
	case MoveSuplex:
		return 45
	case MoveRKO:
		return 55
	case MoveReversal, MoveNone:
		return 0
	}
	return 0
}

// Valid reports whether the move is one a fighter can pick.
func (m Move) Valid() bool {
	return m >= MovePunch && m <= MoveReversal
}

// IsFinisher reports whether the move spends a special.
func (m Move) IsFinisher() bool {
	return m == MoveSuplex || m == MoveRKO
}

// IsBase reports whether the move is one of the light/medium/heavy strikes.
func (m Move) IsBase() bool {
	return m == MovePunch || m == MoveKick || m == MoveSlam
}

// Hype reports whether the move gets the crowd going.
func (m Move) Hype() bool {
	return m == MoveDropkick || m.IsFinisher()
}

// Key is the stable wire identifier used in callback payloads.
func (m Move) Key() string {
	switch m {
	case MovePunch:
		return "punch"
	case MoveKick:
		return "kick"
	case MoveSlam:
		return "slam"
	case MoveDropkick:
		return "dropkick"
	case MoveSuplex:
		return "suplex"
	case MoveRKO:
		return "rko"
	case MoveReversal:
		return "reversal"
	}
	return ""
}

func (m Move) String() string {
	switch m {
	case MoveRKO:
		return "RKO"
	case MoveNone:
		return "none"
	}
	k := m.Key()
	if k == "" {
		return "unknown"
	}
	return strings.ToUpper(k[:1]) + k[1:]
}

// ParseMove maps a wire key back to a Move.
func ParseMove(key string) (Move, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, m := range AllMoves {
		if m.Key() == k {
			return m, true
		}
	}
	return MoveNone, false
}
