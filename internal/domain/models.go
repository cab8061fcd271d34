package domain

import (
	"math"
	"time"
)

// PlayerID is the chat platform's stable user identity.
type PlayerID string

// ArenaID identifies a group chat. At most one lobby or match lives in an arena.
type ArenaID string

type PlayerRecord struct {
	ID                 PlayerID
	Name               string
	Wins               int
	Losses             int
	Draws              int
	SpecialsUsed       int
	SpecialsSuccessful int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Registered reports whether the player has picked a display name.
func (r PlayerRecord) Registered() bool {
	return r.Name != ""
}

func (r PlayerRecord) Played() int {
	return r.Wins + r.Losses + r.Draws
}

// WinRate is the percentage of decided and drawn matches won, rounded to one decimal.
func (r PlayerRecord) WinRate() float64 {
	return percent(r.Wins, r.Played())
}

func (r PlayerRecord) SpecialRate() float64 {
	return percent(r.SpecialsSuccessful, r.SpecialsUsed)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// ResultKind says how a match ended.
type ResultKind string

const (
	ResultKO        ResultKind = "ko"
	ResultDraw      ResultKind = "draw"
	ResultEnded     ResultKind = "end"
	ResultForfeit   ResultKind = "forfeit"
	ResultTimeout   ResultKind = "timeout"
	ResultAbandoned ResultKind = "abandoned"
)

type MatchHistory struct {
	ID        string // nanoid
	MatchID   string
	Arena     ArenaID
	Player1   PlayerID
	Player2   PlayerID
	Winner    PlayerID // empty for draws and abandoned matches
	Result    ResultKind
	Rounds    int
	Player1HP int
	Player2HP int
	StartedAt time.Time
	EndedAt   time.Time
}

// OutcomeFor returns the outcome of the match from the given player's side.
func (h MatchHistory) OutcomeFor(id PlayerID) Outcome {
	switch {
	case h.Winner == "":
		return OutcomeDraw
	case h.Winner == id:
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}

func (h MatchHistory) Opponent(id PlayerID) PlayerID {
	if h.Player1 == id {
		return h.Player2
	}
	return h.Player1
}
