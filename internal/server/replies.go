package server

import (
	"errors"
	"fmt"
	"html"

	"ringside-bot/internal/constants"
	"ringside-bot/internal/domain"
)

var (
	replyWelcome        = fmt.Sprintf("🎉 Welcome! Reply with your wrestler name (max %d characters).", constants.MaxNameLength)
	replyAskName        = fmt.Sprintf("Reply with your wrestler name (max %d characters).", constants.MaxNameLength)
	replyNameEmpty      = "Name cannot be empty. Try again."
	replyNameTooLong    = fmt.Sprintf("Name too long. Max %d characters.", constants.MaxNameLength)
	replyNameTaken      = "That name is already taken. Pick another."
	replyNotRegistered  = "You are not registered. Reply with your name or use /start."
	replyNotInMatch     = "You are not in a match."
	replyDMHelp         = "DM commands: /start, reply with name to register, /stats, /forfeit, /startcareer, /leaderboard."
	replyGroupHelp      = "Group commands: /startgame (open lobby), /endmatch (end match, players only), /leaderboard."
	replyMustRegister   = "You must register (DM /start) before opening a lobby."
	replyMatchActive    = "A match is already active here. Wait for it to finish."
	replyLobbyOpen      = "A lobby is already open here."
	replyNoMatchHere    = "No active match here."
	replyEndPlayersOnly = "Only players in the active match may use /endmatch."
)

func replyRegistered(name string) string {
	return fmt.Sprintf("🔥 Registered as <b>%s</b>! Use /help to see commands.", html.EscapeString(name))
}

func replyWelcomeBack(name string) string {
	return fmt.Sprintf("Welcome back, <b>%s</b>! Use /help to see commands.", html.EscapeString(name))
}

const (
	toastInvalid        = "Invalid action"
	toastLobbyGone      = "This lobby no longer exists"
	toastLobbyCancelled = "Lobby cancelled."
	toastJoining        = "Joining... match starting."
	toastMoveRecorded   = "Move recorded. Waiting for opponent..."
	toastRoundDone      = "Move recorded. Round resolved!"
	toastEnded          = "Match ended; loss recorded for confirmer."
	toastCanceled       = "Canceled"
	toastProcessed      = "Processed"
	toastFailed         = "Something went wrong. Try again."
)

const (
	editEndCanceled     = "End-match canceled."
	editForfeited       = "You forfeited the match. Loss recorded."
	editForfeitCanceled = "Forfeit canceled."
)

// toastFor maps a domain error from a button press to the alert text shown
// to the presser.
func toastFor(err error) (string, bool) {
	if mb, ok := domain.IsMoveBlocked(err); ok {
		return "⚠️ " + mb.Reason, true
	}
	switch {
	case errors.Is(err, domain.ErrNoSuchLobby):
		return toastLobbyGone, true
	case errors.Is(err, domain.ErrNotHost):
		return "Only the lobby host can cancel.", true
	case errors.Is(err, domain.ErrSelfJoin):
		return "You created the lobby.", true
	case errors.Is(err, domain.ErrNotRegistered):
		return "You must register (DM /start) before joining.", true
	case errors.Is(err, domain.ErrNoActiveMatch):
		return replyNoMatchHere, true
	case errors.Is(err, domain.ErrNotAParticipant):
		return "You are not part of this match.", true
	case errors.Is(err, domain.ErrAlreadyChosen):
		return "You already chose this round.", true
	case errors.Is(err, domain.ErrInvalidMove):
		return toastInvalid, true
	case errors.Is(err, domain.ErrArenaBusy):
		return replyMatchActive, true
	}
	return toastFailed, false
}
