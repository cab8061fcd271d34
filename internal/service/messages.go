package service

import (
	"fmt"
	"html"
	"math/rand"
	"strings"

	"ringside-bot/internal/domain"
	"ringside-bot/internal/game"
)

// Chat texts. Everything here is Telegram HTML; player names are escaped.

var crowdLines = []string{
	"🔥 The crowd goes wild!",
	"📣 Fans erupt!",
	"😱 What a sequence!",
	"🎉 Arena is electric!",
}

func crowdHype() string {
	return "<i>" + crowdLines[rand.Intn(len(crowdLines))] + "</i>"
}

func b(name string) string {
	return "<b>" + html.EscapeString(name) + "</b>"
}

const (
	msgRoundPrompt   = "🎮 Round — Players, pick your move (buttons below). Selections are private; results will be posted when both have chosen."
	msgNextRound     = "➡️ Next round: choose your move (use the buttons)."
	msgDoubleKO      = "<b>⚖️ DOUBLE KO! DRAW!</b>"
	msgEndConfirm    = "Are you sure you want to end the match? This will count as a loss for the player who confirms."
	msgForfeitPrompt = "Are you sure you want to forfeit this match? This will count as a loss."
	msgBlockedDM     = "<b>Use another move. You can't use this move or reversal continuously.</b>"
)

func msgLobbyOpened(host string) string {
	return fmt.Sprintf("🎫 <b>Lobby opened</b> by %s\nTap Join to accept and start a 1v1 match.", b(host))
}

func msgLobbyCancelled(host string) string {
	return fmt.Sprintf("Lobby cancelled by %s.", b(host))
}

func msgMatchStart(p1, p2 string) string {
	return fmt.Sprintf("🛎️ MATCH START: %s vs %s!\nPlayers: choose moves by tapping buttons below. Selections are private to the bot.", b(p1), b(p2))
}

func msgBlockedPublic(name string, move game.Move) string {
	return fmt.Sprintf("⚠️ %s tried to use %s but it was blocked.", html.EscapeString(name), move)
}

func msgBlockedPrivate(reason string) string {
	return "⚠️ " + html.EscapeString(reason) + "\n" + msgBlockedDM
}

// msgAction is the result line for the fighter in seat.
func msgAction(res game.RoundResult, m *game.Match, seat int) string {
	me, opp := m.Fighter(seat).Name, m.Opponent(seat).Name
	dealt := res.DamageTaken[1-seat]
	switch {
	case res.Reversed[seat]:
		return fmt.Sprintf("🔄 %s reversed %s's %s! %s takes <b>%d</b> damage!",
			b(me), b(opp), res.Moves[1-seat], html.EscapeString(opp), dealt)
	case dealt > 0:
		return fmt.Sprintf("💥 %s used <b>%s</b> and dealt <b>%d</b> damage to %s!", b(me), res.Moves[seat], dealt, b(opp))
	default:
		return fmt.Sprintf("⚠️ %s used <b>%s</b> but dealt no damage.", b(me), res.Moves[seat])
	}
}

func msgHP(name string, hp int) string {
	return fmt.Sprintf("%s HP: <b>%d</b>", b(name), hp)
}

func msgWinnerKO(name string) string {
	return fmt.Sprintf("🏆 <b>%s WINS BY KO!</b> 🏆", html.EscapeString(strings.ToUpper(name)))
}

func msgEnded(quitter, winner string) string {
	return fmt.Sprintf("⚠️ %s ended the match. %s wins!", html.EscapeString(quitter), html.EscapeString(winner))
}

func msgForfeited(quitter, winner string) string {
	return fmt.Sprintf("🛎️ %s forfeited. %s wins.", html.EscapeString(quitter), html.EscapeString(winner))
}

func msgTimedOut(idle, winner string) string {
	return fmt.Sprintf("⏱️ %s ran out of time. %s wins!", html.EscapeString(idle), html.EscapeString(winner))
}

const msgAbandoned = "⏱️ Nobody moved. The match was abandoned with no result."

const msgLobbyExpired = "⏱️ The lobby expired before anyone joined."

// StatsText is the career summary shown by /stats.
func StatsText(rec domain.PlayerRecord, recent []domain.MatchHistory, names func(domain.PlayerID) string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nWins: %d Losses: %d Draws: %d\nWin%%: %.1f%%\nSpecials used: %d Successful: %d (%.1f%%)",
		b(rec.Name), rec.Wins, rec.Losses, rec.Draws, rec.WinRate(),
		rec.SpecialsUsed, rec.SpecialsSuccessful, rec.SpecialRate())
	if len(recent) > 0 {
		sb.WriteString("\n\n<b>Recent matches</b>")
		for _, h := range recent {
			fmt.Fprintf(&sb, "\n%s vs %s (%s, %d rounds)",
				strings.ToUpper(string(h.OutcomeFor(rec.ID))), html.EscapeString(names(h.Opponent(rec.ID))), h.Result, h.Rounds)
		}
	}
	return sb.String()
}

// LeaderboardText renders the ranking shown by /leaderboard.
func LeaderboardText(recs []domain.PlayerRecord) string {
	if len(recs) == 0 {
		return "No ranked wrestlers yet. DM /start to register."
	}
	var sb strings.Builder
	sb.WriteString("🏆 <b>Leaderboard</b>")
	for i, r := range recs {
		fmt.Fprintf(&sb, "\n%d. %s %dW / %dL / %dD", i+1, b(r.Name), r.Wins, r.Losses, r.Draws)
	}
	return sb.String()
}
