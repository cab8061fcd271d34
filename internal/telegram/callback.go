package telegram

import (
	"errors"
	"fmt"
	"strings"

	"ringside-bot/internal/domain"
	"ringside-bot/internal/game"
)

// Action is the verb of an inline button.
type Action string

const (
	ActionJoin        Action = "join"
	ActionCancelLobby Action = "cancel_lobby"
	ActionMove        Action = "move"
	ActionConfirmEnd  Action = "confirm_end"
	ActionForfeitYes  Action = "forfeit_yes"
	ActionForfeitNo   Action = "forfeit_no"
)

var ErrBadCallback = errors.New("invalid callback data")

// Callback is decoded button data. Fields beyond Action are set only for
// the actions that carry them.
type Callback struct {
	Action Action
	Arena  domain.ArenaID
	Host   domain.PlayerID
	Move   game.Move
	Yes    bool
}

func (c Callback) Encode() string {
	switch c.Action {
	case ActionJoin, ActionCancelLobby:
		return fmt.Sprintf("%s|%s|%s", c.Action, c.Arena, c.Host)
	case ActionMove:
		return fmt.Sprintf("%s|%s|%s", c.Action, c.Arena, c.Move.Key())
	case ActionConfirmEnd:
		answer := "no"
		if c.Yes {
			answer = "yes"
		}
		return fmt.Sprintf("%s|%s|%s", c.Action, c.Arena, answer)
	default:
		return string(c.Action)
	}
}

func ParseCallback(data string) (Callback, error) {
	parts := strings.Split(data, "|")
	action := Action(parts[0])
	switch action {
	case ActionForfeitYes, ActionForfeitNo:
		if len(parts) != 1 {
			return Callback{}, ErrBadCallback
		}
		return Callback{Action: action, Yes: action == ActionForfeitYes}, nil
	case ActionJoin, ActionCancelLobby, ActionMove, ActionConfirmEnd:
	default:
		return Callback{}, ErrBadCallback
	}

	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return Callback{}, ErrBadCallback
	}
	cb := Callback{Action: action, Arena: domain.ArenaID(parts[1])}
	switch action {
	case ActionJoin, ActionCancelLobby:
		cb.Host = domain.PlayerID(parts[2])
	case ActionMove:
		mv, ok := game.ParseMove(parts[2])
		if !ok {
			return Callback{}, ErrBadCallback
		}
		cb.Move = mv
	case ActionConfirmEnd:
		switch parts[2] {
		case "yes":
			cb.Yes = true
		case "no":
		default:
			return Callback{}, ErrBadCallback
		}
	}
	return cb, nil
}

func button(text string, cb Callback) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, CallbackData: cb.Encode()}
}

func LobbyKeyboard(arena domain.ArenaID, host domain.PlayerID) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{button("🔵 Join", Callback{Action: ActionJoin, Arena: arena, Host: host})},
		{button("❌ Cancel", Callback{Action: ActionCancelLobby, Arena: arena, Host: host})},
	}}
}

// MoveKeyboard lays moves out as base strikes, then heavy and finishers,
// then reversal on its own row.
func MoveKeyboard(arena domain.ArenaID, moves []game.Move) *InlineKeyboardMarkup {
	var base, heavy, counter []InlineKeyboardButton
	for _, m := range moves {
		b := button(m.String(), Callback{Action: ActionMove, Arena: arena, Move: m})
		switch {
		case m.IsBase():
			base = append(base, b)
		case m == game.MoveReversal:
			counter = append(counter, b)
		default:
			heavy = append(heavy, b)
		}
	}
	var rows [][]InlineKeyboardButton
	for _, row := range [][]InlineKeyboardButton{base, heavy, counter} {
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

func EndConfirmKeyboard(arena domain.ArenaID) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{button("Yes, end match (I take the loss)", Callback{Action: ActionConfirmEnd, Arena: arena, Yes: true})},
		{button("No, cancel", Callback{Action: ActionConfirmEnd, Arena: arena})},
	}}
}

func ForfeitKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{button("Yes, forfeit", Callback{Action: ActionForfeitYes})},
		{button("No", Callback{Action: ActionForfeitNo})},
	}}
}
