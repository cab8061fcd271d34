package telegram

import (
	"context"
	"fmt"

	"ringside-bot/internal/domain"
	"ringside-bot/internal/game"
	"ringside-bot/internal/service"
)

// Notifier delivers engine output to Telegram chats. Arenas are group chat
// ids and players are private chat ids.
type Notifier struct {
	client *Client
}

func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

var _ service.Notifier = (*Notifier)(nil)

func (n *Notifier) send(ctx context.Context, chat, text string, kb *InlineKeyboardMarkup) (service.PromptHandle, error) {
	msg, err := n.client.SendMessage(ctx, SendMessageParams{
		ChatID:      chat,
		Text:        text,
		ParseMode:   parseModeHTML,
		ReplyMarkup: kb,
	})
	if err != nil {
		return service.PromptHandle{}, err
	}
	return service.PromptHandle{Chat: chat, MessageID: msg.MessageID}, nil
}

func (n *Notifier) Announce(ctx context.Context, arena domain.ArenaID, text string) error {
	_, err := n.send(ctx, string(arena), text, nil)
	return err
}

func (n *Notifier) AnnounceImage(ctx context.Context, arena domain.ArenaID, png []byte, caption string) error {
	_, err := n.client.SendPhoto(ctx, string(arena), png, caption)
	return err
}

func (n *Notifier) PromptLobby(ctx context.Context, arena domain.ArenaID, host domain.PlayerID, text string) (service.PromptHandle, error) {
	return n.send(ctx, string(arena), text, LobbyKeyboard(arena, host))
}

func (n *Notifier) PromptMoves(ctx context.Context, arena domain.ArenaID, text string, moves []game.Move) (service.PromptHandle, error) {
	return n.send(ctx, string(arena), text, MoveKeyboard(arena, moves))
}

func (n *Notifier) PromptEndConfirm(ctx context.Context, arena domain.ArenaID, text string) (service.PromptHandle, error) {
	return n.send(ctx, string(arena), text, EndConfirmKeyboard(arena))
}

func (n *Notifier) PromptForfeitConfirm(ctx context.Context, player domain.PlayerID, text string) (service.PromptHandle, error) {
	return n.send(ctx, string(player), text, ForfeitKeyboard())
}

func (n *Notifier) RetractPrompt(ctx context.Context, h service.PromptHandle) error {
	if !h.Valid() {
		return nil
	}
	if err := n.client.DeleteMessage(ctx, h.Chat, h.MessageID); err != nil {
		return fmt.Errorf("failed to delete prompt %d: %w", h.MessageID, err)
	}
	return nil
}

func (n *Notifier) PrivateNotice(ctx context.Context, player domain.PlayerID, text string) error {
	_, err := n.send(ctx, string(player), text, nil)
	return err
}

func (n *Notifier) PrivateImage(ctx context.Context, player domain.PlayerID, png []byte, caption string) error {
	_, err := n.client.SendPhoto(ctx, string(player), png, caption)
	return err
}
