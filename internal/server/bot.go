package server

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"ringside-bot/internal/domain"
	"ringside-bot/internal/service"
	"ringside-bot/internal/telegram"

	"github.com/rs/zerolog"
)

// BotAPI is the part of the Telegram client the dispatcher calls directly.
type BotAPI interface {
	SendMessage(ctx context.Context, p telegram.SendMessageParams) (*telegram.Message, error)
	EditMessageText(ctx context.Context, p telegram.EditMessageTextParams) error
	AnswerCallbackQuery(ctx context.Context, p telegram.AnswerCallbackParams) error
	SetWebhook(ctx context.Context, url, secret string) error
}

// BotServer turns Telegram updates into lobby and match operations.
type BotServer struct {
	bot      BotAPI
	registry *service.PlayerRegistry
	lobbies  *service.LobbyManager
	engine   *service.MatchEngine
	notifier service.Notifier
	renderer service.CardRenderer
	logger   zerolog.Logger
}

func NewBotServer(
	bot BotAPI,
	registry *service.PlayerRegistry,
	lobbies *service.LobbyManager,
	engine *service.MatchEngine,
	notifier service.Notifier,
	renderer service.CardRenderer,
	logger zerolog.Logger,
) *BotServer {
	return &BotServer{
		bot:      bot,
		registry: registry,
		lobbies:  lobbies,
		engine:   engine,
		notifier: notifier,
		renderer: renderer,
		logger:   logger,
	}
}

func (s *BotServer) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

func playerID(u *telegram.User) domain.PlayerID {
	return domain.PlayerID(strconv.FormatInt(u.ID, 10))
}

// command splits "/cmd@bot args" into "/cmd". Non-commands return "".
func command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd)
}

// HandleUpdate processes one update. Failures are logged; nothing is returned
// because Telegram only needs the webhook acknowledged.
func (s *BotServer) HandleUpdate(ctx context.Context, u telegram.Update) {
	switch {
	case u.CallbackQuery != nil:
		s.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.From != nil && !u.Message.From.IsBot:
		if u.Message.Chat.Private() {
			s.handlePrivate(ctx, u.Message)
		} else {
			s.handleGroup(ctx, u.Message)
		}
	default:
		s.log(ctx).Debug().Int64("update_id", u.UpdateID).Msg("ignoring update")
	}
}

func (s *BotServer) reply(ctx context.Context, chat, text string) {
	_, err := s.bot.SendMessage(ctx, telegram.SendMessageParams{ChatID: chat, Text: text, ParseMode: "HTML"})
	if err != nil {
		s.log(ctx).Warn().Err(err).Str("chat", chat).Msg("failed to send reply")
	}
}

func (s *BotServer) handlePrivate(ctx context.Context, m *telegram.Message) {
	id := playerID(m.From)
	chat := m.Chat.Key()
	rec := s.registry.Ensure(ctx, id)

	switch command(m.Text) {
	case "":
		if rec.Registered() {
			s.reply(ctx, chat, replyDMHelp)
			return
		}
		s.register(ctx, chat, id, m.Text)
	case "/start":
		if rec.Registered() {
			s.reply(ctx, chat, replyWelcomeBack(rec.Name))
			return
		}
		s.reply(ctx, chat, replyWelcome)
	case "/startcareer":
		if rec.Registered() {
			s.reply(ctx, chat, replyWelcomeBack(rec.Name))
			return
		}
		s.reply(ctx, chat, replyAskName)
	case "/stats":
		if !rec.Registered() {
			s.reply(ctx, chat, replyNotRegistered)
			return
		}
		s.sendStats(ctx, chat, rec)
	case "/forfeit":
		err := s.engine.RequestForfeit(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNoActiveMatch):
			s.reply(ctx, chat, replyNotInMatch)
		case err != nil:
			s.log(ctx).Error().Err(err).Str("player", string(id)).Msg("failed to request forfeit")
		}
	case "/leaderboard":
		s.reply(ctx, chat, service.LeaderboardText(s.registry.Leaderboard(0)))
	default:
		s.reply(ctx, chat, replyDMHelp)
	}
}

func (s *BotServer) register(ctx context.Context, chat string, id domain.PlayerID, name string) {
	rec, err := s.registry.Register(ctx, id, name)
	switch {
	case err == nil:
		s.reply(ctx, chat, replyRegistered(rec.Name))
	case errors.Is(err, domain.ErrNameInvalid):
		if strings.TrimSpace(name) == "" {
			s.reply(ctx, chat, replyNameEmpty)
		} else {
			s.reply(ctx, chat, replyNameTooLong)
		}
	case errors.Is(err, domain.ErrNameTaken):
		s.reply(ctx, chat, replyNameTaken)
	default:
		s.log(ctx).Error().Err(err).Str("player", string(id)).Msg("failed to register player")
	}
}

func (s *BotServer) sendStats(ctx context.Context, chat string, rec domain.PlayerRecord) {
	s.reply(ctx, chat, service.StatsText(rec, s.engine.History(ctx, rec.ID), s.registry.Name))
	if s.renderer == nil {
		return
	}
	png, err := s.renderer.RenderStats(rec)
	if err != nil {
		s.log(ctx).Warn().Err(err).Msg("failed to render stats card")
		return
	}
	if err := s.notifier.PrivateImage(ctx, rec.ID, png, rec.Name); err != nil {
		s.log(ctx).Warn().Err(err).Msg("failed to send stats card")
	}
}

func (s *BotServer) handleGroup(ctx context.Context, m *telegram.Message) {
	arena := domain.ArenaID(m.Chat.Key())
	id := playerID(m.From)
	chat := m.Chat.Key()

	switch command(m.Text) {
	case "/startgame":
		_, err := s.lobbies.Open(ctx, arena, id)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrNotRegistered):
			s.reply(ctx, chat, replyMustRegister)
		case errors.Is(err, domain.ErrArenaBusy):
			if _, active := s.engine.Active(arena); active {
				s.reply(ctx, chat, replyMatchActive)
			} else {
				s.reply(ctx, chat, replyLobbyOpen)
			}
		default:
			s.log(ctx).Error().Err(err).Str("arena", string(arena)).Msg("failed to open lobby")
		}
	case "/endmatch":
		err := s.engine.RequestEnd(ctx, arena, id)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrNoActiveMatch):
			s.reply(ctx, chat, replyNoMatchHere)
		case errors.Is(err, domain.ErrNotAParticipant):
			s.reply(ctx, chat, replyEndPlayersOnly)
		default:
			s.log(ctx).Error().Err(err).Str("arena", string(arena)).Msg("failed to request end")
		}
	case "/help":
		s.reply(ctx, chat, replyGroupHelp)
	case "/leaderboard":
		s.reply(ctx, chat, service.LeaderboardText(s.registry.Leaderboard(0)))
	}
}

func (s *BotServer) answer(ctx context.Context, q *telegram.CallbackQuery, text string, alert bool) {
	err := s.bot.AnswerCallbackQuery(ctx, telegram.AnswerCallbackParams{
		CallbackQueryID: q.ID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		s.log(ctx).Debug().Err(err).Msg("failed to answer callback")
	}
}

func (s *BotServer) edit(ctx context.Context, q *telegram.CallbackQuery, text string) {
	if q.Message == nil {
		return
	}
	err := s.bot.EditMessageText(ctx, telegram.EditMessageTextParams{
		ChatID:    q.Message.Chat.Key(),
		MessageID: q.Message.MessageID,
		Text:      text,
	})
	if err != nil {
		s.log(ctx).Debug().Err(err).Msg("failed to edit callback message")
	}
}

// fail answers a button press that hit an error.
func (s *BotServer) fail(ctx context.Context, q *telegram.CallbackQuery, err error) {
	text, known := toastFor(err)
	if !known {
		s.log(ctx).Error().Err(err).Str("data", q.Data).Msg("callback failed")
	}
	s.answer(ctx, q, text, true)
}

func (s *BotServer) handleCallback(ctx context.Context, q *telegram.CallbackQuery) {
	cb, err := telegram.ParseCallback(q.Data)
	if err != nil {
		s.answer(ctx, q, toastInvalid, true)
		return
	}
	user := playerID(&q.From)
	s.registry.Ensure(ctx, user)

	switch cb.Action {
	case telegram.ActionJoin, telegram.ActionCancelLobby:
		if lobby, ok := s.lobbies.Get(cb.Arena); !ok || lobby.Host != cb.Host {
			s.answer(ctx, q, toastLobbyGone, true)
			return
		}
		if cb.Action == telegram.ActionCancelLobby {
			if err := s.lobbies.Cancel(ctx, cb.Arena, user); err != nil {
				s.fail(ctx, q, err)
				return
			}
			s.answer(ctx, q, toastLobbyCancelled, false)
			return
		}
		if err := s.lobbies.Join(ctx, cb.Arena, user); err != nil {
			s.fail(ctx, q, err)
			return
		}
		s.answer(ctx, q, toastJoining, false)

	case telegram.ActionMove:
		res, err := s.engine.SubmitMove(ctx, cb.Arena, user, cb.Move)
		if err != nil {
			s.fail(ctx, q, err)
			return
		}
		if res.Resolved {
			s.answer(ctx, q, toastRoundDone, false)
			return
		}
		s.answer(ctx, q, toastMoveRecorded, false)

	case telegram.ActionConfirmEnd:
		if err := s.engine.ConfirmEnd(ctx, cb.Arena, user, cb.Yes); err != nil {
			s.fail(ctx, q, err)
			return
		}
		if cb.Yes {
			s.answer(ctx, q, toastEnded, false)
			return
		}
		s.answer(ctx, q, toastCanceled, false)
		s.edit(ctx, q, editEndCanceled)

	case telegram.ActionForfeitYes:
		_, err := s.engine.ConfirmForfeit(ctx, user, true)
		switch {
		case err == nil:
			s.edit(ctx, q, editForfeited)
		case errors.Is(err, domain.ErrNoActiveMatch):
			s.edit(ctx, q, replyNotInMatch)
		default:
			s.fail(ctx, q, err)
			return
		}
		s.answer(ctx, q, toastProcessed, false)

	case telegram.ActionForfeitNo:
		s.answer(ctx, q, toastCanceled, false)
		s.edit(ctx, q, editForfeitCanceled)
	}
}
