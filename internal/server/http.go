package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"ringside-bot/internal/config"
	"ringside-bot/internal/constants"
	"ringside-bot/internal/telegram"

	"github.com/rs/zerolog"
)

const healthText = "RINGSIDE BOT (webhook) OK"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Webhook accepts Telegram updates. It always acknowledges, even for bodies it
// cannot decode, so Telegram does not redeliver them.
func (s *BotServer) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger := s.log(r.Context())
	var u telegram.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, constants.WebhookBodyLimit)).Decode(&u); err != nil {
		logger.Warn().Err(err).Msg("malformed update")
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), constants.RequestTimeout)
	defer cancel()
	s.HandleUpdate(ctx, u)

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *BotServer) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, healthText)
}

type LeaderboardEntry struct {
	Rank    int     `json:"rank"`
	Name    string  `json:"name"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Draws   int     `json:"draws"`
	WinRate float64 `json:"win_rate"`
}

func (s *BotServer) Leaderboard(w http.ResponseWriter, r *http.Request) {
	recs := s.registry.Leaderboard(constants.LeaderboardLimit)
	out := make([]LeaderboardEntry, len(recs))
	for i, rec := range recs {
		out[i] = LeaderboardEntry{
			Rank:    i + 1,
			Name:    rec.Name,
			Wins:    rec.Wins,
			Losses:  rec.Losses,
			Draws:   rec.Draws,
			WinRate: rec.WinRate(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// SetWebhook points Telegram at this deployment's /webhook endpoint.
func SetWebhook(cfg *config.Config, bot BotAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())
		if cfg.WebhookBaseURL == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "WEBHOOK_BASE_URL not set"})
			return
		}
		url := cfg.WebhookBaseURL + "/webhook"
		if err := bot.SetWebhook(r.Context(), url, cfg.WebhookSecret); err != nil {
			logger.Error().Err(err).Str("url", url).Msg("failed to set webhook")
			writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		logger.Info().Str("url", url).Msg("webhook registered")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "url": url})
	}
}
