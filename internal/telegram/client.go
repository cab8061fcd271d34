package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"time"

	"ringside-bot/internal/config"
	"ringside-bot/internal/constants"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const parseModeHTML = "HTML"

// Client calls the Telegram Bot API over fasthttp.
type Client struct {
	base   string
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		base: fmt.Sprintf("%s/bot%s/", cfg.TelegramAPIBase, cfg.BotToken),
		client: &fasthttp.Client{
			MaxConnsPerHost:     64,
			ReadTimeout:         constants.TelegramAPITimeout,
			WriteTimeout:        constants.TelegramAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger.With().Str("component", "telegram").Logger(),
	}
}

func (c *Client) SendMessage(ctx context.Context, p SendMessageParams) (*Message, error) {
	return doRequest[Message](ctx, c, "sendMessage", p)
}

func (c *Client) EditMessageText(ctx context.Context, p EditMessageTextParams) error {
	_, err := doRequest[json.RawMessage](ctx, c, "editMessageText", p)
	return err
}

func (c *Client) DeleteMessage(ctx context.Context, chatID string, messageID int) error {
	_, err := doRequest[bool](ctx, c, "deleteMessage", deleteMessageParams{ChatID: chatID, MessageID: messageID})
	return err
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, p AnswerCallbackParams) error {
	_, err := doRequest[bool](ctx, c, "answerCallbackQuery", p)
	return err
}

func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	_, err := doRequest[bool](ctx, c, "setWebhook", setWebhookParams{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message", "callback_query"},
	})
	return err
}

// SendPhoto uploads png as a multipart form.
func (c *Client) SendPhoto(ctx context.Context, chatID string, png []byte, caption string) (*Message, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("chat_id", chatID); err != nil {
		return nil, err
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return nil, err
		}
	}
	part, err := w.CreateFormFile("photo", "card.png")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(png); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return do[Message](ctx, c, "sendPhoto", w.FormDataContentType(), body.Bytes())
}

func doRequest[T any](ctx context.Context, c *Client, method string, payload any) (*T, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", method, err)
	}
	return do[T](ctx, c, method, "application/json", body)
}

func do[T any](ctx context.Context, c *Client, method, contentType string, body []byte) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + method)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.TelegramAPITimeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Warn().Err(err).Str("method", method).Msg("telegram request failed")
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}

	var result apiResponse[T]
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("telegram %s: bad response (status %d): %w", method, resp.StatusCode(), err)
	}
	if !result.OK {
		return nil, &APIError{Method: method, Code: result.ErrorCode, Description: result.Description}
	}

	c.logger.Debug().Str("method", method).Int("status", resp.StatusCode()).Msg("telegram request completed")
	return &result.Result, nil
}
