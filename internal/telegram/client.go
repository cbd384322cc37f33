package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Update is a Telegram Update object (partial schema).
type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an inbound or delivered chat message (partial schema).
type Message struct {
	MessageID int    `json:"message_id"`
	Text      string `json:"text"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	From struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"from"`
}

type apiResponse struct {
	Ok          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// SendOptions are the optional knobs of sendMessage.
type SendOptions struct {
	ParseMode   string
	ReplyMarkup any
}

// Client wraps the Telegram Bot API over HTTP.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

func NewClient(token string, log zerolog.Logger) *Client {
	http := resty.New().
		SetBaseURL("https://api.telegram.org/bot" + token).
		// Long-poll getUpdates holds the connection for up to a minute.
		SetTimeout(90 * time.Second)

	return &Client{http: http, log: log}
}

// SendMessage delivers text to a chat and returns the message id so the
// caller can edit it later.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (int, error) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if opts != nil {
		if opts.ParseMode != "" {
			payload["parse_mode"] = opts.ParseMode
		}
		if opts.ReplyMarkup != nil {
			payload["reply_markup"] = opts.ReplyMarkup
		}
	}

	result, err := c.call(ctx, "/sendMessage", payload)
	if err != nil {
		return 0, err
	}
	var msg Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return 0, fmt.Errorf("telegram sendMessage: parse result: %w", err)
	}
	return msg.MessageID, nil
}

// EditMessage replaces the text of a previously sent message. Editing
// to identical content answers "message is not modified", which is a
// no-op here, not an error.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := c.call(ctx, "/editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	})
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

// SendTyping emits the "typing..." chat action.
func (c *Client) SendTyping(ctx context.Context, chatID int64) error {
	_, err := c.call(ctx, "/sendChatAction", map[string]any{
		"chat_id": chatID,
		"action":  "typing",
	})
	return err
}

// GetUpdates long-polls for inbound updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset, timeoutSec int) ([]Update, error) {
	result, err := c.call(ctx, "/getUpdates", map[string]any{
		"offset":  offset,
		"timeout": timeoutSec,
	})
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("telegram getUpdates: parse result: %w", err)
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(method)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("telegram %s: status %d: %w", method, resp.StatusCode(), err)
	}
	if !parsed.Ok {
		return nil, fmt.Errorf("telegram %s: %s (code %d)", method, parsed.Description, parsed.ErrorCode)
	}
	return parsed.Result, nil
}
