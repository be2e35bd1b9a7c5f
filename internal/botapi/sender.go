package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alikaskat/calendar-bot/internal/dialog"
	"github.com/alikaskat/calendar-bot/internal/logging"
)

// Sender delivers engine replies back to the user.
type Sender interface {
	SendReply(ctx context.Context, userID int64, reply dialog.Reply) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// HTTPSender posts outbound messages to the messaging platform API.
type HTTPSender struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPSender constructs a sender for the given API base URL and bot token.
func NewHTTPSender(baseURL, token string, httpClient *http.Client, logger *slog.Logger) *HTTPSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSender{baseURL: baseURL, token: token, httpClient: httpClient, logger: logger}
}

type sendMessageRequest struct {
	ChatID      int64           `json:"chat_id"`
	Text        string          `json:"text"`
	ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
}

// SendReply implements Sender.
func (s *HTTPSender) SendReply(ctx context.Context, userID int64, reply dialog.Reply) error {
	payload := sendMessageRequest{ChatID: userID, Text: reply.Text}
	if reply.Keyboard != nil {
		payload.ReplyMarkup = encodeKeyboard(*reply.Keyboard)
	}
	return s.post(ctx, "sendMessage", payload)
}

// AnswerCallback implements Sender. The platform shows a spinner on the
// pressed button until the callback query is acknowledged.
func (s *HTTPSender) AnswerCallback(ctx context.Context, callbackID string) error {
	if callbackID == "" {
		return nil
	}
	return s.post(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID})
}

func (s *HTTPSender) post(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("botapi: encode %s: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", s.baseURL, s.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("botapi: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("botapi: %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logging.Component(ctx, s.logger, "HTTPSender", method).
			ErrorContext(ctx, "delivery rejected", "status", resp.StatusCode, "body", string(snippet))
		return fmt.Errorf("botapi: %s: unexpected status %d", method, resp.StatusCode)
	}
	return nil
}

func encodeKeyboard(keyboard dialog.Keyboard) *inlineKeyboard {
	rows := make([][]inlineButton, 0, len(keyboard.Rows))
	for _, row := range keyboard.Rows {
		buttons := make([]inlineButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, inlineButton{Text: button.Label, CallbackData: button.Data})
		}
		rows = append(rows, buttons)
	}
	return &inlineKeyboard{InlineKeyboard: rows}
}
