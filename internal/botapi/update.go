// Package botapi adapts the messaging platform to the dialog engine: it
// decodes inbound updates into typed dialog events, delivers outbound
// replies, and exposes the process health probe.
package botapi

import (
	"strings"

	"github.com/alikaskat/calendar-bot/internal/dialog"
)

// Version is reported by the health probe.
const Version = "1.0.1"

// Update is the logical inbound envelope: either a chat message or a
// keyboard callback.
type Update struct {
	UpdateID int64          `json:"update_id"`
	Message  *Message       `json:"message,omitempty"`
	Callback *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is a plain chat message.
type Message struct {
	Chat Chat   `json:"chat"`
	Text string `json:"text"`
}

// Chat identifies the conversation; for this bot it doubles as the user ID.
type Chat struct {
	ID int64 `json:"id"`
}

// CallbackQuery is a keyboard button press that must be acknowledged.
type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message,omitempty"`
}

// Inbound is an update decoded into the dialog engine's event contract.
type Inbound struct {
	UserID     int64
	Event      dialog.Event
	CallbackID string
}

// DecodeUpdate translates the wire envelope into a typed event. Stringly
// callback payloads are decoded here and nowhere else. Updates that carry
// nothing actionable report false.
func DecodeUpdate(upd Update) (Inbound, bool) {
	if upd.Callback != nil {
		if upd.Callback.Message == nil {
			return Inbound{}, false
		}
		ev, ok := dialog.DecodeCallback(upd.Callback.Data)
		if !ok {
			return Inbound{}, false
		}
		return Inbound{
			UserID:     upd.Callback.Message.Chat.ID,
			Event:      ev,
			CallbackID: upd.Callback.ID,
		}, true
	}

	if upd.Message != nil {
		text := strings.TrimSpace(upd.Message.Text)
		if text == "" {
			return Inbound{}, false
		}
		return Inbound{
			UserID: upd.Message.Chat.ID,
			Event:  parseMessage(text),
		}, true
	}

	return Inbound{}, false
}

func parseMessage(text string) dialog.Event {
	if !strings.HasPrefix(text, "/") {
		return dialog.TextMessage{Text: text}
	}

	fields := strings.Fields(text)
	name := strings.TrimPrefix(fields[0], "/")
	// Commands may arrive as /cmd@botname in group chats.
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return dialog.Command{Name: strings.ToLower(name), Args: fields[1:]}
}
