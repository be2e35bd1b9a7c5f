package botapi

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alikaskat/calendar-bot/internal/dialog"
	"github.com/alikaskat/calendar-bot/internal/logging"
)

// Engine is the slice of the dialog engine the transport needs.
type Engine interface {
	HandleEvent(ctx context.Context, userID int64, ev dialog.Event) ([]dialog.Reply, error)
}

// Dispatcher routes decoded updates through the engine and delivers the
// resulting replies. It is shared by the webhook handler and the poller.
type Dispatcher struct {
	engine Engine
	sender Sender
	logger *slog.Logger
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(engine Engine, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{engine: engine, sender: sender, logger: logger}
}

// Dispatch handles one update end to end. Transport errors are logged, not
// returned: the platform must never be told to redeliver an update the
// engine already processed.
func (d *Dispatcher) Dispatch(ctx context.Context, upd Update) {
	logger := logging.Component(ctx, d.logger, "Dispatcher", "Dispatch",
		"update_id", upd.UpdateID,
		"correlation_id", uuid.NewString(),
	)
	ctx = logging.ContextWithLogger(ctx, logger)

	inbound, ok := DecodeUpdate(upd)
	if !ok {
		logger.InfoContext(ctx, "update ignored")
		return
	}

	if inbound.CallbackID != "" {
		if err := d.sender.AnswerCallback(ctx, inbound.CallbackID); err != nil {
			logger.WarnContext(ctx, "callback acknowledgment failed", "error", err)
		}
	}

	replies, err := d.engine.HandleEvent(ctx, inbound.UserID, inbound.Event)
	if err != nil {
		logger.ErrorContext(ctx, "engine fault", "error", err)
	}

	for _, reply := range replies {
		if err := d.sender.SendReply(ctx, inbound.UserID, reply); err != nil {
			logger.ErrorContext(ctx, "reply delivery failed", "error", err)
		}
	}
}
