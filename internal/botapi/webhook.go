package botapi

import (
	"context"
	"fmt"
)

type setWebhookRequest struct {
	URL                string `json:"url"`
	DropPendingUpdates bool   `json:"drop_pending_updates"`
}

// RegisterWebhook points the platform at this process's webhook endpoint.
// Updates queued while the bot was down are dropped, matching a relay that
// only makes sense for live conversations.
func (s *HTTPSender) RegisterWebhook(ctx context.Context, externalURL string) error {
	payload := setWebhookRequest{
		URL:                fmt.Sprintf("%s/webhook/%s", externalURL, s.token),
		DropPendingUpdates: true,
	}
	return s.post(ctx, "setWebhook", payload)
}

// UnregisterWebhook removes the webhook, releasing the update stream for
// long polling.
func (s *HTTPSender) UnregisterWebhook(ctx context.Context) error {
	return s.post(ctx, "deleteWebhook", struct{}{})
}
