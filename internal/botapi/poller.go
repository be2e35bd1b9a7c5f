package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/alikaskat/calendar-bot/internal/logging"
)

// Poller pulls updates from the platform in a long-poll loop, for
// deployments without a public URL.
type Poller struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	dispatcher  *Dispatcher
	logger      *slog.Logger
	pollTimeout time.Duration
	retryDelay  time.Duration
}

// NewPoller constructs a Poller.
func NewPoller(baseURL, token string, dispatcher *Dispatcher, logger *slog.Logger) *Poller {
	pollTimeout := 30 * time.Second
	return &Poller{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: pollTimeout + 10*time.Second},
		dispatcher: dispatcher,
		logger:     logger,

		pollTimeout: pollTimeout,
		retryDelay:  3 * time.Second,
	}
}

type getUpdatesResponse struct {
	Result []Update `json:"result"`
}

// Run polls until the context is cancelled. Each update is dispatched on its
// own goroutine; per-user ordering is enforced by the session store's
// per-user lock, not by the poller.
func (p *Poller) Run(ctx context.Context) error {
	logger := logging.Component(ctx, p.logger, "Poller", "Run")
	logger.InfoContext(ctx, "long polling started")

	var wg sync.WaitGroup
	defer wg.Wait()

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := p.fetch(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WarnContext(ctx, "poll failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.retryDelay):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			wg.Add(1)
			go func(upd Update) {
				defer wg.Done()
				p.dispatcher.Dispatch(ctx, upd)
			}(upd)
		}
	}
}

func (p *Poller) fetch(ctx context.Context, offset int64) ([]Update, error) {
	query := url.Values{}
	query.Set("timeout", strconv.Itoa(int(p.pollTimeout.Seconds())))
	if offset > 0 {
		query.Set("offset", strconv.FormatInt(offset, 10))
	}

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", p.baseURL, p.token, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("botapi: build getUpdates request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("botapi: getUpdates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("botapi: getUpdates: unexpected status %d: %s", resp.StatusCode, snippet)
	}

	var decoded getUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("botapi: decode getUpdates: %w", err)
	}
	return decoded.Result, nil
}
