package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/alikaskat/calendar-bot/internal/logging"
)

// Client talks to the calendar backend over HTTP. A client-generated event ID
// is sent with every insert and reused across retries, so a request that
// succeeded on the backend but failed on the wire is never duplicated.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retry      RetryPolicy
	newID      func() string
	logger     *slog.Logger
}

// NewClient constructs a Client for the given backend base URL and credential.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry:      DefaultRetryPolicy(),
		newID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ClientOption customizes Client construction.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = policy }
}

// WithIDGenerator overrides the client event ID source.
func WithIDGenerator(newID func() string) ClientOption {
	return func(c *Client) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// WithLogger attaches a logger used when the context carries none.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

type insertRequest struct {
	ClientEventID string `json:"client_event_id"`
	Summary       string `json:"summary"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Timezone      string `json:"timezone"`
}

type insertResponse struct {
	ID       string `json:"id"`
	HTMLLink string `json:"html_link"`
}

// CreateEvent inserts the event into the backend, retrying transient failures
// within the configured budget.
func (c *Client) CreateEvent(ctx context.Context, event Event) (ref Ref, err error) {
	logger := logging.Component(ctx, c.logger, "CalendarClient", "CreateEvent",
		"calendar_id", event.CalendarID,
		"start", event.Start.Format(time.RFC3339),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event creation failed", "error", err, "permanent", IsPermanent(err))
			return
		}
		logger.InfoContext(ctx, "event created", "event_id", ref.ID)
	}()

	if event.Summary == "" {
		err = &Error{Op: "CreateEvent", Permanent: true, Err: errors.New("empty summary")}
		return
	}
	if !event.End.After(event.Start) {
		err = &Error{Op: "CreateEvent", Permanent: true, Err: errors.New("end is not after start")}
		return
	}

	payload := insertRequest{
		ClientEventID: c.newID(),
		Summary:       event.Summary,
		Start:         event.Start.Format(time.RFC3339),
		End:           event.End.Format(time.RFC3339),
		Timezone:      event.Timezone,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		err = &Error{Op: "CreateEvent", Permanent: true, Err: err}
		return
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(event.CalendarID))

	err = c.retry.Do(ctx, func() error {
		attemptErr := c.insert(ctx, endpoint, body, &ref)
		if attemptErr != nil {
			logger.WarnContext(ctx, "insert attempt failed", "error", attemptErr)
		}
		return attemptErr
	})
	return
}

func (c *Client) insert(ctx context.Context, endpoint string, body []byte, ref *Ref) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &Error{Op: "CreateEvent", Permanent: true, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network level failures are worth another attempt.
		return &Error{Op: "CreateEvent", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return classifyStatus("CreateEvent", resp.StatusCode, string(snippet))
	}

	var decoded insertResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return &Error{Op: "CreateEvent", Permanent: true, Err: fmt.Errorf("malformed response: %w", err)}
	}
	ref.ID = decoded.ID
	ref.URL = decoded.HTMLLink
	return nil
}

// classifyStatus maps an HTTP status to a transient or permanent gateway
// error: 429 and 5xx are retried, everything else in 4xx is not.
func classifyStatus(op string, status int, body string) *Error {
	transient := status == http.StatusTooManyRequests || status >= 500
	return &Error{
		Op:         op,
		StatusCode: status,
		Permanent:  !transient,
		Err:        fmt.Errorf("unexpected status: %s", body),
	}
}
