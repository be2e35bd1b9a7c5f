package botapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alikaskat/calendar-bot/internal/dialog"
)

type recordingEngine struct {
	mu      sync.Mutex
	events  []dialog.Event
	userIDs []int64
	replies []dialog.Reply
	err     error
}

func (e *recordingEngine) HandleEvent(ctx context.Context, userID int64, ev dialog.Event) ([]dialog.Reply, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	e.userIDs = append(e.userIDs, userID)
	return e.replies, e.err
}

type recordingSender struct {
	mu        sync.Mutex
	sent      []dialog.Reply
	answered  []string
	sendErr   error
	answerErr error
}

func (s *recordingSender) SendReply(ctx context.Context, userID int64, reply dialog.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, reply)
	return s.sendErr
}

func (s *recordingSender) AnswerCallback(ctx context.Context, callbackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answered = append(s.answered, callbackID)
	return s.answerErr
}

func newTestRouter(engine *recordingEngine, sender *recordingSender) http.Handler {
	return NewRouter(RouterConfig{
		Token:      "secret-token",
		Dispatcher: NewDispatcher(engine, sender, nil),
	})
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	handler := NewRouter(RouterConfig{})

	t.Run("reports the bot version", func(t *testing.T) {
		t.Parallel()
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		body, _ := io.ReadAll(recorder.Body)
		want := fmt.Sprintf("OK - Calendar Bot v%s", Version)
		if string(body) != want {
			t.Fatalf("expected body %q, got %q", want, body)
		}
	})

	t.Run("rejects non-GET methods", func(t *testing.T) {
		t.Parallel()
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/health", nil))

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
	})

	t.Run("webhook path is absent without a dispatcher", func(t *testing.T) {
		t.Parallel()
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/webhook/secret-token", strings.NewReader("{}")))

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

func TestRouter_Webhook(t *testing.T) {
	t.Parallel()

	t.Run("valid update reaches the engine and replies go out", func(t *testing.T) {
		t.Parallel()
		engine := &recordingEngine{replies: []dialog.Reply{{Text: "Привет"}}}
		sender := &recordingSender{}
		handler := newTestRouter(engine, sender)

		payload := `{"update_id": 1, "message": {"chat": {"id": 7}, "text": "/start"}}`
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/webhook/secret-token", strings.NewReader(payload)))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if len(engine.events) != 1 || len(engine.userIDs) != 1 || engine.userIDs[0] != 7 {
			t.Fatalf("expected one engine call for user 7, got %+v", engine.userIDs)
		}
		if len(sender.sent) != 1 || sender.sent[0].Text != "Привет" {
			t.Fatalf("expected reply delivered, got %+v", sender.sent)
		}
	})

	t.Run("wrong token is answered with 404", func(t *testing.T) {
		t.Parallel()
		engine := &recordingEngine{}
		handler := newTestRouter(engine, &recordingSender{})

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/webhook/wrong-token", strings.NewReader("{}")))

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
		if len(engine.events) != 0 {
			t.Fatalf("engine must not be reached with a wrong token")
		}
	})

	t.Run("malformed body is answered with 400", func(t *testing.T) {
		t.Parallel()
		engine := &recordingEngine{}
		handler := newTestRouter(engine, &recordingSender{})

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/webhook/secret-token", strings.NewReader("{not json")))

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("GET on the webhook path is rejected", func(t *testing.T) {
		t.Parallel()
		handler := newTestRouter(&recordingEngine{}, &recordingSender{})

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/webhook/secret-token", nil))

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
	})
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Parallel()

	t.Run("callback presses are acknowledged before handling", func(t *testing.T) {
		t.Parallel()
		engine := &recordingEngine{}
		sender := &recordingSender{}
		dispatcher := NewDispatcher(engine, sender, nil)

		dispatcher.Dispatch(context.Background(), Update{Callback: &CallbackQuery{
			ID:      "cb-1",
			Data:    "addtask",
			Message: &Message{Chat: Chat{ID: 7}},
		}})

		if len(sender.answered) != 1 || sender.answered[0] != "cb-1" {
			t.Fatalf("expected callback acknowledged, got %+v", sender.answered)
		}
		if len(engine.events) != 1 {
			t.Fatalf("expected one engine call, got %d", len(engine.events))
		}
	})

	t.Run("ignored updates never reach the engine", func(t *testing.T) {
		t.Parallel()
		engine := &recordingEngine{}
		sender := &recordingSender{}
		dispatcher := NewDispatcher(engine, sender, nil)

		dispatcher.Dispatch(context.Background(), Update{})

		if len(engine.events) != 0 || len(sender.sent) != 0 {
			t.Fatalf("expected nothing dispatched")
		}
	})

	t.Run("replies are delivered even when the engine reports a fault", func(t *testing.T) {
		t.Parallel()
		engine := &recordingEngine{
			replies: []dialog.Reply{{Text: "Что-то пошло не так"}},
			err:     context.DeadlineExceeded,
		}
		sender := &recordingSender{}
		dispatcher := NewDispatcher(engine, sender, nil)

		dispatcher.Dispatch(context.Background(), Update{Message: &Message{Chat: Chat{ID: 7}, Text: "привет"}})

		if len(sender.sent) != 1 {
			t.Fatalf("expected fault reply delivered, got %+v", sender.sent)
		}
	})
}
