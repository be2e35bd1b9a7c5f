package botapi

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alikaskat/calendar-bot/internal/logging"
)

// RouterConfig wires the HTTP surface of the bot process.
type RouterConfig struct {
	// Token gates the webhook path; the platform calls /webhook/{token}.
	Token      string
	Dispatcher *Dispatcher
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the handler serving the health probe and, when a
// dispatcher is configured, the webhook endpoint.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "OK - Calendar Bot v%s", Version)
	})

	if cfg.Dispatcher != nil {
		mux.HandleFunc("/webhook/", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}

			token := strings.TrimPrefix(r.URL.Path, "/webhook/")
			if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) != 1 {
				http.NotFound(w, r)
				return
			}

			var upd Update
			if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
				logging.Component(r.Context(), cfg.Logger, "Webhook", "decode").
					ErrorContext(r.Context(), "malformed update", "error", err)
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}

			cfg.Dispatcher.Dispatch(r.Context(), upd)
			w.WriteHeader(http.StatusOK)
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
