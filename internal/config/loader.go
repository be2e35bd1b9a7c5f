package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode selects how inbound updates are delivered to the bot.
const (
	ModeWebhook = "webhook"
	ModePolling = "polling"
)

// Config captures environment driven configuration values for the bot process.
type Config struct {
	BotToken           string
	Mode               string
	ExternalURL        string
	HTTPPort           int
	APIBaseURL         string
	CalendarBaseURL    string
	CalendarToken      string
	CalendarID         string
	Timezone           string
	EventDuration      time.Duration
	SessionIdleTimeout time.Duration
	AuthFile           string
	AuthDSN            string
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating required
// values and reporting every missing or malformed entry in a single error.
func Load() (Config, error) {
	cfg := Config{
		Mode:               ModeWebhook,
		HTTPPort:           10000,
		APIBaseURL:         "https://api.telegram.org",
		CalendarID:         "primary",
		Timezone:           "Asia/Almaty",
		EventDuration:      time.Hour,
		SessionIdleTimeout: time.Hour,
		AuthFile:           "calendar_auth.json",
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if token := strings.TrimSpace(os.Getenv("BOT_TOKEN")); token == "" {
		missing = append(missing, "BOT_TOKEN")
	} else {
		cfg.BotToken = token
	}

	if mode := strings.TrimSpace(os.Getenv("BOT_MODE")); mode != "" {
		switch strings.ToLower(mode) {
		case ModeWebhook, ModePolling:
			cfg.Mode = strings.ToLower(mode)
		default:
			invalid = append(invalid, "BOT_MODE")
		}
	}

	cfg.ExternalURL = strings.TrimRight(strings.TrimSpace(os.Getenv("BOT_EXTERNAL_URL")), "/")
	if cfg.Mode == ModeWebhook && cfg.ExternalURL == "" {
		missing = append(missing, "BOT_EXTERNAL_URL")
	}

	if portValue := strings.TrimSpace(os.Getenv("BOT_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOT_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if base := strings.TrimSpace(os.Getenv("BOT_API_URL")); base != "" {
		cfg.APIBaseURL = strings.TrimRight(base, "/")
	}

	if base := strings.TrimSpace(os.Getenv("BOT_CALENDAR_URL")); base == "" {
		missing = append(missing, "BOT_CALENDAR_URL")
	} else {
		cfg.CalendarBaseURL = strings.TrimRight(base, "/")
	}

	if token := strings.TrimSpace(os.Getenv("BOT_CALENDAR_TOKEN")); token == "" {
		missing = append(missing, "BOT_CALENDAR_TOKEN")
	} else {
		cfg.CalendarToken = token
	}

	if id := strings.TrimSpace(os.Getenv("BOT_CALENDAR_ID")); id != "" {
		cfg.CalendarID = id
	}

	if zone := strings.TrimSpace(os.Getenv("BOT_TIMEZONE")); zone != "" {
		if _, err := time.LoadLocation(zone); err != nil {
			invalid = append(invalid, "BOT_TIMEZONE")
		} else {
			cfg.Timezone = zone
		}
	}

	if value := strings.TrimSpace(os.Getenv("BOT_EVENT_DURATION")); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil || duration <= 0 {
			invalid = append(invalid, "BOT_EVENT_DURATION")
		} else {
			cfg.EventDuration = duration
		}
	}

	if value := strings.TrimSpace(os.Getenv("BOT_SESSION_IDLE_TIMEOUT")); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "BOT_SESSION_IDLE_TIMEOUT")
		} else {
			cfg.SessionIdleTimeout = timeout
		}
	}

	if path := strings.TrimSpace(os.Getenv("BOT_AUTH_FILE")); path != "" {
		cfg.AuthFile = path
	}
	cfg.AuthDSN = strings.TrimSpace(os.Getenv("BOT_AUTH_DSN"))

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("не заданы обязательные переменные окружения: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("недопустимые значения переменных окружения: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Location resolves the configured timezone. Load already validated the name.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
