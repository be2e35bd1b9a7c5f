package dialog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/alikaskat/calendar-bot/internal/session"
)

// ErrInvalidClock is returned for text that is not a valid HH:MM time.
var ErrInvalidClock = errors.New("dialog: invalid time of day")

// ParseClock parses strict "HH:MM" wall-clock text. Both the discrete time
// picker and free-text input funnel through this single validation.
func ParseClock(text string) (session.TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return session.TimeOfDay{}, ErrInvalidClock
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return session.TimeOfDay{}, ErrInvalidClock
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return session.TimeOfDay{}, ErrInvalidClock
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return session.TimeOfDay{}, ErrInvalidClock
	}

	return session.TimeOfDay{Hour: hour, Minute: minute}, nil
}
