package calendar

import (
	"context"
	"time"
)

// Event is the single artifact the bot hands to the calendar backend.
type Event struct {
	CalendarID string
	Summary    string
	Start      time.Time
	End        time.Time
	Timezone   string
}

// Ref points at a created event on the backend.
type Ref struct {
	ID  string
	URL string
}

// Gateway abstracts the external event-creation capability.
type Gateway interface {
	CreateEvent(ctx context.Context, event Event) (Ref, error)
}
