package dialog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event is an inbound user interaction, decoded exactly once at the transport
// boundary into one of the variants below.
type Event interface {
	isEvent()
}

// TextMessage is a free-text message from the user.
type TextMessage struct {
	Text string
}

// Command is a slash command with its arguments.
type Command struct {
	Name string
	Args []string
}

// AddTaskPressed starts the task-creation flow.
type AddTaskPressed struct{}

// DateSelected is a day picked on the calendar keyboard.
type DateSelected struct {
	Year  int
	Month time.Month
	Day   int
}

// MonthNav asks for the calendar keyboard of another month. The target month
// is resolved when the keyboard is rendered, so late presses on an old
// keyboard still navigate to the month the button named.
type MonthNav struct {
	Year  int
	Month time.Month
}

// TimeSelected is a time picked on the time keyboard.
type TimeSelected struct {
	Hour   int
	Minute int
}

// ConfirmPressed submits the completed draft.
type ConfirmPressed struct{}

// CancelPressed discards the draft from any stage.
type CancelPressed struct{}

// NoopPressed is an inert cell (grid padding, weekday header).
type NoopPressed struct{}

func (TextMessage) isEvent()    {}
func (Command) isEvent()        {}
func (AddTaskPressed) isEvent() {}
func (DateSelected) isEvent()   {}
func (MonthNav) isEvent()       {}
func (TimeSelected) isEvent()   {}
func (ConfirmPressed) isEvent() {}
func (CancelPressed) isEvent()  {}
func (NoopPressed) isEvent()    {}

// Callback data stays stringly on the wire; these two functions are the only
// place that encoding lives.
const (
	callbackAddTask = "addtask"
	callbackConfirm = "confirm"
	callbackCancel  = "cancel"
	callbackNoop    = "noop"
	datePrefix      = "date:"
	navPrefix       = "nav:"
	timePrefix      = "time:"
)

// EncodeCallback renders the callback payload for an event-producing button.
func EncodeCallback(ev Event) string {
	switch v := ev.(type) {
	case AddTaskPressed:
		return callbackAddTask
	case DateSelected:
		return fmt.Sprintf("%s%04d-%02d-%02d", datePrefix, v.Year, int(v.Month), v.Day)
	case MonthNav:
		return fmt.Sprintf("%s%04d-%02d", navPrefix, v.Year, int(v.Month))
	case TimeSelected:
		return fmt.Sprintf("%s%02d:%02d", timePrefix, v.Hour, v.Minute)
	case ConfirmPressed:
		return callbackConfirm
	case CancelPressed:
		return callbackCancel
	case NoopPressed:
		return callbackNoop
	}
	return callbackNoop
}

// DecodeCallback parses callback payload text into its event variant.
func DecodeCallback(data string) (Event, bool) {
	switch data {
	case callbackAddTask:
		return AddTaskPressed{}, true
	case callbackConfirm:
		return ConfirmPressed{}, true
	case callbackCancel:
		return CancelPressed{}, true
	case callbackNoop:
		return NoopPressed{}, true
	}

	switch {
	case strings.HasPrefix(data, datePrefix):
		parts := strings.Split(strings.TrimPrefix(data, datePrefix), "-")
		if len(parts) != 3 {
			return nil, false
		}
		year, errY := strconv.Atoi(parts[0])
		month, errM := strconv.Atoi(parts[1])
		day, errD := strconv.Atoi(parts[2])
		if errY != nil || errM != nil || errD != nil || month < 1 || month > 12 {
			return nil, false
		}
		return DateSelected{Year: year, Month: time.Month(month), Day: day}, true

	case strings.HasPrefix(data, navPrefix):
		parts := strings.Split(strings.TrimPrefix(data, navPrefix), "-")
		if len(parts) != 2 {
			return nil, false
		}
		year, errY := strconv.Atoi(parts[0])
		month, errM := strconv.Atoi(parts[1])
		if errY != nil || errM != nil || month < 1 || month > 12 {
			return nil, false
		}
		return MonthNav{Year: year, Month: time.Month(month)}, true

	case strings.HasPrefix(data, timePrefix):
		clock, err := ParseClock(strings.TrimPrefix(data, timePrefix))
		if err != nil {
			return nil, false
		}
		return TimeSelected{Hour: clock.Hour, Minute: clock.Minute}, true
	}

	return nil, false
}
