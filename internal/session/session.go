package session

import "time"

// Stage identifies the discrete state of a user's task-creation dialog.
type Stage int

const (
	// StageMainMenu is the idle state; the draft is empty.
	StageMainMenu Stage = iota
	// StageAwaitingTitle means the bot asked for a task title.
	StageAwaitingTitle
	// StageAwaitingDate means the title is collected and a date is expected.
	StageAwaitingDate
	// StageAwaitingTime means title and date are collected and a time is expected.
	StageAwaitingTime
	// StageAwaitingConfirm means the draft is complete and awaits confirmation.
	StageAwaitingConfirm
)

// String returns a stable label used in logs.
func (s Stage) String() string {
	switch s {
	case StageMainMenu:
		return "main_menu"
	case StageAwaitingTitle:
		return "awaiting_title"
	case StageAwaitingDate:
		return "awaiting_date"
	case StageAwaitingTime:
		return "awaiting_time"
	case StageAwaitingConfirm:
		return "awaiting_confirm"
	}
	return "unknown"
}

// Date is a calendar day selected by the user.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// TimeOfDay is a wall-clock time selected or typed by the user.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Draft holds the partially collected task fields. Pointer fields distinguish
// "not collected yet" from zero values.
type Draft struct {
	Title *string
	Date  *Date
	Time  *TimeOfDay
}

// Session is the per-user dialog state.
type Session struct {
	UserID     int64
	Stage      Stage
	Draft      Draft
	LastActive time.Time
}

// Reset returns the session to the main menu and discards the draft.
func (s *Session) Reset() {
	s.Stage = StageMainMenu
	s.Draft = Draft{}
}
