package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alikaskat/calendar-bot/internal/auth"
	"github.com/alikaskat/calendar-bot/internal/calendar"
	"github.com/alikaskat/calendar-bot/internal/logging"
	"github.com/alikaskat/calendar-bot/internal/session"
)

// Config carries the behavior knobs the engine must not hard-code.
type Config struct {
	// Location is the timezone in which event timestamps are built.
	Location *time.Location
	// EventDuration is the implicit length of every created event.
	EventDuration time.Duration
	// FallbackCalendarID receives events of users without a registered owner calendar.
	FallbackCalendarID string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine drives each user through the title, date, time, confirmation flow
// and hands the completed draft to the calendar gateway exactly once.
type Engine struct {
	sessions           *session.Store
	gateway            calendar.Gateway
	auth               auth.Store
	location           *time.Location
	eventDuration      time.Duration
	fallbackCalendarID string
	now                func() time.Time
	logger             *slog.Logger
}

// NewEngine constructs an Engine with the provided collaborators.
func NewEngine(sessions *session.Store, gateway calendar.Gateway, authStore auth.Store, cfg Config) *Engine {
	return NewEngineWithLogger(sessions, gateway, authStore, cfg, nil)
}

// NewEngineWithLogger constructs an Engine with a specified logger.
func NewEngineWithLogger(sessions *session.Store, gateway calendar.Gateway, authStore auth.Store, cfg Config, logger *slog.Logger) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.EventDuration <= 0 {
		cfg.EventDuration = time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		sessions:           sessions,
		gateway:            gateway,
		auth:               authStore,
		location:           cfg.Location,
		eventDuration:      cfg.EventDuration,
		fallbackCalendarID: cfg.FallbackCalendarID,
		now:                cfg.Now,
		logger:             logger,
	}
}

// HandleEvent processes one inbound event for the user and returns the
// replies to deliver. The user's session is locked for the whole transition,
// so a double-submitting user cannot trigger the gateway twice. A fault
// during the transition resets the session to the main menu rather than
// leaving stage and draft out of step.
func (e *Engine) HandleEvent(ctx context.Context, userID int64, ev Event) (replies []Reply, err error) {
	logger := logging.Component(ctx, e.logger, "DialogEngine", "HandleEvent",
		"user_id", userID,
		"event", fmt.Sprintf("%T", ev),
	)

	final := e.sessions.Do(userID, func(sess *session.Session) {
		defer func() {
			if r := recover(); r != nil {
				sess.Reset()
				replies = []Reply{textReply(msgInternal)}
				err = fmt.Errorf("dialog: transition panic: %v", r)
			}
		}()
		replies = e.transition(ctx, sess, ev)
	})

	if err != nil {
		logger.ErrorContext(ctx, "transition failed", "error", err, "stage", final.Stage.String())
		return replies, err
	}
	logger.InfoContext(ctx, "event handled", "stage", final.Stage.String(), "replies", len(replies))
	return replies, nil
}

func (e *Engine) transition(ctx context.Context, sess *session.Session, ev Event) []Reply {
	switch v := ev.(type) {
	case Command:
		return e.handleCommand(ctx, sess, v)
	case AddTaskPressed:
		return e.startTask(ctx, sess)
	case TextMessage:
		return e.handleText(ctx, sess, v.Text)
	case DateSelected:
		return e.handleDate(sess, v)
	case MonthNav:
		if sess.Stage != session.StageAwaitingDate {
			return staleReply(sess)
		}
		return []Reply{keyboardReply(msgPromptDate, calendarKeyboard(v.Year, v.Month))}
	case TimeSelected:
		return e.handleTime(sess, session.TimeOfDay{Hour: v.Hour, Minute: v.Minute})
	case ConfirmPressed:
		return e.completeDraft(ctx, sess)
	case CancelPressed:
		sess.Reset()
		return []Reply{keyboardReply(msgCancelled, mainMenuKeyboard())}
	case NoopPressed:
		return nil
	}
	return []Reply{textReply(msgUnknownInput)}
}

func (e *Engine) handleCommand(ctx context.Context, sess *session.Session, cmd Command) []Reply {
	switch cmd.Name {
	case "start":
		sess.Reset()
		return []Reply{keyboardReply(msgWelcome, mainMenuKeyboard())}
	case "help":
		// Stateless informational reply; the stage stays untouched.
		return []Reply{textReply(msgHelp)}
	case "cancel":
		sess.Reset()
		return []Reply{keyboardReply(msgCancelled, mainMenuKeyboard())}
	case "addtask":
		return e.startTask(ctx, sess)
	case "register":
		return e.handleRegister(ctx, sess, cmd.Args)
	case "share":
		return e.handleShare(ctx, sess, cmd.Args)
	case "verify":
		return e.handleVerify(ctx, sess, cmd.Args)
	}
	return []Reply{textReply(msgUnknownInput)}
}

func (e *Engine) startTask(ctx context.Context, sess *session.Session) []Reply {
	authorized, err := e.auth.IsAuthorized(ctx, sess.UserID)
	if err != nil {
		e.logAuthFailure(ctx, sess.UserID, "IsAuthorized", err)
		return []Reply{textReply(msgInternal)}
	}
	if !authorized {
		return []Reply{textReply(msgUnauthorized)}
	}

	sess.Reset()
	sess.Stage = session.StageAwaitingTitle
	return []Reply{textReply(msgPromptTitle)}
}

func (e *Engine) handleText(ctx context.Context, sess *session.Session, text string) []Reply {
	switch sess.Stage {
	case session.StageAwaitingTitle:
		title := strings.TrimSpace(text)
		if title == "" {
			return []Reply{textReply(msgPromptTitle)}
		}
		sess.Draft.Title = &title
		sess.Stage = session.StageAwaitingDate
		now := e.now().In(e.location)
		return []Reply{keyboardReply(msgPromptDate, calendarKeyboard(now.Year(), now.Month()))}

	case session.StageAwaitingDate:
		return []Reply{textReply(msgPickFromGrid)}

	case session.StageAwaitingTime:
		clock, err := ParseClock(text)
		if err != nil {
			return []Reply{textReply(msgBadTime)}
		}
		return e.handleTime(sess, clock)

	case session.StageAwaitingConfirm:
		return []Reply{textReply(msgConfirmAgain)}
	}

	return []Reply{textReply(msgUnknownInput)}
}

func (e *Engine) handleDate(sess *session.Session, v DateSelected) []Reply {
	if sess.Stage != session.StageAwaitingDate || sess.Draft.Title == nil {
		return staleReply(sess)
	}
	if !ValidDate(v.Year, v.Month, v.Day) {
		return []Reply{keyboardReply(msgPickFromGrid, calendarKeyboard(v.Year, v.Month))}
	}

	sess.Draft.Date = &session.Date{Year: v.Year, Month: v.Month, Day: v.Day}
	sess.Stage = session.StageAwaitingTime
	return []Reply{keyboardReply(msgPromptTime, timeKeyboard())}
}

func (e *Engine) handleTime(sess *session.Session, clock session.TimeOfDay) []Reply {
	if sess.Stage != session.StageAwaitingTime || sess.Draft.Title == nil || sess.Draft.Date == nil {
		return staleReply(sess)
	}

	sess.Draft.Time = &clock
	sess.Stage = session.StageAwaitingConfirm
	return []Reply{keyboardReply(msgConfirm(sess.Draft), confirmKeyboard())}
}

// completeDraft is the single completion path for every input modality. The
// session is reset before returning in all outcomes, so a stale re-press of
// the confirm button finds an empty draft and is answered with "start over"
// instead of a second gateway call.
func (e *Engine) completeDraft(ctx context.Context, sess *session.Session) []Reply {
	if sess.Stage != session.StageAwaitingConfirm ||
		sess.Draft.Title == nil || sess.Draft.Date == nil || sess.Draft.Time == nil {
		return staleReply(sess)
	}

	title := *sess.Draft.Title
	date := *sess.Draft.Date
	clock := *sess.Draft.Time
	sess.Reset()

	start := time.Date(date.Year, date.Month, date.Day, clock.Hour, clock.Minute, 0, 0, e.location)
	event := calendar.Event{
		CalendarID: e.resolveCalendarID(ctx, sess.UserID),
		Summary:    title,
		Start:      start,
		End:        start.Add(e.eventDuration),
		Timezone:   e.location.String(),
	}

	ref, err := e.gateway.CreateEvent(ctx, event)
	if err != nil {
		logging.Component(ctx, e.logger, "DialogEngine", "completeDraft", "user_id", sess.UserID).
			ErrorContext(ctx, "event creation failed", "error", err)
		return []Reply{keyboardReply(msgCreateFailed, mainMenuKeyboard())}
	}

	return []Reply{keyboardReply(msgCreated(title, ref.URL), mainMenuKeyboard())}
}

func (e *Engine) resolveCalendarID(ctx context.Context, userID int64) string {
	ownerID, ok, err := e.auth.ResolveOwner(ctx, userID)
	if err != nil {
		e.logAuthFailure(ctx, userID, "ResolveOwner", err)
		return e.fallbackCalendarID
	}
	if !ok {
		return e.fallbackCalendarID
	}

	calendarID, err := e.auth.PrimaryCalendar(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, auth.ErrNotFound) {
			e.logAuthFailure(ctx, userID, "PrimaryCalendar", err)
		}
		return e.fallbackCalendarID
	}
	return calendarID
}

func (e *Engine) handleRegister(ctx context.Context, sess *session.Session, args []string) []Reply {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return []Reply{textReply(msgRegisterUsage)}
	}
	if err := e.auth.RegisterOwner(ctx, sess.UserID, strings.TrimSpace(args[0])); err != nil {
		e.logAuthFailure(ctx, sess.UserID, "RegisterOwner", err)
		return []Reply{textReply(msgInternal)}
	}
	return []Reply{keyboardReply(msgRegistered, mainMenuKeyboard())}
}

func (e *Engine) handleShare(ctx context.Context, sess *session.Session, args []string) []Reply {
	if len(args) != 2 {
		return []Reply{textReply(msgShareUsage)}
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return []Reply{textReply(msgShareUsage)}
	}

	if err := e.auth.GrantAccess(ctx, sess.UserID, target, args[1]); err != nil {
		if errors.Is(err, auth.ErrNotOwner) {
			return []Reply{textReply(msgNotOwner)}
		}
		e.logAuthFailure(ctx, sess.UserID, "GrantAccess", err)
		return []Reply{textReply(msgInternal)}
	}
	return []Reply{textReply(msgShared)}
}

func (e *Engine) handleVerify(ctx context.Context, sess *session.Session, args []string) []Reply {
	if len(args) != 1 {
		return []Reply{textReply(msgVerifyUsage)}
	}

	ok, err := e.auth.VerifyCode(ctx, sess.UserID, args[0])
	if err != nil {
		e.logAuthFailure(ctx, sess.UserID, "VerifyCode", err)
		return []Reply{textReply(msgInternal)}
	}
	if !ok {
		return []Reply{textReply(msgWrongCode)}
	}
	return []Reply{keyboardReply(msgVerified, mainMenuKeyboard())}
}

func (e *Engine) logAuthFailure(ctx context.Context, userID int64, operation string, err error) {
	logging.Component(ctx, e.logger, "DialogEngine", operation, "user_id", userID).
		ErrorContext(ctx, "auth store failure", "error", err)
}

// staleReply handles a late interaction whose session no longer carries the
// draft it refers to.
func staleReply(sess *session.Session) []Reply {
	sess.Reset()
	return []Reply{keyboardReply(msgStartOver, mainMenuKeyboard())}
}
