package dialog

import (
	"fmt"
	"time"

	"github.com/alikaskat/calendar-bot/internal/session"
)

// User-facing texts are collected here, in the language of the bot's users.
const (
	msgWelcome = "Привет! Я помогу добавить задачу в календарь."
	msgHelp    = "Команды:\n" +
		"/start — начать заново\n" +
		"/addtask — добавить задачу в календарь\n" +
		"/register <календарь> — зарегистрировать свой календарь\n" +
		"/share <пользователь> <код> — поделиться календарём\n" +
		"/verify <код> — подтвердить доступ\n" +
		"/cancel — отменить текущее действие"
	msgPromptTitle   = "Введите название задачи:"
	msgPromptDate    = "Выберите дату:"
	msgPromptTime    = "Выберите время или отправьте его текстом в формате ЧЧ:ММ:"
	msgBadTime       = "Неверный формат времени. Отправьте время в формате ЧЧ:ММ, например 09:30."
	msgPickFromGrid  = "Пожалуйста, выберите дату на календаре."
	msgConfirmAgain  = "Подтвердите или отмените задачу кнопками ниже."
	msgCancelled     = "Добавление задачи отменено."
	msgStartOver     = "Сессия устарела. Начните заново: нажмите «Добавить задачу» или отправьте /addtask."
	msgCreateFailed  = "Не удалось добавить задачу. Попробуйте ещё раз позже."
	msgInternal      = "Что-то пошло не так. Начните заново с команды /start."
	msgUnauthorized  = "У вас нет доступа к календарю. Попросите владельца выполнить /share и подтвердите код командой /verify <код>."
	msgRegistered    = "Календарь зарегистрирован. Теперь вы можете добавлять задачи."
	msgShared        = "Доступ выдан. Пользователь должен подтвердить его командой /verify <код>."
	msgVerified      = "Доступ подтверждён. Теперь вы можете добавлять задачи."
	msgWrongCode     = "Неверный код доступа."
	msgNotOwner      = "Делиться календарём может только его владелец."
	msgRegisterUsage = "Использование: /register <идентификатор календаря>"
	msgShareUsage    = "Использование: /share <идентификатор пользователя> <код доступа>"
	msgVerifyUsage   = "Использование: /verify <код доступа>"
	msgUnknownInput  = "Я вас не понял. Отправьте /help, чтобы увидеть список команд."

	btnAddTask = "📅 Добавить задачу"
	btnConfirm = "✅ Подтвердить"
	btnCancel  = "❌ Отмена"
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var weekdayLabels = [7]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

func msgCreated(title, url string) string {
	if url == "" {
		return fmt.Sprintf("Задача «%s» добавлена в календарь.", title)
	}
	return fmt.Sprintf("Задача «%s» добавлена в календарь: %s", title, url)
}

func msgConfirm(draft session.Draft) string {
	title := ""
	if draft.Title != nil {
		title = *draft.Title
	}
	var date, clock string
	if draft.Date != nil {
		date = fmt.Sprintf("%02d.%02d.%04d", draft.Date.Day, int(draft.Date.Month), draft.Date.Year)
	}
	if draft.Time != nil {
		clock = fmt.Sprintf("%02d:%02d", draft.Time.Hour, draft.Time.Minute)
	}
	return fmt.Sprintf("Добавить задачу «%s» на %s в %s?", title, date, clock)
}

func mainMenuKeyboard() Keyboard {
	return Keyboard{Rows: [][]Button{{
		{Label: btnAddTask, Data: EncodeCallback(AddTaskPressed{})},
	}}}
}

func confirmKeyboard() Keyboard {
	return Keyboard{Rows: [][]Button{{
		{Label: btnConfirm, Data: EncodeCallback(ConfirmPressed{})},
		{Label: btnCancel, Data: EncodeCallback(CancelPressed{})},
	}}}
}

// calendarKeyboard renders the month grid as an inline keyboard: a header
// with navigation, a weekday row, the day cells, and a cancel row.
func calendarKeyboard(year int, month time.Month) Keyboard {
	prevYear, prevMonth := PrevMonth(year, month)
	nextYear, nextMonth := NextMonth(year, month)

	rows := [][]Button{
		{
			{Label: "«", Data: EncodeCallback(MonthNav{Year: prevYear, Month: prevMonth})},
			{Label: fmt.Sprintf("%s %d", monthNames[month-1], year), Data: EncodeCallback(NoopPressed{})},
			{Label: "»", Data: EncodeCallback(MonthNav{Year: nextYear, Month: nextMonth})},
		},
	}

	header := make([]Button, 7)
	for i, label := range weekdayLabels {
		header[i] = Button{Label: label, Data: EncodeCallback(NoopPressed{})}
	}
	rows = append(rows, header)

	for _, week := range MonthGrid(year, month) {
		cells := make([]Button, 7)
		for i, day := range week {
			if day == 0 {
				cells[i] = Button{Label: " ", Data: EncodeCallback(NoopPressed{})}
				continue
			}
			cells[i] = Button{
				Label: fmt.Sprintf("%d", day),
				Data:  EncodeCallback(DateSelected{Year: year, Month: month, Day: day}),
			}
		}
		rows = append(rows, cells)
	}

	rows = append(rows, []Button{{Label: btnCancel, Data: EncodeCallback(CancelPressed{})}})
	return Keyboard{Rows: rows}
}

// timeKeyboard offers hour-granularity buttons; minute precision comes from
// typing HH:MM instead. Both paths converge in the engine.
func timeKeyboard() Keyboard {
	rows := make([][]Button, 0, 5)
	for hour := 0; hour < 24; hour += 6 {
		row := make([]Button, 0, 6)
		for h := hour; h < hour+6; h++ {
			row = append(row, Button{
				Label: fmt.Sprintf("%02d:00", h),
				Data:  EncodeCallback(TimeSelected{Hour: h, Minute: 0}),
			})
		}
		rows = append(rows, row)
	}
	rows = append(rows, []Button{{Label: btnCancel, Data: EncodeCallback(CancelPressed{})}})
	return Keyboard{Rows: rows}
}
