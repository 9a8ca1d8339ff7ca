package bot

import (
	"fmt"
	"time"

	"beautybot/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var daysOfWeek = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("For her", categoryData("women")),
			tgbotapi.NewInlineKeyboardButtonData("For him", categoryData("men")),
		),
	)
}

// mainMenu shows the current selections and the remaining choices; the
// confirm button appears only once the session is ready.
func mainMenu(session *models.BookingSession) tgbotapi.InlineKeyboardMarkup {
	label := func(prefix, value string) string {
		if value == "" {
			return prefix
		}
		return fmt.Sprintf("%s: %s", prefix, value)
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label("Date", session.Date), cbPickDate),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label("Service", session.ServiceName), cbPickService),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label("Specialist", session.SpecialistName), cbPickSpecialist),
		),
	}
	if session.Date != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label("Time", session.Timeslot), dateData(session.Date)),
		))
	}
	if session.Ready() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Confirm booking", cbConfirm),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Start over", cbRestart),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func servicesKeyboard(services []models.Service) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(services))
	for _, svc := range services {
		text := fmt.Sprintf("%s - %d min - $%.2f", svc.Name, svc.DurationMinutes, svc.Price)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(text, serviceData(svc.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func specialistsKeyboard(specialists []models.Specialist) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(specialists))
	for _, sp := range specialists {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(sp.Name, specialistData(sp.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func timeslotsKeyboard(slots []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(slot, timeslotData(slot)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("Share my contact"),
		),
	)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

// calendarKeyboard renders one month as an inline grid. Only dates present in
// available (ISO strings) and not in the past are tappable; everything else
// is an ignore button, like the original date picker.
func calendarKeyboard(year, month int, available map[string]bool, now time.Time) tgbotapi.InlineKeyboardMarkup {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	header := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d", monthNames[month-1], year), cbIgnore),
	)
	week := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for _, d := range daysOfWeek {
		week = append(week, tgbotapi.NewInlineKeyboardButtonData(d, cbIgnore))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{header, week}

	var current []tgbotapi.InlineKeyboardButton
	// Pad up to the weekday of the 1st (Monday-first grid).
	offset := (int(first.Weekday()) + 6) % 7
	for i := 0; i < offset; i++ {
		current = append(current, tgbotapi.NewInlineKeyboardButtonData(" ", cbIgnore))
	}
	for day := 1; day <= lastDay; day++ {
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
		iso := date.Format("2006-01-02")
		if available[iso] && !date.Before(today) {
			current = append(current, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprint(day), dateData(iso)))
		} else {
			current = append(current, tgbotapi.NewInlineKeyboardButtonData(" ", cbIgnore))
		}
		if len(current) == 7 {
			rows = append(rows, current)
			current = nil
		}
	}
	if len(current) > 0 {
		for len(current) < 7 {
			current = append(current, tgbotapi.NewInlineKeyboardButtonData(" ", cbIgnore))
		}
		rows = append(rows, current)
	}

	// Nothing bookable before the current month, so back-navigation stops
	// there.
	var nav []tgbotapi.InlineKeyboardButton
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if first.After(thisMonth) {
		prev := first.AddDate(0, -1, 0)
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("<", monthData(prev.Year(), int(prev.Month()))))
	}
	next := first.AddDate(0, 1, 0)
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(">", monthData(next.Year(), int(next.Month()))))
	rows = append(rows, nav)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
