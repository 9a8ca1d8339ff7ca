package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"beautybot/models"
	"beautybot/services/booking"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const sourceDownText = "Availability is temporarily unreachable. Please try again shortly."

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		if err := b.flow.ResetSession(ctx, chatID); err != nil {
			b.logger.Error("failed to reset session", zap.Int64("chatId", chatID), zap.Error(err))
		}
		b.sendWithMarkup(chatID,
			"Hello, welcome to our beauty salon booking system. Who is the visit for?",
			categoryKeyboard())
	case "services":
		b.listServices(ctx, chatID)
	case "specialists":
		b.listSpecialists(ctx, chatID)
	case "book":
		session, err := b.flow.Session(ctx, chatID)
		if err != nil {
			b.logger.Error("failed to load session", zap.Int64("chatId", chatID), zap.Error(err))
			return
		}
		b.sendWithMarkup(chatID, "Let's put your visit together. Pick in any order:", mainMenu(session))
	case "reset":
		if err := b.flow.ResetSession(ctx, chatID); err != nil {
			b.logger.Error("failed to reset session", zap.Int64("chatId", chatID), zap.Error(err))
		}
		b.send(chatID, "Your selections were cleared. Send /book to start again.")
	default:
		b.send(chatID, "I know /start, /book, /services, /specialists and /reset.")
	}
}

func (b *Bot) listServices(ctx context.Context, chatID int64) {
	services, err := b.flow.ListServices(ctx, "")
	if err != nil {
		b.logger.Error("failed to list services", zap.Error(err))
		b.send(chatID, "Could not load the service list right now.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Available Services:\n\n")
	for _, svc := range services {
		fmt.Fprintf(&sb, "%s - %d min - $%.2f\n", svc.Name, svc.DurationMinutes, svc.Price)
	}
	b.send(chatID, sb.String())
}

func (b *Bot) listSpecialists(ctx context.Context, chatID int64) {
	specialists, err := b.flow.ListSpecialists(ctx)
	if err != nil {
		b.logger.Error("failed to list specialists", zap.Error(err))
		b.send(chatID, "Could not load the specialist list right now.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Our Specialists:\n\n")
	for _, sp := range specialists {
		sb.WriteString(sp.Name + "\n")
	}
	b.send(chatID, sb.String())
}

func (b *Bot) handleContact(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	session, err := b.flow.Session(ctx, chatID)
	if err != nil {
		b.logger.Error("failed to load session", zap.Int64("chatId", chatID), zap.Error(err))
		return
	}

	name := strings.TrimSpace(msg.Contact.FirstName + " " + msg.Contact.LastName)
	client := &models.Client{
		TelegramID:  msg.From.ID,
		Name:        name,
		PhoneNumber: msg.Contact.PhoneNumber,
		Username:    msg.From.UserName,
	}
	if err := b.flow.AttachClient(ctx, session, client); err != nil {
		b.logger.Error("failed to attach client", zap.Int64("chatId", chatID), zap.Error(err))
		b.send(chatID, "Could not save your contact, please try again.")
		return
	}

	b.sendWithMarkup(chatID, "Thanks, "+name+"!", mainMenu(session))
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	b.ackCallback(cq.ID)
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	ev := ParseCallback(cq.Data)
	if ev.Kind == EventIgnore {
		return
	}

	session, err := b.flow.Session(ctx, chatID)
	if err != nil {
		b.logger.Error("failed to load session", zap.Int64("chatId", chatID), zap.Error(err))
		return
	}

	switch ev.Kind {
	case EventRestart:
		if err := b.flow.ResetSession(ctx, chatID); err != nil {
			b.logger.Error("failed to reset session", zap.Int64("chatId", chatID), zap.Error(err))
		}
		b.sendWithMarkup(chatID, "Starting over. Who is the visit for?", categoryKeyboard())

	case EventCategory:
		session.SetCategory(ev.Category)
		b.saveAndShowMenu(ctx, chatID, session, "Noted. Pick in any order:")

	case EventPickDate:
		b.showDatePicker(ctx, chatID, session, time.Now())

	case EventMonth:
		b.showDatePickerAt(ctx, chatID, session, ev.Year, ev.Month)

	case EventDate:
		// The date row doubles as the time picker once a date is chosen.
		if session.Date != ev.Date {
			session.SetDate(ev.Date)
			session.Timeslot = ""
		}
		b.showTimeslots(ctx, chatID, session)

	case EventPickService:
		b.showServices(ctx, chatID, session)

	case EventService:
		b.selectService(ctx, chatID, session, ev.ServiceID)

	case EventPickSpecialist:
		b.showSpecialists(ctx, chatID, session)

	case EventSpecialist:
		b.selectSpecialist(ctx, chatID, session, ev.SpecialistID)

	case EventTimeslot:
		if err := session.SetTimeslot(ev.Timeslot); err != nil {
			b.send(chatID, "Pick a date first, then a time.")
			return
		}
		b.saveAndShowMenu(ctx, chatID, session, "Time saved.")

	case EventConfirm:
		b.confirm(ctx, chatID, session)
	}
}

func (b *Bot) saveAndShowMenu(ctx context.Context, chatID int64, session *models.BookingSession, text string) {
	if err := b.flow.SaveSession(ctx, session); err != nil {
		b.logger.Error("failed to save session", zap.Int64("chatId", chatID), zap.Error(err))
		return
	}
	if session.Ready() {
		text += " Everything is set, confirm when ready."
	} else if session.Date != "" && session.ServiceID != "" && session.SpecialistID != "" &&
		session.Timeslot != "" && session.Client == nil {
		b.sendWithMarkup(chatID, "Almost done! Share your contact to finish the booking.", contactKeyboard())
		return
	}
	b.sendWithMarkup(chatID, text, mainMenu(session))
}

func (b *Bot) showDatePicker(ctx context.Context, chatID int64, session *models.BookingSession, now time.Time) {
	b.showDatePickerAt(ctx, chatID, session, now.Year(), int(now.Month()))
}

func (b *Bot) showDatePickerAt(ctx context.Context, chatID int64, session *models.BookingSession, year, month int) {
	resolver, err := b.flow.Resolver(ctx)
	if err != nil {
		b.resolveFailed(chatID, err)
		return
	}
	available := make(map[string]bool)
	for _, iso := range resolver.AvailableDates(session) {
		available[iso] = true
	}
	if len(available) == 0 {
		b.send(chatID, "No open dates right now. Please check back later.")
		return
	}
	b.sendWithMarkup(chatID, "Choose a date:", calendarKeyboard(year, month, available, time.Now()))
}

func (b *Bot) showTimeslots(ctx context.Context, chatID int64, session *models.BookingSession) {
	resolver, err := b.flow.Resolver(ctx)
	if err != nil {
		b.resolveFailed(chatID, err)
		return
	}
	slots := resolver.AvailableTimeslots(session, session.Date)
	if len(slots) == 0 {
		b.send(chatID, "No free times on "+session.Date+". Try another date.")
		return
	}
	if err := b.flow.SaveSession(ctx, session); err != nil {
		b.logger.Error("failed to save session", zap.Int64("chatId", chatID), zap.Error(err))
		return
	}
	b.sendWithMarkup(chatID, "Choose a time on "+session.Date+":", timeslotsKeyboard(slots))
}

func (b *Bot) showServices(ctx context.Context, chatID int64, session *models.BookingSession) {
	resolver, err := b.flow.Resolver(ctx)
	if err != nil {
		b.resolveFailed(chatID, err)
		return
	}
	services := resolver.AvailableServices(session)
	if len(services) == 0 {
		b.send(chatID, "No services match your current selection.")
		return
	}
	b.sendWithMarkup(chatID, "Choose a service:", servicesKeyboard(services))
}

func (b *Bot) showSpecialists(ctx context.Context, chatID int64, session *models.BookingSession) {
	resolver, err := b.flow.Resolver(ctx)
	if err != nil {
		b.resolveFailed(chatID, err)
		return
	}
	specialists := resolver.AvailableSpecialists(session)
	if len(specialists) == 0 {
		b.send(chatID, "No specialists match your current selection.")
		return
	}
	b.sendWithMarkup(chatID, "Choose a specialist:", specialistsKeyboard(specialists))
}

func (b *Bot) selectService(ctx context.Context, chatID int64, session *models.BookingSession, serviceID string) {
	resolver, err := b.flow.Resolver(ctx)
	if err != nil {
		b.resolveFailed(chatID, err)
		return
	}
	for _, svc := range resolver.Services {
		if svc.ID == serviceID {
			session.SetService(svc.ID, svc.Name)
			b.saveAndShowMenu(ctx, chatID, session, svc.Name+" selected.")
			return
		}
	}
	b.send(chatID, "That service is no longer offered. Please pick another.")
}

func (b *Bot) selectSpecialist(ctx context.Context, chatID int64, session *models.BookingSession, specialistID string) {
	resolver, err := b.flow.Resolver(ctx)
	if err != nil {
		b.resolveFailed(chatID, err)
		return
	}
	for _, sp := range resolver.Specialists {
		if sp.ID == specialistID {
			session.SetSpecialist(sp.ID, sp.Name)
			b.saveAndShowMenu(ctx, chatID, session, sp.Name+" selected.")
			return
		}
	}
	b.send(chatID, "That specialist is no longer available. Please pick another.")
}

func (b *Bot) confirm(ctx context.Context, chatID int64, session *models.BookingSession) {
	if !session.Ready() {
		if session.Client == nil {
			b.sendWithMarkup(chatID, "Share your contact to finish the booking.", contactKeyboard())
		} else {
			b.sendWithMarkup(chatID, "A few selections are still missing:", mainMenu(session))
		}
		return
	}

	appt, err := b.flow.Confirm(ctx, session)
	switch {
	case err == nil:
		b.send(chatID, fmt.Sprintf(
			"Booked! %s with %s on %s, %s. See you there.",
			appt.ServiceName, appt.SpecialistName, session.Date, appt.Timeslot))
	case errors.Is(err, booking.ErrSlotConflict):
		// Someone grabbed the slot between menu and confirm; re-resolve and
		// send the user back to time selection.
		session.Timeslot = ""
		if saveErr := b.flow.SaveSession(ctx, session); saveErr != nil {
			b.logger.Error("failed to save session", zap.Int64("chatId", chatID), zap.Error(saveErr))
		}
		b.send(chatID, "Sorry, that time was just taken. Here is what's still free:")
		b.showTimeslots(ctx, chatID, session)
	case errors.Is(err, booking.ErrSourceUnavailable):
		b.send(chatID, sourceDownText)
	case errors.Is(err, booking.ErrNotFound):
		b.send(chatID, "Part of your selection no longer exists. Send /start to begin again.")
	default:
		b.logger.Error("commit failed", zap.Int64("chatId", chatID), zap.Error(err))
		b.send(chatID, "Something went wrong while booking. Your slot was not taken, please try again.")
	}
}

func (b *Bot) resolveFailed(chatID int64, err error) {
	if errors.Is(err, booking.ErrSourceUnavailable) {
		b.send(chatID, sourceDownText)
		return
	}
	b.logger.Error("failed to resolve availability", zap.Error(err))
	b.send(chatID, "Could not load availability, please try again.")
}
