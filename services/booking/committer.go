package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "beautybot/database/repository/appointment"
	catalogRepo "beautybot/database/repository/catalog"
	"beautybot/models"
	"beautybot/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier schedules the best-effort calendar notification for a committed
// appointment. Implementations must not block the commit path.
type Notifier interface {
	EnqueueEvent(appt *models.Appointment, calendarID string) error
}

// Committer executes the confirmation protocol: conditionally claim the slot
// in the source of truth, persist the appointment, then schedule the calendar
// notification. A lost claim aborts with ErrSlotConflict and leaves the
// session untouched; a failed persist reverts the claim before reporting.
type Committer struct {
	Source       availability.Source
	Appointments appointmentRepo.AppointmentRepository
	Catalog      catalogRepo.CatalogRepository
	Sessions     SessionStore
	Notifier     Notifier
	Location     *time.Location
	Logger       *zap.Logger
}

// Commit books the slot described by a ready session and returns the created
// appointment. Calling it again on an already-committed session is a no-op
// returning the existing appointment.
func (c *Committer) Commit(ctx context.Context, session *models.BookingSession) (*models.Appointment, error) {
	if session.AppointmentID != "" {
		appt, err := c.Appointments.GetByID(ctx, session.AppointmentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load committed appointment: %w", err)
		}
		if appt != nil {
			return appt, nil
		}
		// The recorded appointment vanished from master data; fall through
		// and book again.
	}

	if !session.Ready() {
		return nil, ErrSessionNotReady
	}

	service, err := c.Catalog.GetServiceByID(session.ServiceID)
	if err != nil {
		return nil, err
	}
	specialist, err := c.Catalog.GetSpecialistByID(session.SpecialistID)
	if err != nil {
		return nil, err
	}
	if service == nil || specialist == nil {
		return nil, ErrNotFound
	}

	sheetDate, err := availability.ToSheetDate(session.Date)
	if err != nil {
		return nil, err
	}
	start, _, err := availability.SlotBounds(session.Date, session.Timeslot, c.Location)
	if err != nil {
		return nil, err
	}

	// Claim: the single atomic conditional update. Losing it means another
	// conversation already took the slot.
	if err := c.Source.ClaimSlot(ctx, specialist.Name, sheetDate, session.Timeslot); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	appt := &models.Appointment{
		ID:             uuid.New().String(),
		ClientID:       session.Client.ID,
		ServiceID:      service.ID,
		ServiceName:    service.Name,
		SpecialistID:   specialist.ID,
		SpecialistName: specialist.Name,
		Timeslot:       session.Timeslot,
		DateTime:       start,
	}

	if err := c.Appointments.Create(ctx, appt); err != nil {
		if appointmentRepo.IsDuplicateSlot(err) {
			// An appointment for this slot key already exists, written by
			// someone who claimed outside our process. Keep the cell booked
			// and report the conflict.
			c.Logger.Warn("slot already persisted by another writer",
				zap.String("specialist", specialist.Name),
				zap.String("date", sheetDate),
				zap.String("timeslot", session.Timeslot))
			return nil, ErrSlotConflict
		}
		// The slot is claimed but no appointment exists: revert the claim so
		// the cell is not stranded as booked.
		if relErr := c.Source.ReleaseSlot(context.WithoutCancel(ctx), specialist.Name, sheetDate, session.Timeslot); relErr != nil {
			c.Logger.Error("failed to revert claim after persistence failure",
				zap.String("specialist", specialist.Name),
				zap.String("date", sheetDate),
				zap.String("timeslot", session.Timeslot),
				zap.Error(relErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	session.AppointmentID = appt.ID
	if c.Sessions != nil {
		if err := c.Sessions.Save(ctx, session); err != nil {
			c.Logger.Warn("failed to record committed session", zap.Int64("chatId", session.ChatID), zap.Error(err))
		}
	}

	// Notify: fire-and-log, never awaited for correctness.
	if c.Notifier != nil && specialist.CalendarID != "" {
		if err := c.Notifier.EnqueueEvent(appt, specialist.CalendarID); err != nil {
			c.Logger.Error("failed to enqueue calendar event",
				zap.String("appointmentId", appt.ID),
				zap.Error(err))
		}
	}

	return appt, nil
}
