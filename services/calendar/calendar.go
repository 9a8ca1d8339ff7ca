package calendar

import (
	"context"
	"fmt"
	"time"

	"beautybot/models"
	"beautybot/services/availability"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Service creates calendar events for committed appointments. Creation is
// fire-and-log: the booking is correct whether or not the event lands.
type Service interface {
	CreateEvent(ctx context.Context, calendarID string, appt *models.Appointment) (string, error)
}

// GoogleCalendarService implements Service against the Calendar v3 API.
type GoogleCalendarService struct {
	svc      *gcal.Service
	timezone string
	location string
	loc      *time.Location
}

// NewGoogleCalendarService builds the service from a service-account
// credentials file. timezone is an IANA name, location a display string for
// the event.
func NewGoogleCalendarService(ctx context.Context, credentialsFile, timezone, location string) (*GoogleCalendarService, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &GoogleCalendarService{svc: svc, timezone: timezone, location: location, loc: loc}, nil
}

func (s *GoogleCalendarService) CreateEvent(ctx context.Context, calendarID string, appt *models.Appointment) (string, error) {
	start := appt.DateTime.In(s.loc)
	_, end, err := availability.SlotBounds(start.Format(availability.ISODateLayout), appt.Timeslot, s.loc)
	if err != nil {
		// Fall back to the service's nominal length when the label is odd.
		end = start.Add(time.Hour)
	}

	event := &gcal.Event{
		Summary:     appt.ServiceName,
		Location:    s.location,
		Description: fmt.Sprintf("A session of %s with %s", appt.ServiceName, appt.SpecialistName),
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: s.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: s.timezone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 10},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := s.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert calendar event: %w", err)
	}
	return created.HtmlLink, nil
}
