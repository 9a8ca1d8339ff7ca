package models

// TypeCalendarEventTask is the asynq task type for calendar-event creation.
const TypeCalendarEventTask = "calendar:event"

// CalendarEventPayload is the queued task payload for creating the external
// calendar event of a committed appointment.
type CalendarEventPayload struct {
	Appointment Appointment `json:"appointment"`
	CalendarID  string      `json:"calendarId"`
}
