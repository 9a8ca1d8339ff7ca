package models

import "errors"

// ErrTimeslotWithoutDate is returned when a timeslot is selected before a date.
var ErrTimeslotWithoutDate = errors.New("cannot select a timeslot before a date")

// BookingSession holds the partial selections of one conversation. Fields are
// independent and may be populated in any order; empty string means unset.
// Re-selecting a field overwrites it without clearing the others.
type BookingSession struct {
	ChatID         int64   `json:"chatId"`
	Category       string  `json:"category,omitempty"`
	Date           string  `json:"date,omitempty"` // ISO yyyy-mm-dd
	ServiceID      string  `json:"serviceId,omitempty"`
	ServiceName    string  `json:"serviceName,omitempty"`
	SpecialistID   string  `json:"specialistId,omitempty"`
	SpecialistName string  `json:"specialistName,omitempty"`
	Timeslot       string  `json:"timeslot,omitempty"`
	Client         *Client `json:"client,omitempty"`

	// AppointmentID is set after a successful commit so that a duplicate
	// confirm returns the existing appointment instead of claiming again.
	AppointmentID string `json:"appointmentId,omitempty"`
}

func (s *BookingSession) SetCategory(category string) {
	s.Category = category
}

func (s *BookingSession) SetDate(date string) {
	s.Date = date
}

func (s *BookingSession) SetService(id, name string) {
	s.ServiceID = id
	s.ServiceName = name
}

func (s *BookingSession) SetSpecialist(id, name string) {
	s.SpecialistID = id
	s.SpecialistName = name
}

// SetTimeslot records the chosen slot. A timeslot is meaningless without a
// date, so this is the one ordering constraint the session enforces.
func (s *BookingSession) SetTimeslot(slot string) error {
	if s.Date == "" {
		return ErrTimeslotWithoutDate
	}
	s.Timeslot = slot
	return nil
}

func (s *BookingSession) SetClient(c *Client) {
	s.Client = c
}

// Reset clears every selection, returning the session to its initial state.
func (s *BookingSession) Reset() {
	*s = BookingSession{ChatID: s.ChatID}
}

// Ready reports whether every field needed for a commit is present.
func (s *BookingSession) Ready() bool {
	return s.Date != "" &&
		s.ServiceID != "" &&
		s.SpecialistID != "" &&
		s.Timeslot != "" &&
		s.Client != nil
}
