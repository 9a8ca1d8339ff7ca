package models

import "testing"

func TestBookingSession_FreeOrderSelection(t *testing.T) {
	a := &BookingSession{ChatID: 1}
	a.SetService("svc-1", "Haircut")
	a.SetSpecialist("sp-1", "Maria")
	a.SetDate("2025-12-01")

	b := &BookingSession{ChatID: 2}
	b.SetDate("2025-12-01")
	b.SetSpecialist("sp-1", "Maria")
	b.SetService("svc-1", "Haircut")

	if a.ServiceID != b.ServiceID || a.SpecialistID != b.SpecialistID || a.Date != b.Date {
		t.Fatalf("selection order must not change the resulting state")
	}
}

func TestBookingSession_TimeslotRequiresDate(t *testing.T) {
	s := &BookingSession{ChatID: 1}
	if err := s.SetTimeslot("10:00 - 11:00"); err == nil {
		t.Fatalf("expected error selecting a timeslot without a date")
	}
	s.SetDate("2025-12-01")
	if err := s.SetTimeslot("10:00 - 11:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Timeslot != "10:00 - 11:00" {
		t.Fatalf("timeslot not recorded")
	}
}

func TestBookingSession_OverwriteKeepsOtherFields(t *testing.T) {
	s := &BookingSession{ChatID: 1}
	s.SetDate("2025-12-01")
	s.SetService("svc-1", "Haircut")
	s.SetService("svc-2", "Manicure")

	if s.ServiceID != "svc-2" || s.ServiceName != "Manicure" {
		t.Fatalf("re-selection must overwrite the field")
	}
	if s.Date != "2025-12-01" {
		t.Fatalf("re-selection must not clear unrelated fields")
	}
}

func TestBookingSession_Ready(t *testing.T) {
	s := &BookingSession{ChatID: 1}
	if s.Ready() {
		t.Fatalf("empty session must not be ready")
	}

	s.SetDate("2025-12-01")
	s.SetService("svc-1", "Haircut")
	s.SetSpecialist("sp-1", "Maria")
	if err := s.SetTimeslot("10:00 - 11:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Ready() {
		t.Fatalf("session without a client must not be ready")
	}

	s.SetClient(&Client{ID: "c-1", TelegramID: 42})
	if !s.Ready() {
		t.Fatalf("fully populated session must be ready")
	}
}

func TestBookingSession_Reset(t *testing.T) {
	s := &BookingSession{ChatID: 7}
	s.SetDate("2025-12-01")
	s.SetService("svc-1", "Haircut")
	s.SetClient(&Client{ID: "c-1"})
	s.Reset()

	if s.Date != "" || s.ServiceID != "" || s.Client != nil {
		t.Fatalf("reset must clear all selections")
	}
	if s.ChatID != 7 {
		t.Fatalf("reset must keep the chat binding")
	}
}
