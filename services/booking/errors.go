package booking

import (
	"errors"

	"beautybot/services/availability"
)

// Source-level failures keep their identity through the booking layer so
// callers can match with errors.Is at either level.
var (
	ErrSourceUnavailable = availability.ErrSourceUnavailable
	ErrSlotConflict      = availability.ErrSlotConflict
)

var (
	// ErrNotFound means the selected service or specialist no longer exists
	// in master data.
	ErrNotFound = errors.New("selected service or specialist not found")
	// ErrSessionNotReady means commit was attempted before every required
	// selection was made.
	ErrSessionNotReady = errors.New("booking session is missing required selections")
	// ErrPersistenceFailure means the appointment write failed after a
	// successful claim; the claim has been reverted.
	ErrPersistenceFailure = errors.New("failed to persist appointment")
)
