package availability

import (
	"context"
	"errors"
)

// ErrSourceUnavailable is returned when the availability source cannot be
// read and no previously cached matrix exists to fall back on.
var ErrSourceUnavailable = errors.New("availability source unavailable")

// ErrSlotConflict is returned when a claim loses the race: the target cell
// was no longer marked available at write time.
var ErrSlotConflict = errors.New("slot already booked")

// Source is the external availability grid. One logical grid per specialist;
// rows are [date, cell_1..cell_n] with columns in fixed timeslot order.
// All methods observe the deadline of the passed context.
type Source interface {
	// ReadGrid fetches every specialist's raw grid.
	ReadGrid(ctx context.Context) (map[string][]Row, error)
	// ClaimSlot conditionally flips (specialist, date, slot) from available
	// to booked. date is in sheet format (dd/mm/yyyy). Returns
	// ErrSlotConflict if the cell was not marked available.
	ClaimSlot(ctx context.Context, specialist, date, slot string) error
	// ReleaseSlot marks the cell available again. Used only to compensate a
	// claim whose follow-up persistence failed.
	ReleaseSlot(ctx context.Context, specialist, date, slot string) error
}
