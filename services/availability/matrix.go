package availability

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SheetDateLayout is the date format used in the availability sheets.
const SheetDateLayout = "02/01/2006"

// ISODateLayout is the date format carried in booking sessions.
const ISODateLayout = "2006-01-02"

// Row is one raw grid row: the date in dd/mm/yyyy followed by one cell per
// timeslot column. Short rows are allowed; missing cells read as unavailable.
type Row []string

// Matrix is the normalized availability table:
// specialist → date (dd/mm/yyyy) → timeslot label → available.
// The representation is sparse: a date appears only if at least one of its
// timeslots is available, so an absent date reads the same as a row of false.
type Matrix map[string]map[string]map[string]bool

// BuildMatrix normalizes raw per-specialist grids. A cell counts as available
// iff it equals the marker token, compared case-insensitively after trimming.
func BuildMatrix(grids map[string][]Row, labels []string, marker string) Matrix {
	m := make(Matrix, len(grids))
	for specialist, rows := range grids {
		dates := make(map[string]map[string]bool)
		for _, row := range rows {
			if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			date := strings.TrimSpace(row[0])
			var slots map[string]bool
			for i, label := range labels {
				if i+1 >= len(row) {
					break
				}
				if !strings.EqualFold(strings.TrimSpace(row[i+1]), marker) {
					continue
				}
				if slots == nil {
					slots = make(map[string]bool)
				}
				slots[label] = true
			}
			if slots != nil {
				dates[date] = slots
			}
		}
		m[specialist] = dates
	}
	return m
}

// Available reports whether the given cell is bookable. Unknown specialists,
// dates and slots all read as false.
func (m Matrix) Available(specialist, date, slot string) bool {
	return m[specialist][date][slot]
}

// SpecialistsAt returns the specialists with an available cell at (date, slot).
func (m Matrix) SpecialistsAt(date, slot string) []string {
	var names []string
	for specialist, dates := range m {
		if dates[date][slot] {
			names = append(names, specialist)
		}
	}
	sort.Strings(names)
	return names
}

// Dates returns the dates on which the specialist has at least one slot.
func (m Matrix) Dates(specialist string) []string {
	dates := m[specialist]
	out := make([]string, 0, len(dates))
	for date := range dates {
		out = append(out, date)
	}
	sort.Strings(out)
	return out
}

// Slots returns the available timeslot labels for the specialist on the date,
// sorted by start time.
func (m Matrix) Slots(specialist, date string) []string {
	slots := m[specialist][date]
	out := make([]string, 0, len(slots))
	for slot := range slots {
		out = append(out, slot)
	}
	SortSlots(out)
	return out
}

// slotStartMinutes parses the leading "H:MM" of a timeslot label into minutes
// from midnight. Labels that do not parse sort last.
func slotStartMinutes(label string) (int, bool) {
	start, _, ok := strings.Cut(label, " - ")
	if !ok {
		start = label
	}
	h, m, ok := strings.Cut(strings.TrimSpace(start), ":")
	if !ok {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return hours*60 + minutes, true
}

// SortSlots orders timeslot labels ascending by their start time. Numeric
// order, not lexicographic: "9:00 - 10:00" sorts before "10:00 - 11:00".
func SortSlots(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		a, aok := slotStartMinutes(labels[i])
		b, bok := slotStartMinutes(labels[j])
		if aok != bok {
			return aok
		}
		return a < b
	})
}

// ToSheetDate converts a session date (yyyy-mm-dd) to a matrix key (dd/mm/yyyy).
func ToSheetDate(isoDate string) (string, error) {
	t, err := time.Parse(ISODateLayout, isoDate)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", isoDate, err)
	}
	return t.Format(SheetDateLayout), nil
}

// ToISODate converts a matrix date key (dd/mm/yyyy) to a session date (yyyy-mm-dd).
func ToISODate(sheetDate string) (string, error) {
	t, err := time.Parse(SheetDateLayout, sheetDate)
	if err != nil {
		return "", fmt.Errorf("invalid sheet date %q: %w", sheetDate, err)
	}
	return t.Format(ISODateLayout), nil
}

// SlotBounds resolves a session date plus a timeslot label into the concrete
// start and end times of the appointment in the given location.
func SlotBounds(isoDate, label string, loc *time.Location) (start, end time.Time, err error) {
	day, err := time.ParseInLocation(ISODateLayout, isoDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", isoDate, err)
	}
	from, to, ok := strings.Cut(label, " - ")
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid timeslot label %q", label)
	}
	start, err = atTime(day, strings.TrimSpace(from), loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = atTime(day, strings.TrimSpace(to), loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func atTime(day time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		// Labels use a single-digit hour before 10:00.
		t, err = time.Parse("3:04", hhmm)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
