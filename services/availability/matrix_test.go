package availability

import (
	"reflect"
	"testing"
	"time"
)

var testLabels = []string{
	"8:00 - 9:00",
	"9:00 - 10:00",
	"10:00 - 11:00",
	"11:00 - 12:00",
}

func TestBuildMatrix_MarkerCells(t *testing.T) {
	grids := map[string][]Row{
		"Maria": {
			{"01/12/2025", "", "x", "X", "booked"},
			{"02/12/2025", "no", "", "", ""},
			{"03/12/2025", "x"},
		},
	}

	m := BuildMatrix(grids, testLabels, "x")

	if !m.Available("Maria", "01/12/2025", "9:00 - 10:00") {
		t.Fatalf("expected 9:00 - 10:00 available")
	}
	if !m.Available("Maria", "01/12/2025", "10:00 - 11:00") {
		t.Fatalf("expected case-insensitive marker to count as available")
	}
	if m.Available("Maria", "01/12/2025", "8:00 - 9:00") {
		t.Fatalf("empty cell must not be available")
	}
	if m.Available("Maria", "01/12/2025", "11:00 - 12:00") {
		t.Fatalf("booked cell must not be available")
	}
	if !m.Available("Maria", "03/12/2025", "8:00 - 9:00") {
		t.Fatalf("short row must still mark its cells")
	}
}

func TestBuildMatrix_SparseDates(t *testing.T) {
	grids := map[string][]Row{
		"Maria": {
			{"01/12/2025", "x"},
			{"02/12/2025", "", "", "", ""},
		},
	}

	m := BuildMatrix(grids, testLabels, "x")

	if _, ok := m["Maria"]["02/12/2025"]; ok {
		t.Fatalf("date with no available slot must be absent from the matrix")
	}
	// Absent date behaves exactly like all-false, not like an error.
	if m.Available("Maria", "02/12/2025", "8:00 - 9:00") {
		t.Fatalf("absent date must read as unavailable")
	}
	if got := m.Slots("Maria", "02/12/2025"); len(got) != 0 {
		t.Fatalf("absent date must yield no slots, got %v", got)
	}
}

func TestBuildMatrix_EmptyGrid(t *testing.T) {
	m := BuildMatrix(map[string][]Row{}, testLabels, "x")
	if got := m.SpecialistsAt("01/12/2025", "8:00 - 9:00"); len(got) != 0 {
		t.Fatalf("empty matrix must answer every query with an empty set, got %v", got)
	}
}

func TestSortSlots_NumericStartTime(t *testing.T) {
	slots := []string{"10:00 - 11:00", "9:00 - 10:00"}
	SortSlots(slots)
	want := []string{"9:00 - 10:00", "10:00 - 11:00"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestSortSlots_FullDay(t *testing.T) {
	slots := []string{"19:00 - 20:00", "8:00 - 9:00", "12:00 - 13:00", "9:00 - 10:00"}
	SortSlots(slots)
	want := []string{"8:00 - 9:00", "9:00 - 10:00", "12:00 - 13:00", "19:00 - 20:00"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestDateConversions(t *testing.T) {
	sheet, err := ToSheetDate("2025-12-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sheet != "01/12/2025" {
		t.Fatalf("expected 01/12/2025, got %s", sheet)
	}

	iso, err := ToISODate("01/12/2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iso != "2025-12-01" {
		t.Fatalf("expected 2025-12-01, got %s", iso)
	}

	if _, err := ToSheetDate("12/01/2025"); err == nil {
		t.Fatalf("expected error for non-ISO input")
	}
}

func TestSlotBounds(t *testing.T) {
	loc := time.UTC
	start, end, err := SlotBounds("2025-12-01", "9:00 - 10:00", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 9 || start.Day() != 1 || start.Month() != time.December {
		t.Fatalf("wrong start: %v", start)
	}
	if end.Hour() != 10 {
		t.Fatalf("wrong end: %v", end)
	}

	if _, _, err := SlotBounds("2025-12-01", "whenever", loc); err == nil {
		t.Fatalf("expected error for malformed label")
	}
}
