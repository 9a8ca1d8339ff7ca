package bot

import (
	"testing"
	"time"
)

func TestCalendarKeyboard_ClampsBackNavigation(t *testing.T) {
	now := time.Date(2025, time.December, 15, 12, 0, 0, 0, time.UTC)
	available := map[string]bool{"2025-12-20": true, "2026-01-10": true}

	// Current month: no way back.
	kb := calendarKeyboard(2025, 12, available, now)
	nav := kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
	if len(nav) != 1 {
		t.Fatalf("current month must only offer forward navigation, got %d buttons", len(nav))
	}
	if *nav[0].CallbackData != monthData(2026, 1) {
		t.Fatalf("expected forward to 2026-01, got %s", *nav[0].CallbackData)
	}

	// A future month can navigate both ways.
	kb = calendarKeyboard(2026, 1, available, now)
	nav = kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
	if len(nav) != 2 {
		t.Fatalf("future month must offer both directions, got %d buttons", len(nav))
	}
	if *nav[0].CallbackData != monthData(2025, 12) {
		t.Fatalf("expected back to 2025-12, got %s", *nav[0].CallbackData)
	}
	if *nav[1].CallbackData != monthData(2026, 2) {
		t.Fatalf("expected forward to 2026-02, got %s", *nav[1].CallbackData)
	}
}

func TestCalendarKeyboard_OnlyAvailableFutureDatesTappable(t *testing.T) {
	now := time.Date(2025, time.December, 15, 12, 0, 0, 0, time.UTC)
	available := map[string]bool{
		"2025-12-10": true, // past: must not be tappable
		"2025-12-20": true,
	}

	kb := calendarKeyboard(2025, 12, available, now)

	tappable := map[string]bool{}
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == nil {
				continue
			}
			ev := ParseCallback(*btn.CallbackData)
			if ev.Kind == EventDate {
				tappable[ev.Date] = true
			}
		}
	}

	if !tappable["2025-12-20"] {
		t.Fatalf("available future date must be tappable")
	}
	if tappable["2025-12-10"] {
		t.Fatalf("past date must not be tappable even when marked available")
	}
	if len(tappable) != 1 {
		t.Fatalf("expected exactly one tappable date, got %v", tappable)
	}
}
