package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// EventKind tags the selection events the front-end can deliver.
type EventKind int

const (
	EventIgnore EventKind = iota
	EventCategory
	EventPickDate
	EventDate
	EventMonth
	EventPickService
	EventService
	EventPickSpecialist
	EventSpecialist
	EventTimeslot
	EventConfirm
	EventRestart
)

// Event is a parsed callback: one kind plus its typed payload. Handlers
// dispatch on Kind; the raw callback string never leaves this file.
type Event struct {
	Kind         EventKind
	Category     string
	Date         string // ISO yyyy-mm-dd
	Year         int
	Month        int
	ServiceID    string
	SpecialistID string
	Timeslot     string
}

// Callback-data encoding. Telegram limits callback data to 64 bytes, so the
// payload is a short tag plus the value.
const (
	cbIgnore         = "ignore"
	cbPickDate       = "pick_date"
	cbPickService    = "pick_service"
	cbPickSpecialist = "pick_specialist"
	cbConfirm        = "confirm"
	cbRestart        = "restart"
)

func categoryData(category string) string { return "cat:" + category }
func dateData(isoDate string) string      { return "date:" + isoDate }
func monthData(year, month int) string    { return fmt.Sprintf("month:%d:%d", year, month) }
func serviceData(id string) string        { return "svc:" + id }
func specialistData(id string) string     { return "spec:" + id }
func timeslotData(label string) string    { return "slot:" + label }

// ParseCallback turns raw callback data into a typed Event. Unknown or
// malformed data parses as EventIgnore.
func ParseCallback(data string) Event {
	switch data {
	case cbIgnore:
		return Event{Kind: EventIgnore}
	case cbPickDate:
		return Event{Kind: EventPickDate}
	case cbPickService:
		return Event{Kind: EventPickService}
	case cbPickSpecialist:
		return Event{Kind: EventPickSpecialist}
	case cbConfirm:
		return Event{Kind: EventConfirm}
	case cbRestart:
		return Event{Kind: EventRestart}
	}

	tag, value, ok := strings.Cut(data, ":")
	if !ok {
		return Event{Kind: EventIgnore}
	}
	switch tag {
	case "cat":
		return Event{Kind: EventCategory, Category: value}
	case "date":
		return Event{Kind: EventDate, Date: value}
	case "month":
		y, m, ok := strings.Cut(value, ":")
		if !ok {
			return Event{Kind: EventIgnore}
		}
		year, err := strconv.Atoi(y)
		if err != nil {
			return Event{Kind: EventIgnore}
		}
		month, err := strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			return Event{Kind: EventIgnore}
		}
		return Event{Kind: EventMonth, Year: year, Month: month}
	case "svc":
		return Event{Kind: EventService, ServiceID: value}
	case "spec":
		return Event{Kind: EventSpecialist, SpecialistID: value}
	case "slot":
		return Event{Kind: EventTimeslot, Timeslot: value}
	}
	return Event{Kind: EventIgnore}
}
