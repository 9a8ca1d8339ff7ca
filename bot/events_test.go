package bot

import "testing"

func TestParseCallback(t *testing.T) {
	cases := []struct {
		data string
		want Event
	}{
		{cbIgnore, Event{Kind: EventIgnore}},
		{cbPickDate, Event{Kind: EventPickDate}},
		{cbPickService, Event{Kind: EventPickService}},
		{cbPickSpecialist, Event{Kind: EventPickSpecialist}},
		{cbConfirm, Event{Kind: EventConfirm}},
		{cbRestart, Event{Kind: EventRestart}},
		{categoryData("women"), Event{Kind: EventCategory, Category: "women"}},
		{dateData("2025-12-01"), Event{Kind: EventDate, Date: "2025-12-01"}},
		{monthData(2025, 12), Event{Kind: EventMonth, Year: 2025, Month: 12}},
		{serviceData("svc-hair"), Event{Kind: EventService, ServiceID: "svc-hair"}},
		{specialistData("sp-maria"), Event{Kind: EventSpecialist, SpecialistID: "sp-maria"}},
		{timeslotData("10:00 - 11:00"), Event{Kind: EventTimeslot, Timeslot: "10:00 - 11:00"}},
	}
	for _, tc := range cases {
		if got := ParseCallback(tc.data); got != tc.want {
			t.Fatalf("ParseCallback(%q) = %+v, want %+v", tc.data, got, tc.want)
		}
	}
}

func TestParseCallback_Malformed(t *testing.T) {
	for _, data := range []string{
		"",
		"garbage",
		"month:2025",
		"month:abc:12",
		"month:2025:13",
		"month:2025:0",
		"unknown:value",
	} {
		if got := ParseCallback(data); got.Kind != EventIgnore {
			t.Fatalf("ParseCallback(%q) = %+v, want ignore", data, got)
		}
	}
}
