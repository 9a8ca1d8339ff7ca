package booking

import (
	"sort"

	"beautybot/models"
	"beautybot/services/availability"
)

// Resolver answers "which options remain valid" for a partially filled
// session. It is a pure query layer over one matrix snapshot plus the
// service↔specialist membership relation: no side effects, no caching, and
// results depend only on which session fields are set, never on the order
// they were set in.
type Resolver struct {
	Matrix      availability.Matrix
	Services    []models.Service
	Specialists []models.Specialist
}

// matrixKey converts the session's ISO date to a matrix date key. An unset or
// malformed date yields "", which never matches a matrix entry.
func matrixKey(isoDate string) string {
	if isoDate == "" {
		return ""
	}
	key, err := availability.ToSheetDate(isoDate)
	if err != nil {
		return ""
	}
	return key
}

func (r *Resolver) categoryFiltered(session *models.BookingSession) []models.Service {
	if session.Category == "" {
		return r.Services
	}
	var out []models.Service
	for _, svc := range r.Services {
		if svc.Category == session.Category {
			out = append(out, svc)
		}
	}
	return out
}

// AvailableServices returns the services bookable under the current
// selection. With both date and timeslot set, a service qualifies if at least
// one specialist offering it has an available cell at that key; otherwise
// every (category-matching) service qualifies.
func (r *Resolver) AvailableServices(session *models.BookingSession) []models.Service {
	candidates := r.categoryFiltered(session)
	if session.Date == "" || session.Timeslot == "" {
		return candidates
	}

	date := matrixKey(session.Date)
	free := make(map[string]bool)
	for _, sp := range r.Specialists {
		if r.Matrix.Available(sp.Name, date, session.Timeslot) {
			for _, id := range sp.ServiceIDs {
				free[id] = true
			}
		}
	}

	var out []models.Service
	for _, svc := range candidates {
		if free[svc.ID] {
			out = append(out, svc)
		}
	}
	return out
}

// AvailableSpecialists returns the specialists compatible with the current
// selection. Four cases by which of {service, date+timeslot} are set:
// neither → all; service only → those offering it; date+timeslot only →
// those with an available cell; both → the intersection.
func (r *Resolver) AvailableSpecialists(session *models.BookingSession) []models.Specialist {
	haveSlot := session.Date != "" && session.Timeslot != ""
	date := matrixKey(session.Date)

	var out []models.Specialist
	for _, sp := range r.Specialists {
		if session.ServiceID != "" && !sp.Offers(session.ServiceID) {
			continue
		}
		if haveSlot && !r.Matrix.Available(sp.Name, date, session.Timeslot) {
			continue
		}
		out = append(out, sp)
	}
	return out
}

// AvailableTimeslots returns the open slots on the given date, restricted to
// the selected specialist when one is chosen, otherwise unioned across the
// specialists compatible with the selected service (or all specialists).
// The result is deduplicated and sorted ascending by slot start time.
func (r *Resolver) AvailableTimeslots(session *models.BookingSession, isoDate string) []string {
	date := matrixKey(isoDate)
	if date == "" {
		return nil
	}

	if session.SpecialistName != "" {
		return r.Matrix.Slots(session.SpecialistName, date)
	}

	seen := make(map[string]bool)
	var out []string
	for _, sp := range r.Specialists {
		if session.ServiceID != "" && !sp.Offers(session.ServiceID) {
			continue
		}
		for _, slot := range r.Matrix.Slots(sp.Name, date) {
			if !seen[slot] {
				seen[slot] = true
				out = append(out, slot)
			}
		}
	}
	availability.SortSlots(out)
	return out
}

// AvailableDates returns ISO dates with at least one open slot, restricted to
// the selected specialist when one is chosen, otherwise unioned across the
// specialists compatible with the selected service (or all specialists).
func (r *Resolver) AvailableDates(session *models.BookingSession) []string {
	seen := make(map[string]bool)
	var out []string
	collect := func(name string) {
		for _, sheetDate := range r.Matrix.Dates(name) {
			iso, err := availability.ToISODate(sheetDate)
			if err != nil {
				continue
			}
			if !seen[iso] {
				seen[iso] = true
				out = append(out, iso)
			}
		}
	}

	if session.SpecialistName != "" {
		collect(session.SpecialistName)
	} else {
		for _, sp := range r.Specialists {
			if session.ServiceID != "" && !sp.Offers(session.ServiceID) {
				continue
			}
			collect(sp.Name)
		}
	}
	sort.Strings(out)
	return out
}
