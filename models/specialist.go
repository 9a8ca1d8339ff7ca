package models

// Specialist is a salon worker. ServiceIDs is the many-to-many membership
// relation: every service the specialist can perform. Name doubles as the
// title of the specialist's availability sheet tab.
type Specialist struct {
	ID         string   `bson:"id" json:"id"`
	Name       string   `bson:"name" json:"name"`
	ServiceIDs []string `bson:"serviceIds" json:"serviceIds"`
	CalendarID string   `bson:"calendarId,omitempty" json:"calendarId,omitempty"`
}

// Offers reports whether the specialist performs the given service.
func (s *Specialist) Offers(serviceID string) bool {
	for _, id := range s.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
