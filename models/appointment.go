package models

import "time"

// Appointment is created exactly once per successful commit. SpecialistName,
// DateTime and Timeslot together identify the claimed slot.
type Appointment struct {
	ID             string    `bson:"id" json:"id"`
	ClientID       string    `bson:"clientId" json:"clientId"`
	ServiceID      string    `bson:"serviceId" json:"serviceId"`
	ServiceName    string    `bson:"serviceName" json:"serviceName"`
	SpecialistID   string    `bson:"specialistId" json:"specialistId"`
	SpecialistName string    `bson:"specialistName" json:"specialistName"`
	Timeslot       string    `bson:"timeslot" json:"timeslot"`
	DateTime       time.Time `bson:"dateTime" json:"dateTime"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}
