package models

import "time"

// AvailabilitySlot is a concrete 30-minute UTC interval a provider could be
// booked for. Slots are a convenience index over templates: the Booking row is
// the source of truth for conflicts, the slot row carries the isBooked flag
// used for fast availability reads and fail-closed claims.
type AvailabilitySlot struct {
	ID         string    `bson:"id" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	Start      time.Time `bson:"start" json:"start"` // UTC
	End        time.Time `bson:"end" json:"end"`     // UTC
	IsBooked   bool      `bson:"isBooked" json:"isBooked"`
}

// TimeSlotOption is one bookable candidate window returned by the availability
// query. Minutes are relative to the requester's local midnight; instants are
// UTC.
type TimeSlotOption struct {
	StartMinute  int       `json:"startMinute"`
	EndMinute    int       `json:"endMinute"`
	StartInstant time.Time `json:"startInstant"`
	EndInstant   time.Time `json:"endInstant"`
}
