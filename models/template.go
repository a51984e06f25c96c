package models

import "time"

// AvailabilityTemplate is one recurring weekly availability rule, expressed in
// the provider's local time. Weekday follows time.Weekday (Sunday = 0).
type AvailabilityTemplate struct {
	ID          string    `bson:"id" json:"id"`
	ProviderID  string    `bson:"providerId" json:"providerId"`
	Weekday     int       `bson:"weekday" json:"weekday"`
	StartMinute int       `bson:"startMinute" json:"startMinute"` // minutes from local midnight
	EndMinute   int       `bson:"endMinute" json:"endMinute"`
	Active      bool      `bson:"active" json:"active"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// TemplateInput is a single rule in the PUT templates payload.
type TemplateInput struct {
	Weekday     int  `json:"weekday" binding:"min=0,max=6"`
	StartMinute int  `json:"startMinute" binding:"min=0,max=1439"`
	EndMinute   int  `json:"endMinute" binding:"min=1,max=1440"`
	Active      bool `json:"active"`
}
