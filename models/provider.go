package models

import "time"

// Provider represents the party who exposes recurring availability and gets booked.
type Provider struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Timezone string `bson:"timezone" json:"timezone"` // IANA zone name, e.g. "Europe/Berlin"

	// Advance-booking window: a session must start at least MinAdvanceHours
	// from now and at most MaxAdvanceDays out.
	MinAdvanceHours int `bson:"minAdvanceHours" json:"minAdvanceHours"`
	MaxAdvanceDays  int `bson:"maxAdvanceDays" json:"maxAdvanceDays"`

	// Rates maps session duration in minutes (15/30/60) to the price in cents.
	// Missing entries fall back to the package defaults in services/booking.
	Rates map[string]int64 `bson:"rates,omitempty" json:"rates,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ProviderSettingsUpdate is the payload for PUT /providers/:id/settings.
type ProviderSettingsUpdate struct {
	Timezone        *string           `json:"timezone,omitempty"`
	MinAdvanceHours *int              `json:"minAdvanceHours,omitempty"`
	MaxAdvanceDays  *int              `json:"maxAdvanceDays,omitempty"`
	Rates           *map[string]int64 `json:"rates,omitempty"`
}
