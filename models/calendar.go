package models

import "time"

// Calendar connection kinds. Dispatch on the kind happens once, at the
// adapter boundary in services/calendar.
const (
	CalendarKindGoogle    = "google"
	CalendarKindMicrosoft = "microsoft"
	CalendarKindICSFeed   = "icsfeed"
)

// CalendarConnection is a provider's external calendar credential. At most one
// active connection exists per provider (unique index on providerId).
type CalendarConnection struct {
	ID         string `bson:"id" json:"id"`
	ProviderID string `bson:"providerId" json:"providerId"`
	Kind       string `bson:"kind" json:"kind"`

	// OAuth credentials (google/microsoft).
	AccessToken  string    `bson:"accessToken,omitempty" json:"-"`
	RefreshToken string    `bson:"refreshToken,omitempty" json:"-"`
	TokenExpiry  time.Time `bson:"tokenExpiry,omitempty" json:"-"`

	// Subscribed feed URL (icsfeed).
	FeedURL string `bson:"feedUrl,omitempty" json:"feedUrl,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Writable reports whether the connection supports event create/delete.
func (c *CalendarConnection) Writable() bool {
	if c == nil {
		return false
	}
	return c.Kind == CalendarKindGoogle || c.Kind == CalendarKindMicrosoft
}

// BusyInterval is an ephemeral busy range sourced internally or from an
// external calendar. Never persisted; recomputed per availability query.
type BusyInterval struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Source string    `json:"source"`
}

// Overlaps reports whether the half-open interval [b.Start, b.End) overlaps
// [start, end).
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}
