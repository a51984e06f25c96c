package models

import "time"

// Booking status values. CONFIRMED is the single canonical "payment
// succeeded" state; there is no separate PAID status.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

// Booking is a contracted session between a provider and a requester.
// Start/End are UTC instants and are authoritative for conflict detection.
type Booking struct {
	ID              string `bson:"id" json:"id"`
	ProviderID      string `bson:"providerId" json:"providerId"`
	RequesterID     string `bson:"requesterId" json:"requesterId"`
	DurationMinutes int    `bson:"durationMinutes" json:"durationMinutes"`
	Status          string `bson:"status" json:"status"`

	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`

	// RequesterTimezone is the zone the requester booked in, kept for display
	// and email rendering.
	RequesterTimezone string `bson:"requesterTimezone" json:"requesterTimezone"`

	PriceCents         int64  `bson:"priceCents" json:"priceCents"`
	Currency           string `bson:"currency" json:"currency"`
	PlatformFeeCents   int64  `bson:"platformFeeCents,omitempty" json:"platformFeeCents,omitempty"`
	ProviderShareCents int64  `bson:"providerShareCents,omitempty" json:"providerShareCents,omitempty"`

	CheckoutSessionID string `bson:"checkoutSessionId,omitempty" json:"-"`
	PaymentIntentID   string `bson:"paymentIntentId,omitempty" json:"-"`

	MeetingURL      string `bson:"meetingUrl,omitempty" json:"meetingUrl,omitempty"`
	CalendarEventID string `bson:"calendarEventId,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreateBookingInput is the POST /bookings payload. The requester identity
// comes from the auth middleware, not the body.
type CreateBookingInput struct {
	ProviderID      string `json:"providerId" binding:"required"`
	Date            string `json:"date" binding:"required"` // "2006-01-02" in the requester's zone
	StartMinute     int    `json:"startMinute" binding:"min=0,max=1439"`
	DurationMinutes int    `json:"durationMinutes" binding:"required"`
	Timezone        string `json:"timezone" binding:"required"`
}

// RescheduleInput is the POST /bookings/:id/reschedule payload.
type RescheduleInput struct {
	NewStart time.Time `json:"newStart" binding:"required"`
	NewEnd   time.Time `json:"newEnd" binding:"required"`
}
