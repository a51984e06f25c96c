// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"time"

	"slotwise/database"
	"slotwise/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// FindDuplicate returns an existing non-cancelled booking with identical
	// provider, requester and interval, or nil.
	FindDuplicate(ctx context.Context, providerID, requesterID string, start, end time.Time) (*models.Booking, error)
	// FindOverlapping returns PENDING/CONFIRMED bookings for the provider whose
	// [start,end) half-open-overlaps the given interval, excluding excludeID.
	FindOverlapping(ctx context.Context, providerID string, start, end time.Time, excludeID string) ([]models.Booking, error)
	ListActiveInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.Booking, error)
	// ConfirmIfPending atomically sets status CONFIRMED iff it is PENDING and
	// persists the revenue split. Returns false when no transition happened.
	ConfirmIfPending(ctx context.Context, id, paymentIntentID string, platformFee, providerShare int64) (bool, error)
	// CancelActive atomically sets status CANCELLED iff it is PENDING or
	// CONFIRMED. Returns false when no transition happened.
	CancelActive(ctx context.Context, id string) (bool, error)
	// UpdateSchedule mutates start/end and clears the stale calendar event id.
	UpdateSchedule(ctx context.Context, id string, newStart, newEnd time.Time) error
	SetMeetingURL(ctx context.Context, id, url string) error
	SetCalendarEventID(ctx context.Context, id, eventID string) error
	SetCheckoutSessionID(ctx context.Context, id, sessionID string) error
	EnsureIndexes() error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database("slotwise")
	return &mongoBookingRepo{
		coll: db.Collection("bookings"),
	}
}
