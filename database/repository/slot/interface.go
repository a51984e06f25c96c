// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"errors"
	"time"

	"slotwise/database"
	"slotwise/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotTaken is returned by Claim when the slot at the given start instant
// is already booked. Concurrent claims fail closed on this error.
var ErrSlotTaken = errors.New("slot already booked")

// ErrNoSlot is returned when no slot row exists at the given start instant.
// Callers tolerate it: slot rows are a convenience index, the Booking row is
// authoritative.
var ErrNoSlot = errors.New("no slot at instant")

type SlotRepository interface {
	// ReplaceUnbooked deletes every non-booked slot for the provider and bulk
	// inserts the given candidate set. Booked slots are never touched.
	ReplaceUnbooked(ctx context.Context, providerID string, slots []models.AvailabilitySlot) error
	ListFreeInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.AvailabilitySlot, error)
	ListBookedStarts(ctx context.Context, providerID string, from time.Time) ([]time.Time, error)
	// Claim flips isBooked false -> true for the slot starting at start.
	Claim(ctx context.Context, providerID string, start time.Time) error
	// Release flips isBooked true -> false for the slot starting at start.
	Release(ctx context.Context, providerID string, start time.Time) error
	EnsureIndexes() error
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	db := database.MongoClient.Database("slotwise")
	return &mongoSlotRepo{
		coll: db.Collection("availability_slots"),
	}
}
