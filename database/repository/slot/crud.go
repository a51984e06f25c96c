// File: database/repository/slot/crud.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"slotwise/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoSlotRepo) ReplaceUnbooked(ctx context.Context, providerID string, slots []models.AvailabilitySlot) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"providerId": providerID, "isBooked": false}); err != nil {
		return fmt.Errorf("failed to clear unbooked slots for provider %s: %w", providerID, err)
	}
	if len(slots) == 0 {
		return nil
	}

	docs := make([]interface{}, len(slots))
	for i, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.New().String()
		}
		slot.ProviderID = providerID
		docs[i] = slot
	}
	// Unordered so one duplicate-key conflict (a booked slot already holds the
	// start instant) does not abort the rest of the batch.
	opts := options.InsertMany().SetOrdered(false)
	if _, err := r.coll.InsertMany(ctx, docs, opts); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to insert slots for provider %s: %w", providerID, err)
		}
	}
	return nil
}

func (r *mongoSlotRepo) ListFreeInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.AvailabilitySlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"isBooked":   false,
		"start":      bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.AvailabilitySlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *mongoSlotRepo) ListBookedStarts(ctx context.Context, providerID string, from time.Time) ([]time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"isBooked":   true,
		"start":      bson.M{"$gte": from},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"start": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Start time.Time `bson:"start"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	starts := make([]time.Time, len(rows))
	for i, row := range rows {
		starts[i] = row.Start
	}
	return starts, nil
}

func (r *mongoSlotRepo) Claim(ctx context.Context, providerID string, start time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID, "start": start, "isBooked": false}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"isBooked": true}})
	if err != nil {
		return fmt.Errorf("failed to claim slot: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish "already booked" from "row absent".
		count, err := r.coll.CountDocuments(ctx, bson.M{"providerId": providerID, "start": start})
		if err != nil {
			return fmt.Errorf("failed to inspect slot: %w", err)
		}
		if count > 0 {
			return ErrSlotTaken
		}
		return ErrNoSlot
	}
	return nil
}

func (r *mongoSlotRepo) Release(ctx context.Context, providerID string, start time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID, "start": start, "isBooked": true}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"isBooked": false}})
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoSlot
	}
	return nil
}

// EnsureIndexes creates the necessary indexes on the slots collection. The
// unique (providerId, start) index is what makes concurrent claims fail
// closed instead of double-booking.
func (r *mongoSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_provider_start"),
		},
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "isBooked", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetName("provider_free_start_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}
	return nil
}
