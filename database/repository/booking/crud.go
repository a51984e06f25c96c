// File: database/repository/booking/crud.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotwise/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *mongoBookingRepo) FindDuplicate(ctx context.Context, providerID, requesterID string, start, end time.Time) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId":  providerID,
		"requesterId": requesterID,
		"start":       start,
		"end":         end,
		"status":      bson.M{"$ne": models.BookingStatusCancelled},
	}
	var b models.Booking
	err := r.coll.FindOne(ctx, filter).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *mongoBookingRepo) FindOverlapping(ctx context.Context, providerID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Half-open overlap: existing.start < end && existing.end > start.
	filter := bson.M{
		"providerId": providerID,
		"status":     bson.M{"$in": []string{models.BookingStatusPending, models.BookingStatusConfirmed}},
		"start":      bson.M{"$lt": end},
		"end":        bson.M{"$gt": start},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *mongoBookingRepo) ListActiveInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.Booking, error) {
	return r.FindOverlapping(ctx, providerID, from, to, "")
}

func (r *mongoBookingRepo) ConfirmIfPending(ctx context.Context, id, paymentIntentID string, platformFee, providerShare int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.BookingStatusPending}
	update := bson.M{"$set": bson.M{
		"status":             models.BookingStatusConfirmed,
		"paymentIntentId":    paymentIntentID,
		"platformFeeCents":   platformFee,
		"providerShareCents": providerShare,
		"updatedAt":          time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking %s: %w", id, err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoBookingRepo) CancelActive(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": []string{models.BookingStatusPending, models.BookingStatusConfirmed}},
	}
	update := bson.M{"$set": bson.M{"status": models.BookingStatusCancelled, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking %s: %w", id, err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoBookingRepo) UpdateSchedule(ctx context.Context, id string, newStart, newEnd time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set":   bson.M{"start": newStart, "end": newEnd, "updatedAt": time.Now()},
		"$unset": bson.M{"calendarEventId": ""},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to reschedule booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoBookingRepo) SetMeetingURL(ctx context.Context, id, url string) error {
	return r.setField(ctx, id, "meetingUrl", url)
}

func (r *mongoBookingRepo) SetCalendarEventID(ctx context.Context, id, eventID string) error {
	return r.setField(ctx, id, "calendarEventId", eventID)
}

func (r *mongoBookingRepo) SetCheckoutSessionID(ctx context.Context, id, sessionID string) error {
	return r.setField(ctx, id, "checkoutSessionId", sessionID)
}

func (r *mongoBookingRepo) setField(ctx context.Context, id, field, value string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{field: value, "updatedAt": time.Now()}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to set %s on booking %s: %w", field, id, err)
	}
	return nil
}
