// File: database/repository/calendarconn/crud.go
package calendarConnRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotwise/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoCalendarConnRepo) Upsert(ctx context.Context, conn *models.CalendarConnection) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if conn.ID == "" {
		conn.ID = uuid.New().String()
	}
	now := time.Now()
	conn.UpdatedAt = now
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = now
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"providerId": conn.ProviderID}, conn, opts); err != nil {
		return fmt.Errorf("failed to upsert calendar connection for provider %s: %w", conn.ProviderID, err)
	}
	return nil
}

func (r *mongoCalendarConnRepo) GetByProviderID(ctx context.Context, providerID string) (*models.CalendarConnection, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var conn models.CalendarConnection
	err := r.coll.FindOne(ctx, bson.M{"providerId": providerID}).Decode(&conn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *mongoCalendarConnRepo) UpdateAccessToken(ctx context.Context, providerID, accessToken string, expiry time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"accessToken": accessToken,
		"tokenExpiry": expiry,
		"updatedAt":   time.Now(),
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"providerId": providerID}, update); err != nil {
		return fmt.Errorf("failed to update access token for provider %s: %w", providerID, err)
	}
	return nil
}

func (r *mongoCalendarConnRepo) Delete(ctx context.Context, providerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"providerId": providerID})
	if err != nil {
		return fmt.Errorf("failed to delete calendar connection for provider %s: %w", providerID, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// EnsureIndexes creates the necessary indexes on the connections collection.
func (r *mongoCalendarConnRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_provider"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create calendar connection indexes: %w", err)
	}
	return nil
}
