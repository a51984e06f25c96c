// File: database/repository/calendarconn/interface.go
package calendarConnRepo

import (
	"context"
	"time"

	"slotwise/database"
	"slotwise/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type CalendarConnRepository interface {
	// Upsert stores the connection, replacing any existing one for the
	// provider. At most one active connection exists per provider.
	Upsert(ctx context.Context, conn *models.CalendarConnection) error
	// GetByProviderID returns the provider's connection, or nil when the
	// provider has none.
	GetByProviderID(ctx context.Context, providerID string) (*models.CalendarConnection, error)
	// UpdateAccessToken mutates the access token in place after a refresh.
	UpdateAccessToken(ctx context.Context, providerID, accessToken string, expiry time.Time) error
	Delete(ctx context.Context, providerID string) error
	EnsureIndexes() error
}

type mongoCalendarConnRepo struct {
	coll *mongo.Collection
}

// NewMongoCalendarConnRepo constructs a new MongoDB CalendarConnRepository.
func NewMongoCalendarConnRepo() CalendarConnRepository {
	db := database.MongoClient.Database("slotwise")
	return &mongoCalendarConnRepo{
		coll: db.Collection("calendar_connections"),
	}
}
