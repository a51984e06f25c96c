// File: database/repository/provider/interface.go
package providerRepo

import (
	"context"

	"slotwise/database"
	"slotwise/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type ProviderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	Upsert(ctx context.Context, p *models.Provider) error
	UpdateSettings(ctx context.Context, id string, upd models.ProviderSettingsUpdate) (*models.Provider, error)
}

type mongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo constructs a new MongoDB ProviderRepository.
func NewMongoProviderRepo() ProviderRepository {
	db := database.MongoClient.Database("slotwise")
	return &mongoProviderRepo{
		coll: db.Collection("providers"),
	}
}
