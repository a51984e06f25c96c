// File: database/repository/template/interface.go
package templateRepo

import (
	"context"

	"slotwise/database"
	"slotwise/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type TemplateRepository interface {
	// ReplaceForProvider swaps out the provider's whole weekly schedule.
	ReplaceForProvider(ctx context.Context, providerID string, templates []models.AvailabilityTemplate) error
	List(ctx context.Context, providerID string) ([]models.AvailabilityTemplate, error)
	ListActive(ctx context.Context, providerID string) ([]models.AvailabilityTemplate, error)
	EnsureIndexes() error
}

type mongoTemplateRepo struct {
	coll *mongo.Collection
}

// NewMongoTemplateRepo constructs a new MongoDB TemplateRepository.
func NewMongoTemplateRepo() TemplateRepository {
	db := database.MongoClient.Database("slotwise")
	return &mongoTemplateRepo{
		coll: db.Collection("availability_templates"),
	}
}
