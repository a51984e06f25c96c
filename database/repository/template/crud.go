// File: database/repository/template/crud.go
package templateRepo

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

func (r *mongoTemplateRepo) ReplaceForProvider(ctx context.Context, providerID string, templates []models.AvailabilityTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"providerId": providerID}); err != nil {
		return fmt.Errorf("failed to clear templates for provider %s: %w", providerID, err)
	}
	if len(templates) == 0 {
		return nil
	}

	docs := make([]interface{}, len(templates))
	now := time.Now()
	for i, t := range templates {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		t.ProviderID = providerID
		t.CreatedAt = now
		docs[i] = t
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert templates for provider %s: %w", providerID, err)
	}
	return nil
}

func (r *mongoTemplateRepo) List(ctx context.Context, providerID string) ([]models.AvailabilityTemplate, error) {
	return r.find(ctx, bson.M{"providerId": providerID})
}

func (r *mongoTemplateRepo) ListActive(ctx context.Context, providerID string) ([]models.AvailabilityTemplate, error) {
	return r.find(ctx, bson.M{"providerId": providerID, "active": true})
}

func (r *mongoTemplateRepo) find(ctx context.Context, filter bson.M) ([]models.AvailabilityTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "weekday", Value: 1}, {Key: "startMinute", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []models.AvailabilityTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// EnsureIndexes creates the necessary indexes on the templates collection.
func (r *mongoTemplateRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "weekday", Value: 1}},
			Options: options.Index().SetName("provider_weekday_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create template indexes: %w", err)
	}
	return nil
}
