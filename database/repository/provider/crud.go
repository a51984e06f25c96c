// File: database/repository/provider/crud.go
package providerRepo

import (
	"context"
	"fmt"
	"time"

	"slotwise/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Provider
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoProviderRepo) Upsert(ctx context.Context, p *models.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.UpdatedAt = time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"id": p.ID}, p, opts); err != nil {
		return fmt.Errorf("failed to upsert provider %s: %w", p.ID, err)
	}
	return nil
}

func (r *mongoProviderRepo) UpdateSettings(ctx context.Context, id string, upd models.ProviderSettingsUpdate) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if upd.Timezone != nil {
		set["timezone"] = *upd.Timezone
	}
	if upd.MinAdvanceHours != nil {
		set["minAdvanceHours"] = *upd.MinAdvanceHours
	}
	if upd.MaxAdvanceDays != nil {
		set["maxAdvanceDays"] = *upd.MaxAdvanceDays
	}
	if upd.Rates != nil {
		set["rates"] = *upd.Rates
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Provider
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		return nil, fmt.Errorf("failed to update provider %s settings: %w", id, err)
	}
	return &p, nil
}
