package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"slotwise/config"
	"slotwise/models"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// GetTemplatesHandler answers GET /api/providers/:id/templates.
func (hb *HandlerBundle) GetTemplatesHandler(c *gin.Context) {
	templates, err := hb.TemplateRepo.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load templates", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// PutTemplatesHandler answers PUT /api/providers/:id/templates. The payload
// replaces the provider's whole weekly schedule; slot regeneration runs
// best-effort afterwards so the new schedule shows up in availability without
// waiting for the nightly run.
func (hb *HandlerBundle) PutTemplatesHandler(c *gin.Context) {
	providerID := c.Param("id")
	if c.GetString("actorID") != providerID {
		utils.JSONError(c, http.StatusForbidden, "forbidden", "templates can only be changed by their owner")
		return
	}

	var input struct {
		Templates []models.TemplateInput `json:"templates" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	for _, t := range input.Templates {
		if t.EndMinute <= t.StartMinute {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "endMinute must be after startMinute")
			return
		}
	}

	provider, err := hb.ProviderRepo.GetByID(c.Request.Context(), providerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "provider not found", providerID)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load provider", err.Error())
		return
	}

	now := time.Now().UTC()
	templates := make([]models.AvailabilityTemplate, 0, len(input.Templates))
	for _, t := range input.Templates {
		templates = append(templates, models.AvailabilityTemplate{
			ID:          uuid.New().String(),
			ProviderID:  providerID,
			Weekday:     t.Weekday,
			StartMinute: t.StartMinute,
			EndMinute:   t.EndMinute,
			Active:      t.Active,
			CreatedAt:   now,
		})
	}

	if err := hb.TemplateRepo.ReplaceForProvider(c.Request.Context(), providerID, templates); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to store templates", err.Error())
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := hb.Materializer.Regenerate(ctx, provider, config.AppConfig.SlotWindowDays); err != nil {
			hb.Logger.Error("slot regeneration after template update failed",
				zap.String("providerId", providerID), zap.Error(err))
		}
	}()

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}
