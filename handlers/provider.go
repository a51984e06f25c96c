package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"slotwise/config"
	"slotwise/models"
	"slotwise/services/civil"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// GetProviderSettingsHandler answers GET /api/providers/:id/settings.
func (hb *HandlerBundle) GetProviderSettingsHandler(c *gin.Context) {
	provider, err := hb.ProviderRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "provider not found", c.Param("id"))
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load provider", err.Error())
		return
	}
	c.JSON(http.StatusOK, provider)
}

// UpdateProviderSettingsHandler answers PUT /api/providers/:id/settings. Only
// the provider themselves may change their settings. A timezone change makes
// every materialized slot wrong, so regeneration runs before the response.
func (hb *HandlerBundle) UpdateProviderSettingsHandler(c *gin.Context) {
	providerID := c.Param("id")
	if c.GetString("actorID") != providerID {
		utils.JSONError(c, http.StatusForbidden, "forbidden", "settings can only be changed by their owner")
		return
	}

	var upd models.ProviderSettingsUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if upd.Timezone != nil {
		if _, err := civil.Zone(*upd.Timezone); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "unknown timezone "+*upd.Timezone)
			return
		}
	}
	if upd.MinAdvanceHours != nil && *upd.MinAdvanceHours < 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "minAdvanceHours must be non-negative")
		return
	}
	if upd.MaxAdvanceDays != nil && *upd.MaxAdvanceDays < 1 {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "maxAdvanceDays must be at least 1")
		return
	}

	before, err := hb.ProviderRepo.GetByID(c.Request.Context(), providerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "provider not found", providerID)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load provider", err.Error())
		return
	}

	provider, err := hb.ProviderRepo.UpdateSettings(c.Request.Context(), providerID, upd)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update settings", err.Error())
		return
	}

	if upd.Timezone != nil && *upd.Timezone != before.Timezone {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := hb.Materializer.Regenerate(ctx, provider, config.AppConfig.SlotWindowDays); err != nil {
			hb.Logger.Error("slot regeneration after timezone change failed",
				zap.String("providerId", providerID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, provider)
}
