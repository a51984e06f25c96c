package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"slotwise/services/availability"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetAvailabilityHandler answers GET /api/availability.
//
// Query parameters: providerId, date (YYYY-MM-DD in the requester's zone),
// durationMinutes (15/30/60), timezone (IANA name). The response carries
// start/end minutes relative to the requester-local midnight of the requested
// date, plus the UTC instants.
func (hb *HandlerBundle) GetAvailabilityHandler(c *gin.Context) {
	providerID := c.Query("providerId")
	date := c.Query("date")
	tz := c.Query("timezone")
	if providerID == "" || date == "" || tz == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", "providerId, date and timezone are required")
		return
	}
	duration, err := strconv.Atoi(c.DefaultQuery("durationMinutes", "30"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", "durationMinutes must be an integer")
		return
	}

	options, err := hb.Availability.GetBookableSlots(c.Request.Context(), providerID, date, duration, tz)
	if err != nil {
		var verr *availability.ValidationError
		switch {
		case errors.As(err, &verr):
			utils.JSONError(c, http.StatusBadRequest, "invalid query", verr.Msg)
		case errors.Is(err, mongo.ErrNoDocuments):
			utils.JSONError(c, http.StatusNotFound, "provider not found", providerID)
		default:
			utils.JSONError(c, http.StatusInternalServerError, "failed to compute availability", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"providerId":      providerID,
		"date":            date,
		"durationMinutes": duration,
		"timezone":        tz,
		"slots":           options,
	})
}
