package handlers

import (
	"errors"
	"net/http"

	"slotwise/models"
	"slotwise/services/booking"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
)

// CreateBookingHandler answers POST /api/bookings. The requester identity
// comes from the auth middleware; the body picks the provider, slot and
// duration. A successful response carries the pending booking and the
// checkout URL the requester must complete payment at.
func (hb *HandlerBundle) CreateBookingHandler(c *gin.Context) {
	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	requesterID := c.GetString("actorID")

	b, checkoutURL, err := hb.Bookings.Create(c.Request.Context(), requesterID, input)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"bookingId":   b.ID,
		"status":      b.Status,
		"checkoutUrl": checkoutURL,
		"booking":     b,
	})
}

// GetBookingHandler answers GET /api/bookings/:id.
func (hb *HandlerBundle) GetBookingHandler(c *gin.Context) {
	b, err := hb.Bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}

	// Only the parties on the booking may read it.
	actorID := c.GetString("actorID")
	if actorID != b.RequesterID && actorID != b.ProviderID {
		utils.JSONError(c, http.StatusForbidden, "not a party on this booking", "")
		return
	}
	c.JSON(http.StatusOK, b)
}

// RescheduleBookingHandler answers POST /api/bookings/:id/reschedule. Both
// lead-time violations and target-slot conflicts come back as 400s so clients
// treat every rejection the same way: re-query availability and retry.
func (hb *HandlerBundle) RescheduleBookingHandler(c *gin.Context) {
	var input models.RescheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	actorID := c.GetString("actorID")

	b, err := hb.Bookings.Reschedule(c.Request.Context(), c.Param("id"), actorID, input.NewStart, input.NewEnd)
	if err != nil {
		var conflict *booking.ConflictError
		if errors.As(err, &conflict) {
			utils.JSONError(c, http.StatusBadRequest, "reschedule rejected", conflict.Message)
			return
		}
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBookingHandler answers POST /api/bookings/:id/cancel.
func (hb *HandlerBundle) CancelBookingHandler(c *gin.Context) {
	actorID := c.GetString("actorID")
	if err := hb.Bookings.Cancel(c.Request.Context(), c.Param("id"), actorID); err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.BookingStatusCancelled})
}

// respondBookingError maps service errors onto the HTTP surface.
func respondBookingError(c *gin.Context, err error) {
	var (
		validation *booking.ValidationError
		conflict   *booking.ConflictError
		permission *booking.PermissionError
	)
	switch {
	case errors.Is(err, booking.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "booking not found", "")
	case errors.As(err, &validation):
		utils.JSONError(c, http.StatusBadRequest, "invalid input", validation.Message)
	case errors.As(err, &conflict):
		utils.JSONError(c, http.StatusConflict, "booking conflict", conflict.Message)
	case errors.As(err, &permission):
		utils.JSONError(c, http.StatusForbidden, "forbidden", permission.Message)
	default:
		utils.JSONError(c, http.StatusInternalServerError, "booking operation failed", err.Error())
	}
}
