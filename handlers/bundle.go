// Package handlers contains the gin HTTP handlers. Handlers translate between
// the HTTP surface and the service layer; all scheduling and booking logic
// lives in services/.
package handlers

import (
	"net/http"

	calendarConnRepo "slotwise/database/repository/calendarconn"
	providerRepo "slotwise/database/repository/provider"
	templateRepo "slotwise/database/repository/template"
	"slotwise/services/availability"
	"slotwise/services/booking"
	"slotwise/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerBundle aggregates the services and repositories the handlers need.
type HandlerBundle struct {
	Availability  availability.QueryService
	Bookings      booking.Service
	Materializer  scheduling.Materializer
	ProviderRepo  providerRepo.ProviderRepository
	TemplateRepo  templateRepo.TemplateRepository
	CalendarConns calendarConnRepo.CalendarConnRepository
	Logger        *zap.Logger

	// Dedup overrides the webhook dedup store; nil uses the global redis
	// webhook client.
	Dedup DedupStore
}

// HealthHandler reports liveness.
func (hb *HandlerBundle) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "slotwise"})
}
