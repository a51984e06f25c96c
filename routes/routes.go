package routes

import (
	"time"

	"slotwise/handlers"
	"slotwise/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the whole HTTP surface onto the router.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", hb.HealthHandler)

	api := r.Group("/api")
	{
		// Availability is readable without a token so booking pages can render
		// before login.
		api.GET("/availability", hb.GetAvailabilityHandler)
		api.GET("/providers/:id/settings", hb.GetProviderSettingsHandler)
		api.GET("/providers/:id/templates", hb.GetTemplatesHandler)

		// Payment webhooks authenticate by signature, not by token.
		api.POST("/webhooks/stripe", hb.StripeWebhookHandler)

		// The OAuth callback is reached by the calendar provider's redirect;
		// the signed state parameter carries the actor identity.
		api.GET("/calendar/callback/:provider", hb.CalendarCallbackHandler)

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("/bookings", hb.CreateBookingHandler)
			authed.GET("/bookings/:id", hb.GetBookingHandler)
			authed.POST("/bookings/:id/reschedule", hb.RescheduleBookingHandler)
			authed.POST("/bookings/:id/cancel", hb.CancelBookingHandler)
		}

		provider := api.Group("")
		provider.Use(middleware.AuthMiddleware(), middleware.ProviderAuthMiddleware())
		{
			provider.PUT("/providers/:id/settings", hb.UpdateProviderSettingsHandler)
			provider.PUT("/providers/:id/templates", hb.PutTemplatesHandler)
			provider.GET("/calendar/connect/:provider", hb.ConnectCalendarHandler)
			provider.POST("/calendar/feed", hb.SetFeedHandler)
			provider.GET("/calendar/connection", hb.GetCalendarConnectionHandler)
			provider.DELETE("/calendar/connection", hb.DisconnectCalendarHandler)
		}
	}
}
