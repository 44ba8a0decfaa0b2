package routes

import (
	"net/http"

	"tablecall/config"
	"tablecall/handlers"
	"tablecall/middleware"
	"tablecall/utils"

	"github.com/gin-gonic/gin"
)

// RegisterVapiRoutes registers the endpoints the voice platform calls into.
func RegisterVapiRoutes(r *gin.Engine, fh *handlers.FlowHandler) {
	api := r.Group("/vapi")
	{
		api.Use(middleware.WebhookAuthMiddleware(config.AppConfig.VapiWebhookSecret))
		api.POST("/tools", fh.HandleToolCalls)
		api.POST("/events", fh.HandleEvents)
	}
}

// RegisterBookingRoutes registers the operator views over booking records.
func RegisterBookingRoutes(r *gin.Engine, fh *handlers.FlowHandler) {
	r.GET("/bookings", fh.ListBookings)
	r.GET("/bookings/:id", fh.GetBooking)
}

// RegisterCallRoutes registers the manual outbound-call trigger.
func RegisterCallRoutes(r *gin.Engine, ch *handlers.CallHandler) {
	r.POST("/calls/trigger", ch.TriggerCall)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"server":       config.AppConfig.ServerBaseURL,
			"dependencies": utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes wires every endpoint group onto the router.
func RegisterRoutes(r *gin.Engine, fh *handlers.FlowHandler, ch *handlers.CallHandler) {
	RegisterVapiRoutes(r, fh)
	RegisterBookingRoutes(r, fh)
	RegisterCallRoutes(r, ch)
	RegisterHealthRoute(r)
}
