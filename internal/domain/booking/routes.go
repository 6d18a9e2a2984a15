package booking

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/bookings/check-availability", h.CheckAvailability)
	r.GET("/bookings/availability", h.CheckAvailabilityQuery)
	r.GET("/properties/:id/availability", h.PropertyAvailability)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.Create)
		bookings.GET("/user", h.ListForGuest)
		bookings.GET("/host", h.ListForHost)
		bookings.GET("/:id", h.Get)
		bookings.PATCH("/:id/status", h.UpdateStatus)
		bookings.PUT("/:id/status", h.UpdateStatus)
	}
}
