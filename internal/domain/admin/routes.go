package admin

import "github.com/gin-gonic/gin"

// RegisterRoutes expects admin to already carry the JWT and admin guards.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/stats", h.GetStats)

	admin.GET("/users", h.ListUsers)
	admin.PATCH("/users/:id/admin-status", h.SetAdminStatus)
	admin.PUT("/users/:id/admin-status", h.SetAdminStatus)

	admin.GET("/properties", h.ListProperties)
	admin.GET("/bookings", h.ListBookings)
}
