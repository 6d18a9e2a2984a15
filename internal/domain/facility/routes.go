package facility

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the catalogue under /facilities and its alias
// /amenities. Writes go through the admin chain.
func (h *Handler) RegisterRoutes(public *gin.RouterGroup, admin ...gin.HandlerFunc) {
	for _, prefix := range []string{"/facilities", "/amenities"} {
		g := public.Group(prefix)
		g.GET("", h.List)
		g.GET("/:id", h.Get)

		w := g.Group("", admin...)
		w.POST("", h.Create)
		w.PUT("/:id", h.Update)
		w.DELETE("/:id", h.Delete)
	}
}

// RegisterAdminRoutes mounts the admin panel shortcuts.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/facilities", h.List)
	admin.POST("/facilities", h.Create)
	admin.DELETE("/facilities/:id", h.Delete)
}
