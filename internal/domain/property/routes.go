package property

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	properties := r.Group("/properties")
	{
		properties.GET("", h.List)
		properties.GET("/search", h.List)
		properties.GET("/:id", h.Get)
		properties.GET("/host/:hostId", h.ListByHost)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/properties", h.Create)
	r.PUT("/properties/:id", h.Update)
	r.DELETE("/properties/:id", h.Delete)
}
