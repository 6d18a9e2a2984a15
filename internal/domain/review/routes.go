package review

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/reviews/property/:propertyId", h.ListByProperty)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	reviews := r.Group("/reviews")
	{
		reviews.GET("/user", h.ListByUser)
		reviews.POST("", h.Create)
		reviews.PUT("/:id", h.Update)
		reviews.DELETE("/:id", h.Delete)
	}
}
