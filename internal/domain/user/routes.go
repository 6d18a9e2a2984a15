package user

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	r.GET("/users", h.List)
	r.GET("/users/:id", h.GetPublic)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", h.Me)

	me := r.Group("/users/me")
	me.PUT("", h.UpdateProfile)
	me.PUT("/password", h.ChangePassword)
	me.POST("/avatar", h.UploadAvatar)
	me.DELETE("", h.Delete)

	// Older clients address the caller as /users.
	r.PUT("/users", h.UpdateProfile)
	r.PUT("/users/change-password", h.ChangePassword)
	r.POST("/users/profile-image", h.UploadAvatar)
	r.DELETE("/users", h.Delete)
}
