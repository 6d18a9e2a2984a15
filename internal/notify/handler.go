package notify

import (
	"net/http"

	"staybook/internal/pkg/jwt"
	"staybook/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	jwt      *jwt.Service
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, jwtService *jwt.Service, origins []string) *Handler {
	return &Handler{hub: hub, jwt: jwtService, upgrader: NewUpgrader(origins)}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", h.Connect)
}

// Connect godoc
// @Summary Subscribe to booking notifications
// @Description Browsers cannot set headers on websocket requests, so the JWT travels in the query.
// @Tags Notifications
// @Param token query string true "JWT"
// @Router /ws [get]
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "token query parameter is required")
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.hub.ServeWS(conn, claims.UserID)
}
