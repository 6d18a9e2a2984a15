package admin

import (
	"net/http"
	"strconv"

	"staybook/internal/middleware"
	"staybook/internal/pkg/pagination"
	"staybook/internal/pkg/request"
	"staybook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetStats godoc
// @Summary Platform statistics
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

func (h *Handler) ListUsers(c *gin.Context) {
	f := UserFilter{Search: c.Query("q")}
	if raw := c.Query("is_admin"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			f.Admin = &v
		}
	}
	page, err := h.service.ListUsers(c.Request.Context(), f, pagination.FromQuery(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": page.Items, "pagination": page.Pagination})
}

func (h *Handler) ListProperties(c *gin.Context) {
	page, err := h.service.ListProperties(c.Request.Context(), pagination.FromQuery(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"properties": page.Items, "pagination": page.Pagination})
}

func (h *Handler) ListBookings(c *gin.Context) {
	page, err := h.service.ListBookings(c.Request.Context(), c.Query("status"), pagination.FromQuery(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": page.Items, "pagination": page.Pagination})
}

// SetAdminStatus godoc
// @Summary Grant or revoke admin rights
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/admin/users/{id}/admin-status [patch]
func (h *Handler) SetAdminStatus(c *gin.Context) {
	id, err := request.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req SetAdminRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	if req.IsAdmin == nil {
		response.FromError(c, ErrAdminRequired)
		return
	}
	if err := h.service.SetAdmin(c.Request.Context(), middleware.UserID(c), id, *req.IsAdmin); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "is_admin": *req.IsAdmin})
}
