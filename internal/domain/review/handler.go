package review

import (
	"net/http"

	"staybook/internal/middleware"
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

func (h *Handler) ListByProperty(c *gin.Context) {
	propertyID, err := request.ParamID(c, "propertyId")
	if err != nil {
		response.FromError(c, err)
		return
	}
	out, err := h.service.ListByProperty(c.Request.Context(), propertyID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": out})
}

func (h *Handler) ListByUser(c *gin.Context) {
	out, err := h.service.ListByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": out})
}

// Create godoc
// @Summary Review a completed booking
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/reviews [post]
func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if err := request.BindJSON(c, &in); err != nil {
		response.FromError(c, err)
		return
	}
	rv, err := h.service.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rv)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := request.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var in UpdateInput
	if err := request.BindJSON(c, &in); err != nil {
		response.FromError(c, err)
		return
	}
	rv, err := h.service.Update(c.Request.Context(), middleware.UserID(c), id, in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rv)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := request.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Review deleted successfully"})
}
