package booking

import (
	"net/http"

	"staybook/internal/domain/availability"
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

// CheckAvailability evaluates a stay from a JSON body.
// @Summary Check availability
// @Tags Bookings
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/bookings/check-availability [post]
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req CreateRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	h.checkAvailability(c, req)
}

// CheckAvailabilityQuery is the query-string form:
// ?property_id=&start_date=&end_date=&guests=
func (h *Handler) CheckAvailabilityQuery(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.FromError(c, availability.ErrMissingFields)
		return
	}
	h.checkAvailability(c, req)
}

// PropertyAvailability serves GET /properties/:id/availability.
func (h *Handler) PropertyAvailability(c *gin.Context) {
	id, err := request.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	req := CreateRequest{
		PropertyID:   id,
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
		CheckInDate:  c.Query("check_in_date"),
		CheckOutDate: c.Query("check_out_date"),
		Guests:       request.QueryInt(c, "guests"),
	}
	h.checkAvailability(c, req)
}

func (h *Handler) checkAvailability(c *gin.Context, req CreateRequest) {
	q, err := req.Query()
	if err != nil {
		response.FromError(c, err)
		return
	}
	res, err := h.service.CheckAvailability(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Create books a stay for the caller.
// @Summary Create booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/bookings [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	q, err := req.Query()
	if err != nil {
		response.FromError(c, err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), middleware.UserID(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// UpdateStatus moves a booking through its lifecycle.
// @Summary Update booking status
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/bookings/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := request.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req StatusRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), middleware.UserID(c), id, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := request.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	b, err := h.service.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) ListForGuest(c *gin.Context) {
	out, err := h.service.ListForGuest(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": out})
}

func (h *Handler) ListForHost(c *gin.Context) {
	out, err := h.service.ListForHost(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": out})
}
