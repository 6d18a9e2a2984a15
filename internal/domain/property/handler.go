package property

import (
	"mime/multipart"
	"net/http"
	"strings"

	"staybook/internal/domain"
	"staybook/internal/middleware"
	"staybook/internal/pkg/pagination"
	"staybook/internal/pkg/request"
	"staybook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const imagesField = "property_images"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	Country       string   `json:"country"`
	RentPerDay    float64  `json:"rent_per_day"`
	MaxGuests     int      `json:"max_guests"`
	PropertyType  string   `json:"property_type"`
	TotalBedrooms *int     `json:"total_bedrooms"`
	TotalRooms    *int     `json:"total_rooms"`
	TotalBeds     *int     `json:"total_beds"`
	Facilities    any      `json:"facilities"`
	Amenities     any      `json:"amenities"`
	ImageURLs     []string `json:"image_urls"`
}

type updateRequest struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Address       *string   `json:"address"`
	City          *string   `json:"city"`
	State         *string   `json:"state"`
	Country       *string   `json:"country"`
	RentPerDay    *float64  `json:"rent_per_day"`
	MaxGuests     *int      `json:"max_guests"`
	PropertyType  *string   `json:"property_type"`
	TotalBedrooms *int      `json:"total_bedrooms"`
	TotalRooms    *int      `json:"total_rooms"`
	TotalBeds     *int      `json:"total_beds"`
	Facilities    any       `json:"facilities"`
	Amenities     any       `json:"amenities"`
	ImageURLs     *[]string `json:"image_urls"`
}

// List returns a filtered page of properties.
// @Summary List properties
// @Tags Properties
// @Produce json
// @Param city query string false "City (case-insensitive)"
// @Param min_price query number false "Minimum rent per day"
// @Param max_price query number false "Maximum rent per day"
// @Param bedrooms query integer false "Minimum bedrooms (houses only)"
// @Param guests query integer false "Minimum guest capacity"
// @Param property_type query string false "House, Flat or Room"
// @Param q query string false "Search in title and description"
// @Param page query integer false "Page" example(1)
// @Param limit query integer false "Page size (max 100)" example(10)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/properties [get]
func (h *Handler) List(c *gin.Context) {
	f := Filter{
		City:     strings.TrimSpace(c.Query("city")),
		MinPrice: request.QueryFloat(c, "min_price"),
		MaxPrice: request.QueryFloat(c, "max_price"),
		Bedrooms: request.QueryInt(c, "bedrooms"),
		Guests:   request.QueryInt(c, "guests"),
		Query:    strings.TrimSpace(c.Query("q")),
	}
	if raw := c.Query("property_type"); raw != "" {
		pt, ok := domain.ParsePropertyType(raw)
		if !ok {
			response.FromError(c, ErrInvalidType)
			return
		}
		f.PropertyType = pt
	}

	res, err := h.service.List(c.Request.Context(), f, pagination.FromQuery(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Get returns one property with images, facilities and reviews.
// @Summary Get property
// @Tags Properties
// @Produce json
// @Param id path integer true "Property ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/properties/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := request.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) ListByHost(c *gin.Context) {
	hostID, err := request.ParamID(c, "hostId")
	if err != nil {
		response.FromError(c, err)
		return
	}
	props, err := h.service.ListByHost(c.Request.Context(), hostID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"properties": props})
}

// Create accepts JSON or multipart/form-data with property_images files.
// @Summary Create property
// @Tags Properties
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/properties [post]
func (h *Handler) Create(c *gin.Context) {
	var (
		in    CreateInput
		files []*multipart.FileHeader
		err   error
	)
	if request.IsMultipart(c) {
		in, files, err = createFromForm(c)
	} else {
		in, err = createFromJSON(c)
	}
	if err != nil {
		response.FromError(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), middleware.UserID(c), in, files)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// Update applies a partial update. Facilities and images, when present,
// replace the current sets.
// @Summary Update property
// @Tags Properties
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Property ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/properties/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := request.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	var (
		in    UpdateInput
		files []*multipart.FileHeader
	)
	if request.IsMultipart(c) {
		in, files, err = updateFromForm(c)
	} else {
		in, err = updateFromJSON(c)
	}
	if err != nil {
		response.FromError(c, err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), middleware.UserID(c), id, in, files)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
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
	response.Success(c, http.StatusOK, gin.H{"message": "Property deleted"})
}

func createFromJSON(c *gin.Context) (CreateInput, error) {
	var req createRequest
	if err := request.BindJSON(c, &req); err != nil {
		return CreateInput{}, err
	}
	return CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Country:       req.Country,
		RentPerDay:    req.RentPerDay,
		MaxGuests:     req.MaxGuests,
		PropertyType:  req.PropertyType,
		TotalBedrooms: req.TotalBedrooms,
		TotalRooms:    req.TotalRooms,
		TotalBeds:     req.TotalBeds,
		Facilities:    ParseFacilityIDs(pickFacilities(req.Facilities, req.Amenities)),
		ImageURLs:     req.ImageURLs,
	}, nil
}

func updateFromJSON(c *gin.Context) (UpdateInput, error) {
	var req updateRequest
	if err := request.BindJSON(c, &req); err != nil {
		return UpdateInput{}, err
	}
	in := UpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Country:       req.Country,
		RentPerDay:    req.RentPerDay,
		MaxGuests:     req.MaxGuests,
		PropertyType:  req.PropertyType,
		TotalBedrooms: req.TotalBedrooms,
		TotalRooms:    req.TotalRooms,
		TotalBeds:     req.TotalBeds,
		ImageURLs:     req.ImageURLs,
	}
	if raw := pickFacilities(req.Facilities, req.Amenities); raw != nil {
		set := ParseFacilityIDs(raw)
		in.Facilities = &set
	}
	return in, nil
}

func pickFacilities(facilities, amenities any) any {
	if facilities != nil {
		return facilities
	}
	return amenities
}

func formFacilities(c *gin.Context) (FacilitySet, bool) {
	for _, field := range []string{"facilities", "facilities[]", "amenities", "amenities[]"} {
		if values, ok := c.GetPostFormArray(field); ok {
			return ParseFacilityIDs(values), true
		}
	}
	return nil, false
}

func formFiles(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[imagesField]
}

func createFromForm(c *gin.Context) (CreateInput, []*multipart.FileHeader, error) {
	in := CreateInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Address:      c.PostForm("address"),
		City:         c.PostForm("city"),
		State:        c.PostForm("state"),
		Country:      c.PostForm("country"),
		PropertyType: c.PostForm("property_type"),
		ImageURLs:    c.PostFormArray("image_urls"),
	}

	rent, _, err := request.FormFloat(c, "rent_per_day")
	if err != nil {
		return in, nil, err
	}
	if rent != nil {
		in.RentPerDay = *rent
	}
	guests, _, err := request.FormInt(c, "max_guests")
	if err != nil {
		return in, nil, err
	}
	if guests != nil {
		in.MaxGuests = *guests
	}
	if in.TotalBedrooms, _, err = request.FormInt(c, "total_bedrooms"); err != nil {
		return in, nil, err
	}
	if in.TotalRooms, _, err = request.FormInt(c, "total_rooms"); err != nil {
		return in, nil, err
	}
	if in.TotalBeds, _, err = request.FormInt(c, "total_beds"); err != nil {
		return in, nil, err
	}
	in.Facilities, _ = formFacilities(c)
	return in, formFiles(c), nil
}

func updateFromForm(c *gin.Context) (UpdateInput, []*multipart.FileHeader, error) {
	var in UpdateInput
	in.Title, _ = request.FormString(c, "title")
	in.Description, _ = request.FormString(c, "description")
	in.Address, _ = request.FormString(c, "address")
	in.City, _ = request.FormString(c, "city")
	in.State, _ = request.FormString(c, "state")
	in.Country, _ = request.FormString(c, "country")
	in.PropertyType, _ = request.FormString(c, "property_type")

	var err error
	if in.RentPerDay, _, err = request.FormFloat(c, "rent_per_day"); err != nil {
		return in, nil, err
	}
	if in.MaxGuests, _, err = request.FormInt(c, "max_guests"); err != nil {
		return in, nil, err
	}
	if in.TotalBedrooms, _, err = request.FormInt(c, "total_bedrooms"); err != nil {
		return in, nil, err
	}
	if in.TotalRooms, _, err = request.FormInt(c, "total_rooms"); err != nil {
		return in, nil, err
	}
	if in.TotalBeds, _, err = request.FormInt(c, "total_beds"); err != nil {
		return in, nil, err
	}
	if set, ok := formFacilities(c); ok {
		in.Facilities = &set
	}
	if urls, ok := c.GetPostFormArray("image_urls"); ok {
		in.ImageURLs = &urls
	}
	return in, formFiles(c), nil
}
