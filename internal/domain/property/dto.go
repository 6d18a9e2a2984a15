package property

import (
	"staybook/internal/domain"
	"staybook/internal/pkg/pagination"
)

// CreateInput is the normalized create payload. Facilities has already been
// reduced to a set of ids.
type CreateInput struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description"`
	Address       string  `json:"address"`
	City          string  `json:"city" validate:"required"`
	State         string  `json:"state"`
	Country       string  `json:"country"`
	RentPerDay    float64 `json:"rent_per_day" validate:"gt=0"`
	MaxGuests     int     `json:"max_guests" validate:"gt=0"`
	PropertyType  string  `json:"property_type"`
	TotalBedrooms *int    `json:"total_bedrooms"`
	TotalRooms    *int    `json:"total_rooms"`
	TotalBeds     *int    `json:"total_beds"`
	Facilities    FacilitySet
	ImageURLs     []string
}

// UpdateInput carries only the fields present in the request.
type UpdateInput struct {
	Title         *string
	Description   *string
	Address       *string
	City          *string
	State         *string
	Country       *string
	RentPerDay    *float64
	MaxGuests     *int
	PropertyType  *string
	TotalBedrooms *int
	TotalRooms    *int
	TotalBeds     *int
	Facilities    *FacilitySet
	ImageURLs     *[]string
}

type Filter struct {
	HostID       int64
	City         string
	MinPrice     *float64
	MaxPrice     *float64
	Bedrooms     *int
	Guests       *int
	PropertyType domain.PropertyType
	Query        string
	Limit        int
	Offset       int
}

type ListResult struct {
	Properties []domain.Property `json:"properties"`
	Pagination pagination.Meta   `json:"pagination"`
}
