package domain

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

type PropertyType string

const (
	PropertyHouse PropertyType = "House"
	PropertyFlat  PropertyType = "Flat"
	PropertyRoom  PropertyType = "Room"
)

// ParsePropertyType is case-insensitive and accepts Apartment for Flat.
func ParsePropertyType(s string) (PropertyType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "house":
		return PropertyHouse, true
	case "flat", "apartment":
		return PropertyFlat, true
	case "room":
		return PropertyRoom, true
	}
	return "", false
}

// PropertyDetails is the type-specific part of a property. Exactly one of
// HouseDetails, FlatDetails or RoomDetails.
type PropertyDetails interface {
	PropertyType() PropertyType
	isPropertyDetails()
}

type HouseDetails struct {
	TotalBedrooms int `json:"total_bedrooms"`
}

type FlatDetails struct {
	TotalRooms int `json:"total_rooms"`
}

type RoomDetails struct {
	TotalBeds int `json:"total_beds"`
}

func (HouseDetails) PropertyType() PropertyType { return PropertyHouse }
func (FlatDetails) PropertyType() PropertyType  { return PropertyFlat }
func (RoomDetails) PropertyType() PropertyType  { return PropertyRoom }

func (HouseDetails) isPropertyDetails() {}
func (FlatDetails) isPropertyDetails()  {}
func (RoomDetails) isPropertyDetails()  {}

// DetailsField names the input field required by a property type.
func DetailsField(t PropertyType) string {
	switch t {
	case PropertyHouse:
		return "total_bedrooms"
	case PropertyFlat:
		return "total_rooms"
	case PropertyRoom:
		return "total_beds"
	}
	return ""
}

// MissingFieldError names a type-specific field that is absent or not positive.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required and must be greater than 0", e.Field)
}

// NewPropertyDetails builds the variant for t from the candidate counts.
// Only the count matching t is consulted.
func NewPropertyDetails(t PropertyType, bedrooms, rooms, beds *int) (PropertyDetails, error) {
	pick := func(v *int) (int, error) {
		if v == nil || *v <= 0 {
			return 0, &MissingFieldError{Field: DetailsField(t)}
		}
		return *v, nil
	}

	switch t {
	case PropertyHouse:
		n, err := pick(bedrooms)
		if err != nil {
			return nil, err
		}
		return HouseDetails{TotalBedrooms: n}, nil
	case PropertyFlat:
		n, err := pick(rooms)
		if err != nil {
			return nil, err
		}
		return FlatDetails{TotalRooms: n}, nil
	case PropertyRoom:
		n, err := pick(beds)
		if err != nil {
			return nil, err
		}
		return RoomDetails{TotalBeds: n}, nil
	}
	return nil, fmt.Errorf("unknown property type %q", t)
}

type Image struct {
	ID         int64  `json:"id"`
	PropertyID int64  `json:"property_id"`
	URL        string `json:"url"`
	Key        string `json:"-"`
	IsPrimary  bool   `json:"is_primary"`
	Position   int    `json:"position"`
}

type Facility struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Property struct {
	ID           int64           `json:"id"`
	HostID       int64           `json:"host_id"`
	HostName     string          `json:"host_name,omitempty"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	State        string          `json:"state,omitempty"`
	Country      string          `json:"country,omitempty"`
	RentPerDay   float64         `json:"rent_per_day"`
	MaxGuests    int             `json:"max_guests"`
	PropertyType PropertyType    `json:"property_type"`
	Details      PropertyDetails `json:"-"`
	PrimaryImage string          `json:"primary_image,omitempty"`
	Images       []Image         `json:"images"`
	Facilities   []Facility      `json:"facilities"`
	Reviews      []Review        `json:"reviews"`
	AvgRating    float64         `json:"avg_rating"`
	ReviewCount  int             `json:"review_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type propertyAlias Property

type propertyJSON struct {
	propertyAlias
	Details json.RawMessage `json:"details"`
}

func (p Property) MarshalJSON() ([]byte, error) {
	details := json.RawMessage("null")
	if p.Details != nil {
		raw, err := json.Marshal(p.Details)
		if err != nil {
			return nil, err
		}
		details = raw
	}
	return json.Marshal(propertyJSON{propertyAlias: propertyAlias(p), Details: details})
}

func (p *Property) UnmarshalJSON(data []byte) error {
	var aux propertyJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Property(aux.propertyAlias)
	if len(aux.Details) == 0 || string(aux.Details) == "null" {
		return nil
	}

	var d PropertyDetails
	switch p.PropertyType {
	case PropertyHouse:
		var h HouseDetails
		if err := json.Unmarshal(aux.Details, &h); err != nil {
			return err
		}
		d = h
	case PropertyFlat:
		var f FlatDetails
		if err := json.Unmarshal(aux.Details, &f); err != nil {
			return err
		}
		d = f
	case PropertyRoom:
		var r RoomDetails
		if err := json.Unmarshal(aux.Details, &r); err != nil {
			return err
		}
		d = r
	default:
		return fmt.Errorf("unknown property type %q", p.PropertyType)
	}
	p.Details = d
	return nil
}
