package booking

import (
	"staybook/internal/domain"
	"staybook/internal/domain/availability"
)

// CreateRequest accepts start_date/end_date or check_in_date/check_out_date.
type CreateRequest struct {
	PropertyID   int64  `json:"property_id" form:"property_id"`
	StartDate    string `json:"start_date" form:"start_date"`
	EndDate      string `json:"end_date" form:"end_date"`
	CheckInDate  string `json:"check_in_date" form:"check_in_date"`
	CheckOutDate string `json:"check_out_date" form:"check_out_date"`
	Guests       *int   `json:"guests" form:"guests"`
}

// Query parses the request into an availability query.
func (r CreateRequest) Query() (availability.Query, error) {
	start, end := r.StartDate, r.EndDate
	if start == "" {
		start = r.CheckInDate
	}
	if end == "" {
		end = r.CheckOutDate
	}
	if r.PropertyID <= 0 || start == "" || end == "" {
		return availability.Query{}, availability.ErrMissingFields
	}

	q := availability.Query{PropertyID: r.PropertyID, Guests: r.Guests}
	var err error
	if q.StartDate, err = availability.ParseDate(start); err != nil {
		return availability.Query{}, err
	}
	if q.EndDate, err = availability.ParseDate(end); err != nil {
		return availability.Query{}, err
	}
	return q, nil
}

type StatusRequest struct {
	Status string `json:"status"`
}

// CreateResult is the created booking plus the priced stay.
type CreateResult struct {
	Booking      domain.Booking `json:"booking"`
	NumberOfDays int            `json:"number_of_days"`
	PricePerDay  float64        `json:"price_per_day"`
}
