package availability

import (
	"context"
	"fmt"
	"time"

	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/pkg/apperr"
)

const upcomingLimit = 5

type PropertyReader interface {
	GetBase(ctx context.Context, id int64) (*domain.Property, error)
}

type BookingReader interface {
	FindConflicts(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.Booking, error)
	Upcoming(ctx context.Context, propertyID int64, from time.Time, limit int) ([]domain.Booking, error)
}

type Query struct {
	PropertyID int64
	StartDate  time.Time
	EndDate    time.Time
	Guests     *int
}

// Slot is the public view of an occupying booking.
type Slot struct {
	BookingID int64                `json:"booking_id"`
	StartDate string               `json:"check_in_date"`
	EndDate   string               `json:"check_out_date"`
	Status    domain.BookingStatus `json:"status"`
}

type Summary struct {
	Title        string              `json:"title"`
	City         string              `json:"city"`
	PropertyType domain.PropertyType `json:"property_type"`
}

type Result struct {
	PropertyID          int64   `json:"property_id"`
	Available           bool    `json:"available"`
	CheckInDate         string  `json:"check_in_date"`
	CheckOutDate        string  `json:"check_out_date"`
	NumberOfDays        int     `json:"number_of_days"`
	Guests              int     `json:"guests"`
	MaxGuests           int     `json:"max_guests"`
	PricePerDay         float64 `json:"price_per_day"`
	TotalAmount         float64 `json:"total_amount"`
	ConflictingBookings []Slot  `json:"conflicting_bookings"`
	UpcomingBookings    []Slot  `json:"upcoming_bookings"`
	PropertyDetails     Summary `json:"property_details"`

	Conflicts []domain.Booking `json:"-"`
}

// Range is a validated stay.
type Range struct {
	Start time.Time
	End   time.Time
	Days  int
}

type Engine struct {
	properties PropertyReader
	bookings   BookingReader
	now        func() time.Time
}

func NewEngine(properties PropertyReader, bookings BookingReader, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{properties: properties, bookings: bookings, now: now}
}

// With returns an engine reading through the given repositories, typically
// ones bound to an open transaction.
func (e *Engine) With(properties PropertyReader, bookings BookingReader) *Engine {
	return &Engine{properties: properties, bookings: bookings, now: e.now}
}

// Today is the current UTC calendar date.
func (e *Engine) Today() time.Time {
	return DateOf(e.now())
}

func (e *Engine) Validate(q Query) (Range, error) {
	if q.PropertyID <= 0 {
		return Range{}, ErrMissingFields
	}
	days, err := ValidateRange(q.StartDate, q.EndDate, e.now())
	if err != nil {
		return Range{}, err
	}
	return Range{Start: q.StartDate, End: q.EndDate, Days: days}, nil
}

func (e *Engine) Property(ctx context.Context, id int64) (*domain.Property, error) {
	p, err := e.properties.GetBase(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrPropertyNotFound
		}
		return nil, apperr.Internal(fmt.Errorf("load property %d: %w", id, err))
	}
	return p, nil
}

// Guests resolves the party size against the property capacity. An absent
// count means the full capacity.
func Guests(p *domain.Property, requested *int) (int, error) {
	if requested == nil {
		return p.MaxGuests, nil
	}
	if *requested <= 0 {
		return 0, ErrInvalidGuests
	}
	if *requested > p.MaxGuests {
		return 0, ErrCapacityExceeded.WithDetails(map[string]int{
			"max_guests":       p.MaxGuests,
			"requested_guests": *requested,
		})
	}
	return *requested, nil
}

// Assess looks up conflicts and prices the stay.
func (e *Engine) Assess(ctx context.Context, p *domain.Property, rng Range, guests int) (*Result, error) {
	conflicts, err := e.bookings.FindConflicts(ctx, p.ID, rng.Start, rng.End)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("find conflicts: %w", err))
	}
	upcoming, err := e.bookings.Upcoming(ctx, p.ID, e.Today(), upcomingLimit)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("upcoming bookings: %w", err))
	}

	return &Result{
		PropertyID:          p.ID,
		Available:           len(conflicts) == 0,
		CheckInDate:         rng.Start.Format(DateLayout),
		CheckOutDate:        rng.End.Format(DateLayout),
		NumberOfDays:        rng.Days,
		Guests:              guests,
		MaxGuests:           p.MaxGuests,
		PricePerDay:         p.RentPerDay,
		TotalAmount:         TotalPrice(rng.Days, p.RentPerDay),
		ConflictingBookings: slots(conflicts),
		UpcomingBookings:    slots(upcoming),
		PropertyDetails: Summary{
			Title:        p.Title,
			City:         p.City,
			PropertyType: p.PropertyType,
		},
		Conflicts: conflicts,
	}, nil
}

// Check runs the full availability evaluation for q.
func (e *Engine) Check(ctx context.Context, q Query) (*Result, error) {
	rng, err := e.Validate(q)
	if err != nil {
		return nil, err
	}
	p, err := e.Property(ctx, q.PropertyID)
	if err != nil {
		return nil, err
	}
	guests, err := Guests(p, q.Guests)
	if err != nil {
		return nil, err
	}
	return e.Assess(ctx, p, rng, guests)
}

func slots(bookings []domain.Booking) []Slot {
	out := make([]Slot, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, Slot{
			BookingID: b.ID,
			StartDate: b.StartDate.Format(DateLayout),
			EndDate:   b.EndDate.Format(DateLayout),
			Status:    b.Status,
		})
	}
	return out
}
