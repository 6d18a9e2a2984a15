package availability

import (
	"context"
	"testing"
	"time"

	"staybook/internal/domain"
	"staybook/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockPropertyReader struct {
	mock.Mock
}

func (m *MockPropertyReader) GetBase(ctx context.Context, id int64) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

type MockBookingReader struct {
	mock.Mock
}

func (m *MockBookingReader) FindConflicts(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, propertyID, start, end)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingReader) Upcoming(ctx context.Context, propertyID int64, from time.Time, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, propertyID, from, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func fixedNow() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

func propertyP() *domain.Property {
	return &domain.Property{
		ID:           1,
		HostID:       10,
		Title:        "Seaside cottage",
		City:         "Brighton",
		RentPerDay:   100,
		MaxGuests:    4,
		PropertyType: domain.PropertyHouse,
		Details:      domain.HouseDetails{TotalBedrooms: 2},
	}
}

func TestEngine_Check_ScenarioA_Available(t *testing.T) {
	props := new(MockPropertyReader)
	bookings := new(MockBookingReader)
	start, end := date(2024, 6, 10), date(2024, 6, 13)

	props.On("GetBase", mock.Anything, int64(1)).Return(propertyP(), nil)
	bookings.On("FindConflicts", mock.Anything, int64(1), start, end).Return([]domain.Booking{}, nil)
	bookings.On("Upcoming", mock.Anything, int64(1), date(2024, 6, 1), 5).Return([]domain.Booking{}, nil)

	res, err := NewEngine(props, bookings, fixedNow).Check(context.Background(), Query{PropertyID: 1, StartDate: start, EndDate: end})
	require.NoError(t, err)

	assert.True(t, res.Available)
	assert.Equal(t, 3, res.NumberOfDays)
	assert.Equal(t, 300.0, res.TotalAmount)
	assert.Equal(t, float64(res.NumberOfDays)*res.PricePerDay, res.TotalAmount)
	assert.Equal(t, 4, res.Guests, "absent guests default to capacity")
	assert.Equal(t, "2024-06-10", res.CheckInDate)
	assert.Empty(t, res.ConflictingBookings)
	props.AssertExpectations(t)
	bookings.AssertExpectations(t)
}

func TestEngine_Check_ScenarioB_Conflict(t *testing.T) {
	props := new(MockPropertyReader)
	bookings := new(MockBookingReader)
	start, end := date(2024, 6, 12), date(2024, 6, 14)
	existing := domain.Booking{ID: 5, PropertyID: 1, StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 13), Status: domain.BookingPending}

	props.On("GetBase", mock.Anything, int64(1)).Return(propertyP(), nil)
	bookings.On("FindConflicts", mock.Anything, int64(1), start, end).Return([]domain.Booking{existing}, nil)
	bookings.On("Upcoming", mock.Anything, int64(1), mock.Anything, 5).Return([]domain.Booking{existing}, nil)

	res, err := NewEngine(props, bookings, fixedNow).Check(context.Background(), Query{PropertyID: 1, StartDate: start, EndDate: end})
	require.NoError(t, err)

	assert.False(t, res.Available)
	require.Len(t, res.ConflictingBookings, 1)
	assert.Equal(t, int64(5), res.ConflictingBookings[0].BookingID)
	assert.Len(t, res.UpcomingBookings, 1)
}

func TestEngine_Check_CapacityExceeded(t *testing.T) {
	props := new(MockPropertyReader)
	bookings := new(MockBookingReader)
	props.On("GetBase", mock.Anything, int64(1)).Return(propertyP(), nil)
	guests := 6

	_, err := NewEngine(props, bookings, fixedNow).Check(context.Background(), Query{
		PropertyID: 1, StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 12), Guests: &guests,
	})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, "CAPACITY_EXCEEDED"))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 4, appErr.Details.(map[string]int)["max_guests"])
	bookings.AssertNotCalled(t, "FindConflicts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_Check_NotFound(t *testing.T) {
	props := new(MockPropertyReader)
	props.On("GetBase", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := NewEngine(props, new(MockBookingReader), fixedNow).Check(context.Background(), Query{
		PropertyID: 99, StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 12),
	})
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestEngine_Check_ValidatesBeforeLookup(t *testing.T) {
	props := new(MockPropertyReader)

	_, err := NewEngine(props, new(MockBookingReader), fixedNow).Check(context.Background(), Query{
		PropertyID: 1, StartDate: date(2024, 5, 31), EndDate: date(2024, 6, 2),
	})
	assert.ErrorIs(t, err, ErrStartInPast)
	props.AssertNotCalled(t, "GetBase", mock.Anything, mock.Anything)

	_, err = NewEngine(props, new(MockBookingReader), fixedNow).Check(context.Background(), Query{
		StartDate: date(2024, 6, 3), EndDate: date(2024, 6, 5),
	})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestGuests_RejectsNonPositive(t *testing.T) {
	zero := 0
	_, err := Guests(propertyP(), &zero)
	assert.ErrorIs(t, err, ErrInvalidGuests)
}
