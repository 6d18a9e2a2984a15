package review

import (
	"context"
	"testing"
	"time"

	"staybook/internal/cache"
	"staybook/internal/database"
	"staybook/internal/database/dbtest"
	"staybook/internal/domain"
	"staybook/internal/domain/booking"
	"staybook/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	cache *cache.Memory
	guest int64
	other int64
	prop  int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{db: db, cache: cache.NewMemory()}
	f.svc = NewService(NewRepository(db), booking.NewRepository(db), f.cache, logger.Discard())

	host := database.UserModel{Name: "Host", Email: "host@example.com", PasswordHash: "x"}
	guest := database.UserModel{Name: "Gina Guest", Email: "guest@example.com", PasswordHash: "x"}
	other := database.UserModel{Name: "Other", Email: "other@example.com", PasswordHash: "x"}
	for _, u := range []*database.UserModel{&host, &guest, &other} {
		require.NoError(t, db.Create(u).Error)
	}
	p := database.PropertyModel{HostID: host.ID, Title: "Loft", City: "Berlin", RentPerDay: 80, MaxGuests: 2, PropertyType: string(domain.PropertyFlat)}
	require.NoError(t, db.Create(&p).Error)

	f.guest, f.other, f.prop = guest.ID, other.ID, p.ID
	return f
}

func (f *fixture) booking(t *testing.T, status domain.BookingStatus) int64 {
	t.Helper()
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	m := database.BookingModel{
		PropertyID: f.prop,
		GuestID:    f.guest,
		StartDate:  datatypes.Date(start),
		EndDate:    datatypes.Date(start.AddDate(0, 0, 2)),
		Guests:     1,
		TotalPrice: 160,
		Status:     string(status),
	}
	require.NoError(t, f.db.Create(&m).Error)
	return m.ID
}

func TestCreate_Preconditions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.guest, CreateInput{BookingID: 404, Rating: 5})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	completed := f.booking(t, domain.BookingCompleted)
	_, err = f.svc.Create(ctx, f.other, CreateInput{BookingID: completed, Rating: 5})
	assert.ErrorIs(t, err, ErrNotYourBooking)

	pending := f.booking(t, domain.BookingPending)
	_, err = f.svc.Create(ctx, f.guest, CreateInput{BookingID: pending, Rating: 5})
	assert.ErrorIs(t, err, ErrNotCompleted)

	for _, rating := range []int{0, 6, -1} {
		_, err = f.svc.Create(ctx, f.guest, CreateInput{BookingID: completed, Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating)
	}

	rv, err := f.svc.Create(ctx, f.guest, CreateInput{BookingID: completed, PropertyRating: 4, PropertyReview: " Lovely "})
	require.NoError(t, err)
	assert.Equal(t, 4, rv.Rating)
	assert.Equal(t, "Lovely", rv.Comment)
	assert.Equal(t, f.prop, rv.PropertyID)

	_, err = f.svc.Create(ctx, f.guest, CreateInput{BookingID: completed, Rating: 5})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestUpdateDelete_AuthorOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rv, err := f.svc.Create(ctx, f.guest, CreateInput{BookingID: f.booking(t, domain.BookingCompleted), Rating: 3})
	require.NoError(t, err)

	f.cache.SetProperty(ctx, &domain.Property{ID: f.prop, PropertyType: domain.PropertyFlat, Details: domain.FlatDetails{TotalRooms: 1}})
	require.Equal(t, 1, f.cache.Len())

	five := 5
	_, err = f.svc.Update(ctx, f.other, rv.ID, UpdateInput{Rating: &five})
	assert.ErrorIs(t, err, ErrNotAuthor)

	updated, err := f.svc.Update(ctx, f.guest, rv.ID, UpdateInput{Rating: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Zero(t, f.cache.Len(), "review writes invalidate the property")

	list, err := f.svc.ListByProperty(ctx, f.prop)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Gina Guest", list[0].UserName)

	mine, err := f.svc.ListByUser(ctx, f.guest)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Loft", mine[0].PropertyTitle)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.other, rv.ID), ErrNotAuthor)
	require.NoError(t, f.svc.Delete(ctx, f.guest, rv.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, f.guest, rv.ID), ErrNotFound)
}
