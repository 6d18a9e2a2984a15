package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"staybook/internal/database"
	"staybook/internal/database/dbtest"
	"staybook/internal/domain"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/property"
	"staybook/internal/notify"
	"staybook/internal/pkg/apperr"
	"staybook/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	mu     sync.Mutex
	events map[int64][]notify.Event
}

func (r *recorder) Notify(userID int64, e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[int64][]notify.Event{}
	}
	r.events[userID] = append(r.events[userID], e)
}

func (r *recorder) For(userID int64) []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[userID]
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	notes    *recorder
	host     int64
	guest    int64
	stranger int64
	prop     int64
}

func now() time.Time { return time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC) }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)

	props := property.NewRepository(db)
	bookings := NewRepository(db)
	f := &fixture{db: db, notes: &recorder{}}
	f.svc = NewService(bookings, props, database.NewTxRunner(db),
		availability.NewEngine(props, bookings, now), f.notes, logger.Discard())

	for name, id := range map[string]*int64{"host": &f.host, "guest": &f.guest, "stranger": &f.stranger} {
		m := database.UserModel{Name: name, Email: name + "@example.com", PasswordHash: "x"}
		require.NoError(t, db.Create(&m).Error)
		*id = m.ID
	}

	p := &domain.Property{
		HostID:       f.host,
		Title:        "Seaside cottage",
		City:         "Brighton",
		RentPerDay:   100,
		MaxGuests:    4,
		PropertyType: domain.PropertyHouse,
		Details:      domain.HouseDetails{TotalBedrooms: 2},
	}
	require.NoError(t, props.Create(context.Background(), p))
	f.prop = p.ID
	return f
}

func (f *fixture) book(t *testing.T, start, end time.Time) *domain.Booking {
	t.Helper()
	res, err := f.svc.Create(context.Background(), f.guest, availability.Query{PropertyID: f.prop, StartDate: start, EndDate: end})
	require.NoError(t, err)
	return &res.Booking
}

func TestCreate_PricesAndStartsPending(t *testing.T) {
	f := setup(t)
	guests := 2

	res, err := f.svc.Create(context.Background(), f.guest, availability.Query{
		PropertyID: f.prop, StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 13), Guests: &guests,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingPending, res.Booking.Status)
	assert.Equal(t, 3, res.NumberOfDays)
	assert.Equal(t, 300.0, res.Booking.TotalPrice)
	assert.Equal(t, float64(res.NumberOfDays)*res.PricePerDay, res.Booking.TotalPrice)
	assert.Equal(t, 2, res.Booking.Guests)

	stored, err := f.svc.Get(context.Background(), f.guest, res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 6, 10), stored.StartDate)
	assert.Equal(t, date(2024, 6, 13), stored.EndDate)
	assert.Equal(t, f.host, stored.HostID)
	assert.Equal(t, "Seaside cottage", stored.PropertyTitle)

	events := f.notes.For(f.host)
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventBookingCreated, events[0].Type)
}

func TestCreate_OverlapIsConflict(t *testing.T) {
	f := setup(t)
	f.book(t, date(2024, 6, 10), date(2024, 6, 13))

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"identical", date(2024, 6, 10), date(2024, 6, 13)},
		{"tail overlap", date(2024, 6, 12), date(2024, 6, 14)},
		{"head overlap", date(2024, 6, 8), date(2024, 6, 10)},
		{"back to back shares a day", date(2024, 6, 13), date(2024, 6, 15)},
		{"containing", date(2024, 6, 5), date(2024, 6, 20)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.stranger, availability.Query{PropertyID: f.prop, StartDate: tc.start, EndDate: tc.end})
			require.Error(t, err)
			assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
			assert.Equal(t, "BOOKING_CONFLICT", apperr.CodeOf(err))
		})
	}

	var n int64
	require.NoError(t, f.db.Model(&database.BookingModel{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCreate_CancelledBookingFreesDates(t *testing.T) {
	f := setup(t)
	b := f.book(t, date(2024, 6, 10), date(2024, 6, 13))

	_, err := f.svc.UpdateStatus(context.Background(), f.guest, b.ID, "Cancelled")
	require.NoError(t, err)

	f.book(t, date(2024, 6, 10), date(2024, 6, 13))
}

func TestCreate_ConcurrentRequestsBookOnce(t *testing.T) {
	f := setup(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), f.guest, availability.Query{
				PropertyID: f.prop, StartDate: date(2024, 7, 1), EndDate: date(2024, 7, 5),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if apperr.KindOf(err) == apperr.KindConflict {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)
}

func TestCreate_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	five, zero := 5, 0

	_, err := f.svc.Create(ctx, f.host, availability.Query{PropertyID: f.prop, StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 12)})
	assert.ErrorIs(t, err, ErrSelfBooking)

	_, err = f.svc.Create(ctx, f.guest, availability.Query{PropertyID: 999, StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 12)})
	assert.ErrorIs(t, err, availability.ErrPropertyNotFound)

	_, err = f.svc.Create(ctx, f.guest, availability.Query{PropertyID: f.prop, StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 12), Guests: &five})
	assert.Equal(t, "CAPACITY_EXCEEDED", apperr.CodeOf(err))

	_, err = f.svc.Create(ctx, f.guest, availability.Query{PropertyID: f.prop, StartDate: date(2024, 6, 10), EndDate: date(2024, 6, 12), Guests: &zero})
	assert.ErrorIs(t, err, availability.ErrInvalidGuests)

	_, err = f.svc.Create(ctx, f.guest, availability.Query{PropertyID: f.prop, StartDate: date(2024, 5, 31), EndDate: date(2024, 6, 2)})
	assert.ErrorIs(t, err, availability.ErrStartInPast)

	_, err = f.svc.Create(ctx, f.guest, availability.Query{PropertyID: f.prop, StartDate: date(2024, 6, 1), EndDate: date(2024, 6, 2)})
	assert.NoError(t, err, "starting today is allowed")
}

func TestUpdateStatus_ScenarioD(t *testing.T) {
	f := setup(t)
	b := f.book(t, date(2024, 6, 10), date(2024, 6, 13))
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.guest, b.ID, "Confirmed")
	assert.ErrorIs(t, err, ErrHostOnly)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	updated, err := f.svc.UpdateStatus(ctx, f.host, b.ID, "Confirmed")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, updated.Status)

	events := f.notes.For(f.guest)
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventBookingStatusChanged, events[0].Type)
}

func TestUpdateStatus_CancelTwiceIsRejectedWithoutChange(t *testing.T) {
	f := setup(t)
	b := f.book(t, date(2024, 6, 10), date(2024, 6, 13))
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.guest, b.ID, "cancelled")
	require.NoError(t, err)

	var before database.BookingModel
	require.NoError(t, f.db.First(&before, b.ID).Error)

	_, err = f.svc.UpdateStatus(ctx, f.guest, b.ID, "Cancelled")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "INVALID_STATUS_TRANSITION", apperr.CodeOf(err))

	var after database.BookingModel
	require.NoError(t, f.db.First(&after, b.ID).Error)
	assert.Equal(t, string(domain.BookingCancelled), after.Status)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.Len(t, f.notes.For(f.host), 2, "created and first cancel only")
}

func TestUpdateStatus_Matrix(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.host, 12345, "Confirmed")
	assert.ErrorIs(t, err, ErrNotFound)

	b := f.book(t, date(2024, 6, 10), date(2024, 6, 13))

	for _, status := range []string{"Pending", "Archived", ""} {
		_, err := f.svc.UpdateStatus(ctx, f.host, b.ID, status)
		assert.ErrorIs(t, err, ErrInvalidStatus, status)
	}

	_, err = f.svc.UpdateStatus(ctx, f.stranger, b.ID, "Cancelled")
	assert.ErrorIs(t, err, ErrCancelForbidden)

	_, err = f.svc.UpdateStatus(ctx, f.host, b.ID, "Completed")
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending cannot complete")

	_, err = f.svc.UpdateStatus(ctx, f.host, b.ID, "Confirmed")
	require.NoError(t, err)
	done, err := f.svc.UpdateStatus(ctx, f.host, b.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, done.Status)

	_, err = f.svc.UpdateStatus(ctx, f.host, b.ID, "Cancelled")
	assert.ErrorIs(t, err, ErrInvalidTransition, "completed is terminal")
}

func TestGetAndLists(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.book(t, date(2024, 6, 10), date(2024, 6, 13))
	f.book(t, date(2024, 6, 20), date(2024, 6, 22))

	_, err := f.svc.Get(ctx, f.stranger, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(ctx, f.host, b.ID)
	assert.NoError(t, err)

	mine, err := f.svc.ListForGuest(ctx, f.guest)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, date(2024, 6, 20), mine[0].StartDate, "newest first")

	hosted, err := f.svc.ListForHost(ctx, f.host)
	require.NoError(t, err)
	assert.Len(t, hosted, 2)

	none, err := f.svc.ListForHost(ctx, f.guest)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCheckAvailability_ScenarioB(t *testing.T) {
	f := setup(t)
	f.book(t, date(2024, 6, 10), date(2024, 6, 13))

	res, err := f.svc.CheckAvailability(context.Background(), availability.Query{
		PropertyID: f.prop, StartDate: date(2024, 6, 12), EndDate: date(2024, 6, 14),
	})
	require.NoError(t, err)
	assert.False(t, res.Available)
	require.Len(t, res.ConflictingBookings, 1)
	assert.Equal(t, "2024-06-10", res.ConflictingBookings[0].StartDate)
	assert.Len(t, res.UpcomingBookings, 1)
}
