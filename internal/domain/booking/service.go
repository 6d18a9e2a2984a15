package booking

import (
	"context"
	"errors"
	"fmt"

	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/property"
	"staybook/internal/notify"
	"staybook/internal/pkg/apperr"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	bookings   Repository
	properties property.Repository
	tx         Transactor
	engine     *availability.Engine
	notifier   notify.Notifier
	log        logrus.FieldLogger
}

func NewService(
	bookings Repository,
	properties property.Repository,
	tx Transactor,
	engine *availability.Engine,
	notifier notify.Notifier,
	log logrus.FieldLogger,
) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		bookings:   bookings,
		properties: properties,
		tx:         tx,
		engine:     engine,
		notifier:   notifier,
		log:        log,
	}
}

// CheckAvailability evaluates a stay without writing anything.
func (s *Service) CheckAvailability(ctx context.Context, q availability.Query) (*availability.Result, error) {
	return s.engine.Check(ctx, q)
}

// Create books a stay for guestID. The property row is locked for the
// duration of the overlap check and insert, so two overlapping requests
// for the same property are serialized and the second sees the first.
func (s *Service) Create(ctx context.Context, guestID int64, q availability.Query) (*CreateResult, error) {
	rng, err := s.engine.Validate(q)
	if err != nil {
		return nil, err
	}

	var (
		created domain.Booking
		host    int64
		rate    float64
	)
	err = s.tx.Run(ctx, func(tx *gorm.DB) error {
		props := s.properties.WithTx(tx)
		bookings := s.bookings.WithTx(tx)

		p, err := props.GetForUpdate(ctx, q.PropertyID)
		if err != nil {
			if database.IsNotFound(err) {
				return availability.ErrPropertyNotFound
			}
			return fmt.Errorf("lock property %d: %w", q.PropertyID, err)
		}
		if p.HostID == guestID {
			return ErrSelfBooking
		}
		guests, err := availability.Guests(p, q.Guests)
		if err != nil {
			return err
		}

		res, err := s.engine.With(props, bookings).Assess(ctx, p, rng, guests)
		if err != nil {
			return err
		}
		if !res.Available {
			return ErrConflict.WithDetails(map[string]any{
				"conflicting_bookings": res.ConflictingBookings,
			})
		}

		created = domain.Booking{
			PropertyID:    p.ID,
			GuestID:       guestID,
			StartDate:     rng.Start,
			EndDate:       rng.End,
			Guests:        guests,
			TotalPrice:    res.TotalAmount,
			Status:        domain.BookingPending,
			PropertyTitle: p.Title,
			PropertyCity:  p.City,
			HostID:        p.HostID,
		}
		host, rate = p.HostID, p.RentPerDay
		return bookings.Create(ctx, &created)
	})
	if err != nil {
		if database.IsExclusionViolation(err) {
			return nil, ErrConflict
		}
		return nil, classify(err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":  created.ID,
		"property_id": created.PropertyID,
		"guest_id":    guestID,
		"total_price": created.TotalPrice,
	}).Info("booking created")
	s.notifier.Notify(host, notify.Event{Type: notify.EventBookingCreated, Payload: created})

	return &CreateResult{Booking: created, NumberOfDays: rng.Days, PricePerDay: rate}, nil
}

// UpdateStatus applies one state machine transition on behalf of actorID.
// A terminal booking never changes, so a second cancel is rejected.
func (s *Service) UpdateStatus(ctx context.Context, actorID, id int64, rawStatus string) (*domain.Booking, error) {
	target, ok := domain.ParseBookingStatus(rawStatus)
	if !ok || !domain.IsSettableTarget(target) {
		return nil, ErrInvalidStatus
	}

	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	isGuest, isHost := b.GuestID == actorID, b.HostID == actorID
	if !domain.PermittedFor(target, isGuest, isHost) {
		if target == domain.BookingCancelled {
			return nil, ErrCancelForbidden
		}
		return nil, ErrHostOnly
	}
	if !b.Status.CanTransitionTo(target) {
		return nil, transitionError(b.Status, target)
	}

	moved, err := s.bookings.UpdateStatus(ctx, id, b.Status, target)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("update booking %d status: %w", id, err))
	}
	if !moved {
		// Another request changed the status first.
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, transitionError(current.Status, target)
	}

	prev := b.Status
	b.Status = target
	s.log.WithFields(logrus.Fields{
		"booking_id": id,
		"actor_id":   actorID,
		"from":       prev,
		"to":         target,
	}).Info("booking status changed")

	recipient := b.GuestID
	if isGuest {
		recipient = b.HostID
	}
	s.notifier.Notify(recipient, notify.Event{
		Type: notify.EventBookingStatusChanged,
		Payload: map[string]any{
			"booking_id":  b.ID,
			"property_id": b.PropertyID,
			"from":        prev,
			"to":          target,
		},
	})

	updated, err := s.load(ctx, id)
	if err != nil {
		return b, nil
	}
	return updated, nil
}

func transitionError(from, to domain.BookingStatus) error {
	return ErrInvalidTransition.WithDetails(map[string]domain.BookingStatus{
		"current_status":   from,
		"requested_status": to,
	})
}

// Get returns the booking to its guest or its host.
func (s *Service) Get(ctx context.Context, actorID, id int64) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.GuestID != actorID && b.HostID != actorID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListForGuest(ctx context.Context, guestID int64) ([]domain.Booking, error) {
	out, err := s.bookings.ListForGuest(ctx, guestID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list guest bookings: %w", err))
	}
	return out, nil
}

func (s *Service) ListForHost(ctx context.Context, hostID int64) ([]domain.Booking, error) {
	out, err := s.bookings.ListForHost(ctx, hostID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list host bookings: %w", err))
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, apperr.Internal(fmt.Errorf("load booking %d: %w", id, err))
	}
	return b, nil
}

func classify(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal(err)
}
