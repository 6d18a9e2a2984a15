package booking

import (
	"context"
	"time"

	"staybook/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindConflicts(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.Booking, error)
	Upcoming(ctx context.Context, propertyID int64, from time.Time, limit int) ([]domain.Booking, error)
	ListForGuest(ctx context.Context, guestID int64) ([]domain.Booking, error)
	ListForHost(ctx context.Context, hostID int64) ([]domain.Booking, error)
	// UpdateStatus moves the booking from one status to another and reports
	// whether the row was still in from.
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error)
}

type Transactor interface {
	Run(ctx context.Context, fn func(tx *gorm.DB) error) error
}
