package booking

import (
	"context"
	"time"

	"staybook/internal/database"
	"staybook/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) WithTx(tx *gorm.DB) Repository {
	return &GormRepository{db: tx}
}

// bookingRow is a booking joined with its property and guest.
type bookingRow struct {
	database.BookingModel
	PropertyTitle string `gorm:"column:property_title"`
	PropertyCity  string `gorm:"column:property_city"`
	HostID        int64  `gorm:"column:host_id"`
	GuestName     string `gorm:"column:guest_name"`
}

func toDomain(m database.BookingModel) domain.Booking {
	return domain.Booking{
		ID:         m.ID,
		PropertyID: m.PropertyID,
		GuestID:    m.GuestID,
		StartDate:  dateOf(m.StartDate),
		EndDate:    dateOf(m.EndDate),
		Guests:     m.Guests,
		TotalPrice: m.TotalPrice,
		Status:     domain.BookingStatus(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func rowToDomain(row bookingRow) domain.Booking {
	b := toDomain(row.BookingModel)
	b.PropertyTitle = row.PropertyTitle
	b.PropertyCity = row.PropertyCity
	b.HostID = row.HostID
	b.GuestName = row.GuestName
	return b
}

func dateOf(d datatypes.Date) time.Time {
	y, m, day := time.Time(d).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func (r *GormRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := database.BookingModel{
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		StartDate:  datatypes.Date(b.StartDate),
		EndDate:    datatypes.Date(b.EndDate),
		Guests:     b.Guests,
		TotalPrice: b.TotalPrice,
		Status:     string(b.Status),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *GormRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("bookings").
		Select("bookings.*, properties.title AS property_title, properties.city AS property_city, properties.host_id AS host_id, users.name AS guest_name").
		Joins("JOIN properties ON properties.id = bookings.property_id").
		Joins("LEFT JOIN users ON users.id = bookings.guest_id")
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var rows []bookingRow
	if err := r.joined(ctx).Where("bookings.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	b := rowToDomain(rows[0])
	return &b, nil
}

// FindConflicts returns the non-cancelled bookings whose closed interval
// intersects [start, end].
func (r *GormRepository) FindConflicts(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.Booking, error) {
	var rows []database.BookingModel
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status <> ?", string(domain.BookingCancelled)).
		Where("start_date <= ? AND end_date >= ?", datatypes.Date(end), datatypes.Date(start)).
		Order("start_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(rows), nil
}

func (r *GormRepository) Upcoming(ctx context.Context, propertyID int64, from time.Time, limit int) ([]domain.Booking, error) {
	var rows []database.BookingModel
	q := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status <> ?", string(domain.BookingCancelled)).
		Where("end_date >= ?", datatypes.Date(from)).
		Order("start_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainList(rows), nil
}

func toDomainList(rows []database.BookingModel) []domain.Booking {
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomain(m))
	}
	return out
}

func (r *GormRepository) list(ctx context.Context, where string, arg int64) ([]domain.Booking, error) {
	var rows []bookingRow
	err := r.joined(ctx).
		Where(where, arg).
		Order("bookings.created_at DESC, bookings.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToDomain(row))
	}
	return out, nil
}

func (r *GormRepository) ListForGuest(ctx context.Context, guestID int64) ([]domain.Booking, error) {
	return r.list(ctx, "bookings.guest_id = ?", guestID)
}

func (r *GormRepository) ListForHost(ctx context.Context, hostID int64) ([]domain.Booking, error) {
	return r.list(ctx, "properties.host_id = ?", hostID)
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&database.BookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}
