package admin

import (
	"context"
	"strings"

	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/pkg/pagination"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// WithTx binds the write methods to tx. Read models keep using the
	// shared pool and must not be called inside the transaction.
	WithTx(tx *gorm.DB) Repository

	Stats(ctx context.Context) (*Stats, error)
	ListUsers(ctx context.Context, f UserFilter, p pagination.Params) ([]UserRow, int64, error)
	ListProperties(ctx context.Context, p pagination.Params) ([]PropertyRow, int64, error)
	ListBookings(ctx context.Context, status string, p pagination.Params) ([]BookingRow, int64, error)

	// IsAdmin reads the user's flag holding a row lock.
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	// LockAdmins locks every admin row in id order and returns their ids.
	LockAdmins(ctx context.Context) ([]int64, error)
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error
}

type SQLRepository struct {
	db   *gorm.DB
	read *sqlx.DB
}

func NewRepository(db *gorm.DB, read *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db, read: read}
}

func (r *SQLRepository) WithTx(tx *gorm.DB) Repository {
	return &SQLRepository{db: tx, read: r.read}
}

func (r *SQLRepository) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{BookingsByStatus: map[string]int64{}}

	counts := []struct {
		dst   *int64
		query string
	}{
		{&s.Users, `SELECT COUNT(*) FROM users`},
		{&s.Admins, `SELECT COUNT(*) FROM users WHERE is_admin = TRUE`},
		{&s.Properties, `SELECT COUNT(*) FROM properties`},
		{&s.Reviews, `SELECT COUNT(*) FROM reviews`},
	}
	for _, c := range counts {
		if err := r.read.GetContext(ctx, c.dst, c.query); err != nil {
			return nil, err
		}
	}

	var byStatus []struct {
		Status string `db:"status"`
		N      int64  `db:"n"`
	}
	if err := r.read.SelectContext(ctx, &byStatus, `SELECT status, COUNT(*) AS n FROM bookings GROUP BY status`); err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		s.BookingsByStatus[row.Status] = row.N
		s.Bookings += row.N
	}

	revenue := r.read.Rebind(`SELECT COALESCE(SUM(total_price), 0) FROM bookings WHERE status = ?`)
	if err := r.read.GetContext(ctx, &s.Revenue, revenue, string(domain.BookingCompleted)); err != nil {
		return nil, err
	}
	if err := r.read.GetContext(ctx, &s.AverageRating, `SELECT COALESCE(AVG(rating), 0) FROM reviews`); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SQLRepository) ListUsers(ctx context.Context, f UserFilter, p pagination.Params) ([]UserRow, int64, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if f.Admin != nil {
		where = append(where, "is_admin = ?")
		args = append(args, *f.Admin)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.read.GetContext(ctx, &total, r.read.Rebind(`SELECT COUNT(*) FROM users`+cond), args...); err != nil {
		return nil, 0, err
	}

	rows := []UserRow{}
	query := r.read.Rebind(`SELECT id, name, email, COALESCE(phone, '') AS phone, is_admin, created_at FROM users` +
		cond + ` ORDER BY id DESC LIMIT ? OFFSET ?`)
	if err := r.read.SelectContext(ctx, &rows, query, append(args, p.Limit, p.Offset())...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *SQLRepository) ListProperties(ctx context.Context, p pagination.Params) ([]PropertyRow, int64, error) {
	var total int64
	if err := r.read.GetContext(ctx, &total, `SELECT COUNT(*) FROM properties`); err != nil {
		return nil, 0, err
	}

	rows := []PropertyRow{}
	query := r.read.Rebind(`
		SELECT p.id, p.title, p.city, p.property_type, p.rent_per_day, p.host_id,
		       u.name AS host_name,
		       (SELECT COUNT(*) FROM bookings b WHERE b.property_id = p.id) AS bookings,
		       p.created_at
		FROM properties p
		JOIN users u ON u.id = p.host_id
		ORDER BY p.id DESC
		LIMIT ? OFFSET ?`)
	if err := r.read.SelectContext(ctx, &rows, query, p.Limit, p.Offset()); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *SQLRepository) ListBookings(ctx context.Context, status string, p pagination.Params) ([]BookingRow, int64, error) {
	cond := ""
	var args []any
	if status != "" {
		cond = " WHERE b.status = ?"
		args = append(args, status)
	}

	var total int64
	if err := r.read.GetContext(ctx, &total, r.read.Rebind(`SELECT COUNT(*) FROM bookings b`+cond), args...); err != nil {
		return nil, 0, err
	}

	rows := []BookingRow{}
	query := r.read.Rebind(`
		SELECT b.id, b.property_id, p.title AS property_title, b.guest_id, u.name AS guest_name,
		       b.start_date, b.end_date, b.guests, b.total_price, b.status, b.created_at
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		JOIN users u ON u.id = b.guest_id` + cond + `
		ORDER BY b.id DESC
		LIMIT ? OFFSET ?`)
	if err := r.read.SelectContext(ctx, &rows, query, append(args, p.Limit, p.Offset())...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *SQLRepository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var m database.UserModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "is_admin").
		First(&m, userID).Error
	if err != nil {
		return false, err
	}
	return m.IsAdmin, nil
}

func (r *SQLRepository) LockAdmins(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&database.UserModel{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("is_admin = ?", true).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *SQLRepository) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	return r.db.WithContext(ctx).
		Model(&database.UserModel{}).
		Where("id = ?", userID).
		Update("is_admin", isAdmin).Error
}
