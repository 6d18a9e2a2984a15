package user

import (
	"context"
	"strings"

	"staybook/internal/database"
	"staybook/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateAvatar(ctx context.Context, id int64, url, key string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error)

	// ActiveHostedBookings counts Pending or Confirmed bookings on the
	// user's properties.
	ActiveHostedBookings(ctx context.Context, hostID int64) (int64, error)
	// CancelGuestBookings cancels the user's own open bookings.
	CancelGuestBookings(ctx context.Context, guestID int64) error
	DeleteReviews(ctx context.Context, userID int64) error
	// ReviewedPropertyIDs lists the distinct properties the user reviewed.
	ReviewedPropertyIDs(ctx context.Context, userID int64) ([]int64, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) WithTx(tx *gorm.DB) Repository {
	return &GormRepository{db: tx}
}

func toDomain(m database.UserModel) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Phone:        m.Phone,
		ProfileImage: m.ProfileImage,
		AvatarKey:    m.AvatarKey,
		IsAdmin:      m.IsAdmin,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *GormRepository) Create(ctx context.Context, u *domain.User) error {
	m := database.UserModel{
		Name:         u.Name,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		IsAdmin:      u.IsAdmin,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*u = *toDomain(m)
	return nil
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m database.UserModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomain(m), nil
}

func (r *GormRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m database.UserModel
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&m).Error
	if err != nil {
		return nil, err
	}
	return toDomain(m), nil
}

func (r *GormRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).
		Model(&database.UserModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"name":          u.Name,
			"phone":         u.Phone,
			"profile_image": u.ProfileImage,
		}).Error
}

func (r *GormRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).
		Model(&database.UserModel{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *GormRepository) UpdateAvatar(ctx context.Context, id int64, url, key string) error {
	return r.db.WithContext(ctx).
		Model(&database.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"profile_image": url, "avatar_key": key}).Error
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&database.UserModel{}, id).Error
}

func (r *GormRepository) ActiveHostedBookings(ctx context.Context, hostID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&database.BookingModel{}).
		Joins("JOIN properties ON properties.id = bookings.property_id").
		Where("properties.host_id = ?", hostID).
		Where("bookings.status IN ?", []string{string(domain.BookingPending), string(domain.BookingConfirmed)}).
		Count(&n).Error
	return n, err
}

func (r *GormRepository) CancelGuestBookings(ctx context.Context, guestID int64) error {
	return r.db.WithContext(ctx).
		Model(&database.BookingModel{}).
		Where("guest_id = ? AND status IN ?", guestID, []string{string(domain.BookingPending), string(domain.BookingConfirmed)}).
		Update("status", string(domain.BookingCancelled)).Error
}

func (r *GormRepository) DeleteReviews(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&database.ReviewModel{}).Error
}

func (r *GormRepository) ReviewedPropertyIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&database.ReviewModel{}).
		Where("user_id = ?", userID).
		Distinct("property_id").
		Pluck("property_id", &ids).Error
	return ids, err
}

func (r *GormRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&database.UserModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []database.UserModel
	if err := r.db.WithContext(ctx).Order("id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	users := make([]*domain.User, 0, len(rows))
	for _, m := range rows {
		users = append(users, toDomain(m))
	}
	return users, total, nil
}
