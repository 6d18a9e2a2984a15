package review

import (
	"context"

	"staybook/internal/database"
	"staybook/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, r *domain.Review) error
	Get(ctx context.Context, id int64) (*domain.Review, error)
	Update(ctx context.Context, r *domain.Review) error
	Delete(ctx context.Context, id int64) error
	ExistsForBooking(ctx context.Context, bookingID int64) (bool, error)
	ListByProperty(ctx context.Context, propertyID int64) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID int64) ([]UserReview, error)
}

// UserReview is a review with the reviewed property's summary.
type UserReview struct {
	domain.Review
	PropertyTitle string `json:"property_title"`
	PropertyCity  string `json:"property_city"`
	PropertyImage string `json:"property_image,omitempty"`
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

type reviewRow struct {
	database.ReviewModel
	UserName      string `gorm:"column:user_name"`
	PropertyTitle string `gorm:"column:property_title"`
	PropertyCity  string `gorm:"column:property_city"`
	PropertyImage string `gorm:"column:property_image"`
}

func toDomain(m database.ReviewModel) domain.Review {
	return domain.Review{
		ID:         m.ID,
		BookingID:  m.BookingID,
		PropertyID: m.PropertyID,
		UserID:     m.UserID,
		Rating:     m.Rating,
		Comment:    m.Comment,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (r *GormRepository) Create(ctx context.Context, rv *domain.Review) error {
	m := database.ReviewModel{
		BookingID:  rv.BookingID,
		PropertyID: rv.PropertyID,
		UserID:     rv.UserID,
		Rating:     rv.Rating,
		Comment:    rv.Comment,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	rv.ID = m.ID
	rv.CreatedAt = m.CreatedAt
	rv.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id int64) (*domain.Review, error) {
	var m database.ReviewModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	rv := toDomain(m)
	return &rv, nil
}

func (r *GormRepository) Update(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).
		Model(&database.ReviewModel{}).
		Where("id = ?", rv.ID).
		Updates(map[string]any{"rating": rv.Rating, "comment": rv.Comment}).Error
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&database.ReviewModel{}, id).Error
}

func (r *GormRepository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&database.ReviewModel{}).Where("booking_id = ?", bookingID).Count(&n).Error
	return n > 0, err
}

func (r *GormRepository) ListByProperty(ctx context.Context, propertyID int64) ([]domain.Review, error) {
	var rows []reviewRow
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.*, users.name AS user_name").
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Where("reviews.property_id = ?", propertyID).
		Order("reviews.created_at DESC, reviews.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		rv := toDomain(row.ReviewModel)
		rv.UserName = row.UserName
		out = append(out, rv)
	}
	return out, nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID int64) ([]UserReview, error) {
	var rows []reviewRow
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select(`reviews.*, properties.title AS property_title, properties.city AS property_city,
			(SELECT url FROM pictures WHERE pictures.property_id = properties.id AND pictures.is_primary = ? LIMIT 1) AS property_image`, true).
		Joins("JOIN properties ON properties.id = reviews.property_id").
		Where("reviews.user_id = ?", userID).
		Order("reviews.created_at DESC, reviews.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]UserReview, 0, len(rows))
	for _, row := range rows {
		out = append(out, UserReview{
			Review:        toDomain(row.ReviewModel),
			PropertyTitle: row.PropertyTitle,
			PropertyCity:  row.PropertyCity,
			PropertyImage: row.PropertyImage,
		})
	}
	return out, nil
}
