package facility

import (
	"context"

	"staybook/internal/database"
	"staybook/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Facility, error)
	Get(ctx context.Context, id int64) (*domain.Facility, error)
	Create(ctx context.Context, f *domain.Facility) error
	Update(ctx context.Context, f *domain.Facility) error
	Delete(ctx context.Context, id int64) error
	UsageCount(ctx context.Context, id int64) (int64, error)
	PropertyIDs(ctx context.Context, id int64) ([]int64, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func toDomain(m database.FacilityModel) domain.Facility {
	return domain.Facility{ID: m.ID, Name: m.Name, Icon: m.Icon, CreatedAt: m.CreatedAt}
}

func (r *GormRepository) List(ctx context.Context) ([]domain.Facility, error) {
	var rows []database.FacilityModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Facility, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomain(m))
	}
	return out, nil
}

func (r *GormRepository) Get(ctx context.Context, id int64) (*domain.Facility, error) {
	var m database.FacilityModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	f := toDomain(m)
	return &f, nil
}

func (r *GormRepository) Create(ctx context.Context, f *domain.Facility) error {
	m := database.FacilityModel{Name: f.Name, Icon: f.Icon}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*f = toDomain(m)
	return nil
}

func (r *GormRepository) Update(ctx context.Context, f *domain.Facility) error {
	tx := r.db.WithContext(ctx).
		Model(&database.FacilityModel{}).
		Where("id = ?", f.ID).
		Updates(map[string]any{"name": f.Name, "icon": f.Icon})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&database.FacilityModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UsageCount is the number of properties linked to the facility.
func (r *GormRepository) UsageCount(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&database.PropertyFacilityModel{}).Where("facility_id = ?", id).Count(&n).Error
	return n, err
}

// PropertyIDs lists the properties linked to the facility.
func (r *GormRepository) PropertyIDs(ctx context.Context, id int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&database.PropertyFacilityModel{}).Where("facility_id = ?", id).Pluck("property_id", &ids).Error
	return ids, err
}
