package property

import (
	"context"
	"fmt"
	"strings"

	"staybook/internal/database"
	"staybook/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

func toDomain(m database.PropertyModel) domain.Property {
	return domain.Property{
		ID:           m.ID,
		HostID:       m.HostID,
		Title:        m.Title,
		Description:  m.Description,
		Address:      m.Address,
		City:         m.City,
		State:        m.State,
		Country:      m.Country,
		RentPerDay:   m.RentPerDay,
		MaxGuests:    m.MaxGuests,
		PropertyType: domain.PropertyType(m.PropertyType),
		Images:       []domain.Image{},
		Facilities:   []domain.Facility{},
		Reviews:      []domain.Review{},
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toModel(p *domain.Property) database.PropertyModel {
	return database.PropertyModel{
		ID:           p.ID,
		HostID:       p.HostID,
		Title:        p.Title,
		Description:  p.Description,
		Address:      p.Address,
		City:         p.City,
		State:        p.State,
		Country:      p.Country,
		RentPerDay:   p.RentPerDay,
		MaxGuests:    p.MaxGuests,
		PropertyType: string(p.PropertyType),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// Create inserts the property row and its subtype row.
func (r *GormRepository) Create(ctx context.Context, p *domain.Property) error {
	m := toModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return r.insertDetails(ctx, p.ID, p.Details)
}

func (r *GormRepository) insertDetails(ctx context.Context, propertyID int64, details domain.PropertyDetails) error {
	db := r.db.WithContext(ctx)
	switch d := details.(type) {
	case domain.HouseDetails:
		return db.Create(&database.HouseModel{PropertyID: propertyID, TotalBedrooms: d.TotalBedrooms}).Error
	case domain.FlatDetails:
		return db.Create(&database.FlatModel{PropertyID: propertyID, TotalRooms: d.TotalRooms}).Error
	case domain.RoomDetails:
		return db.Create(&database.RoomModel{PropertyID: propertyID, TotalBeds: d.TotalBeds}).Error
	default:
		return fmt.Errorf("unsupported property details %T", details)
	}
}

func (r *GormRepository) deleteDetails(ctx context.Context, propertyID int64) error {
	db := r.db.WithContext(ctx)
	for _, m := range []any{&database.HouseModel{}, &database.FlatModel{}, &database.RoomModel{}} {
		if err := db.Where("property_id = ?", propertyID).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReplaceDetails swaps the subtype row, which may change table.
func (r *GormRepository) ReplaceDetails(ctx context.Context, propertyID int64, details domain.PropertyDetails) error {
	if err := r.deleteDetails(ctx, propertyID); err != nil {
		return err
	}
	return r.insertDetails(ctx, propertyID, details)
}

func (r *GormRepository) UpdateBase(ctx context.Context, p *domain.Property) error {
	tx := r.db.WithContext(ctx).
		Model(&database.PropertyModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"title":         p.Title,
			"description":   p.Description,
			"address":       p.Address,
			"city":          p.City,
			"state":         p.State,
			"country":       p.Country,
			"rent_per_day":  p.RentPerDay,
			"max_guests":    p.MaxGuests,
			"property_type": string(p.PropertyType),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepository) GetBase(ctx context.Context, id int64) (*domain.Property, error) {
	return r.getBase(ctx, r.db.WithContext(ctx), id)
}

// GetForUpdate reads the property holding a row lock until the enclosing
// transaction ends. SQLite ignores the locking clause.
func (r *GormRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Property, error) {
	return r.getBase(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormRepository) getBase(ctx context.Context, q *gorm.DB, id int64) (*domain.Property, error) {
	var m database.PropertyModel
	if err := q.First(&m, id).Error; err != nil {
		return nil, err
	}
	p := toDomain(m)
	props := []*domain.Property{&p}
	if err := r.attachDetails(ctx, props); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) attachDetails(ctx context.Context, props []*domain.Property) error {
	byType := map[domain.PropertyType][]int64{}
	index := map[int64]*domain.Property{}
	for _, p := range props {
		byType[p.PropertyType] = append(byType[p.PropertyType], p.ID)
		index[p.ID] = p
	}
	db := r.db.WithContext(ctx)

	if ids := byType[domain.PropertyHouse]; len(ids) > 0 {
		var rows []database.HouseModel
		if err := db.Where("property_id IN ?", ids).Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			index[row.PropertyID].Details = domain.HouseDetails{TotalBedrooms: row.TotalBedrooms}
		}
	}
	if ids := byType[domain.PropertyFlat]; len(ids) > 0 {
		var rows []database.FlatModel
		if err := db.Where("property_id IN ?", ids).Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			index[row.PropertyID].Details = domain.FlatDetails{TotalRooms: row.TotalRooms}
		}
	}
	if ids := byType[domain.PropertyRoom]; len(ids) > 0 {
		var rows []database.RoomModel
		if err := db.Where("property_id IN ?", ids).Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			index[row.PropertyID].Details = domain.RoomDetails{TotalBeds: row.TotalBeds}
		}
	}
	return nil
}

// Get composes the full read model: details, host, images, facilities and
// reviews with their rating summary.
func (r *GormRepository) Get(ctx context.Context, id int64) (*domain.Property, error) {
	p, err := r.GetBase(ctx, id)
	if err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)

	var host database.UserModel
	if err := db.Select("id", "name").First(&host, p.HostID).Error; err == nil {
		p.HostName = host.Name
	} else if !database.IsNotFound(err) {
		return nil, err
	}

	if p.Images, err = r.Images(ctx, id); err != nil {
		return nil, err
	}
	for _, img := range p.Images {
		if img.IsPrimary {
			p.PrimaryImage = img.URL
		}
	}
	if p.Facilities, err = r.Facilities(ctx, id); err != nil {
		return nil, err
	}

	var reviews []struct {
		database.ReviewModel
		UserName string `gorm:"column:user_name"`
	}
	err = db.Table("reviews").
		Select("reviews.*, users.name AS user_name").
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Where("reviews.property_id = ?", id).
		Order("reviews.created_at DESC").
		Scan(&reviews).Error
	if err != nil {
		return nil, err
	}

	total := 0
	for _, rv := range reviews {
		p.Reviews = append(p.Reviews, domain.Review{
			ID:         rv.ID,
			BookingID:  rv.BookingID,
			PropertyID: rv.PropertyID,
			UserID:     rv.UserID,
			UserName:   rv.UserName,
			Rating:     rv.Rating,
			Comment:    rv.Comment,
			CreatedAt:  rv.CreatedAt,
			UpdatedAt:  rv.UpdatedAt,
		})
		total += rv.Rating
	}
	p.ReviewCount = len(reviews)
	if p.ReviewCount > 0 {
		p.AvgRating = roundRating(float64(total) / float64(p.ReviewCount))
	}
	return p, nil
}

func roundRating(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func (r *GormRepository) Images(ctx context.Context, propertyID int64) ([]domain.Image, error) {
	var rows []database.PictureModel
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("is_primary DESC, position ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Image, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Image{
			ID:         m.ID,
			PropertyID: m.PropertyID,
			URL:        m.URL,
			Key:        m.StorageKey,
			IsPrimary:  m.IsPrimary,
			Position:   m.Position,
		})
	}
	return out, nil
}

func (r *GormRepository) InsertImages(ctx context.Context, propertyID int64, images []domain.Image) error {
	if len(images) == 0 {
		return nil
	}
	rows := make([]database.PictureModel, 0, len(images))
	for _, img := range images {
		rows = append(rows, database.PictureModel{
			PropertyID: propertyID,
			URL:        img.URL,
			StorageKey: img.Key,
			IsPrimary:  img.IsPrimary,
			Position:   img.Position,
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// DeleteImages removes all picture rows of the property and returns them.
func (r *GormRepository) DeleteImages(ctx context.Context, propertyID int64) ([]domain.Image, error) {
	existing, err := r.Images(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).Where("property_id = ?", propertyID).Delete(&database.PictureModel{}).Error
	return existing, err
}

func (r *GormRepository) Facilities(ctx context.Context, propertyID int64) ([]domain.Facility, error) {
	var rows []database.FacilityModel
	err := r.db.WithContext(ctx).
		Table("facilities").
		Joins("JOIN property_facilities pf ON pf.facility_id = facilities.id").
		Where("pf.property_id = ?", propertyID).
		Order("facilities.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Facility, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Facility{ID: m.ID, Name: m.Name, Icon: m.Icon, CreatedAt: m.CreatedAt})
	}
	return out, nil
}

// CountFacilities counts how many of ids exist.
func (r *GormRepository) CountFacilities(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&database.FacilityModel{}).Where("id IN ?", ids).Count(&n).Error
	return n, err
}

func (r *GormRepository) ReplaceFacilities(ctx context.Context, propertyID int64, ids []int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("property_id = ?", propertyID).Delete(&database.PropertyFacilityModel{}).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	rows := make([]database.PropertyFacilityModel, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, database.PropertyFacilityModel{PropertyID: propertyID, FacilityID: id})
	}
	return db.Create(&rows).Error
}

// Delete removes the property and everything that hangs off it.
func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := r.deleteDetails(ctx, id); err != nil {
		return err
	}
	for _, m := range []any{
		&database.PictureModel{},
		&database.PropertyFacilityModel{},
		&database.ReviewModel{},
		&database.BookingModel{},
	} {
		if err := db.Where("property_id = ?", id).Delete(m).Error; err != nil {
			return err
		}
	}
	tx := db.Delete(&database.PropertyModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepository) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&database.PropertyModel{})
	if f.HostID != 0 {
		q = q.Where("properties.host_id = ?", f.HostID)
	}
	if f.City != "" {
		q = q.Where("LOWER(properties.city) LIKE ?", "%"+strings.ToLower(f.City)+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("properties.rent_per_day >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("properties.rent_per_day <= ?", *f.MaxPrice)
	}
	if f.PropertyType != "" {
		q = q.Where("properties.property_type = ?", string(f.PropertyType))
	}
	if f.Guests != nil {
		q = q.Where("properties.max_guests >= ?", *f.Guests)
	}
	if f.Bedrooms != nil {
		q = q.Joins("JOIN houses ON houses.property_id = properties.id").
			Where("houses.total_bedrooms >= ?", *f.Bedrooms)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("(LOWER(properties.title) LIKE ? OR LOWER(properties.description) LIKE ? OR LOWER(properties.city) LIKE ?)", like, like, like)
	}
	return q
}

func (r *GormRepository) List(ctx context.Context, f Filter) ([]domain.Property, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.filtered(ctx, f).Select("properties.*").Order("properties.created_at DESC, properties.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []database.PropertyModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.Property, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomain(m))
	}
	if err := r.decorate(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// decorate fills details, primary image and rating summary for a page.
func (r *GormRepository) decorate(ctx context.Context, props []domain.Property) error {
	if len(props) == 0 {
		return nil
	}
	ptrs := make([]*domain.Property, 0, len(props))
	ids := make([]int64, 0, len(props))
	index := map[int64]*domain.Property{}
	for i := range props {
		ptrs = append(ptrs, &props[i])
		ids = append(ids, props[i].ID)
		index[props[i].ID] = &props[i]
	}
	if err := r.attachDetails(ctx, ptrs); err != nil {
		return err
	}
	db := r.db.WithContext(ctx)

	var pics []database.PictureModel
	if err := db.Where("property_id IN ? AND is_primary = ?", ids, true).Find(&pics).Error; err != nil {
		return err
	}
	for _, pic := range pics {
		index[pic.PropertyID].PrimaryImage = pic.URL
	}

	var ratings []struct {
		PropertyID int64
		Avg        float64
		Cnt        int
	}
	err := db.Model(&database.ReviewModel{}).
		Select("property_id, AVG(rating) AS avg, COUNT(*) AS cnt").
		Where("property_id IN ?", ids).
		Group("property_id").
		Scan(&ratings).Error
	if err != nil {
		return err
	}
	for _, rt := range ratings {
		index[rt.PropertyID].AvgRating = roundRating(rt.Avg)
		index[rt.PropertyID].ReviewCount = rt.Cnt
	}
	return nil
}

func (r *GormRepository) HostPropertyIDs(ctx context.Context, hostID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&database.PropertyModel{}).Where("host_id = ?", hostID).Pluck("id", &ids).Error
	return ids, err
}
