package property

import (
	"context"
	"mime/multipart"

	"staybook/internal/domain"
	"staybook/internal/storage"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, p *domain.Property) error
	UpdateBase(ctx context.Context, p *domain.Property) error
	ReplaceDetails(ctx context.Context, propertyID int64, details domain.PropertyDetails) error
	Delete(ctx context.Context, id int64) error

	GetBase(ctx context.Context, id int64) (*domain.Property, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Property, error)
	Get(ctx context.Context, id int64) (*domain.Property, error)
	List(ctx context.Context, f Filter) ([]domain.Property, int64, error)
	HostPropertyIDs(ctx context.Context, hostID int64) ([]int64, error)

	Images(ctx context.Context, propertyID int64) ([]domain.Image, error)
	InsertImages(ctx context.Context, propertyID int64, images []domain.Image) error
	DeleteImages(ctx context.Context, propertyID int64) ([]domain.Image, error)

	Facilities(ctx context.Context, propertyID int64) ([]domain.Facility, error)
	CountFacilities(ctx context.Context, ids []int64) (int64, error)
	ReplaceFacilities(ctx context.Context, propertyID int64, ids []int64) error
}

type Transactor interface {
	Run(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ImageStore interface {
	Store(ctx context.Context, fh *multipart.FileHeader) (storage.File, error)
	Remove(ctx context.Context, key string) error
}
