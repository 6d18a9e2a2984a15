package property

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"staybook/internal/cache"
	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/pkg/apperr"
	"staybook/internal/pkg/pagination"
	"staybook/internal/pkg/validator"
	"staybook/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const MaxImages = 10

type Service struct {
	repo         Repository
	tx           Transactor
	store        ImageStore
	cache        cache.PropertyCache
	log          logrus.FieldLogger
	maxImageSize int64
}

func NewService(repo Repository, tx Transactor, store ImageStore, c cache.PropertyCache, log logrus.FieldLogger, maxImageSize int64) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		repo:         repo,
		tx:           tx,
		store:        store,
		cache:        c,
		log:          log,
		maxImageSize: maxImageSize,
	}
}

// Create validates the payload, stores uploaded images and writes the
// property, its subtype row, facility links and pictures in one
// transaction. Any failure leaves no rows and no stored files behind.
func (s *Service) Create(ctx context.Context, hostID int64, in CreateInput, files []*multipart.FileHeader) (*domain.Property, error) {
	p, err := newProperty(hostID, in)
	if err != nil {
		return nil, err
	}
	urls := cleanURLs(in.ImageURLs)
	if len(files)+len(urls) > MaxImages {
		return nil, ErrTooManyImages
	}

	stored, err := s.storeFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	images := buildImages(stored, urls)

	err = s.tx.Run(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := checkFacilities(ctx, repo, in.Facilities); err != nil {
			return err
		}
		if err := repo.Create(ctx, p); err != nil {
			return fmt.Errorf("insert property: %w", err)
		}
		if err := repo.ReplaceFacilities(ctx, p.ID, in.Facilities); err != nil {
			return fmt.Errorf("insert facilities: %w", err)
		}
		if err := repo.InsertImages(ctx, p.ID, images); err != nil {
			return fmt.Errorf("insert pictures: %w", err)
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, stored)
		return nil, classify(err)
	}

	s.log.WithFields(logrus.Fields{
		"property_id": p.ID,
		"host_id":     hostID,
		"images":      len(images),
		"facilities":  len(in.Facilities),
	}).Info("property created")
	return s.Get(ctx, p.ID)
}

func newProperty(hostID int64, in CreateInput) (*domain.Property, error) {
	if strings.TrimSpace(in.PropertyType) == "" {
		return nil, ErrTypeRequired
	}
	pt, ok := domain.ParsePropertyType(in.PropertyType)
	if !ok {
		return nil, ErrInvalidType
	}
	details, err := domain.NewPropertyDetails(pt, in.TotalBedrooms, in.TotalRooms, in.TotalBeds)
	if err != nil {
		return nil, detailsError(err)
	}

	in.Title = strings.TrimSpace(in.Title)
	in.City = strings.TrimSpace(in.City)
	if err := validator.Check(in); err != nil {
		return nil, err
	}

	return &domain.Property{
		HostID:       hostID,
		Title:        in.Title,
		Description:  strings.TrimSpace(in.Description),
		Address:      strings.TrimSpace(in.Address),
		City:         in.City,
		State:        strings.TrimSpace(in.State),
		Country:      strings.TrimSpace(in.Country),
		RentPerDay:   in.RentPerDay,
		MaxGuests:    in.MaxGuests,
		PropertyType: pt,
		Details:      details,
	}, nil
}

func detailsError(err error) error {
	var missing *domain.MissingFieldError
	if errors.As(err, &missing) {
		return apperr.Validation("VALIDATION_ERROR", missing.Error()).
			WithDetails(map[string]string{"field": missing.Field})
	}
	return apperr.Internal(err)
}

// Update applies the fields present in in. Supplied facilities or images
// replace the existing set.
func (s *Service) Update(ctx context.Context, hostID, id int64, in UpdateInput, files []*multipart.FileHeader) (*domain.Property, error) {
	current, err := s.owned(ctx, s.repo, hostID, id, false)
	if err != nil {
		return nil, err
	}
	next, detailsChanged, err := applyUpdate(*current, in)
	if err != nil {
		return nil, err
	}

	replaceImages := len(files) > 0 || in.ImageURLs != nil
	var urls []string
	if in.ImageURLs != nil {
		urls = cleanURLs(*in.ImageURLs)
	}
	if replaceImages && len(files)+len(urls) > MaxImages {
		return nil, ErrTooManyImages
	}

	stored, err := s.storeFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	var replaced []domain.Image
	err = s.tx.Run(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.owned(ctx, repo, hostID, id, true); err != nil {
			return err
		}
		if err := repo.UpdateBase(ctx, &next); err != nil {
			return fmt.Errorf("update property: %w", err)
		}
		if detailsChanged {
			if err := repo.ReplaceDetails(ctx, id, next.Details); err != nil {
				return fmt.Errorf("replace details: %w", err)
			}
		}
		if in.Facilities != nil {
			if err := checkFacilities(ctx, repo, *in.Facilities); err != nil {
				return err
			}
			if err := repo.ReplaceFacilities(ctx, id, *in.Facilities); err != nil {
				return fmt.Errorf("replace facilities: %w", err)
			}
		}
		if replaceImages {
			old, err := repo.DeleteImages(ctx, id)
			if err != nil {
				return fmt.Errorf("delete pictures: %w", err)
			}
			replaced = old
			if err := repo.InsertImages(ctx, id, buildImages(stored, urls)); err != nil {
				return fmt.Errorf("insert pictures: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, stored)
		return nil, classify(err)
	}

	s.discardImages(ctx, replaced)
	s.cache.InvalidateProperty(ctx, id)
	return s.Get(ctx, id)
}

func applyUpdate(p domain.Property, in UpdateInput) (domain.Property, bool, error) {
	fieldErr := func(field, msg string) error {
		return apperr.Validation("VALIDATION_ERROR", msg).WithDetails(map[string]string{"field": field})
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return p, false, fieldErr("title", "title must not be empty")
		}
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Address != nil {
		p.Address = strings.TrimSpace(*in.Address)
	}
	if in.City != nil {
		if strings.TrimSpace(*in.City) == "" {
			return p, false, fieldErr("city", "city must not be empty")
		}
		p.City = strings.TrimSpace(*in.City)
	}
	if in.State != nil {
		p.State = strings.TrimSpace(*in.State)
	}
	if in.Country != nil {
		p.Country = strings.TrimSpace(*in.Country)
	}
	if in.RentPerDay != nil {
		if *in.RentPerDay <= 0 {
			return p, false, fieldErr("rent_per_day", "rent_per_day must be greater than 0")
		}
		p.RentPerDay = *in.RentPerDay
	}
	if in.MaxGuests != nil {
		if *in.MaxGuests <= 0 {
			return p, false, fieldErr("max_guests", "max_guests must be greater than 0")
		}
		p.MaxGuests = *in.MaxGuests
	}

	nextType := p.PropertyType
	if in.PropertyType != nil {
		pt, ok := domain.ParsePropertyType(*in.PropertyType)
		if !ok {
			return p, false, ErrInvalidType
		}
		nextType = pt
	}

	var supplied *int
	switch nextType {
	case domain.PropertyHouse:
		supplied = in.TotalBedrooms
	case domain.PropertyFlat:
		supplied = in.TotalRooms
	case domain.PropertyRoom:
		supplied = in.TotalBeds
	}
	if nextType == p.PropertyType && supplied == nil {
		return p, false, nil
	}

	details, err := domain.NewPropertyDetails(nextType, in.TotalBedrooms, in.TotalRooms, in.TotalBeds)
	if err != nil {
		return p, false, detailsError(err)
	}
	p.PropertyType = nextType
	p.Details = details
	return p, true, nil
}

// Delete removes the property with its subtype row, pictures, facility
// links, reviews and bookings.
func (s *Service) Delete(ctx context.Context, hostID, id int64) error {
	if _, err := s.owned(ctx, s.repo, hostID, id, false); err != nil {
		return err
	}

	var images []domain.Image
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.owned(ctx, repo, hostID, id, true); err != nil {
			return err
		}
		var err error
		if images, err = repo.Images(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return classify(err)
	}

	s.discardImages(ctx, images)
	s.cache.InvalidateProperty(ctx, id)
	s.log.WithFields(logrus.Fields{"property_id": id, "host_id": hostID}).Info("property deleted")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Property, error) {
	if p, ok := s.cache.GetProperty(ctx, id); ok {
		return p, nil
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, apperr.Internal(fmt.Errorf("get property %d: %w", id, err))
	}
	s.cache.SetProperty(ctx, p)
	return p, nil
}

func (s *Service) List(ctx context.Context, f Filter, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()
	f.Limit = page.Limit
	f.Offset = page.Offset()

	props, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list properties: %w", err))
	}
	return &ListResult{Properties: props, Pagination: pagination.NewMeta(page, total)}, nil
}

func (s *Service) ListByHost(ctx context.Context, hostID int64) ([]domain.Property, error) {
	props, _, err := s.repo.List(ctx, Filter{HostID: hostID})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list host properties: %w", err))
	}
	return props, nil
}

// Invalidate drops the cached read model of a property.
func (s *Service) Invalidate(ctx context.Context, id int64) {
	s.cache.InvalidateProperty(ctx, id)
}

func (s *Service) owned(ctx context.Context, repo Repository, hostID, id int64, lock bool) (*domain.Property, error) {
	var (
		p   *domain.Property
		err error
	)
	if lock {
		p, err = repo.GetForUpdate(ctx, id)
	} else {
		p, err = repo.GetBase(ctx, id)
	}
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, apperr.Internal(fmt.Errorf("load property %d: %w", id, err))
	}
	if p.HostID != hostID {
		return nil, ErrForbidden
	}
	return p, nil
}

func checkFacilities(ctx context.Context, repo Repository, ids FacilitySet) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := repo.CountFacilities(ctx, ids)
	if err != nil {
		return fmt.Errorf("count facilities: %w", err)
	}
	if n != int64(len(ids)) {
		return ErrUnknownFacilities.WithDetails(map[string]any{"facilities": ids})
	}
	return nil
}

// storeFiles validates every upload before storing any of them.
func (s *Service) storeFiles(ctx context.Context, files []*multipart.FileHeader) ([]storage.File, error) {
	for _, fh := range files {
		if err := storage.ValidateImage(fh, s.maxImageSize); err != nil {
			return nil, imageError(fh, err)
		}
	}

	stored := make([]storage.File, 0, len(files))
	for _, fh := range files {
		f, err := s.store.Store(ctx, fh)
		if err != nil {
			s.log.WithError(err).WithField("file", fh.Filename).Error("image upload failed")
			s.discard(ctx, stored)
			return nil, imageError(fh, err)
		}
		stored = append(stored, f)
	}
	return stored, nil
}

func imageError(fh *multipart.FileHeader, err error) error {
	if storage.IsValidationError(err) {
		return apperr.Validation("INVALID_IMAGE", fmt.Sprintf("%s: %v", fh.Filename, err))
	}
	return apperr.Wrap(apperr.KindInternal, "IMAGE_UPLOAD_FAILED", "Failed to store image", err)
}

func (s *Service) discard(ctx context.Context, files []storage.File) {
	for _, f := range files {
		if err := s.store.Remove(ctx, f.Key); err != nil {
			s.log.WithError(err).WithField("key", f.Key).Warn("failed to remove stored image")
		}
	}
}

func (s *Service) discardImages(ctx context.Context, images []domain.Image) {
	files := make([]storage.File, 0, len(images))
	for _, img := range images {
		if img.Key != "" {
			files = append(files, storage.File{URL: img.URL, Key: img.Key})
		}
	}
	s.discard(ctx, files)
}

// buildImages orders uploads before URL-only images; the first is primary.
func buildImages(stored []storage.File, urls []string) []domain.Image {
	out := make([]domain.Image, 0, len(stored)+len(urls))
	for _, f := range stored {
		out = append(out, domain.Image{URL: f.URL, Key: f.Key})
	}
	for _, u := range urls {
		out = append(out, domain.Image{URL: u})
	}
	for i := range out {
		out[i].Position = i
		out[i].IsPrimary = i == 0
	}
	return out
}

func cleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func classify(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal(err)
}
