package facility

import (
	"context"
	"fmt"
	"strings"

	"staybook/internal/cache"
	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/pkg/apperr"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound     = apperr.NotFound("FACILITY_NOT_FOUND", "Facility not found")
	ErrNameRequired = apperr.Validation("VALIDATION_ERROR", "Facility name is required").WithDetails(map[string]string{"field": "name"})
	ErrDuplicate    = apperr.Conflict("FACILITY_EXISTS", "A facility with this name already exists")
	ErrInUse        = apperr.Conflict("FACILITY_IN_USE", "Cannot delete facility as it is in use by properties")
)

type Input struct {
	Name         string `json:"name"`
	FacilityType string `json:"facility_type"`
	Icon         string `json:"icon"`
}

func (in Input) name() string {
	if n := strings.TrimSpace(in.Name); n != "" {
		return n
	}
	return strings.TrimSpace(in.FacilityType)
}

type Service struct {
	repo  Repository
	cache cache.PropertyCache
	log   logrus.FieldLogger
}

func NewService(repo Repository, c cache.PropertyCache, log logrus.FieldLogger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{repo: repo, cache: c, log: log}
}

func (s *Service) List(ctx context.Context) ([]domain.Facility, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list facilities: %w", err))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Facility, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, "get facility")
	}
	return f, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Facility, error) {
	name := in.name()
	if name == "" {
		return nil, ErrNameRequired
	}
	f := &domain.Facility{Name: name, Icon: strings.TrimSpace(in.Icon)}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, s.mapErr(err, "create facility")
	}
	s.log.WithFields(logrus.Fields{"facility_id": f.ID, "name": f.Name}).Info("facility created")
	return f, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*domain.Facility, error) {
	name := in.name()
	if name == "" {
		return nil, ErrNameRequired
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Name = name
	if icon := strings.TrimSpace(in.Icon); icon != "" {
		current.Icon = icon
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, s.mapErr(err, "update facility")
	}

	// cached properties embed their facilities
	ids, err := s.repo.PropertyIDs(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("facility_id", id).Warn("failed to list facility properties for cache invalidation")
		return current, nil
	}
	for _, pid := range ids {
		s.cache.InvalidateProperty(ctx, pid)
	}
	return current, nil
}

// Delete refuses to remove a facility that any property still lists.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.UsageCount(ctx, id)
	if err != nil {
		return apperr.Internal(fmt.Errorf("facility usage: %w", err))
	}
	if n > 0 {
		return ErrInUse.WithDetails(map[string]int64{"properties": n})
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapErr(err, "delete facility")
	}
	return nil
}

func (s *Service) mapErr(err error, op string) error {
	switch {
	case database.IsNotFound(err):
		return ErrNotFound
	case database.IsUniqueViolation(err):
		return ErrDuplicate
	default:
		return apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
}
