package admin

import (
	"context"
	"errors"
	"fmt"

	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/pkg/apperr"
	"staybook/internal/pkg/pagination"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = apperr.NotFound("USER_NOT_FOUND", "User not found")
	ErrLastAdmin     = apperr.Conflict("LAST_ADMIN", "Cannot remove the last administrator")
	ErrAdminRequired = apperr.Validation("VALIDATION_ERROR", "is_admin is required").WithDetails(map[string]string{"field": "is_admin"})
	ErrBadStatus     = apperr.Validation("INVALID_STATUS", "Unknown booking status")
)

type Transactor interface {
	Run(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service struct {
	repo Repository
	tx   Transactor
	log  logrus.FieldLogger
}

func NewService(repo Repository, tx Transactor, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, tx: tx, log: log}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("stats: %w", err))
	}
	return st, nil
}

func (s *Service) ListUsers(ctx context.Context, f UserFilter, p pagination.Params) (*Page[UserRow], error) {
	p = p.Normalize()
	rows, total, err := s.repo.ListUsers(ctx, f, p)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list users: %w", err))
	}
	return &Page[UserRow]{Items: rows, Pagination: pagination.NewMeta(p, total)}, nil
}

func (s *Service) ListProperties(ctx context.Context, p pagination.Params) (*Page[PropertyRow], error) {
	p = p.Normalize()
	rows, total, err := s.repo.ListProperties(ctx, p)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list properties: %w", err))
	}
	return &Page[PropertyRow]{Items: rows, Pagination: pagination.NewMeta(p, total)}, nil
}

// ListBookings lists every booking, optionally narrowed to one status.
func (s *Service) ListBookings(ctx context.Context, status string, p pagination.Params) (*Page[BookingRow], error) {
	if status != "" {
		st, ok := domain.ParseBookingStatus(status)
		if !ok {
			return nil, ErrBadStatus
		}
		status = string(st)
	}
	p = p.Normalize()
	rows, total, err := s.repo.ListBookings(ctx, status, p)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list bookings: %w", err))
	}
	return &Page[BookingRow]{Items: rows, Pagination: pagination.NewMeta(p, total)}, nil
}

// SetAdmin grants or revokes the admin flag. At least one admin always
// remains. The new role reaches the user's token on next login.
func (s *Service) SetAdmin(ctx context.Context, actorID, userID int64, isAdmin bool) error {
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Revocations lock the admin set, in id order, before the target row.
		var admins []int64
		if !isAdmin {
			var err error
			if admins, err = repo.LockAdmins(ctx); err != nil {
				return err
			}
		}

		current, err := repo.IsAdmin(ctx, userID)
		if err != nil {
			if database.IsNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}
		if current == isAdmin {
			return nil
		}
		if !isAdmin && len(admins) <= 1 {
			return ErrLastAdmin
		}
		return repo.SetAdmin(ctx, userID, isAdmin)
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperr.Internal(fmt.Errorf("set admin %d: %w", userID, err))
	}

	s.log.WithFields(logrus.Fields{
		"actor_id": actorID,
		"user_id":  userID,
		"is_admin": isAdmin,
	}).Info("admin flag changed")
	return nil
}
