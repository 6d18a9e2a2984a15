package user

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"staybook/internal/cache"
	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/domain/property"
	"staybook/internal/pkg/apperr"
	"staybook/internal/pkg/jwt"
	"staybook/internal/pkg/pagination"
	"staybook/internal/pkg/validator"
	"staybook/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Transactor interface {
	Run(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service struct {
	repo        Repository
	properties  property.Repository
	tx          Transactor
	jwt         *jwt.Service
	avatars     storage.Store
	images      storage.Store
	cache       cache.PropertyCache
	log         logrus.FieldLogger
	maxFileSize int64
}

type Deps struct {
	Users       Repository
	Properties  property.Repository
	Tx          Transactor
	JWT         *jwt.Service
	Avatars     storage.Store
	Images      storage.Store
	Cache       cache.PropertyCache
	Log         logrus.FieldLogger
	MaxFileSize int64
}

func NewService(d Deps) *Service {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	return &Service{
		repo:        d.Users,
		properties:  d.Properties,
		tx:          d.Tx,
		jwt:         d.JWT,
		avatars:     d.Avatars,
		images:      d.Images,
		cache:       d.Cache,
		log:         d.Log,
		maxFileSize: d.MaxFileSize,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	name := req.FullName()
	if name == "" {
		return nil, apperr.Validation("VALIDATION_ERROR", "name is required").
			WithDetails(map[string]string{"field": "name"})
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}
	u := &domain.User{Name: name, Email: req.Email, PasswordHash: hash, Phone: strings.TrimSpace(req.Phone)}
	if err := s.repo.Create(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, apperr.Internal(fmt.Errorf("create user: %w", err))
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID}).Info("user registered")
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal(fmt.Errorf("load user: %w", err))
	}
	if err := CheckPassword(req.Password, u.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *Service) issue(u *domain.User) (*AuthResult, error) {
	token, err := s.jwt.GenerateToken(u.ID, jwt.RoleFor(u.IsAdmin))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("generate token: %w", err))
	}
	return &AuthResult{User: u, Token: token, ExpiresIn: int64(s.jwt.TTL().Seconds())}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, apperr.Internal(fmt.Errorf("load user %d: %w", id, err))
	}
	return u, nil
}

// GetPublic hides contact details of other users.
func (s *Service) GetPublic(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Email = ""
	u.Phone = ""
	return u, nil
}

// List returns the public user directory ordered by id.
func (s *Service) List(ctx context.Context, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()
	users, total, err := s.repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list users: %w", err))
	}
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, PublicUser{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage, CreatedAt: u.CreatedAt})
	}
	return &ListResult{Users: out, Pagination: pagination.NewMeta(page, total)}, nil
}

// UpdateProfile edits the caller's profile. Cached properties embed the host,
// so the caller's listings are invalidated.
func (s *Service) UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("VALIDATION_ERROR", "name must not be empty").
				WithDetails(map[string]string{"field": "name"})
		}
		u.Name = name
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.ProfileImage != nil {
		u.ProfileImage = strings.TrimSpace(*req.ProfileImage)
	}
	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, apperr.Internal(fmt.Errorf("update user %d: %w", id, err))
	}
	s.invalidateHosted(ctx, id)
	return s.Get(ctx, id)
}

func (s *Service) invalidateHosted(ctx context.Context, hostID int64) {
	ids, err := s.properties.HostPropertyIDs(ctx, hostID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", hostID).Warn("failed to list hosted properties for cache invalidation")
		return
	}
	for _, pid := range ids {
		s.cache.InvalidateProperty(ctx, pid)
	}
}

func (s *Service) ChangePassword(ctx context.Context, id int64, req ChangePasswordRequest) error {
	if err := validator.Check(req); err != nil {
		return err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := CheckPassword(req.CurrentPassword, u.PasswordHash); err != nil {
		return ErrWrongPassword
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("hash password: %w", err))
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return apperr.Internal(fmt.Errorf("update password: %w", err))
	}
	return nil
}

// UploadAvatar stores a new profile image and removes the previous one.
func (s *Service) UploadAvatar(ctx context.Context, id int64, fh *multipart.FileHeader) (*domain.User, error) {
	if fh == nil {
		return nil, ErrAvatarMissing
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := storage.ValidateImage(fh, s.maxFileSize); err != nil {
		return nil, apperr.Validation("INVALID_IMAGE", err.Error())
	}
	f, err := s.avatars.Store(ctx, fh)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "IMAGE_UPLOAD_FAILED", "Failed to store image", err)
	}
	if err := s.repo.UpdateAvatar(ctx, id, f.URL, f.Key); err != nil {
		s.remove(ctx, s.avatars, f.Key)
		return nil, apperr.Internal(fmt.Errorf("update avatar: %w", err))
	}
	if u.AvatarKey != "" {
		s.remove(ctx, s.avatars, u.AvatarKey)
	}
	return s.Get(ctx, id)
}

// Delete removes the account with its listings, reviews and open guest
// bookings. Hosts whose properties still have open bookings are refused.
func (s *Service) Delete(ctx context.Context, id int64) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var (
		hosted   []int64
		reviewed []int64
		images   []domain.Image
	)
	err = s.tx.Run(ctx, func(tx *gorm.DB) error {
		users := s.repo.WithTx(tx)
		props := s.properties.WithTx(tx)

		n, err := users.ActiveHostedBookings(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrActiveBookings.WithDetails(map[string]int64{"active_bookings": n})
		}

		if hosted, err = props.HostPropertyIDs(ctx, id); err != nil {
			return err
		}
		for _, pid := range hosted {
			imgs, err := props.Images(ctx, pid)
			if err != nil {
				return err
			}
			images = append(images, imgs...)
			if err := props.Delete(ctx, pid); err != nil {
				return fmt.Errorf("delete property %d: %w", pid, err)
			}
		}
		if err := users.CancelGuestBookings(ctx, id); err != nil {
			return err
		}
		if reviewed, err = users.ReviewedPropertyIDs(ctx, id); err != nil {
			return err
		}
		if err := users.DeleteReviews(ctx, id); err != nil {
			return err
		}
		return users.Delete(ctx, id)
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperr.Internal(fmt.Errorf("delete user %d: %w", id, err))
	}

	for _, pid := range append(hosted, reviewed...) {
		s.cache.InvalidateProperty(ctx, pid)
	}
	for _, img := range images {
		if img.Key != "" {
			s.remove(ctx, s.images, img.Key)
		}
	}
	if u.AvatarKey != "" {
		s.remove(ctx, s.avatars, u.AvatarKey)
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "properties": len(hosted)}).Info("user deleted")
	return nil
}

func (s *Service) remove(ctx context.Context, store storage.Store, key string) {
	if store == nil {
		return
	}
	if err := store.Remove(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to remove stored file")
	}
}
