package review

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
	ErrNotFound         = apperr.NotFound("REVIEW_NOT_FOUND", "Review not found")
	ErrBookingNotFound  = apperr.NotFound("BOOKING_NOT_FOUND", "Booking not found")
	ErrNotYourBooking   = apperr.Forbidden("FORBIDDEN", "You can only review your own bookings")
	ErrNotAuthor        = apperr.Forbidden("FORBIDDEN", "You can only modify your own reviews")
	ErrNotCompleted     = apperr.Validation("BOOKING_NOT_COMPLETED", "You can only review properties from completed bookings")
	ErrInvalidRating    = apperr.Validation("VALIDATION_ERROR", "rating must be between 1 and 5").WithDetails(map[string]string{"field": "rating"})
	ErrAlreadyReviewed  = apperr.Conflict("REVIEW_EXISTS", "You have already reviewed this booking")
	ErrBookingIDMissing = apperr.Validation("VALIDATION_ERROR", "booking_id is required").WithDetails(map[string]string{"field": "booking_id"})
)

// BookingReader resolves the booking a review is attached to.
type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// CreateInput accepts rating/comment or property_rating/property_review.
type CreateInput struct {
	BookingID      int64  `json:"booking_id"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
	PropertyRating int    `json:"property_rating"`
	PropertyReview string `json:"property_review"`
}

type UpdateInput struct {
	Rating         *int    `json:"rating"`
	Comment        *string `json:"comment"`
	PropertyRating *int    `json:"property_rating"`
	PropertyReview *string `json:"property_review"`
}

type Service struct {
	reviews  Repository
	bookings BookingReader
	cache    cache.PropertyCache
	log      logrus.FieldLogger
}

func NewService(reviews Repository, bookings BookingReader, c cache.PropertyCache, log logrus.FieldLogger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{reviews: reviews, bookings: bookings, cache: c, log: log}
}

func validRating(r int) bool {
	return r >= domain.MinRating && r <= domain.MaxRating
}

// Create attaches a review to a completed booking of the caller.
func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (*domain.Review, error) {
	if in.BookingID <= 0 {
		return nil, ErrBookingIDMissing
	}
	rating, comment := in.Rating, in.Comment
	if rating == 0 {
		rating = in.PropertyRating
	}
	if comment == "" {
		comment = in.PropertyReview
	}

	b, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, apperr.Internal(fmt.Errorf("load booking %d: %w", in.BookingID, err))
	}
	if b.GuestID != userID {
		return nil, ErrNotYourBooking
	}
	if b.Status != domain.BookingCompleted {
		return nil, ErrNotCompleted
	}
	if !validRating(rating) {
		return nil, ErrInvalidRating
	}

	exists, err := s.reviews.ExistsForBooking(ctx, b.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("check review: %w", err))
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	rv := &domain.Review{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		UserID:     userID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, apperr.Internal(fmt.Errorf("create review: %w", err))
	}

	s.cache.InvalidateProperty(ctx, rv.PropertyID)
	s.log.WithFields(logrus.Fields{"review_id": rv.ID, "booking_id": b.ID, "rating": rating}).Info("review created")
	return rv, nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, in UpdateInput) (*domain.Review, error) {
	rv, err := s.authored(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	rating, comment := in.Rating, in.Comment
	if rating == nil {
		rating = in.PropertyRating
	}
	if comment == nil {
		comment = in.PropertyReview
	}
	if rating != nil {
		if !validRating(*rating) {
			return nil, ErrInvalidRating
		}
		rv.Rating = *rating
	}
	if comment != nil {
		rv.Comment = strings.TrimSpace(*comment)
	}

	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, apperr.Internal(fmt.Errorf("update review %d: %w", id, err))
	}
	s.cache.InvalidateProperty(ctx, rv.PropertyID)
	return s.authored(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	rv, err := s.authored(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return apperr.Internal(fmt.Errorf("delete review %d: %w", id, err))
	}
	s.cache.InvalidateProperty(ctx, rv.PropertyID)
	return nil
}

func (s *Service) ListByProperty(ctx context.Context, propertyID int64) ([]domain.Review, error) {
	out, err := s.reviews.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list property reviews: %w", err))
	}
	return out, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]UserReview, error) {
	out, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list user reviews: %w", err))
	}
	return out, nil
}

func (s *Service) authored(ctx context.Context, userID, id int64) (*domain.Review, error) {
	rv, err := s.reviews.Get(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, apperr.Internal(fmt.Errorf("load review %d: %w", id, err))
	}
	if rv.UserID != userID {
		return nil, ErrNotAuthor
	}
	return rv, nil
}
