package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

type reviewService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewReviewService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ReviewService {
	return &reviewService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// Create records a student's review of a completed booking and folds the
// rating into the tutor's aggregates in the same transaction.
func (s *reviewService) Create(ctx context.Context, req *CreateReviewRequest, studentID string) (*models.Review, error) {
	s.logger.Info("Creating review", "booking_id", req.BookingID, "student_id", studentID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review *models.Review
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		booking, err := txRepo.Booking().GetByID(ctx, nil, req.BookingID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if booking.StudentID != studentID {
			return NewPermissionError(studentID, "review", "booking")
		}
		if booking.Status != models.BookingCompleted {
			return ErrReviewBookingIncomplete
		}

		exists, err := txRepo.Review().ExistsByBookingID(ctx, nil, booking.ID)
		if err != nil {
			return fmt.Errorf("failed to check existing review: %w", err)
		}
		if exists {
			return ErrReviewAlreadyExists
		}

		review = &models.Review{
			StudentID: studentID,
			TutorID:   booking.TutorID,
			BookingID: booking.ID,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := txRepo.Review().Create(ctx, nil, review); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrReviewAlreadyExists
			}
			return fmt.Errorf("failed to create review: %w", err)
		}

		if err := txRepo.Tutor().ApplyReview(ctx, nil, booking.TutorID, req.Rating); err != nil {
			return fmt.Errorf("failed to update tutor rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *reviewService) GetByTutor(ctx context.Context, tutorID string, filters repositories.ReviewFilters) (*ReviewListResponse, error) {
	reviews, total, err := s.repo.Review().GetByTutor(ctx, s.db, tutorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	return &ReviewListResponse{
		Reviews: reviews,
		Total:   total,
		Page:    pageFromOffset(filters.Offset, filters.Limit),
		Size:    len(reviews),
	}, nil
}
