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

type tutorService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTutorService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) TutorService {
	return &tutorService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// List serves the public marketplace browse
func (s *tutorService) List(ctx context.Context, filters repositories.TutorFilters) (*TutorListResponse, error) {
	tutors, total, err := s.repo.Tutor().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tutors: %w", err)
	}
	return s.toListResponse(tutors, total, filters), nil
}

func (s *tutorService) Search(ctx context.Context, query string, filters repositories.TutorFilters) (*TutorListResponse, error) {
	tutors, total, err := s.repo.Tutor().Search(ctx, s.db, query, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search tutors: %w", err)
	}
	return s.toListResponse(tutors, total, filters), nil
}

func (s *tutorService) GetByUserID(ctx context.Context, userID string) (*TutorResponse, error) {
	tutor, err := s.repo.Tutor().GetByUserID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTutorNotFound
		}
		return nil, fmt.Errorf("failed to get tutor: %w", err)
	}
	return &TutorResponse{Tutor: tutor}, nil
}

// UpdateProfile lets a tutor edit their own public profile
func (s *tutorService) UpdateProfile(ctx context.Context, userID string, req *UpdateTutorRequest) (*TutorResponse, error) {
	s.logger.Info("Updating tutor profile", "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tutor, err := s.repo.Tutor().GetByUserID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTutorNotFound
		}
		return nil, fmt.Errorf("failed to get tutor: %w", err)
	}

	if req.DisplayName != nil {
		tutor.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		tutor.Bio = *req.Bio
	}
	if req.HourlyRate != nil {
		tutor.HourlyRate = *req.HourlyRate
	}
	if req.Subjects != nil {
		subjects, err := jsonFromStrings(req.Subjects)
		if err != nil {
			return nil, err
		}
		tutor.Subjects = subjects
	}
	if req.Packages != nil {
		packages, err := jsonFromStrings(req.Packages)
		if err != nil {
			return nil, err
		}
		tutor.Packages = packages
	}

	if err := s.repo.Tutor().Update(ctx, s.db, tutor); err != nil {
		return nil, fmt.Errorf("failed to update tutor: %w", err)
	}

	return &TutorResponse{Tutor: tutor}, nil
}

func (s *tutorService) toListResponse(tutors []*models.Tutor, total int64, filters repositories.TutorFilters) *TutorListResponse {
	responses := make([]*TutorResponse, 0, len(tutors))
	for _, t := range tutors {
		responses = append(responses, &TutorResponse{Tutor: t})
	}
	return &TutorListResponse{
		Tutors: responses,
		Total:  total,
		Page:   pageFromOffset(filters.Offset, filters.Limit),
		Size:   len(responses),
	}
}
