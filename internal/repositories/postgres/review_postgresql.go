package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

type ReviewPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewReviewPostgreSQL(db *gorm.DB) repositories.ReviewRepository {
	return &ReviewPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *ReviewPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts a review. The unique index on booking_id enforces at most
// one review per booking.
func (r *ReviewPostgreSQL) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	if err := r.getDB(tx).WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *ReviewPostgreSQL) GetByTutor(ctx context.Context, tx *gorm.DB, tutorID string, filters repositories.ReviewFilters) ([]*models.Review, int64, error) {
	filters.TutorID = &tutorID
	return r.list(ctx, tx, filters)
}

func (r *ReviewPostgreSQL) list(ctx context.Context, tx *gorm.DB, filters repositories.ReviewFilters) ([]*models.Review, int64, error) {
	var reviews []*models.Review
	var total int64

	query := r.getDB(tx).WithContext(ctx).Model(&models.Review{})
	if filters.TutorID != nil {
		query = query.Where("tutor_id = ?", *filters.TutorID)
	}
	if filters.MinRating != nil {
		query = query.Where("rating >= ?", *filters.MinRating)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Preload("Student").Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, total, nil
}

// GetTutorRatingStats recomputes the rating aggregate from review rows
func (r *ReviewPostgreSQL) GetTutorRatingStats(ctx context.Context, tx *gorm.DB, tutorID string) (*repositories.TutorRatingStats, error) {
	var stats repositories.TutorRatingStats
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Review{}).
		Where("tutor_id = ?", tutorID).
		Select("COALESCE(AVG(rating), 0) as average_rating, COUNT(*) as total_reviews").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get rating stats: %w", err)
	}
	return &stats, nil
}

func (r *ReviewPostgreSQL) ExistsByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Review{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return count > 0, nil
}
