package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/cache"
	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

type TutorPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
	deferred     *deferredInvalidations
}

func NewTutorPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TutorRepository {
	return &TutorPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *TutorPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

// invalidate evicts now, or after commit when the repository is bound to an
// open transaction.
func (t *TutorPostgreSQL) invalidate(ctx context.Context, fn func(context.Context)) {
	if t.deferred != nil {
		t.deferred.add(fn)
		return
	}
	fn(ctx)
}

// Create inserts a tutor profile. The primary key is the applicant's user ID,
// so inserting twice for the same user fails on the key.
func (t *TutorPostgreSQL) Create(ctx context.Context, tx *gorm.DB, tutor *models.Tutor) error {
	if err := t.getDB(tx).WithContext(ctx).Create(tutor).Error; err != nil {
		return fmt.Errorf("failed to create tutor: %w", err)
	}
	userID := tutor.UserID
	t.invalidate(ctx, func(ctx context.Context) {
		cache.InvalidateTutorCache(ctx, t.cacheManager, userID)
	})

	return nil
}

// GetByUserID retrieves a tutor profile with caching
func (t *TutorPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Tutor, error) {
	cacheKey := fmt.Sprintf("id:%s", userID)
	var tutor models.Tutor

	err := t.cacheManager.Tutor.CacheOrExecute(ctx, cacheKey, &tutor, cache.TutorCacheConfig.TTL, func() (interface{}, error) {
		var dbTutor models.Tutor
		err := t.getDB(tx).WithContext(ctx).
			Where("user_id = ?", userID).
			First(&dbTutor).Error
		if err != nil {
			return nil, err
		}
		return &dbTutor, nil
	})
	if err != nil {
		return nil, err
	}

	return &tutor, nil
}

// Update saves a tutor profile and invalidates its cache entries
func (t *TutorPostgreSQL) Update(ctx context.Context, tx *gorm.DB, tutor *models.Tutor) error {
	if err := t.getDB(tx).WithContext(ctx).Save(tutor).Error; err != nil {
		return fmt.Errorf("failed to update tutor: %w", err)
	}
	userID := tutor.UserID
	t.invalidate(ctx, func(ctx context.Context) {
		cache.InvalidateTutorCache(ctx, t.cacheManager, userID)
	})

	return nil
}

// tutorPage is the cached shape of one marketplace listing page.
type tutorPage struct {
	Tutors []*models.Tutor `json:"tutors"`
	Total  int64           `json:"total"`
}

// tutorListKey derives a cache key from the filter combination. The json
// encoding of the filters struct is stable, so equal filters hash equal.
func tutorListKey(filters repositories.TutorFilters) string {
	raw, err := json.Marshal(filters)
	if err != nil {
		return "list:default"
	}
	h := fnv.New64a()
	h.Write(raw)
	return fmt.Sprintf("list:%x", h.Sum64())
}

// List retrieves tutors for the public marketplace with total count. Pages
// are cached per filter combination; profile writes evict the list pattern.
func (t *TutorPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TutorFilters) ([]*models.Tutor, int64, error) {
	var page tutorPage

	err := t.cacheManager.Tutor.CacheOrExecute(ctx, tutorListKey(filters), &page, cache.TutorCacheConfig.TTL, func() (interface{}, error) {
		tutors, total, err := t.listFromDB(ctx, tx, filters)
		if err != nil {
			return nil, err
		}
		return &tutorPage{Tutors: tutors, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return page.Tutors, page.Total, nil
}

func (t *TutorPostgreSQL) listFromDB(ctx context.Context, tx *gorm.DB, filters repositories.TutorFilters) ([]*models.Tutor, int64, error) {
	var tutors []*models.Tutor
	var total int64

	query := t.getDB(tx).WithContext(ctx).Model(&models.Tutor{})
	query = t.helpers.ApplyTutorFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tutors: %w", err)
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "rating"
	}
	query = t.helpers.ApplyPaginationAndSort(query, sortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&tutors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tutors: %w", err)
	}

	return tutors, total, nil
}

// Search retrieves tutors matching a free-text query over name, bio and state
func (t *TutorPostgreSQL) Search(ctx context.Context, tx *gorm.DB, searchQuery string, filters repositories.TutorFilters) ([]*models.Tutor, int64, error) {
	var tutors []*models.Tutor
	var total int64

	like := "%" + searchQuery + "%"
	query := t.getDB(tx).WithContext(ctx).
		Model(&models.Tutor{}).
		Where("display_name ILIKE ? OR bio ILIKE ? OR state ILIKE ?", like, like, like)
	query = t.helpers.ApplyTutorFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tutor search results: %w", err)
	}

	query = t.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&tutors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search tutors: %w", err)
	}

	return tutors, total, nil
}

// IncrementSessions bumps the completed session counter
func (t *TutorPostgreSQL) IncrementSessions(ctx context.Context, tx *gorm.DB, userID string) error {
	result := t.getDB(tx).WithContext(ctx).
		Model(&models.Tutor{}).
		Where("user_id = ?", userID).
		UpdateColumn("total_sessions", gorm.Expr("total_sessions + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment sessions: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	t.invalidate(ctx, func(ctx context.Context) {
		cache.InvalidateTutorCache(ctx, t.cacheManager, userID)
		cache.InvalidateDashboardCache(ctx, t.cacheManager, userID)
	})

	return nil
}

// ApplyReview folds a new rating into the denormalized aggregates in one
// statement so concurrent reviews cannot lose updates.
func (t *TutorPostgreSQL) ApplyReview(ctx context.Context, tx *gorm.DB, userID string, rating int) error {
	result := t.getDB(tx).WithContext(ctx).
		Model(&models.Tutor{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"rating":        gorm.Expr("(rating * total_reviews + ?) / (total_reviews + 1)", rating),
			"total_reviews": gorm.Expr("total_reviews + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to apply review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	t.invalidate(ctx, func(ctx context.Context) {
		cache.InvalidateTutorCache(ctx, t.cacheManager, userID)
		cache.InvalidateDashboardCache(ctx, t.cacheManager, userID)
	})

	return nil
}

// ExistsByUserID checks whether a tutor profile exists for the user
func (t *TutorPostgreSQL) ExistsByUserID(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	var count int64
	err := t.getDB(tx).WithContext(ctx).
		Model(&models.Tutor{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check tutor existence: %w", err)
	}
	return count > 0, nil
}
