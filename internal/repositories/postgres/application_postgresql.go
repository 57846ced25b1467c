package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TutorNG-2025/marketplace-service/internal/cache"
	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

type ApplicationPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
	deferred     *deferredInvalidations
}

func NewApplicationPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ApplicationRepository {
	return &ApplicationPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (a *ApplicationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// invalidate evicts now, or after commit when the repository is bound to an
// open transaction.
func (a *ApplicationPostgreSQL) invalidate(ctx context.Context, fn func(context.Context)) {
	if a.deferred != nil {
		a.deferred.add(fn)
		return
	}
	fn(ctx)
}

// Create creates a new tutor application and invalidates listing caches
func (a *ApplicationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, application *models.TutorApplication) error {
	if err := a.getDB(tx).WithContext(ctx).Create(application).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	id, userID := application.ID, application.UserID
	a.invalidate(ctx, func(ctx context.Context) {
		cache.InvalidateApplicationCache(ctx, a.cacheManager, id, userID)
	})

	return nil
}

// GetByID retrieves an application by ID with caching
func (a *ApplicationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TutorApplication, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var application models.TutorApplication

	err := a.cacheManager.Application.CacheOrExecute(ctx, cacheKey, &application, cache.ApplicationCacheConfig.TTL, func() (interface{}, error) {
		var dbApplication models.TutorApplication
		err := a.getDB(tx).WithContext(ctx).First(&dbApplication, id).Error
		if err != nil {
			return nil, err
		}
		return &dbApplication, nil
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

// GetByIDForUpdate retrieves an application with a row lock. Bypasses the
// cache because the caller intends to mutate.
func (a *ApplicationPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.TutorApplication, error) {
	var application models.TutorApplication
	err := a.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&application, id).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

// GetByUserID retrieves the application belonging to a user
func (a *ApplicationPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.TutorApplication, error) {
	cacheKey := fmt.Sprintf("user:%s", userID)
	var application models.TutorApplication

	err := a.cacheManager.Application.CacheOrExecute(ctx, cacheKey, &application, cache.ApplicationCacheConfig.TTL, func() (interface{}, error) {
		var dbApplication models.TutorApplication
		err := a.getDB(tx).WithContext(ctx).
			Where("user_id = ?", userID).
			First(&dbApplication).Error
		if err != nil {
			return nil, err
		}
		return &dbApplication, nil
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

// GetByPaymentReference retrieves the application carrying a payment reference.
// Used by webhook reconciliation, so it always hits the database.
func (a *ApplicationPostgreSQL) GetByPaymentReference(ctx context.Context, tx *gorm.DB, reference string) (*models.TutorApplication, error) {
	var application models.TutorApplication
	err := a.getDB(tx).WithContext(ctx).
		Where("payment_reference = ?", reference).
		First(&application).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

// Update saves an application and invalidates its cache entries
func (a *ApplicationPostgreSQL) Update(ctx context.Context, tx *gorm.DB, application *models.TutorApplication) error {
	if err := a.getDB(tx).WithContext(ctx).Save(application).Error; err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	id, userID := application.ID, application.UserID
	a.invalidate(ctx, func(ctx context.Context) {
		cache.InvalidateApplicationCache(ctx, a.cacheManager, id, userID)
	})

	return nil
}

// List retrieves applications matching the filters with total count
func (a *ApplicationPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ApplicationFilters) ([]*models.TutorApplication, int64, error) {
	var applications []*models.TutorApplication
	var total int64

	query := a.getDB(tx).WithContext(ctx).Model(&models.TutorApplication{})
	query = a.helpers.ApplyApplicationFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}

	return applications, total, nil
}

// GetStats computes application counts per status with caching
func (a *ApplicationPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, reviewOverdueBefore time.Time) (*repositories.ApplicationStats, error) {
	cacheKey := fmt.Sprintf("stats:%s", reviewOverdueBefore.Format("2006-01-02T15"))
	var stats repositories.ApplicationStats

	err := a.cacheManager.Application.CacheOrExecute(ctx, cacheKey, &stats, cache.DashboardCacheConfig.TTL, func() (interface{}, error) {
		var rows []struct {
			Status models.ApplicationStatus
			Count  int64
		}
		err := a.getDB(tx).WithContext(ctx).
			Model(&models.TutorApplication{}).
			Select("status, COUNT(*) as count").
			Group("status").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count applications by status: %w", err)
		}

		computed := repositories.ApplicationStats{}
		for _, row := range rows {
			computed.Total += row.Count
			switch row.Status {
			case models.ApplicationPendingPayment:
				computed.PendingPayment = row.Count
			case models.ApplicationPendingReview:
				computed.PendingReview = row.Count
			case models.ApplicationApproved:
				computed.Approved = row.Count
			case models.ApplicationRejected:
				computed.Rejected = row.Count
			case models.ApplicationPendingRevision:
				computed.PendingRevision = row.Count
			}
		}

		err = a.getDB(tx).WithContext(ctx).
			Model(&models.TutorApplication{}).
			Where("status = ? AND submitted_at < ?", models.ApplicationPendingReview, reviewOverdueBefore).
			Count(&computed.OverdueReviews).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count overdue reviews: %w", err)
		}

		return &computed, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// ExistsByUserID checks whether a user already has an application
func (a *ApplicationPostgreSQL) ExistsByUserID(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	var count int64
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.TutorApplication{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check application existence: %w", err)
	}
	return count > 0, nil
}
