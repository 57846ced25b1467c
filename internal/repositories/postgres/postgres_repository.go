package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/cache"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories/casdoor"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	application repositories.ApplicationRepository
	tutor       repositories.TutorRepository
	booking     repositories.BookingRepository
	review      repositories.ReviewRepository
	payment     repositories.PaymentRepository
	user        repositories.UserRepository
	dashboard   repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB            *gorm.DB
	RedisClient   *redis.Client
	CasdoorConfig casdoor.CasdoorConfig
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cache.NewCacheManager(config.RedisClient),
	}

	repo.application = NewApplicationPostgreSQL(config.DB, config.RedisClient)
	repo.tutor = NewTutorPostgreSQL(config.DB, config.RedisClient)
	repo.booking = NewBookingPostgreSQL(config.DB)
	repo.review = NewReviewPostgreSQL(config.DB)
	repo.payment = NewPaymentPostgreSQL(config.DB)
	repo.dashboard = NewDashboardPostgreSQL(config.DB, config.RedisClient)

	// User repository uses Casdoor
	repo.user = casdoor.NewUserCasdoor(config.CasdoorConfig, config.RedisClient)

	return repo
}

func (r *PostgreSQLRepository) Application() repositories.ApplicationRepository {
	return r.application
}

func (r *PostgreSQLRepository) Tutor() repositories.TutorRepository {
	return r.tutor
}

func (r *PostgreSQLRepository) Booking() repositories.BookingRepository {
	return r.booking
}

func (r *PostgreSQLRepository) Review() repositories.ReviewRepository {
	return r.review
}

func (r *PostgreSQLRepository) Payment() repositories.PaymentRepository {
	return r.payment
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository {
	return r.dashboard
}

// WithTransaction executes a function within a database transaction. Cache
// evictions issued by writes inside the transaction are queued and run only
// after the commit lands, so a rollback evicts nothing and concurrent
// readers cannot re-fill the cache with pre-commit rows.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	deferred := &deferredInvalidations{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		application := NewApplicationPostgreSQL(tx, r.redisClient).(*ApplicationPostgreSQL)
		application.deferred = deferred
		txRepo.application = application

		tutor := NewTutorPostgreSQL(tx, r.redisClient).(*TutorPostgreSQL)
		tutor.deferred = deferred
		txRepo.tutor = tutor

		txRepo.booking = NewBookingPostgreSQL(tx)
		txRepo.review = NewReviewPostgreSQL(tx)
		txRepo.payment = NewPaymentPostgreSQL(tx)
		txRepo.dashboard = NewDashboardPostgreSQL(tx, r.redisClient)

		// User repository is external, it never joins the transaction
		txRepo.user = r.user

		return fn(txRepo)
	})
	if err != nil {
		return err
	}

	deferred.run(ctx)
	return nil
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown closes all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
