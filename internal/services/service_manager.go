package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/events"
	"github.com/TutorNG-2025/marketplace-service/internal/gateway/paystack"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Business settings
	ApplicationFee  int64
	BookingCooldown time.Duration
	ReviewSLADays   int

	// Global settings
	DefaultTimeout time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	gateway   *paystack.Client
	publisher events.EventPublisher
	config    ServiceManagerConfig

	// Service instances
	applicationService ApplicationService
	tutorService       TutorService
	bookingService     BookingService
	reviewService      ReviewService
	paymentService     PaymentService
	dashboardService   DashboardService
	exportService      ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, gateway *paystack.Client, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		gateway:   gateway,
		publisher: publisher,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, gateway *paystack.Client, publisher events.EventPublisher) ServiceManager {
	config := ServiceManagerConfig{
		ApplicationFee:  500000,
		BookingCooldown: 24 * time.Hour,
		ReviewSLADays:   3,
		DefaultTimeout:  30 * time.Second,
	}

	return NewServiceManager(db, repo, logger, validator, gateway, publisher, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.applicationService = NewApplicationService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher, sm.config.ApplicationFee, sm.config.ReviewSLADays)
	sm.tutorService = NewTutorService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.bookingService = NewBookingService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher, sm.config.BookingCooldown)
	sm.reviewService = NewReviewService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.paymentService = NewPaymentService(sm.repo, sm.db, sm.logger, sm.gateway, sm.publisher)
	sm.dashboardService = NewDashboardService(sm.repo, sm.db, sm.logger, sm.config.ReviewSLADays)
	sm.exportService = NewExportService(sm.repo, sm.db, sm.logger)

	if err := sm.validateServicesHealth(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) validateServicesHealth(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, sm.config.DefaultTimeout)
	defer cancel()

	if err := sm.repo.Ping(healthCtx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// ===== SERVICE GETTERS =====

func (sm *serviceManager) Application() ApplicationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.applicationService
}

func (sm *serviceManager) Tutor() TutorService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.tutorService
}

func (sm *serviceManager) Booking() BookingService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.bookingService
}

func (sm *serviceManager) Review() ReviewService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.reviewService
}

func (sm *serviceManager) Payment() PaymentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.paymentService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.dashboardService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.exportService
}

// ===== LIFECYCLE =====

// HealthCheck verifies manager state and repository connectivity
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	return sm.repo.Ping(ctx)
}

// Shutdown releases resources held by the services
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Warn("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	return nil
}
