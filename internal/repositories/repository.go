package repositories

import "context"

// Repository aggregates all entity repositories behind one handle.
type Repository interface {
	// Application domain
	Application() ApplicationRepository
	Tutor() TutorRepository

	// Booking domain
	Booking() BookingRepository
	Review() ReviewRepository

	// Payment domain
	Payment() PaymentRepository

	// User domain (backed by the identity provider, read-mostly)
	User() UserRepository

	// Dashboard domain
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
