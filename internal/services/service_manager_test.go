package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/TutorNG-2025/marketplace-service/internal/events"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

// stubRepository satisfies repositories.Repository without touching a
// database. Entity getters return nil; the manager tests never call them.
type stubRepository struct {
	pingErr error
}

func (s *stubRepository) Application() repositories.ApplicationRepository { return nil }
func (s *stubRepository) Tutor() repositories.TutorRepository             { return nil }
func (s *stubRepository) Booking() repositories.BookingRepository         { return nil }
func (s *stubRepository) Review() repositories.ReviewRepository           { return nil }
func (s *stubRepository) Payment() repositories.PaymentRepository         { return nil }
func (s *stubRepository) User() repositories.UserRepository               { return nil }
func (s *stubRepository) Dashboard() repositories.DashboardRepository     { return nil }

func (s *stubRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(s)
}

func (s *stubRepository) Ping(ctx context.Context) error { return s.pingErr }
func (s *stubRepository) Close() error                   { return nil }

func newTestServiceManager(repo repositories.Repository) ServiceManager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServiceManager(nil, repo, logger, validator.New(), nil, events.NewMockEventPublisher(logger), ServiceManagerConfig{
		ApplicationFee:  500000,
		BookingCooldown: 24 * time.Hour,
		ReviewSLADays:   3,
		DefaultTimeout:  5 * time.Second,
	})
}

func TestServiceManagerInitialize(t *testing.T) {
	sm := newTestServiceManager(&stubRepository{})
	ctx := context.Background()

	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	if sm.Application() == nil {
		t.Error("Application() returned nil after initialization")
	}
	if sm.Tutor() == nil {
		t.Error("Tutor() returned nil after initialization")
	}
	if sm.Booking() == nil {
		t.Error("Booking() returned nil after initialization")
	}
	if sm.Review() == nil {
		t.Error("Review() returned nil after initialization")
	}
	if sm.Payment() == nil {
		t.Error("Payment() returned nil after initialization")
	}
	if sm.Dashboard() == nil {
		t.Error("Dashboard() returned nil after initialization")
	}
	if sm.Export() == nil {
		t.Error("Export() returned nil after initialization")
	}

	// Second call is a no-op
	if err := sm.Initialize(ctx); err != nil {
		t.Errorf("repeat Initialize() error: %v", err)
	}

	if err := sm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error: %v", err)
	}
}

func TestServiceManagerHealthCheckBeforeInitialize(t *testing.T) {
	sm := newTestServiceManager(&stubRepository{})

	if err := sm.HealthCheck(context.Background()); err == nil {
		t.Error("expected error from HealthCheck before Initialize")
	}
}

func TestServiceManagerInitializeUnhealthyRepo(t *testing.T) {
	sm := newTestServiceManager(&stubRepository{pingErr: context.DeadlineExceeded})

	if err := sm.Initialize(context.Background()); err == nil {
		t.Error("expected Initialize to fail when the repository ping fails")
	}
}

func TestServiceManagerShutdown(t *testing.T) {
	sm := newTestServiceManager(&stubRepository{})
	ctx := context.Background()

	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if err := sm.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("expected error from HealthCheck after Shutdown")
	}
	// Shutdown is idempotent
	if err := sm.Shutdown(ctx); err != nil {
		t.Errorf("repeat Shutdown() error: %v", err)
	}
}
