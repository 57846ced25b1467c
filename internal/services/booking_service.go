package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/events"
	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

type bookingService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	cooldown time.Duration
}

func NewBookingService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, cooldown time.Duration) BookingService {
	return &bookingService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		cooldown:  cooldown,
	}
}

// ===== CREATION =====

// Create admits a new booking for a (student, tutor) pair. The admission
// check runs inside a transaction with the pair row locked; the unique
// pair_key index backstops any race the lock misses.
func (s *bookingService) Create(ctx context.Context, req *CreateBookingRequest, studentID string) (*BookingResponse, error) {
	s.logger.Info("Creating booking", "student_id", studentID, "tutor_id", req.TutorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if studentID == req.TutorID {
		return nil, NewBusinessRuleError("self_booking", "tutors cannot book themselves", ErrForbidden)
	}

	tutor, err := s.repo.Tutor().GetByUserID(ctx, s.db, req.TutorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTutorNotFound
		}
		return nil, fmt.Errorf("failed to get tutor: %w", err)
	}

	var booking *models.Booking
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		blocking, err := txRepo.Booking().GetBlockingForPair(ctx, nil, studentID, req.TutorID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check existing booking: %w", err)
		}

		lastCancelled, err := txRepo.Booking().GetLastCancelledForPair(ctx, nil, studentID, req.TutorID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check cancelled bookings: %w", err)
		}

		if err := evaluateAdmission(blocking, lastCancelled, time.Now(), s.cooldown); err != nil {
			return err
		}

		booking = buildBooking(req, studentID, tutor)
		if err := txRepo.Booking().Create(ctx, nil, booking); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrBookingAlreadyExists
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, events.EventBookingCreated, booking)

	return s.toResponse(booking, studentID), nil
}

// ===== READS =====

func (s *bookingService) GetByID(ctx context.Context, id uint, actorID string, actorRole models.UserRole) (*BookingResponse, error) {
	booking, err := s.repo.Booking().GetByIDWithDetails(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if actorRole != models.RoleAdmin && booking.StudentID != actorID && booking.TutorID != actorID {
		return nil, NewPermissionError(actorID, "view", "booking")
	}

	return s.toResponse(booking, actorID), nil
}

func (s *bookingService) GetByStudent(ctx context.Context, studentID string, filters repositories.BookingFilters) (*BookingListResponse, error) {
	bookings, total, err := s.repo.Booking().GetByStudent(ctx, s.db, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return s.toListResponse(bookings, total, filters, studentID), nil
}

func (s *bookingService) GetByTutor(ctx context.Context, tutorID string, filters repositories.BookingFilters) (*BookingListResponse, error) {
	bookings, total, err := s.repo.Booking().GetByTutor(ctx, s.db, tutorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return s.toListResponse(bookings, total, filters, tutorID), nil
}

func (s *bookingService) List(ctx context.Context, filters repositories.BookingFilters) (*BookingListResponse, error) {
	bookings, total, err := s.repo.Booking().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return s.toListResponse(bookings, total, filters, ""), nil
}

// ===== LIFECYCLE TRANSITIONS =====

func (s *bookingService) Confirm(ctx context.Context, id uint, tutorID string) (*BookingResponse, error) {
	return s.transition(ctx, id, models.BookingConfirmed, events.EventBookingConfirmed, func(b *models.Booking) error {
		if b.TutorID != tutorID {
			return NewPermissionError(tutorID, "confirm", "booking")
		}
		return nil
	})
}

func (s *bookingService) Start(ctx context.Context, id uint, tutorID string) (*BookingResponse, error) {
	return s.transition(ctx, id, models.BookingActive, "", func(b *models.Booking) error {
		if b.TutorID != tutorID {
			return NewPermissionError(tutorID, "start", "booking")
		}
		return nil
	})
}

// Complete finishes an active session. Clears the pair slot and bumps the
// tutor's session counter in the same transaction.
func (s *bookingService) Complete(ctx context.Context, id uint, tutorID string) (*BookingResponse, error) {
	return s.transition(ctx, id, models.BookingCompleted, events.EventBookingCompleted, func(b *models.Booking) error {
		if b.TutorID != tutorID {
			return NewPermissionError(tutorID, "complete", "booking")
		}
		return nil
	})
}

// Cancel ends a booking from any non-terminal state, freeing the pair slot.
// The cancellation timestamp starts the rebooking cooldown.
func (s *bookingService) Cancel(ctx context.Context, id uint, actorID string, actorRole models.UserRole, reason string) (*BookingResponse, error) {
	return s.transition(ctx, id, models.BookingCancelled, events.EventBookingCancelled, func(b *models.Booking) error {
		if actorRole != models.RoleAdmin && b.StudentID != actorID && b.TutorID != actorID {
			return NewPermissionError(actorID, "cancel", "booking")
		}
		now := time.Now()
		b.CancelReason = &reason
		b.CancelledBy = &actorID
		b.CancelledAt = &now
		return nil
	})
}

// transition applies a status change under a row lock. The mutate callback
// runs after the lock is taken and may set transition-specific fields.
func (s *bookingService) transition(ctx context.Context, id uint, target models.BookingStatus, eventName string, mutate func(*models.Booking) error) (*BookingResponse, error) {
	var booking *models.Booking
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		b, err := txRepo.Booking().GetByIDForUpdate(ctx, nil, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if err := mutate(b); err != nil {
			return err
		}

		if !b.Status.CanTransitionTo(target) {
			if target == models.BookingCancelled {
				return ErrBookingNotCancelable
			}
			return ErrInvalidStatusTransition
		}
		b.Status = target

		if target == models.BookingCompleted {
			now := time.Now()
			b.CompletedAt = &now
		}
		// Terminal states free the pair slot for future bookings
		if !target.Blocks() {
			b.PairKey = nil
		}

		if err := txRepo.Booking().Update(ctx, nil, b); err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}

		if target == models.BookingCompleted {
			if err := txRepo.Tutor().IncrementSessions(ctx, nil, b.TutorID); err != nil {
				return fmt.Errorf("failed to increment tutor sessions: %w", err)
			}
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if eventName != "" {
		s.publishBookingEvent(ctx, eventName, booking)
	}

	return s.toResponse(booking, ""), nil
}

// ===== HELPERS =====

func (s *bookingService) toResponse(b *models.Booking, actorID string) *BookingResponse {
	return &BookingResponse{
		Booking:     b,
		CanConfirm:  b.Status == models.BookingPending,
		CanCancel:   !b.Status.IsTerminal(),
		CanComplete: b.Status == models.BookingActive,
		CanReview:   b.Status == models.BookingCompleted && actorID == b.StudentID,
	}
}

func (s *bookingService) toListResponse(bookings []*models.Booking, total int64, filters repositories.BookingFilters, actorID string) *BookingListResponse {
	responses := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, s.toResponse(b, actorID))
	}
	return &BookingListResponse{
		Bookings: responses,
		Total:    total,
		Page:     pageFromOffset(filters.Offset, filters.Limit),
		Size:     len(responses),
	}
}

func (s *bookingService) publishBookingEvent(ctx context.Context, name string, b *models.Booking) {
	event := &events.Event{
		Name:     name,
		UserID:   b.StudentID,
		EntityID: fmt.Sprintf("%d", b.ID),
		Status:   string(b.Status),
		Metadata: map[string]string{"tutor_id": b.TutorID},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish booking event",
			"event", name, "booking_id", b.ID, "error", err)
	}
}
