package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/events"
	"github.com/TutorNG-2025/marketplace-service/internal/gateway/paystack"
	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

// webhookChargeSuccess is the only gateway event that moves money state.
const webhookChargeSuccess = "charge.success"

type paymentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	gateway   *paystack.Client
	publisher events.EventPublisher
}

func NewPaymentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, gateway *paystack.Client, publisher events.EventPublisher) PaymentService {
	return &paymentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		gateway:   gateway,
		publisher: publisher,
	}
}

// ===== INITIALIZATION =====

// InitializeApplicationPayment starts a checkout for the application fee.
// The client-generated reference is stored on the application so the webhook
// can find its target.
func (s *paymentService) InitializeApplicationPayment(ctx context.Context, userID, email string) (*PaymentInitResponse, error) {
	s.logger.Info("Initializing application payment", "user_id", userID)

	application, err := s.repo.Application().GetByUserID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if application.Status != models.ApplicationPendingPayment {
		return nil, ErrApplicationNotPayable
	}

	reference := uuid.NewString()
	initResp, err := s.gateway.Initialize(ctx, &paystack.InitializeRequest{
		Email:     email,
		Amount:    application.PaymentAmount,
		Reference: reference,
		Metadata: map[string]string{
			"purpose":        string(models.PaymentForApplication),
			"application_id": fmt.Sprintf("%d", application.ID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}

	pending := models.PaymentPending
	application.PaymentReference = &reference
	application.PaymentStatus = &pending
	if err := s.repo.Application().Update(ctx, s.db, application); err != nil {
		return nil, fmt.Errorf("failed to store payment reference: %w", err)
	}

	return &PaymentInitResponse{
		Reference:        reference,
		AuthorizationURL: initResp.AuthorizationURL,
		AccessCode:       initResp.AccessCode,
		Amount:           application.PaymentAmount,
		Currency:         "NGN",
	}, nil
}

// InitializeBookingPayment starts a checkout for a pending booking's amount
func (s *paymentService) InitializeBookingPayment(ctx context.Context, bookingID uint, userID, email string) (*PaymentInitResponse, error) {
	s.logger.Info("Initializing booking payment", "booking_id", bookingID, "user_id", userID)

	booking, err := s.repo.Booking().GetByID(ctx, s.db, bookingID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking.StudentID != userID {
		return nil, NewPermissionError(userID, "pay for", "booking")
	}
	if booking.Status != models.BookingPending || booking.PaidAt != nil {
		return nil, ErrBookingNotPayable
	}

	reference := uuid.NewString()
	initResp, err := s.gateway.Initialize(ctx, &paystack.InitializeRequest{
		Email:     email,
		Amount:    booking.Amount,
		Reference: reference,
		Metadata: map[string]string{
			"purpose":    string(models.PaymentForBooking),
			"booking_id": fmt.Sprintf("%d", booking.ID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}

	booking.PaymentReference = &reference
	if err := s.repo.Booking().Update(ctx, s.db, booking); err != nil {
		return nil, fmt.Errorf("failed to store payment reference: %w", err)
	}

	return &PaymentInitResponse{
		Reference:        reference,
		AuthorizationURL: initResp.AuthorizationURL,
		AccessCode:       initResp.AccessCode,
		Amount:           booking.Amount,
		Currency:         "NGN",
	}, nil
}

// ===== COMPLETION =====

// HandleWebhook processes a gateway delivery. The signature covers the raw
// body; only charge.success moves any state, and reconciliation is
// idempotent under duplicate delivery.
func (s *paymentService) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	if !s.gateway.VerifySignature(body, signature) {
		return ErrPaymentInvalidSignature
	}

	var event paystack.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	if event.Event != webhookChargeSuccess {
		s.logger.Debug("Ignoring webhook event", "event", event.Event)
		return nil
	}
	if event.Data.Status != paystack.StatusSuccess {
		s.logger.Debug("Ignoring non-success charge", "reference", event.Data.Reference, "status", event.Data.Status)
		return nil
	}

	return s.reconcile(ctx, &event.Data)
}

// VerifyPayment is the client-initiated fallback: ask the gateway for the
// authoritative state and reconcile on success.
func (s *paymentService) VerifyPayment(ctx context.Context, reference, userID string) (*PaymentStatusResponse, error) {
	s.logger.Info("Verifying payment", "reference", reference, "user_id", userID)

	txn, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentVerifyFailed, err)
	}

	if txn.Status != paystack.StatusSuccess {
		return &PaymentStatusResponse{
			Reference: reference,
			Status:    models.PaymentPending,
		}, nil
	}

	if err := s.reconcile(ctx, txn); err != nil {
		return nil, err
	}

	payment, err := s.repo.Payment().GetByReference(ctx, s.db, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	return &PaymentStatusResponse{
		Reference: payment.Reference,
		Status:    payment.Status,
		Purpose:   payment.Purpose,
		PaidAt:    payment.PaidAt,
	}, nil
}

// reconcile records a successful gateway transaction exactly once and flips
// the target entity. The payment insert and target update share one
// transaction; the unique reference index turns duplicate deliveries into a
// clean no-op.
func (s *paymentService) reconcile(ctx context.Context, txn *paystack.Transaction) error {
	var (
		application *models.TutorApplication
		booking     *models.Booking
	)

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exists, err := txRepo.Payment().ExistsByReference(ctx, nil, txn.Reference)
		if err != nil {
			return fmt.Errorf("failed to check payment: %w", err)
		}
		if exists {
			return nil // Already reconciled
		}

		paidAt := txn.PaidAt
		if paidAt == nil {
			now := time.Now()
			paidAt = &now
		}

		payment := &models.Payment{
			Purpose:   models.PaymentPurpose(txn.Metadata["purpose"]),
			Amount:    txn.Amount,
			Currency:  txn.Currency,
			Reference: txn.Reference,
			Channel:   &txn.Channel,
			Status:    models.PaymentCompleted,
			PaidAt:    paidAt,
		}
		gatewayRef := fmt.Sprintf("%d", txn.ID)
		payment.GatewayReference = &gatewayRef

		switch payment.Purpose {
		case models.PaymentForApplication:
			app, err := txRepo.Application().GetByPaymentReference(ctx, nil, txn.Reference)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return ErrApplicationNotFound
				}
				return fmt.Errorf("failed to find application for payment: %w", err)
			}

			payment.UserID = app.UserID
			payment.ApplicationID = &app.ID

			if app.Status == models.ApplicationPendingPayment {
				now := time.Now()
				completed := models.PaymentCompleted
				app.Status = models.ApplicationPendingReview
				app.PaymentStatus = &completed
				app.SubmittedAt = &now
				if err := txRepo.Application().Update(ctx, nil, app); err != nil {
					return fmt.Errorf("failed to update application: %w", err)
				}
			}
			application = app

		case models.PaymentForBooking:
			b, err := txRepo.Booking().GetByPaymentReference(ctx, nil, txn.Reference)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return ErrBookingNotFound
				}
				return fmt.Errorf("failed to find booking for payment: %w", err)
			}

			payment.UserID = b.StudentID
			payment.BookingID = &b.ID

			if b.PaidAt == nil {
				b.PaidAt = paidAt
				if err := txRepo.Booking().Update(ctx, nil, b); err != nil {
					return fmt.Errorf("failed to update booking: %w", err)
				}
			}
			booking = b

		default:
			return fmt.Errorf("unknown payment purpose %q for reference %s", txn.Metadata["purpose"], txn.Reference)
		}

		if err := txRepo.Payment().Create(ctx, nil, payment); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return nil // Lost the race to a concurrent delivery
			}
			return fmt.Errorf("failed to record payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Post-commit side effects
	if application != nil {
		if err := s.repo.User().UpdateTutorStatus(ctx, application.UserID, models.TutorStatusPendingReview); err != nil {
			s.logger.Warn("Failed to update tutor status after payment",
				"user_id", application.UserID, "error", err)
		}
		s.publishPaymentEvent(ctx, events.EventApplicationPaid, application.UserID, txn)
	}
	if booking != nil {
		s.publishPaymentEvent(ctx, events.EventPaymentCompleted, booking.StudentID, txn)
	}

	return nil
}

// ===== READS =====

func (s *paymentService) GetByReference(ctx context.Context, reference, actorID string, actorRole models.UserRole) (*models.Payment, error) {
	payment, err := s.repo.Payment().GetByReference(ctx, s.db, reference)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if actorRole != models.RoleAdmin && payment.UserID != actorID {
		return nil, NewPermissionError(actorID, "view", "payment")
	}

	return payment, nil
}

func (s *paymentService) ListMine(ctx context.Context, userID string, filters repositories.PaymentFilters) ([]*models.Payment, int64, error) {
	return s.repo.Payment().GetByUser(ctx, s.db, userID, filters)
}

func (s *paymentService) List(ctx context.Context, filters repositories.PaymentFilters) ([]*models.Payment, int64, error) {
	return s.repo.Payment().List(ctx, s.db, filters)
}

func (s *paymentService) publishPaymentEvent(ctx context.Context, name, userID string, txn *paystack.Transaction) {
	event := &events.Event{
		Name:     name,
		UserID:   userID,
		EntityID: txn.Reference,
		Status:   string(models.PaymentCompleted),
		Metadata: map[string]string{"amount": fmt.Sprintf("%d", txn.Amount)},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish payment event",
			"event", name, "reference", txn.Reference, "error", err)
	}
}
