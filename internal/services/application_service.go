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

type applicationService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	applicationFee int64
	reviewSLA      time.Duration
}

func NewApplicationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, applicationFee int64, reviewSLADays int) ApplicationService {
	return &applicationService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		publisher:      publisher,
		applicationFee: applicationFee,
		reviewSLA:      time.Duration(reviewSLADays) * 24 * time.Hour,
	}
}

// ===== APPLICANT OPERATIONS =====

func (s *applicationService) Submit(ctx context.Context, req *SubmitApplicationRequest, userID string) (*ApplicationResponse, error) {
	s.logger.Info("Submitting tutor application", "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	exists, err := s.repo.Application().ExistsByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if exists {
		return nil, ErrApplicationAlreadyExists
	}

	application, err := buildApplication(req, userID, s.applicationFee)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Application().Create(ctx, s.db, application); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrApplicationAlreadyExists
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.publishApplicationEvent(ctx, events.EventApplicationSubmitted, application)

	// The applicant enters the pipeline as soon as the form is in
	if err := s.repo.User().UpdateRole(ctx, userID, models.RoleTutorApplicant); err != nil {
		s.logger.Warn("Failed to update applicant role", "user_id", userID, "error", err)
	}
	if err := s.repo.User().UpdateTutorStatus(ctx, userID, models.TutorStatusPendingPayment); err != nil {
		s.logger.Warn("Failed to update tutor status", "user_id", userID, "error", err)
	}

	return s.toResponse(application), nil
}

func (s *applicationService) Resubmit(ctx context.Context, req *ResubmitApplicationRequest, userID string) (*ApplicationResponse, error) {
	s.logger.Info("Resubmitting tutor application", "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var application *models.TutorApplication
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		app, err := txRepo.Application().GetByUserID(ctx, nil, userID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrApplicationNotFound
			}
			return fmt.Errorf("failed to get application: %w", err)
		}

		if app.Status != models.ApplicationPendingRevision {
			return ErrApplicationNotRevisable
		}

		if err := applyResubmission(app, req); err != nil {
			return err
		}

		if !app.Status.CanTransitionTo(models.ApplicationPendingReview) {
			return ErrInvalidStatusTransition
		}
		now := time.Now()
		app.Status = models.ApplicationPendingReview
		app.SubmittedAt = &now

		if err := txRepo.Application().Update(ctx, nil, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		application = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishApplicationEvent(ctx, events.EventApplicationSubmitted, application)

	if err := s.repo.User().UpdateTutorStatus(ctx, userID, models.TutorStatusPendingReview); err != nil {
		s.logger.Warn("Failed to update tutor status", "user_id", userID, "error", err)
	}

	return s.toResponse(application), nil
}

func (s *applicationService) GetByID(ctx context.Context, id uint, actorID string, actorRole models.UserRole) (*ApplicationResponse, error) {
	application, err := s.repo.Application().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if actorRole != models.RoleAdmin && application.UserID != actorID {
		return nil, NewPermissionError(actorID, "view", "application")
	}

	return s.toResponse(application), nil
}

func (s *applicationService) GetMine(ctx context.Context, userID string) (*ApplicationResponse, error) {
	application, err := s.repo.Application().GetByUserID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return s.toResponse(application), nil
}

func (s *applicationService) List(ctx context.Context, filters repositories.ApplicationFilters) (*ApplicationListResponse, error) {
	applications, total, err := s.repo.Application().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	responses := make([]*ApplicationResponse, 0, len(applications))
	for _, app := range applications {
		responses = append(responses, s.toResponse(app))
	}

	return &ApplicationListResponse{
		Applications: responses,
		Total:        total,
		Page:         pageFromOffset(filters.Offset, filters.Limit),
		Size:         len(responses),
	}, nil
}

func (s *applicationService) Stats(ctx context.Context) (*repositories.ApplicationStats, error) {
	stats, err := s.repo.Application().GetStats(ctx, s.db, time.Now().Add(-s.reviewSLA))
	if err != nil {
		return nil, fmt.Errorf("failed to get application stats: %w", err)
	}
	return stats, nil
}

// ===== ADMIN REVIEW DECISIONS =====

// Approve moves a pending_review application to approved, materializes the
// public tutor profile and flips the applicant's role. The status change,
// reviewer notes and profile insert commit or roll back together. Approving
// an already approved application is a no-op.
func (s *applicationService) Approve(ctx context.Context, id uint, reviewerID string, req *ReviewDecisionRequest) (*ApplicationResponse, error) {
	s.logger.Info("Approving application", "application_id", id, "reviewer_id", reviewerID)

	var application *models.TutorApplication
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		app, err := txRepo.Application().GetByIDForUpdate(ctx, nil, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrApplicationNotFound
			}
			return fmt.Errorf("failed to get application: %w", err)
		}

		if app.Status == models.ApplicationApproved {
			application = app
			return nil
		}
		if app.Status != models.ApplicationPendingReview {
			return ErrApplicationNotReviewable
		}

		now := time.Now()
		app.Status = models.ApplicationApproved
		app.ReviewedBy = &reviewerID
		app.ReviewedAt = &now
		if req != nil && (req.Reason != "" || len(req.Notes) > 0) {
			if err := appendReviewerNotes(app, reviewerID, req, now); err != nil {
				return err
			}
		}

		if err := txRepo.Application().Update(ctx, nil, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		exists, err := txRepo.Tutor().ExistsByUserID(ctx, nil, app.UserID)
		if err != nil {
			return fmt.Errorf("failed to check tutor profile: %w", err)
		}
		if !exists {
			tutor := tutorFromApplication(app, now)
			if err := txRepo.Tutor().Create(ctx, nil, tutor); err != nil {
				// The tutor row is keyed by user ID, a duplicate means a
				// concurrent approval already materialized the profile
				if repositories.IsDuplicateKeyError(err) {
					application = app
					return nil
				}
				return fmt.Errorf("failed to create tutor profile: %w", err)
			}
		}

		application = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Identity provider writes happen after commit, they cannot join the
	// local transaction. A failure here is logged and repaired by the next
	// login sync rather than rolling back the approval.
	if err := s.repo.User().UpdateRole(ctx, application.UserID, models.RoleTutor); err != nil {
		s.logger.Error("Failed to promote applicant to tutor role",
			"user_id", application.UserID, "error", err)
	}
	if err := s.repo.User().UpdateTutorStatus(ctx, application.UserID, models.TutorStatusApproved); err != nil {
		s.logger.Warn("Failed to update tutor status", "user_id", application.UserID, "error", err)
	}

	s.publishApplicationEvent(ctx, events.EventApplicationApproved, application)

	return s.toResponse(application), nil
}

func (s *applicationService) Reject(ctx context.Context, id uint, reviewerID string, req *ReviewDecisionRequest) (*ApplicationResponse, error) {
	s.logger.Info("Rejecting application", "application_id", id, "reviewer_id", reviewerID)

	if verr := s.validator.ValidateReviewDecision("reject", req.Reason); len(verr) > 0 {
		return nil, ErrReviewReasonRequired
	}

	application, err := s.decide(ctx, id, reviewerID, models.ApplicationRejected, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.User().UpdateTutorStatus(ctx, application.UserID, models.TutorStatusRejected); err != nil {
		s.logger.Warn("Failed to update tutor status", "user_id", application.UserID, "error", err)
	}

	s.publishApplicationEvent(ctx, events.EventApplicationRejected, application)

	return s.toResponse(application), nil
}

func (s *applicationService) RequestRevision(ctx context.Context, id uint, reviewerID string, req *ReviewDecisionRequest) (*ApplicationResponse, error) {
	s.logger.Info("Requesting application revision", "application_id", id, "reviewer_id", reviewerID)

	if verr := s.validator.ValidateReviewDecision("request_revision", req.Reason); len(verr) > 0 {
		return nil, ErrReviewReasonRequired
	}

	application, err := s.decide(ctx, id, reviewerID, models.ApplicationPendingRevision, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.User().UpdateTutorStatus(ctx, application.UserID, models.TutorStatusPendingRevision); err != nil {
		s.logger.Warn("Failed to update tutor status", "user_id", application.UserID, "error", err)
	}

	s.publishApplicationEvent(ctx, events.EventApplicationRevision, application)

	return s.toResponse(application), nil
}

// decide applies a reject or request_revision decision inside a transaction
func (s *applicationService) decide(ctx context.Context, id uint, reviewerID string, target models.ApplicationStatus, req *ReviewDecisionRequest) (*models.TutorApplication, error) {
	var application *models.TutorApplication
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		app, err := txRepo.Application().GetByIDForUpdate(ctx, nil, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrApplicationNotFound
			}
			return fmt.Errorf("failed to get application: %w", err)
		}

		if app.Status != models.ApplicationPendingReview {
			return ErrApplicationNotReviewable
		}
		if !app.Status.CanTransitionTo(target) {
			return ErrInvalidStatusTransition
		}

		now := time.Now()
		app.Status = target
		app.ReviewedBy = &reviewerID
		app.ReviewedAt = &now
		if req.Reason != "" {
			app.RejectReason = &req.Reason
		}
		if err := appendReviewerNotes(app, reviewerID, req, now); err != nil {
			return err
		}

		if err := txRepo.Application().Update(ctx, nil, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		application = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	return application, nil
}

// ===== HELPERS =====

func (s *applicationService) toResponse(app *models.TutorApplication) *ApplicationResponse {
	return &ApplicationResponse{
		TutorApplication: app,
		CanPay:           app.Status == models.ApplicationPendingPayment,
		CanResubmit:      app.Status == models.ApplicationPendingRevision,
	}
}

func (s *applicationService) publishApplicationEvent(ctx context.Context, name string, app *models.TutorApplication) {
	event := &events.Event{
		Name:     name,
		UserID:   app.UserID,
		EntityID: fmt.Sprintf("%d", app.ID),
		Status:   string(app.Status),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish application event",
			"event", name, "application_id", app.ID, "error", err)
	}
}
