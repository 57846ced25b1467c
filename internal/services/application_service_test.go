package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/events"
	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

// In-memory fakes for the review decision flows. Only the methods the
// decision paths touch are implemented; anything else panics through the
// embedded nil interface.

type fakeApplicationRepo struct {
	repositories.ApplicationRepository
	app *models.TutorApplication
}

func (f *fakeApplicationRepo) GetByIDForUpdate(_ context.Context, _ *gorm.DB, id uint) (*models.TutorApplication, error) {
	if f.app == nil || f.app.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.app, nil
}

func (f *fakeApplicationRepo) Update(_ context.Context, _ *gorm.DB, app *models.TutorApplication) error {
	f.app = app
	return nil
}

type fakeTutorRepo struct {
	repositories.TutorRepository
	existing bool
	created  *models.Tutor
}

func (f *fakeTutorRepo) ExistsByUserID(_ context.Context, _ *gorm.DB, _ string) (bool, error) {
	return f.existing, nil
}

func (f *fakeTutorRepo) Create(_ context.Context, _ *gorm.DB, tutor *models.Tutor) error {
	f.created = tutor
	return nil
}

type fakeUserRepo struct {
	repositories.UserRepository
	role        *models.UserRole
	tutorStatus *models.TutorStatus
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, _ string, role models.UserRole) error {
	f.role = &role
	return nil
}

func (f *fakeUserRepo) UpdateTutorStatus(_ context.Context, _ string, status models.TutorStatus) error {
	f.tutorStatus = &status
	return nil
}

type fakeRepository struct {
	stubRepository
	applications *fakeApplicationRepo
	tutors       *fakeTutorRepo
	users        *fakeUserRepo
}

func (f *fakeRepository) Application() repositories.ApplicationRepository { return f.applications }
func (f *fakeRepository) Tutor() repositories.TutorRepository             { return f.tutors }
func (f *fakeRepository) User() repositories.UserRepository               { return f.users }

func (f *fakeRepository) WithTransaction(_ context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func newReviewFixture(t *testing.T, status models.ApplicationStatus) (*fakeRepository, *events.MockEventPublisher, ApplicationService) {
	t.Helper()

	app, err := buildApplication(submitRequestFixture(), "user-1", 500000)
	if err != nil {
		t.Fatalf("buildApplication() error: %v", err)
	}
	app.ID = 7
	app.Status = status

	repo := &fakeRepository{
		applications: &fakeApplicationRepo{app: app},
		tutors:       &fakeTutorRepo{},
		users:        &fakeUserRepo{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(logger)
	svc := NewApplicationService(repo, nil, logger, validator.New(), publisher, 500000, 3)
	return repo, publisher, svc
}

func TestApproveRecordsReviewerNotes(t *testing.T) {
	repo, publisher, svc := newReviewFixture(t, models.ApplicationPendingReview)

	resp, err := svc.Approve(context.Background(), 7, "admin-1", &ReviewDecisionRequest{
		Notes: []string{"welcome aboard"},
	})
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}

	if resp.Status != models.ApplicationApproved {
		t.Errorf("expected approved status, got %s", resp.Status)
	}

	var notes []reviewerNote
	if err := json.Unmarshal(resp.ReviewerNotes, &notes); err != nil {
		t.Fatalf("reviewer_notes is not valid JSON: %v", err)
	}
	if len(notes) != 1 || notes[0].Note != "welcome aboard" || notes[0].ReviewerID != "admin-1" {
		t.Errorf("unexpected reviewer notes %+v", notes)
	}

	if repo.tutors.created == nil {
		t.Fatal("expected a tutor profile to be created")
	}
	if repo.tutors.created.UserID != "user-1" {
		t.Errorf("tutor profile keyed by %q, want user-1", repo.tutors.created.UserID)
	}
	if repo.tutors.created.DisplayName != "Ada Obi" {
		t.Errorf("unexpected display name %q", repo.tutors.created.DisplayName)
	}

	if repo.users.role == nil || *repo.users.role != models.RoleTutor {
		t.Errorf("expected applicant promoted to tutor, got %v", repo.users.role)
	}
	if repo.users.tutorStatus == nil || *repo.users.tutorStatus != models.TutorStatusApproved {
		t.Errorf("expected tutor status approved, got %v", repo.users.tutorStatus)
	}

	published := publisher.Published()
	if len(published) != 1 || published[0].Name != events.EventApplicationApproved {
		t.Errorf("unexpected events %+v", published)
	}
}

func TestApproveWithoutNotesLeavesRecordClean(t *testing.T) {
	repo, _, svc := newReviewFixture(t, models.ApplicationPendingReview)

	// The handler always binds a body, an empty one must not touch the notes
	resp, err := svc.Approve(context.Background(), 7, "admin-1", &ReviewDecisionRequest{})
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}
	if resp.Status != models.ApplicationApproved {
		t.Errorf("expected approved status, got %s", resp.Status)
	}
	if len(resp.ReviewerNotes) > 0 {
		t.Errorf("expected no reviewer notes, got %s", resp.ReviewerNotes)
	}
	if repo.tutors.created == nil {
		t.Error("expected a tutor profile to be created")
	}
}

func TestApproveSkipsExistingTutorProfile(t *testing.T) {
	repo, _, svc := newReviewFixture(t, models.ApplicationPendingReview)
	repo.tutors.existing = true

	if _, err := svc.Approve(context.Background(), 7, "admin-1", nil); err != nil {
		t.Fatalf("Approve() error: %v", err)
	}
	if repo.tutors.created != nil {
		t.Error("tutor profile must not be created twice for the same user")
	}
}

func TestApproveRejectsWrongStatus(t *testing.T) {
	_, _, svc := newReviewFixture(t, models.ApplicationPendingPayment)

	if _, err := svc.Approve(context.Background(), 7, "admin-1", nil); err != ErrApplicationNotReviewable {
		t.Errorf("expected ErrApplicationNotReviewable, got %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	repo, _, svc := newReviewFixture(t, models.ApplicationPendingReview)

	if _, err := svc.Reject(context.Background(), 7, "admin-1", &ReviewDecisionRequest{}); err != ErrReviewReasonRequired {
		t.Errorf("expected ErrReviewReasonRequired, got %v", err)
	}
	if repo.applications.app.Status != models.ApplicationPendingReview {
		t.Errorf("status must be unchanged, got %s", repo.applications.app.Status)
	}
}

func TestRejectStoresReason(t *testing.T) {
	repo, publisher, svc := newReviewFixture(t, models.ApplicationPendingReview)

	resp, err := svc.Reject(context.Background(), 7, "admin-1", &ReviewDecisionRequest{
		Reason: "Certificate could not be verified",
	})
	if err != nil {
		t.Fatalf("Reject() error: %v", err)
	}
	if resp.Status != models.ApplicationRejected {
		t.Errorf("expected rejected status, got %s", resp.Status)
	}
	if resp.RejectReason == nil || *resp.RejectReason != "Certificate could not be verified" {
		t.Errorf("unexpected reject reason %v", resp.RejectReason)
	}
	if repo.users.tutorStatus == nil || *repo.users.tutorStatus != models.TutorStatusRejected {
		t.Errorf("expected tutor status rejected, got %v", repo.users.tutorStatus)
	}

	published := publisher.Published()
	if len(published) != 1 || published[0].Name != events.EventApplicationRejected {
		t.Errorf("unexpected events %+v", published)
	}
}
