package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

func submitRequestFixture() *SubmitApplicationRequest {
	year := 2024
	return &SubmitApplicationRequest{
		Personal: validator.PersonalInfoRequest{
			FirstName: "Ada",
			LastName:  "Obi",
			Phone:     "+2348012345678",
			State:     "Lagos",
		},
		NYSC: validator.NYSCInfoRequest{
			CallUpNumber: "NYSC/2024/12345",
			StateCode:    "LA/24A/1234",
			Batch:        "A",
			ServiceYear:  &year,
		},
		Education: validator.EducationRequest{
			Institution:   "University of Lagos",
			Degree:        "B.Sc",
			FieldOfStudy:  "Mathematics",
			Qualification: "B.Sc Mathematics",
		},
		Teaching: validator.TeachingRequest{
			Subjects:   []string{"Mathematics", "Physics"},
			HourlyRate: 500000,
			Bio:        "Patient tutor",
		},
		Documents: []validator.DocumentRequest{
			{Name: "cv.pdf", Type: "cv", URL: "https://files.example.com/cv.pdf"},
		},
	}
}

func TestBuildApplication(t *testing.T) {
	req := submitRequestFixture()

	app, err := buildApplication(req, "user-1", 500000)
	if err != nil {
		t.Fatalf("buildApplication() error: %v", err)
	}

	if app.Status != models.ApplicationPendingPayment {
		t.Errorf("expected pending_payment, got %s", app.Status)
	}
	if app.PaymentAmount != 500000 {
		t.Errorf("expected fee 500000, got %d", app.PaymentAmount)
	}
	if app.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", app.UserID)
	}
	if app.SubmittedAt != nil {
		t.Error("submitted_at should be unset before payment")
	}

	var subjects []string
	if err := json.Unmarshal(app.Subjects, &subjects); err != nil {
		t.Fatalf("subjects column is not valid JSON: %v", err)
	}
	if len(subjects) != 2 || subjects[0] != "Mathematics" {
		t.Errorf("unexpected subjects %v", subjects)
	}

	var docs []validator.DocumentRequest
	if err := json.Unmarshal(app.Documents, &docs); err != nil {
		t.Fatalf("documents column is not valid JSON: %v", err)
	}
	if len(docs) != 1 || docs[0].Type != "cv" {
		t.Errorf("unexpected documents %v", docs)
	}
}

func TestApplyResubmissionPartialUpdate(t *testing.T) {
	req := submitRequestFixture()
	app, err := buildApplication(req, "user-1", 500000)
	if err != nil {
		t.Fatalf("buildApplication() error: %v", err)
	}

	update := &ResubmitApplicationRequest{
		Teaching: &validator.TeachingRequest{
			Subjects:   []string{"Chemistry"},
			HourlyRate: 600000,
			Bio:        "Updated bio",
		},
	}
	if err := applyResubmission(app, update); err != nil {
		t.Fatalf("applyResubmission() error: %v", err)
	}

	if app.HourlyRate != 600000 {
		t.Errorf("expected updated rate, got %d", app.HourlyRate)
	}
	if app.Bio != "Updated bio" {
		t.Errorf("expected updated bio, got %q", app.Bio)
	}
	// Untouched sections keep their values
	if app.FirstName != "Ada" {
		t.Errorf("personal section should be unchanged, got %q", app.FirstName)
	}
	if app.Institution != "University of Lagos" {
		t.Errorf("education section should be unchanged, got %q", app.Institution)
	}

	var docs []validator.DocumentRequest
	if err := json.Unmarshal(app.Documents, &docs); err != nil || len(docs) != 1 {
		t.Errorf("documents should be unchanged, got %v (err %v)", docs, err)
	}
}

func TestTutorFromApplication(t *testing.T) {
	req := submitRequestFixture()
	app, err := buildApplication(req, "user-1", 500000)
	if err != nil {
		t.Fatalf("buildApplication() error: %v", err)
	}
	app.ID = 42

	approvedAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	tutor := tutorFromApplication(app, approvedAt)

	if tutor.UserID != "user-1" {
		t.Errorf("tutor must be keyed by the applicant's user ID, got %s", tutor.UserID)
	}
	if tutor.DisplayName != "Ada Obi" {
		t.Errorf("unexpected display name %q", tutor.DisplayName)
	}
	if tutor.ApplicationID != 42 {
		t.Errorf("expected application link 42, got %d", tutor.ApplicationID)
	}
	if tutor.HourlyRate != 500000 {
		t.Errorf("expected rate 500000, got %d", tutor.HourlyRate)
	}
	if !tutor.ApprovedAt.Equal(approvedAt) {
		t.Errorf("unexpected approved_at %v", tutor.ApprovedAt)
	}
}

func TestAppendReviewerNotes(t *testing.T) {
	app := &models.TutorApplication{}
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	req := &ReviewDecisionRequest{
		Reason: "Certificate is illegible",
		Notes:  []string{"re-upload page 2"},
	}
	if err := appendReviewerNotes(app, "admin-1", req, at); err != nil {
		t.Fatalf("appendReviewerNotes() error: %v", err)
	}

	var notes []reviewerNote
	if err := json.Unmarshal(app.ReviewerNotes, &notes); err != nil {
		t.Fatalf("reviewer_notes is not valid JSON: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].Note != "Certificate is illegible" || notes[0].ReviewerID != "admin-1" {
		t.Errorf("unexpected first note %+v", notes[0])
	}

	// A second decision appends rather than replaces
	second := &ReviewDecisionRequest{Reason: "Still illegible"}
	if err := appendReviewerNotes(app, "admin-2", second, at.Add(time.Hour)); err != nil {
		t.Fatalf("appendReviewerNotes() second call error: %v", err)
	}
	notes = nil
	if err := json.Unmarshal(app.ReviewerNotes, &notes); err != nil {
		t.Fatalf("reviewer_notes is not valid JSON after append: %v", err)
	}
	if len(notes) != 3 {
		t.Errorf("expected 3 notes after append, got %d", len(notes))
	}
}

func TestPageFromOffset(t *testing.T) {
	tests := []struct {
		offset, limit, want int
	}{
		{0, 20, 1},
		{20, 20, 2},
		{45, 20, 3},
		{0, 0, 1},
	}
	for _, tt := range tests {
		if got := pageFromOffset(tt.offset, tt.limit); got != tt.want {
			t.Errorf("pageFromOffset(%d, %d) = %d, want %d", tt.offset, tt.limit, got, tt.want)
		}
	}
}
