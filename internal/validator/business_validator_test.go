package validator

import (
	"testing"
	"time"
)

func validSubmitRequest() *ApplicationSubmitRequest {
	return &ApplicationSubmitRequest{
		Personal: PersonalInfoRequest{
			FirstName: "Ada",
			LastName:  "Obi",
			Phone:     "+2348012345678",
			State:     "Lagos",
		},
		Education: EducationRequest{
			Institution: "University of Lagos",
			Degree:      "B.Sc",
		},
		Teaching: TeachingRequest{
			Subjects:   []string{"Mathematics", "Physics"},
			HourlyRate: 250000,
		},
		Documents: []DocumentRequest{
			{Name: "cv.pdf", Type: "cv", URL: "https://storage.example.com/cv.pdf"},
		},
	}
}

func TestValidator_ApplicationSubmit(t *testing.T) {
	v := New()

	t.Run("valid request passes", func(t *testing.T) {
		if err := v.Validate(validSubmitRequest()); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("missing subjects fails", func(t *testing.T) {
		req := validSubmitRequest()
		req.Teaching.Subjects = nil
		if err := v.Validate(req); err == nil {
			t.Error("Validate() expected error for missing subjects")
		}
	})

	t.Run("missing documents fails", func(t *testing.T) {
		req := validSubmitRequest()
		req.Documents = nil
		if err := v.Validate(req); err == nil {
			t.Error("Validate() expected error for missing documents")
		}
	})

	t.Run("unknown document type fails", func(t *testing.T) {
		req := validSubmitRequest()
		req.Documents[0].Type = "selfie"
		if err := v.Validate(req); err == nil {
			t.Error("Validate() expected error for unknown document type")
		}
	})

	t.Run("implausible service year fails", func(t *testing.T) {
		req := validSubmitRequest()
		year := 1960
		req.NYSC.ServiceYear = &year
		if err := v.Validate(req); err == nil {
			t.Error("Validate() expected error for service year before NYSC existed")
		}
	})
}

func TestValidator_BookingCreate(t *testing.T) {
	v := New()

	t.Run("future session passes", func(t *testing.T) {
		req := &BookingCreateRequest{
			TutorID:         "tutor-1",
			Subject:         "Chemistry",
			SessionAt:       time.Now().Add(48 * time.Hour),
			DurationMinutes: 60,
		}
		if err := v.Validate(req); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("past session fails", func(t *testing.T) {
		req := &BookingCreateRequest{
			TutorID:         "tutor-1",
			Subject:         "Chemistry",
			SessionAt:       time.Now().Add(-time.Hour),
			DurationMinutes: 60,
		}
		if err := v.Validate(req); err == nil {
			t.Error("Validate() expected error for past session")
		}
	})

	t.Run("too short session fails", func(t *testing.T) {
		req := &BookingCreateRequest{
			TutorID:         "tutor-1",
			Subject:         "Chemistry",
			SessionAt:       time.Now().Add(48 * time.Hour),
			DurationMinutes: 15,
		}
		if err := v.Validate(req); err == nil {
			t.Error("Validate() expected error for 15 minute session")
		}
	})
}

func TestValidator_ValidateReviewDecision(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		decision string
		reason   string
		wantErr  bool
	}{
		{name: "reject requires reason", decision: "reject", reason: "", wantErr: true},
		{name: "reject with reason passes", decision: "reject", reason: "incomplete documents", wantErr: false},
		{name: "revision requires notes", decision: "request_revision", reason: "", wantErr: true},
		{name: "revision with notes passes", decision: "request_revision", reason: "re-upload NYSC certificate", wantErr: false},
		{name: "approve needs no reason", decision: "approve", reason: "", wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateReviewDecision(tt.decision, tt.reason)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateReviewDecision() = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}
