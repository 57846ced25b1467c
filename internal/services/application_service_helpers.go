package services

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

// reviewerNote is one entry in the application's reviewer_notes JSON column
type reviewerNote struct {
	ReviewerID string    `json:"reviewer_id"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

func buildApplication(req *SubmitApplicationRequest, userID string, fee int64) (*models.TutorApplication, error) {
	subjects, err := jsonFromStrings(req.Teaching.Subjects)
	if err != nil {
		return nil, err
	}
	packages, err := jsonFromStrings(req.Teaching.Packages)
	if err != nil {
		return nil, err
	}
	documents, err := jsonFromDocuments(req.Documents)
	if err != nil {
		return nil, err
	}

	return &models.TutorApplication{
		UserID: userID,

		FirstName:   req.Personal.FirstName,
		LastName:    req.Personal.LastName,
		Phone:       req.Personal.Phone,
		Address:     req.Personal.Address,
		State:       req.Personal.State,
		DateOfBirth: req.Personal.DateOfBirth,

		NYSCCallUpNumber: req.NYSC.CallUpNumber,
		NYSCStateCode:    req.NYSC.StateCode,
		NYSCBatch:        req.NYSC.Batch,
		NYSCServiceYear:  req.NYSC.ServiceYear,
		PPA:              req.NYSC.PPA,

		Institution:    req.Education.Institution,
		Degree:         req.Education.Degree,
		FieldOfStudy:   req.Education.FieldOfStudy,
		GraduationYear: req.Education.GraduationYear,
		Qualification:  req.Education.Qualification,

		Subjects:   subjects,
		Packages:   packages,
		HourlyRate: req.Teaching.HourlyRate,
		Bio:        req.Teaching.Bio,

		Documents: documents,

		PaymentAmount: fee,
		Status:        models.ApplicationPendingPayment,
	}, nil
}

// applyResubmission copies the revised sections onto the stored application.
// Nil sections keep their previous values.
func applyResubmission(app *models.TutorApplication, req *ResubmitApplicationRequest) error {
	if req.Personal != nil {
		app.FirstName = req.Personal.FirstName
		app.LastName = req.Personal.LastName
		app.Phone = req.Personal.Phone
		app.Address = req.Personal.Address
		app.State = req.Personal.State
		app.DateOfBirth = req.Personal.DateOfBirth
	}
	if req.Education != nil {
		app.Institution = req.Education.Institution
		app.Degree = req.Education.Degree
		app.FieldOfStudy = req.Education.FieldOfStudy
		app.GraduationYear = req.Education.GraduationYear
		app.Qualification = req.Education.Qualification
	}
	if req.Teaching != nil {
		subjects, err := jsonFromStrings(req.Teaching.Subjects)
		if err != nil {
			return err
		}
		packages, err := jsonFromStrings(req.Teaching.Packages)
		if err != nil {
			return err
		}
		app.Subjects = subjects
		app.Packages = packages
		app.HourlyRate = req.Teaching.HourlyRate
		app.Bio = req.Teaching.Bio
	}
	if len(req.Documents) > 0 {
		documents, err := jsonFromDocuments(req.Documents)
		if err != nil {
			return err
		}
		app.Documents = documents
	}
	return nil
}

// tutorFromApplication materializes the public profile from an approved
// application. Keyed by the applicant's user ID.
func tutorFromApplication(app *models.TutorApplication, approvedAt time.Time) *models.Tutor {
	return &models.Tutor{
		UserID:        app.UserID,
		DisplayName:   app.ApplicantName(),
		Qualification: app.Qualification,
		Subjects:      app.Subjects,
		Packages:      app.Packages,
		HourlyRate:    app.HourlyRate,
		Bio:           app.Bio,
		State:         app.State,
		ApplicationID: app.ID,
		ApprovedAt:    approvedAt,
	}
}

// appendReviewerNotes folds the decision reason and any extra notes into the
// reviewer_notes JSON array
func appendReviewerNotes(app *models.TutorApplication, reviewerID string, req *ReviewDecisionRequest, at time.Time) error {
	var notes []reviewerNote
	if len(app.ReviewerNotes) > 0 {
		if err := json.Unmarshal(app.ReviewerNotes, &notes); err != nil {
			return fmt.Errorf("failed to parse reviewer notes: %w", err)
		}
	}

	if req.Reason != "" {
		notes = append(notes, reviewerNote{ReviewerID: reviewerID, Note: req.Reason, CreatedAt: at})
	}
	for _, note := range req.Notes {
		notes = append(notes, reviewerNote{ReviewerID: reviewerID, Note: note, CreatedAt: at})
	}

	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("failed to marshal reviewer notes: %w", err)
	}
	app.ReviewerNotes = datatypes.JSON(data)
	return nil
}

func jsonFromStrings(values []string) (datatypes.JSON, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return datatypes.JSON(data), nil
}

func jsonFromDocuments(docs []validator.DocumentRequest) (datatypes.JSON, error) {
	data, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal documents: %w", err)
	}
	return datatypes.JSON(data), nil
}

// reviewSLACutoff returns the submission time before which a pending review
// counts as overdue.
func reviewSLACutoff(days int) time.Time {
	return time.Now().Add(-time.Duration(days) * 24 * time.Hour)
}

func pageFromOffset(offset, limit int) int {
	if limit <= 0 {
		limit = 20
	}
	return (offset / limit) + 1
}
