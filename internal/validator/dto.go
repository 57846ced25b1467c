package validator

import "time"

// Request DTOs shared with the services layer.

type PersonalInfoRequest struct {
	FirstName   string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName    string  `json:"last_name" validate:"required,min=1,max=100"`
	Phone       string  `json:"phone" validate:"required,min=7,max=30"`
	Address     string  `json:"address" validate:"max=500"`
	State       string  `json:"state" validate:"max=100"`
	DateOfBirth *string `json:"date_of_birth"`
}

type NYSCInfoRequest struct {
	CallUpNumber string  `json:"call_up_number" validate:"max=50"`
	StateCode    string  `json:"state_code" validate:"max=20"`
	Batch        string  `json:"batch" validate:"max=20"`
	ServiceYear  *int    `json:"service_year" validate:"omitempty,nysc_year"`
	PPA          *string `json:"ppa" validate:"omitempty,max=255"`
}

type EducationRequest struct {
	Institution    string `json:"institution" validate:"required,max=255"`
	Degree         string `json:"degree" validate:"required,max=100"`
	FieldOfStudy   string `json:"field_of_study" validate:"max=255"`
	GraduationYear int    `json:"graduation_year" validate:"omitempty,min=1980,max=2100"`
	Qualification  string `json:"qualification" validate:"max=255"`
}

type TeachingRequest struct {
	Subjects   []string `json:"subjects" validate:"required,min=1,max=10,dive,required,max=100"`
	Packages   []string `json:"packages" validate:"omitempty,max=10,dive,max=100"`
	HourlyRate int64    `json:"hourly_rate" validate:"required,min=1"`
	Bio        string   `json:"bio" validate:"max=2000"`
}

type DocumentRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Type string `json:"type" validate:"required,oneof=cv certificate nysc_id government_id other"`
	URL  string `json:"url" validate:"required,url,max=500"`
}

type ApplicationSubmitRequest struct {
	Personal  PersonalInfoRequest `json:"personal" validate:"required"`
	NYSC      NYSCInfoRequest     `json:"nysc"`
	Education EducationRequest    `json:"education" validate:"required"`
	Teaching  TeachingRequest     `json:"teaching" validate:"required"`
	Documents []DocumentRequest   `json:"documents" validate:"required,min=1,max=10,dive"`
}

// ApplicationResubmitRequest carries the sections an applicant may revise
// after a pending_revision decision. Nil sections are left untouched.
type ApplicationResubmitRequest struct {
	Personal  *PersonalInfoRequest `json:"personal"`
	Education *EducationRequest    `json:"education"`
	Teaching  *TeachingRequest     `json:"teaching"`
	Documents []DocumentRequest    `json:"documents" validate:"omitempty,max=10,dive"`
}

type BookingCreateRequest struct {
	TutorID         string    `json:"tutor_id" validate:"required"`
	Subject         string    `json:"subject" validate:"required,max=100"`
	SessionAt       time.Time `json:"session_at" validate:"required,future_session"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=30,max=480"`
}

type ReviewCreateRequest struct {
	BookingID uint   `json:"booking_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

type TutorUpdateRequest struct {
	DisplayName *string  `json:"display_name" validate:"omitempty,min=1,max=200"`
	Bio         *string  `json:"bio" validate:"omitempty,max=2000"`
	HourlyRate  *int64   `json:"hourly_rate" validate:"omitempty,min=1"`
	Subjects    []string `json:"subjects" validate:"omitempty,min=1,max=10,dive,required,max=100"`
	Packages    []string `json:"packages" validate:"omitempty,max=10,dive,max=100"`
}
