package services

import (
	"context"
	"time"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type SubmitApplicationRequest = validator.ApplicationSubmitRequest
type ResubmitApplicationRequest = validator.ApplicationResubmitRequest
type CreateBookingRequest = validator.BookingCreateRequest
type CreateReviewRequest = validator.ReviewCreateRequest
type UpdateTutorRequest = validator.TutorUpdateRequest

type ReviewDecisionRequest struct {
	Reason string   `json:"reason" validate:"omitempty,max=2000"`
	Notes  []string `json:"notes" validate:"omitempty,max=20,dive,max=500"`
}

type ApplicationResponse struct {
	*models.TutorApplication
	CanPay      bool `json:"can_pay"`
	CanResubmit bool `json:"can_resubmit"`
}

type ApplicationListResponse struct {
	Applications []*ApplicationResponse `json:"applications"`
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	Size         int                    `json:"size"`
}

type BookingResponse struct {
	*models.Booking
	CanConfirm  bool `json:"can_confirm"`
	CanCancel   bool `json:"can_cancel"`
	CanComplete bool `json:"can_complete"`
	CanReview   bool `json:"can_review"`
}

type BookingListResponse struct {
	Bookings []*BookingResponse `json:"bookings"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

type TutorResponse struct {
	*models.Tutor
}

type TutorListResponse struct {
	Tutors []*TutorResponse `json:"tutors"`
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
}

type ReviewListResponse struct {
	Reviews []*models.Review `json:"reviews"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

type PaymentInitResponse struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
}

type PaymentStatusResponse struct {
	Reference string                `json:"reference"`
	Status    models.PaymentStatus  `json:"status"`
	Purpose   models.PaymentPurpose `json:"purpose"`
	PaidAt    *time.Time            `json:"paid_at,omitempty"`
}

// ===== DASHBOARD DTOs =====

type TutorDashboardResponse struct {
	Earnings         repositories.TutorEarningsData   `json:"earnings"`
	BookingCounts    map[models.BookingStatus]int64   `json:"booking_counts"`
	EarningsTrend    []repositories.EarningsTrendData `json:"earnings_trend"`
	UpcomingSessions []*BookingResponse               `json:"upcoming_sessions"`
	DistinctStudents int64                            `json:"distinct_students"`
	Rating           float64                          `json:"rating"`
	TotalReviews     int                              `json:"total_reviews"`
}

type StudentDashboardResponse struct {
	BookingCounts    map[models.BookingStatus]int64 `json:"booking_counts"`
	TotalSpend       int64                          `json:"total_spend"`
	DistinctTutors   int64                          `json:"distinct_tutors"`
	UpcomingSessions []*BookingResponse             `json:"upcoming_sessions"`
}

type AdminDashboardResponse struct {
	Applications       repositories.ApplicationStats        `json:"applications"`
	TotalTutors        int64                                `json:"total_tutors"`
	BookingCounts      map[models.BookingStatus]int64       `json:"booking_counts"`
	ApplicationRevenue int64                                `json:"application_revenue"`
	BookingRevenue     int64                                `json:"booking_revenue"`
	RecentApplications []repositories.RecentApplicationData `json:"recent_applications"`
	TopTutors          []repositories.TopTutorData          `json:"top_tutors"`
}

// ===== SERVICE INTERFACES =====

type ApplicationService interface {
	Submit(ctx context.Context, req *SubmitApplicationRequest, userID string) (*ApplicationResponse, error)
	Resubmit(ctx context.Context, req *ResubmitApplicationRequest, userID string) (*ApplicationResponse, error)
	GetByID(ctx context.Context, id uint, actorID string, actorRole models.UserRole) (*ApplicationResponse, error)
	GetMine(ctx context.Context, userID string) (*ApplicationResponse, error)
	List(ctx context.Context, filters repositories.ApplicationFilters) (*ApplicationListResponse, error)
	Stats(ctx context.Context) (*repositories.ApplicationStats, error)

	// Admin review decisions
	Approve(ctx context.Context, id uint, reviewerID string, req *ReviewDecisionRequest) (*ApplicationResponse, error)
	Reject(ctx context.Context, id uint, reviewerID string, req *ReviewDecisionRequest) (*ApplicationResponse, error)
	RequestRevision(ctx context.Context, id uint, reviewerID string, req *ReviewDecisionRequest) (*ApplicationResponse, error)
}

type TutorService interface {
	List(ctx context.Context, filters repositories.TutorFilters) (*TutorListResponse, error)
	Search(ctx context.Context, query string, filters repositories.TutorFilters) (*TutorListResponse, error)
	GetByUserID(ctx context.Context, userID string) (*TutorResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateTutorRequest) (*TutorResponse, error)
}

type BookingService interface {
	Create(ctx context.Context, req *CreateBookingRequest, studentID string) (*BookingResponse, error)
	GetByID(ctx context.Context, id uint, actorID string, actorRole models.UserRole) (*BookingResponse, error)
	GetByStudent(ctx context.Context, studentID string, filters repositories.BookingFilters) (*BookingListResponse, error)
	GetByTutor(ctx context.Context, tutorID string, filters repositories.BookingFilters) (*BookingListResponse, error)
	List(ctx context.Context, filters repositories.BookingFilters) (*BookingListResponse, error)

	// Lifecycle transitions
	Confirm(ctx context.Context, id uint, tutorID string) (*BookingResponse, error)
	Start(ctx context.Context, id uint, tutorID string) (*BookingResponse, error)
	Complete(ctx context.Context, id uint, tutorID string) (*BookingResponse, error)
	Cancel(ctx context.Context, id uint, actorID string, actorRole models.UserRole, reason string) (*BookingResponse, error)
}

type ReviewService interface {
	Create(ctx context.Context, req *CreateReviewRequest, studentID string) (*models.Review, error)
	GetByTutor(ctx context.Context, tutorID string, filters repositories.ReviewFilters) (*ReviewListResponse, error)
}

type PaymentService interface {
	InitializeApplicationPayment(ctx context.Context, userID, email string) (*PaymentInitResponse, error)
	InitializeBookingPayment(ctx context.Context, bookingID uint, userID, email string) (*PaymentInitResponse, error)
	HandleWebhook(ctx context.Context, signature string, body []byte) error
	VerifyPayment(ctx context.Context, reference, userID string) (*PaymentStatusResponse, error)
	GetByReference(ctx context.Context, reference, actorID string, actorRole models.UserRole) (*models.Payment, error)
	ListMine(ctx context.Context, userID string, filters repositories.PaymentFilters) ([]*models.Payment, int64, error)
	List(ctx context.Context, filters repositories.PaymentFilters) ([]*models.Payment, int64, error)
}

type DashboardService interface {
	TutorDashboard(ctx context.Context, tutorID string) (*TutorDashboardResponse, error)
	StudentDashboard(ctx context.Context, studentID string) (*StudentDashboardResponse, error)
	AdminDashboard(ctx context.Context) (*AdminDashboardResponse, error)
}

type ExportService interface {
	ExportApplications(ctx context.Context, filters repositories.ApplicationFilters) ([]byte, string, error)
	ExportBookings(ctx context.Context, filters repositories.BookingFilters) ([]byte, string, error)
	ExportPayments(ctx context.Context, filters repositories.PaymentFilters) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Application() ApplicationService
	Tutor() TutorService
	Booking() BookingService
	Review() ReviewService
	Payment() PaymentService
	Dashboard() DashboardService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
