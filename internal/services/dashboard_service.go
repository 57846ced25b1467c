package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

// dashboardService aggregates repository stats into role dashboards. Every
// underlying query error propagates to the caller instead of rendering a
// zeroed dashboard.
type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger

	reviewSLADays int
	trendMonths   int
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, reviewSLADays int) DashboardService {
	return &dashboardService{
		repo:          repo,
		db:            db,
		logger:        logger,
		reviewSLADays: reviewSLADays,
		trendMonths:   6,
	}
}

func (s *dashboardService) TutorDashboard(ctx context.Context, tutorID string) (*TutorDashboardResponse, error) {
	if _, err := s.repo.Tutor().GetByUserID(ctx, s.db, tutorID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTutorNotFound
		}
		return nil, fmt.Errorf("failed to get tutor: %w", err)
	}

	earnings, err := s.repo.Dashboard().GetTutorEarnings(ctx, s.db, tutorID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get earnings: %w", err)
	}

	counts, err := s.repo.Booking().CountByStatus(ctx, s.db, repositories.BookingFilters{TutorID: &tutorID})
	if err != nil {
		return nil, fmt.Errorf("failed to get booking counts: %w", err)
	}

	trend, err := s.repo.Dashboard().GetTutorEarningsTrend(ctx, s.db, tutorID, s.trendMonths)
	if err != nil {
		return nil, fmt.Errorf("failed to get earnings trend: %w", err)
	}

	upcoming, err := s.repo.Dashboard().GetTutorUpcomingSessions(ctx, s.db, tutorID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming sessions: %w", err)
	}

	distinctStudents, err := s.repo.Dashboard().GetTutorDistinctStudents(ctx, s.db, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count distinct students: %w", err)
	}

	// Recompute from review rows rather than trusting the denormalized
	// tutor columns.
	ratingStats, err := s.repo.Review().GetTutorRatingStats(ctx, s.db, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating stats: %w", err)
	}

	return &TutorDashboardResponse{
		Earnings:         *earnings,
		BookingCounts:    counts,
		EarningsTrend:    trend,
		UpcomingSessions: bookingResponses(upcoming),
		DistinctStudents: distinctStudents,
		Rating:           ratingStats.AverageRating,
		TotalReviews:     int(ratingStats.TotalReviews),
	}, nil
}

func (s *dashboardService) StudentDashboard(ctx context.Context, studentID string) (*StudentDashboardResponse, error) {
	counts, err := s.repo.Booking().CountByStatus(ctx, s.db, repositories.BookingFilters{StudentID: &studentID})
	if err != nil {
		return nil, fmt.Errorf("failed to get booking counts: %w", err)
	}

	spend, err := s.repo.Dashboard().GetStudentTotalSpend(ctx, s.db, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get total spend: %w", err)
	}

	distinctTutors, err := s.repo.Dashboard().GetStudentDistinctTutors(ctx, s.db, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count distinct tutors: %w", err)
	}

	upcoming, err := s.repo.Dashboard().GetStudentUpcomingSessions(ctx, s.db, studentID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming sessions: %w", err)
	}

	return &StudentDashboardResponse{
		BookingCounts:    counts,
		TotalSpend:       spend,
		DistinctTutors:   distinctTutors,
		UpcomingSessions: bookingResponses(upcoming),
	}, nil
}

func (s *dashboardService) AdminDashboard(ctx context.Context) (*AdminDashboardResponse, error) {
	stats, err := s.repo.Application().GetStats(ctx, s.db, reviewSLACutoff(s.reviewSLADays))
	if err != nil {
		return nil, fmt.Errorf("failed to get application stats: %w", err)
	}

	totalTutors, err := s.repo.Dashboard().GetTotalTutors(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to count tutors: %w", err)
	}

	bookingCounts, err := s.repo.Booking().CountByStatus(ctx, s.db, repositories.BookingFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	applicationRevenue, err := s.repo.Payment().SumCompleted(ctx, s.db, models.PaymentForApplication, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get application revenue: %w", err)
	}

	bookingRevenue, err := s.repo.Payment().SumCompleted(ctx, s.db, models.PaymentForBooking, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking revenue: %w", err)
	}

	recent, err := s.repo.Dashboard().GetRecentApplications(ctx, s.db, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent applications: %w", err)
	}

	topTutors, err := s.repo.Dashboard().GetTopTutors(ctx, s.db, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get top tutors: %w", err)
	}

	return &AdminDashboardResponse{
		Applications:       *stats,
		TotalTutors:        totalTutors,
		BookingCounts:      bookingCounts,
		ApplicationRevenue: applicationRevenue,
		BookingRevenue:     bookingRevenue,
		RecentApplications: recent,
		TopTutors:          topTutors,
	}, nil
}

func bookingResponses(bookings []*models.Booking) []*BookingResponse {
	responses := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, &BookingResponse{Booking: b})
	}
	return responses
}
