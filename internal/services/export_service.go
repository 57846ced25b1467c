package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

// exportService renders admin listings as XLSX workbooks.
type exportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// exportPageSize bounds each repository page while walking the full result set
const exportPageSize = 200

func (s *exportService) ExportApplications(ctx context.Context, filters repositories.ApplicationFilters) ([]byte, string, error) {
	s.logger.Info("Exporting applications")

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Applications"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("failed to set sheet name: %w", err)
	}

	headers := []interface{}{
		"ID", "Applicant", "Phone", "State", "Institution", "Degree",
		"Hourly Rate", "Status", "Submitted At", "Reviewed At", "Reviewed By",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, "", fmt.Errorf("failed to write header row: %w", err)
	}

	row := 2
	filters.Limit = exportPageSize
	filters.Offset = 0
	for {
		applications, total, err := s.repo.Application().List(ctx, s.db, filters)
		if err != nil {
			return nil, "", fmt.Errorf("failed to list applications: %w", err)
		}

		for _, app := range applications {
			cells := []interface{}{
				app.ID,
				app.ApplicantName(),
				app.Phone,
				app.State,
				app.Institution,
				app.Degree,
				app.HourlyRate,
				string(app.Status),
				formatTimePtr(app.SubmittedAt),
				formatTimePtr(app.ReviewedAt),
				stringPtr(app.ReviewedBy),
			}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
				return nil, "", fmt.Errorf("failed to write row: %w", err)
			}
			row++
		}

		filters.Offset += len(applications)
		if len(applications) == 0 || int64(filters.Offset) >= total {
			break
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("applications_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func (s *exportService) ExportBookings(ctx context.Context, filters repositories.BookingFilters) ([]byte, string, error) {
	s.logger.Info("Exporting bookings")

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("failed to set sheet name: %w", err)
	}

	headers := []interface{}{
		"ID", "Student", "Tutor", "Subject", "Session At",
		"Duration (min)", "Amount", "Status", "Paid At", "Cancelled At",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, "", fmt.Errorf("failed to write header row: %w", err)
	}

	row := 2
	filters.Limit = exportPageSize
	filters.Offset = 0
	for {
		bookings, total, err := s.repo.Booking().List(ctx, s.db, filters)
		if err != nil {
			return nil, "", fmt.Errorf("failed to list bookings: %w", err)
		}

		studentNames, err := s.studentNames(ctx, bookings)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve student names: %w", err)
		}

		for _, b := range bookings {
			cells := []interface{}{
				b.ID,
				studentNames[b.StudentID],
				b.Tutor.DisplayName,
				b.Subject,
				b.SessionAt.Format(time.RFC3339),
				b.DurationMinutes,
				b.Amount,
				string(b.Status),
				formatTimePtr(b.PaidAt),
				formatTimePtr(b.CancelledAt),
			}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
				return nil, "", fmt.Errorf("failed to write row: %w", err)
			}
			row++
		}

		filters.Offset += len(bookings)
		if len(bookings) == 0 || int64(filters.Offset) >= total {
			break
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func (s *exportService) ExportPayments(ctx context.Context, filters repositories.PaymentFilters) ([]byte, string, error) {
	s.logger.Info("Exporting payments")

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payments"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("failed to set sheet name: %w", err)
	}

	headers := []interface{}{
		"Reference", "User ID", "Purpose", "Amount", "Currency",
		"Status", "Channel", "Paid At", "Created At",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, "", fmt.Errorf("failed to write header row: %w", err)
	}

	row := 2
	filters.Limit = exportPageSize
	filters.Offset = 0
	for {
		payments, total, err := s.repo.Payment().List(ctx, s.db, filters)
		if err != nil {
			return nil, "", fmt.Errorf("failed to list payments: %w", err)
		}

		for _, p := range payments {
			cells := []interface{}{
				p.Reference,
				p.UserID,
				string(p.Purpose),
				p.Amount,
				p.Currency,
				string(p.Status),
				stringPtr(p.Channel),
				formatTimePtr(p.PaidAt),
				p.CreatedAt.Format(time.RFC3339),
			}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
				return nil, "", fmt.Errorf("failed to write row: %w", err)
			}
			row++
		}

		filters.Offset += len(payments)
		if len(payments) == 0 || int64(filters.Offset) >= total {
			break
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("payments_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

// studentNames resolves booking student IDs against the identity store,
// falling back to the raw ID for accounts that no longer resolve.
func (s *exportService) studentNames(ctx context.Context, bookings []*models.Booking) (map[string]string, error) {
	seen := make(map[string]struct{}, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.StudentID]; ok {
			continue
		}
		seen[b.StudentID] = struct{}{}
		ids = append(ids, b.StudentID)
	}

	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(ids))
	for _, id := range ids {
		names[id] = id
	}
	for _, u := range users {
		if u.FullName != "" {
			names[u.ID] = u.FullName
		}
	}
	return names, nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func stringPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
