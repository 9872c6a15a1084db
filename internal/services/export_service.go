package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/repositories"
)

// ===== SERVICE IMPLEMENTATION =====

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var exportHeaders = []string{
	"ID", "User ID", "Course", "Name", "Phone", "Payment Method",
	"Transaction ID", "Coupon", "Discount %", "Final Price", "Status",
	"Decided By", "Decided At", "Submitted At",
}

// ExportPendingEnrollments writes the moderation queue to an XLSX workbook.
// A nil status exports every row regardless of state.
func (s *exportService) ExportPendingEnrollments(ctx context.Context, status *models.EnrollmentStatus) ([]byte, string, error) {
	filters := repositories.PendingEnrollmentFilters{
		Status: status,
		SortBy: "created_at",
	}

	enrollments, total, err := s.repo.PendingEnrollment().List(ctx, filters)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list enrollments for export: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close export workbook", "error", err)
		}
	}()

	const sheet = "Enrollments"
	f.SetSheetName("Sheet1", sheet)

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write export header: %w", err)
		}
	}

	for row, e := range enrollments {
		values := []interface{}{
			e.ID, e.UserID, e.CourseID, e.Name, e.Phone, e.PaymentMethod,
			e.TransactionID, derefOrEmpty(e.CouponCode), e.DiscountPercent,
			e.FinalPrice, string(e.Status), derefOrEmpty(e.DecidedBy),
			formatTimePtr(e.DecidedAt), e.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write export row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render export workbook: %w", err)
	}

	filename := fmt.Sprintf("enrollments-%s.xlsx", time.Now().UTC().Format("2006-01-02"))

	s.logger.Info("enrollments exported", "rows", total, "filename", filename)

	return buf.Bytes(), filename, nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
