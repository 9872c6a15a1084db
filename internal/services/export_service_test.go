package services

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/skillzlab/enrollment-service/internal/models"
)

func TestExportServicePendingEnrollments(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newFakeRepository()
	svc := NewExportService(repo, logger)
	ctx := context.Background()

	coupon := "SAVE20"
	repo.state.pendings = append(repo.state.pendings, &models.PendingEnrollment{
		ID:              1,
		UserID:          "user-1",
		CourseID:        "creative-design",
		Name:            "Rahim Uddin",
		Phone:           "01712345678",
		PaymentMethod:   "bKash",
		TransactionID:   "TX1",
		CouponCode:      &coupon,
		DiscountPercent: 20,
		FinalPrice:      319,
		Status:          models.EnrollmentPending,
	})

	data, filename, err := svc.ExportPendingEnrollments(ctx, nil)
	if err != nil {
		t.Fatalf("ExportPendingEnrollments failed: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("filename = %q, want .xlsx suffix", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported bytes are not a valid workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Enrollments")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("workbook has %d rows, want header + 1 data row", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][2] != "Course" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][3] != "Rahim Uddin" || rows[1][7] != "SAVE20" {
		t.Errorf("data row = %v", rows[1])
	}
}
