package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/skillzlab/enrollment-service/internal/events"
	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/validator"
)

func newEnrollmentTestService(t *testing.T) (EnrollmentService, *fakeRepository, *events.MockEventPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewEnrollmentService(repo, nil, logger, validator.New(), publisher)
	return svc, repo, publisher
}

func validSubmitRequest() EnrollmentSubmitRequest {
	return EnrollmentSubmitRequest{
		CourseID:        "creative-design",
		Name:            "Rahim Uddin",
		Phone:           "01712345678",
		PaymentMethod:   "bKash",
		TransactionID:   "TX123456",
		SubmissionToken: "tok-1",
	}
}

func TestEnrollmentServiceSubmit(t *testing.T) {
	svc, repo, publisher := newEnrollmentTestService(t)
	ctx := context.Background()

	resp, err := svc.Submit(ctx, "user-1", validSubmitRequest())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if resp.Status != models.EnrollmentPending {
		t.Errorf("status = %s, want pending", resp.Status)
	}
	if resp.OriginalPrice != 399 || resp.FinalPrice != 399 {
		t.Errorf("prices = %d/%d, want 399/399", resp.OriginalPrice, resp.FinalPrice)
	}
	if resp.AlreadySubmitted {
		t.Error("fresh submission flagged as retried")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TopicEnrollmentSubmitted {
		t.Fatalf("expected single submitted event, got %+v", published)
	}
	if published[0].Source != "enrollment-service" || published[0].Version != "1.0" {
		t.Errorf("event envelope = %s/%s, want enrollment-service/1.0", published[0].Source, published[0].Version)
	}

	if len(repo.state.pendings) != 1 {
		t.Errorf("expected 1 pending row, got %d", len(repo.state.pendings))
	}
}

func TestEnrollmentServiceSubmitWithCoupon(t *testing.T) {
	svc, repo, _ := newEnrollmentTestService(t)
	ctx := context.Background()

	repo.state.coupons = append(repo.state.coupons, &models.Coupon{
		ID: 1, Code: "SAVE20", DiscountPercent: 20, IsActive: true,
	})

	code := " save20 "
	req := validSubmitRequest()
	req.CouponCode = &code

	resp, err := svc.Submit(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// 399 * 0.80 = 319.2, rounded half away from zero
	if resp.DiscountPercent != 20 || resp.FinalPrice != 319 {
		t.Errorf("discount/final = %d/%d, want 20/319", resp.DiscountPercent, resp.FinalPrice)
	}
	if resp.CouponCode == nil || *resp.CouponCode != "SAVE20" {
		t.Errorf("stored coupon code = %v, want SAVE20", resp.CouponCode)
	}
}

func TestEnrollmentServiceSubmitErrors(t *testing.T) {
	svc, repo, _ := newEnrollmentTestService(t)
	ctx := context.Background()

	t.Run("unknown course", func(t *testing.T) {
		req := validSubmitRequest()
		req.CourseID = "quantum-basket-weaving"
		if _, err := svc.Submit(ctx, "user-1", req); !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Submit = %v, want ErrCourseNotFound", err)
		}
	})

	t.Run("unknown coupon", func(t *testing.T) {
		code := "NOPE"
		req := validSubmitRequest()
		req.CouponCode = &code
		if _, err := svc.Submit(ctx, "user-1", req); !errors.Is(err, ErrCouponNotFound) {
			t.Errorf("Submit = %v, want ErrCouponNotFound", err)
		}
	})

	t.Run("inactive coupon behaves like unknown", func(t *testing.T) {
		repo.state.coupons = append(repo.state.coupons, &models.Coupon{
			ID: 9, Code: "OLD50", DiscountPercent: 50, IsActive: false,
		})
		code := "OLD50"
		req := validSubmitRequest()
		req.CouponCode = &code
		if _, err := svc.Submit(ctx, "user-1", req); !errors.Is(err, ErrCouponNotFound) {
			t.Errorf("Submit = %v, want ErrCouponNotFound", err)
		}
	})

	t.Run("invalid payment method", func(t *testing.T) {
		req := validSubmitRequest()
		req.PaymentMethod = "PayPal"
		if _, err := svc.Submit(ctx, "user-1", req); err == nil {
			t.Error("Submit accepted invalid payment method")
		}
	})

	t.Run("already enrolled", func(t *testing.T) {
		repo.state.enrollments = append(repo.state.enrollments, &models.Enrollment{
			ID: 1, UserID: "user-2", CourseID: "creative-design",
		})
		req := validSubmitRequest()
		if _, err := svc.Submit(ctx, "user-2", req); !errors.Is(err, ErrAlreadyEnrolled) {
			t.Errorf("Submit = %v, want ErrAlreadyEnrolled", err)
		}
	})
}

func TestEnrollmentServiceSubmitIdempotent(t *testing.T) {
	svc, repo, publisher := newEnrollmentTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "user-1", validSubmitRequest())
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	publisher.ClearEvents()

	second, err := svc.Submit(ctx, "user-1", validSubmitRequest())
	if err != nil {
		t.Fatalf("retried Submit failed: %v", err)
	}

	if !second.AlreadySubmitted {
		t.Error("retry not flagged as already submitted")
	}
	if second.PendingEnrollment.ID != first.PendingEnrollment.ID {
		t.Errorf("retry returned row %d, want original %d", second.PendingEnrollment.ID, first.PendingEnrollment.ID)
	}
	if len(repo.state.pendings) != 1 {
		t.Errorf("retry created %d rows, want 1", len(repo.state.pendings))
	}
	if got := publisher.GetPublishedEvents(); len(got) != 0 {
		t.Errorf("retry published %d events, want 0", len(got))
	}
}

func TestEnrollmentServiceSubmitNotifiesAdmins(t *testing.T) {
	svc, repo, _ := newEnrollmentTestService(t)
	ctx := context.Background()

	repo.state.profiles["admin-1"] = &models.Profile{ID: "admin-1", Role: models.RoleAdmin}
	repo.state.profiles["admin-2"] = &models.Profile{ID: "admin-2", Role: models.RoleAdmin}
	repo.state.profiles["user-9"] = &models.Profile{ID: "user-9", Role: models.RoleStudent}

	if _, err := svc.Submit(ctx, "user-1", validSubmitRequest()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	for _, adminID := range []string{"admin-1", "admin-2"} {
		if !repo.state.hasNotificationContaining(adminID, "Creative Design") {
			t.Errorf("admin %s did not receive the enrollment notification", adminID)
		}
	}
	if got := repo.state.notificationsFor("user-9"); len(got) != 0 {
		t.Errorf("student received %d notifications, want 0", len(got))
	}
}

func TestEnrollmentServiceListMine(t *testing.T) {
	svc, repo, _ := newEnrollmentTestService(t)
	ctx := context.Background()

	repo.state.enrollments = append(repo.state.enrollments, &models.Enrollment{
		ID: 1, UserID: "user-1", CourseID: "video-editing",
	})
	repo.state.pendings = append(repo.state.pendings, &models.PendingEnrollment{
		ID: 2, UserID: "user-1", CourseID: "creative-design", Status: models.EnrollmentPending, SubmissionToken: "t",
	})
	repo.state.pendings = append(repo.state.pendings, &models.PendingEnrollment{
		ID: 3, UserID: "user-2", CourseID: "creative-design", Status: models.EnrollmentPending, SubmissionToken: "u",
	})
	// decided requests must not show up under pending
	repo.state.pendings = append(repo.state.pendings, &models.PendingEnrollment{
		ID: 4, UserID: "user-1", CourseID: "web-development", Status: models.EnrollmentRejected, SubmissionToken: "v",
	})

	resp, err := svc.ListMine(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListMine failed: %v", err)
	}
	if len(resp.Enrollments) != 1 || len(resp.Pending) != 1 {
		t.Errorf("ListMine = %d enrollments / %d pending, want 1/1", len(resp.Enrollments), len(resp.Pending))
	}
	if len(resp.Pending) == 1 && resp.Pending[0].ID != 2 {
		t.Errorf("Pending contains row %d, want only the undecided row 2", resp.Pending[0].ID)
	}
}

func TestEnrollmentServiceSubmitTokenScopedPerUser(t *testing.T) {
	svc, repo, _ := newEnrollmentTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "user-1", validSubmitRequest())
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	// another user reusing the same client token gets their own row
	second, err := svc.Submit(ctx, "user-2", validSubmitRequest())
	if err != nil {
		t.Fatalf("second user's Submit failed: %v", err)
	}

	if second.AlreadySubmitted {
		t.Error("second user's submission flagged as a retry")
	}
	if second.PendingEnrollment.ID == first.PendingEnrollment.ID {
		t.Error("both users got the same pending row")
	}
	if len(repo.state.pendings) != 2 {
		t.Errorf("pending rows = %d, want 2", len(repo.state.pendings))
	}
}
