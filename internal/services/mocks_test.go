package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/repositories"
)

// fakeState backs the in-memory repository used across service tests.
type fakeState struct {
	coupons       []*models.Coupon
	pendings      []*models.PendingEnrollment
	enrollments   []*models.Enrollment
	profiles      map[string]*models.Profile
	notifications []*models.Notification
	nextID        uint

	// notificationErr, when set, fails every notification insert. Used to
	// force a failure in the middle of a transaction.
	notificationErr error

	// couponLookupErr, when set, fails GetActiveByCode with a non-NotFound
	// error, standing in for a store outage.
	couponLookupErr error
}

// snapshot deep-copies the state so a failed transaction can restore it.
func (s *fakeState) snapshot() *fakeState {
	cp := &fakeState{
		profiles:        make(map[string]*models.Profile, len(s.profiles)),
		nextID:          s.nextID,
		notificationErr: s.notificationErr,
		couponLookupErr: s.couponLookupErr,
	}
	for _, c := range s.coupons {
		c2 := *c
		cp.coupons = append(cp.coupons, &c2)
	}
	for _, p := range s.pendings {
		p2 := *p
		cp.pendings = append(cp.pendings, &p2)
	}
	for _, e := range s.enrollments {
		e2 := *e
		cp.enrollments = append(cp.enrollments, &e2)
	}
	for id, p := range s.profiles {
		p2 := *p
		cp.profiles[id] = &p2
	}
	for _, n := range s.notifications {
		n2 := *n
		cp.notifications = append(cp.notifications, &n2)
	}
	return cp
}

func newFakeState() *fakeState {
	return &fakeState{profiles: make(map[string]*models.Profile)}
}

func (s *fakeState) id() uint {
	s.nextID++
	return s.nextID
}

// fakeRepository implements repositories.Repository over fakeState.
// WithTransaction snapshots the state and restores it when the callback
// fails, mirroring a database rollback.
type fakeRepository struct {
	state *fakeState
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{state: newFakeState()}
}

func (r *fakeRepository) Coupon() repositories.CouponRepository { return &fakeCouponRepo{r.state} }
func (r *fakeRepository) PendingEnrollment() repositories.PendingEnrollmentRepository {
	return &fakePendingRepo{r.state}
}
func (r *fakeRepository) Enrollment() repositories.EnrollmentRepository {
	return &fakeEnrollmentRepo{r.state}
}
func (r *fakeRepository) Profile() repositories.ProfileRepository { return &fakeProfileRepo{r.state} }
func (r *fakeRepository) Notification() repositories.NotificationRepository {
	return &fakeNotificationRepo{r.state}
}
func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	snap := r.state.snapshot()
	if err := fn(r); err != nil {
		*r.state = *snap
		return err
	}
	return nil
}
func (r *fakeRepository) Ping(ctx context.Context) error { return nil }
func (r *fakeRepository) Close() error                   { return nil }

// ===== COUPONS =====

type fakeCouponRepo struct{ state *fakeState }

func (f *fakeCouponRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	for _, c := range f.state.coupons {
		if c.Code == coupon.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	coupon.ID = f.state.id()
	coupon.CreatedAt = time.Now()
	f.state.coupons = append(f.state.coupons, coupon)
	return nil
}

func (f *fakeCouponRepo) GetByID(ctx context.Context, id uint) (*models.Coupon, error) {
	for _, c := range f.state.coupons {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCouponRepo) GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if f.state.couponLookupErr != nil {
		return nil, f.state.couponLookupErr
	}
	for _, c := range f.state.coupons {
		if c.Code == code && c.IsActive {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCouponRepo) List(ctx context.Context, filters repositories.CouponFilters) ([]*models.Coupon, int64, error) {
	var out []*models.Coupon
	for _, c := range f.state.coupons {
		if filters.IsActive != nil && c.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCouponRepo) Deactivate(ctx context.Context, id uint) error {
	for _, c := range f.state.coupons {
		if c.ID == id {
			c.IsActive = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeCouponRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	for _, c := range f.state.coupons {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCouponRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	for _, c := range f.state.coupons {
		if c.IsActive {
			count++
		}
	}
	return count, nil
}

// ===== PENDING ENROLLMENTS =====

type fakePendingRepo struct{ state *fakeState }

func (f *fakePendingRepo) Create(ctx context.Context, enrollment *models.PendingEnrollment) error {
	for _, p := range f.state.pendings {
		if p.UserID == enrollment.UserID && p.SubmissionToken == enrollment.SubmissionToken {
			return gorm.ErrDuplicatedKey
		}
	}
	enrollment.ID = f.state.id()
	enrollment.CreatedAt = time.Now()
	f.state.pendings = append(f.state.pendings, enrollment)
	return nil
}

func (f *fakePendingRepo) GetByID(ctx context.Context, id uint) (*models.PendingEnrollment, error) {
	for _, p := range f.state.pendings {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePendingRepo) GetBySubmissionToken(ctx context.Context, userID, token string) (*models.PendingEnrollment, error) {
	for _, p := range f.state.pendings {
		if p.UserID == userID && p.SubmissionToken == token {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePendingRepo) List(ctx context.Context, filters repositories.PendingEnrollmentFilters) ([]*models.PendingEnrollment, int64, error) {
	var out []*models.PendingEnrollment
	for _, p := range f.state.pendings {
		if filters.Status != nil && p.Status != *filters.Status {
			continue
		}
		if filters.UserID != nil && p.UserID != *filters.UserID {
			continue
		}
		if filters.CourseID != nil && p.CourseID != *filters.CourseID {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePendingRepo) ApplyDecision(ctx context.Context, id uint, decision repositories.EnrollmentDecision) (int64, error) {
	for _, p := range f.state.pendings {
		if p.ID == id && p.Status == models.EnrollmentPending {
			p.Status = decision.Status
			decidedBy := decision.DecidedBy
			decidedAt := decision.DecidedAt
			p.DecidedBy = &decidedBy
			p.DecidedAt = &decidedAt
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakePendingRepo) CountByStatus(ctx context.Context, status models.EnrollmentStatus) (int64, error) {
	var count int64
	for _, p := range f.state.pendings {
		if p.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakePendingRepo) CountDecidedSince(ctx context.Context, status models.EnrollmentStatus, since time.Time) (int64, error) {
	var count int64
	for _, p := range f.state.pendings {
		if p.Status == status && p.DecidedAt != nil && !p.DecidedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// ===== ENROLLMENTS =====

type fakeEnrollmentRepo struct{ state *fakeState }

func (f *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	for _, e := range f.state.enrollments {
		if e.UserID == enrollment.UserID && e.CourseID == enrollment.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	enrollment.ID = f.state.id()
	enrollment.EnrolledAt = time.Now()
	f.state.enrollments = append(f.state.enrollments, enrollment)
	return nil
}

func (f *fakeEnrollmentRepo) ExistsByUserAndCourse(ctx context.Context, userID, courseID string) (bool, error) {
	for _, e := range f.state.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentRepo) ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range f.state.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(f.state.enrollments)), nil
}

// ===== PROFILES =====

type fakeProfileRepo struct{ state *fakeState }

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	if p, ok := f.state.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	if existing, ok := f.state.profiles[profile.ID]; ok {
		existing.Name = profile.Name
		existing.Phone = profile.Phone
		existing.AvatarURL = profile.AvatarURL
		existing.SocialLinks = profile.SocialLinks
		return nil
	}
	f.state.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	if _, ok := f.state.profiles[profile.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.state.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) ListAdminIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id, p := range f.state.profiles {
		if p.Role == models.RoleAdmin {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ===== NOTIFICATIONS =====

type fakeNotificationRepo struct{ state *fakeState }

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	if f.state.notificationErr != nil {
		return f.state.notificationErr
	}
	notification.ID = f.state.id()
	notification.CreatedAt = time.Now()
	f.state.notifications = append(f.state.notifications, notification)
	return nil
}

func (f *fakeNotificationRepo) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	for _, n := range notifications {
		if err := f.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, n := range f.state.notifications {
		if n.UserID != userID {
			continue
		}
		if filters.IsRead != nil && n.IsRead != *filters.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range f.state.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID string, id uint) error {
	for _, n := range f.state.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	for _, n := range f.state.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// notificationsFor filters the recorded notifications by recipient.
func (s *fakeState) notificationsFor(userID string) []*models.Notification {
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// hasNotificationContaining reports whether the user got a notification
// whose message contains the given substring.
func (s *fakeState) hasNotificationContaining(userID, substr string) bool {
	for _, n := range s.notificationsFor(userID) {
		if strings.Contains(n.Message, substr) {
			return true
		}
	}
	return false
}
