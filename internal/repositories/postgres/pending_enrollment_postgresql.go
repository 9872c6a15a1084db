package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/repositories"
)

// PendingEnrollmentPostgreSQL implements PendingEnrollmentRepository
type PendingEnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewPendingEnrollmentPostgreSQL(db *gorm.DB) repositories.PendingEnrollmentRepository {
	return &PendingEnrollmentPostgreSQL{db: db}
}

func (r *PendingEnrollmentPostgreSQL) Create(ctx context.Context, enrollment *models.PendingEnrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *PendingEnrollmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.PendingEnrollment, error) {
	var enrollment models.PendingEnrollment
	if err := r.db.WithContext(ctx).First(&enrollment, id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *PendingEnrollmentPostgreSQL) GetBySubmissionToken(ctx context.Context, userID, token string) (*models.PendingEnrollment, error) {
	var enrollment models.PendingEnrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND submission_token = ?", userID, token).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *PendingEnrollmentPostgreSQL) List(ctx context.Context, filters repositories.PendingEnrollmentFilters) ([]*models.PendingEnrollment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PendingEnrollment{})
	query = applyPendingEnrollmentFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []*models.PendingEnrollment
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

// ApplyDecision claims a pending row for a moderator verdict. The status
// guard makes concurrent decisions on the same row a first-writer-wins
// race: the loser sees zero rows affected.
func (r *PendingEnrollmentPostgreSQL) ApplyDecision(ctx context.Context, id uint, decision repositories.EnrollmentDecision) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PendingEnrollment{}).
		Where("id = ? AND status = ?", id, models.EnrollmentPending).
		Updates(map[string]interface{}{
			"status":     decision.Status,
			"decided_by": decision.DecidedBy,
			"decided_at": decision.DecidedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *PendingEnrollmentPostgreSQL) CountByStatus(ctx context.Context, status models.EnrollmentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PendingEnrollment{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *PendingEnrollmentPostgreSQL) CountDecidedSince(ctx context.Context, status models.EnrollmentStatus, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PendingEnrollment{}).
		Where("status = ? AND decided_at >= ?", status, since).
		Count(&count).Error
	return count, err
}
