package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/cache"
	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/repositories"
)

// CouponPostgreSQL implements CouponRepository with a redis read-through
// cache on the hot active-code lookup path.
type CouponPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewCouponPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CouponRepository {
	return &CouponPostgreSQL{
		db:    db,
		cache: cache.NewCacheHelper(redisClient, cache.CouponCacheConfig.Prefix),
	}
}

func (r *CouponPostgreSQL) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *CouponPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetActiveByCode resolves an active coupon by exact code. Inactive codes
// fall through to the same not-found error as unknown codes so callers
// cannot tell them apart.
func (r *CouponPostgreSQL) GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var cached models.Coupon
	if err := r.cache.Get(ctx, code, &cached); err == nil {
		return &cached, nil
	}

	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, code, coupon, cache.CouponCacheConfig.TTL); err != nil {
		// cache write failure never fails the lookup
		_ = err
	}

	return &coupon, nil
}

func (r *CouponPostgreSQL) List(ctx context.Context, filters repositories.CouponFilters) ([]*models.Coupon, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Coupon{})
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var coupons []*models.Coupon
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&coupons).Error; err != nil {
		return nil, 0, err
	}

	return coupons, total, nil
}

// Deactivate flips is_active off and invalidates the cached code.
func (r *CouponPostgreSQL) Deactivate(ctx context.Context, id uint) error {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, id).Error; err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return r.cache.Delete(ctx, coupon.Code)
}

func (r *CouponPostgreSQL) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CouponPostgreSQL) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
