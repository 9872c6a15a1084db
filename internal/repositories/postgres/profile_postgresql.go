package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillzlab/enrollment-service/internal/cache"
	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/repositories"
)

// ProfilePostgreSQL implements ProfileRepository. Role lookups are cached
// briefly because the admin gate reads the profile on every guarded request.
type ProfilePostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewProfilePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ProfileRepository {
	return &ProfilePostgreSQL{
		db:    db,
		cache: cache.NewCacheHelper(redisClient, cache.ProfileCacheConfig.Prefix),
	}
}

func (r *ProfilePostgreSQL) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var cached models.Profile
	if err := r.cache.Get(ctx, id, &cached); err == nil {
		return &cached, nil
	}

	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, id, profile, cache.ProfileCacheConfig.TTL)

	return &profile, nil
}

// Upsert creates the profile row or refreshes mutable fields if it exists.
// Role is deliberately excluded from the update set so a re-login cannot
// reset an admin back to student.
func (r *ProfilePostgreSQL) Upsert(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "avatar_url", "social_links", "updated_at"}),
		}).
		Create(profile).Error
	if err != nil {
		return err
	}
	return r.cache.Delete(ctx, profile.ID)
}

func (r *ProfilePostgreSQL) Update(ctx context.Context, profile *models.Profile) error {
	result := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"name":         profile.Name,
			"phone":        profile.Phone,
			"avatar_url":   profile.AvatarURL,
			"social_links": profile.SocialLinks,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.cache.Delete(ctx, profile.ID)
}

func (r *ProfilePostgreSQL) ListAdminIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("role = ?", models.RoleAdmin).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
