package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/repositories"
)

func newCouponRepoTest(t *testing.T) (repositories.CouponRepository, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm.Open failed: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCouponPostgreSQL(db, client), mock, mr
}

func couponRows(id uint, code string, discount int, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "discount_percent", "is_active"}).
		AddRow(id, code, discount, active)
}

func TestCouponPostgreSQLDeactivateEvictsCache(t *testing.T) {
	repo, mock, mr := newCouponRepoTest(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "coupons" WHERE code = $1 AND is_active = $2`)).
		WillReturnRows(couponRows(1, "SAVE20", 20, true))

	coupon, err := repo.GetActiveByCode(ctx, "SAVE20")
	if err != nil {
		t.Fatalf("GetActiveByCode failed: %v", err)
	}
	if coupon.DiscountPercent != 20 {
		t.Errorf("discount = %d, want 20", coupon.DiscountPercent)
	}
	if !mr.Exists("coupon:SAVE20") {
		t.Fatal("lookup did not populate the cache")
	}

	// second lookup is a cache hit, no query expected
	cached, err := repo.GetActiveByCode(ctx, "SAVE20")
	if err != nil {
		t.Fatalf("cached GetActiveByCode failed: %v", err)
	}
	if cached.Code != "SAVE20" || cached.DiscountPercent != 20 {
		t.Errorf("cached coupon = %+v, want SAVE20 / 20", cached)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "coupons" WHERE "coupons"."id" = $1`)).
		WillReturnRows(couponRows(1, "SAVE20", 20, true))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "coupons" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Deactivate(ctx, 1); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	if mr.Exists("coupon:SAVE20") {
		t.Error("deactivated code is still cached")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCouponPostgreSQLDeactivateMissing(t *testing.T) {
	repo, mock, _ := newCouponRepoTest(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "coupons" WHERE "coupons"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "discount_percent", "is_active"}))

	if err := repo.Deactivate(context.Background(), 42); err == nil {
		t.Error("Deactivate of a missing coupon did not fail")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
