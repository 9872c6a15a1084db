package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedCoupon struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCacheHelper(client, CouponCacheConfig.Prefix), mr
}

func TestCacheHelperSetGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	want := cachedCoupon{Code: "SAVE20", DiscountPercent: 20}
	if err := helper.Set(ctx, "SAVE20", want, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got cachedCoupon
	if err := helper.Get(ctx, "SAVE20", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestCacheHelperMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got cachedCoupon
	err := helper.Get(context.Background(), "MISSING", &got)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get on missing key = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperDelete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "PROMO10", cachedCoupon{Code: "PROMO10", DiscountPercent: 10}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := helper.Delete(ctx, "PROMO10"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var got cachedCoupon
	if err := helper.Get(ctx, "PROMO10", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get after Delete = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperKeyPrefix(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "SAVE20", cachedCoupon{Code: "SAVE20"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("coupon:SAVE20") {
		t.Error("expected key coupon:SAVE20 in redis")
	}
}

func TestCacheHelperWithoutClient(t *testing.T) {
	helper := NewCacheHelper(nil, "coupon:")
	ctx := context.Background()

	// writes no-op, reads report the cache as unavailable
	if err := helper.Set(ctx, "X", cachedCoupon{}, time.Minute); err != nil {
		t.Errorf("Set without client = %v, want nil", err)
	}
	var got cachedCoupon
	if err := helper.Get(ctx, "X", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get without client = %v, want ErrCacheNotAvailable", err)
	}
	if err := helper.Delete(ctx, "X"); err != nil {
		t.Errorf("Delete without client = %v, want nil", err)
	}
}

func TestCacheHelperTTL(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "SHORT", cachedCoupon{Code: "SHORT"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	var got cachedCoupon
	if err := helper.Get(ctx, "SHORT", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get after TTL expiry = %v, want ErrCacheNotFound", err)
	}
}
