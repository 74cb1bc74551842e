package checkout

import (
	"testing"
	"time"

	"storefront/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func activeCoupon(typ string, value float64) *models.Coupon {
	return &models.Coupon{
		Code:      "TEST",
		Type:      typ,
		Value:     value,
		IsActive:  true,
		ValidFrom: time.Now().Add(-time.Hour),
	}
}

func TestValidateCouponInactive(t *testing.T) {
	coupon := activeCoupon(models.CouponPercentage, 10)
	coupon.IsActive = false

	valid, reason := ValidateCoupon(coupon, 100, time.Now())
	if valid {
		t.Fatal("expected inactive coupon to be rejected")
	}
	if reason == "" {
		t.Fatal("expected a rejection reason")
	}
}

func TestValidateCouponNotYetValid(t *testing.T) {
	coupon := activeCoupon(models.CouponPercentage, 10)
	coupon.ValidFrom = time.Now().Add(time.Hour)

	if valid, _ := ValidateCoupon(coupon, 100, time.Now()); valid {
		t.Fatal("expected future coupon to be rejected")
	}
}

func TestValidateCouponExpired(t *testing.T) {
	coupon := activeCoupon(models.CouponPercentage, 10)
	past := time.Now().Add(-time.Minute)
	coupon.ValidUntil = &past

	if valid, _ := ValidateCoupon(coupon, 100, time.Now()); valid {
		t.Fatal("expected expired coupon to be rejected")
	}
}

func TestValidateCouponUsageLimitReached(t *testing.T) {
	coupon := activeCoupon(models.CouponPercentage, 10)
	coupon.UsageLimit = intPtr(5)
	coupon.UsedCount = 5

	if valid, _ := ValidateCoupon(coupon, 100, time.Now()); valid {
		t.Fatal("expected exhausted coupon to be rejected")
	}
}

func TestValidateCouponBelowMinimum(t *testing.T) {
	coupon := activeCoupon(models.CouponFixed, 5)
	coupon.MinimumAmount = 50

	if valid, _ := ValidateCoupon(coupon, 49.99, time.Now()); valid {
		t.Fatal("expected cart below minimum to be rejected")
	}
	if valid, _ := ValidateCoupon(coupon, 50, time.Now()); !valid {
		t.Fatal("expected cart at minimum to be accepted")
	}
}

func TestCouponDiscountPercentage(t *testing.T) {
	coupon := activeCoupon(models.CouponPercentage, 25)

	if got := CouponDiscount(coupon, 200); got != 50 {
		t.Fatalf("expected discount 50, got %v", got)
	}
}

func TestCouponDiscountPercentageCappedByMaximum(t *testing.T) {
	coupon := activeCoupon(models.CouponPercentage, 50)
	coupon.MaximumDiscount = floatPtr(30)

	if got := CouponDiscount(coupon, 200); got != 30 {
		t.Fatalf("expected discount capped at 30, got %v", got)
	}
}

func TestCouponDiscountFixedNeverExceedsCartTotal(t *testing.T) {
	coupon := activeCoupon(models.CouponFixed, 100)

	if got := CouponDiscount(coupon, 40); got != 40 {
		t.Fatalf("expected discount clamped to 40, got %v", got)
	}
}
