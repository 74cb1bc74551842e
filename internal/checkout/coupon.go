package checkout

import (
	"time"

	"storefront/internal/models"
)

// ValidateCoupon checks a coupon against the moment and the cart total.
// It returns a human readable reason when the coupon cannot apply.
func ValidateCoupon(coupon *models.Coupon, cartTotal float64, now time.Time) (bool, string) {
	if !coupon.IsActive {
		return false, "coupon is not active"
	}
	if now.Before(coupon.ValidFrom) {
		return false, "coupon is not valid yet"
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return false, "coupon has expired"
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return false, "coupon usage limit reached"
	}
	if cartTotal < coupon.MinimumAmount {
		return false, "cart total below coupon minimum"
	}
	return true, ""
}

// CouponDiscount computes the discount a valid coupon grants on cartTotal.
// The result never exceeds the cart total or the coupon's maximum.
func CouponDiscount(coupon *models.Coupon, cartTotal float64) float64 {
	var discount float64
	switch coupon.Type {
	case models.CouponPercentage:
		discount = cartTotal * coupon.Value / 100
	case models.CouponFixed:
		discount = coupon.Value
	}
	if coupon.MaximumDiscount != nil && discount > *coupon.MaximumDiscount {
		discount = *coupon.MaximumDiscount
	}
	if discount > cartTotal {
		discount = cartTotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
