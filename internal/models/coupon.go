package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon types.
const (
	CouponPercentage = "percentage"
	CouponFixed      = "fixed"
)

// Coupon is a discount code. Value is a percentage (0-100) for percentage
// coupons and a currency amount for fixed ones. UsageLimit nil means
// unlimited; ValidUntil nil means no expiry.
type Coupon struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code            string             `bson:"code" json:"code"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Type            string             `bson:"type" json:"type"`
	Value           float64            `bson:"value" json:"value"`
	MinimumAmount   float64            `bson:"minimumAmount" json:"minimumAmount"`
	MaximumDiscount *float64           `bson:"maximumDiscount,omitempty" json:"maximumDiscount,omitempty"`
	UsageLimit      *int               `bson:"usageLimit,omitempty" json:"usageLimit,omitempty"`
	UsedCount       int                `bson:"usedCount" json:"usedCount"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	ValidFrom       time.Time          `bson:"validFrom" json:"validFrom"`
	ValidUntil      *time.Time         `bson:"validUntil,omitempty" json:"validUntil,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
