package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Checkout creates orders directly in StatusProcessing: the
// demo payment flow treats a placed order as immediately paid.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is one of the five order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is the persisted order document. Total equals the sum of its order
// items' price*quantity at creation time, minus any coupon discount, and is
// never recomputed.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Status          string             `bson:"status" json:"status"`
	Total           float64            `bson:"total" json:"total"`
	CouponCode      string             `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	Discount        float64            `bson:"discount,omitempty" json:"discount,omitempty"`
	ShippingAddress string             `bson:"shippingAddress" json:"shippingAddress"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderItem is an immutable snapshot of a cart line at checkout time. Price is
// the product's price at the moment the order was created and must not change
// when the catalog price does.
type OrderItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID   primitive.ObjectID `bson:"orderId" json:"orderId"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}
