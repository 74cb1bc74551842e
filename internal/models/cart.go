package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one (product, quantity) line scoped to a session. The session
// identifier is an opaque string: "user-<id>" for logged-in shoppers, a
// generated value for guests.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	SessionID string             `bson:"sessionId" json:"sessionId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CartItemWithProduct joins a cart line with its current product snapshot.
type CartItemWithProduct struct {
	CartItem `bson:",inline"`
	Product  Product `bson:"product" json:"product"`
}
