package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type WishlistItemWithProduct struct {
	WishlistItem `bson:",inline"`
	Product      Product `bson:"product" json:"product"`
}
