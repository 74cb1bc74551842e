package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductReview is a shopper's rating of a product. Verified means the
// reviewer has a delivered order containing the product.
type ProductReview struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Rating    int                `bson:"rating" json:"rating"`
	Title     string             `bson:"title,omitempty" json:"title,omitempty"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Verified  bool               `bson:"verified" json:"verified"`
	Helpful   int                `bson:"helpful" json:"helpful"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ReviewUser is the reviewer summary embedded in review listings.
type ReviewUser struct {
	ID       primitive.ObjectID `bson:"id" json:"id"`
	Username string             `bson:"username" json:"username"`
}

// ProductReviewWithUser joins a review with its reviewer.
type ProductReviewWithUser struct {
	ProductReview `bson:",inline"`
	User          ReviewUser `bson:"user" json:"user"`
}
