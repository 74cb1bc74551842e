package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Inventory is nil when stock is not tracked for
// the product; InStock must stay consistent with inventory > 0 whenever it is.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Subcategory string             `bson:"subcategory" json:"subcategory"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl"`
	InStock     bool               `bson:"inStock" json:"inStock"`
	Inventory   *int               `bson:"inventory" json:"inventory"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
