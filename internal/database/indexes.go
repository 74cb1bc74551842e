package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the query paths rely on. Creation is
// idempotent so this runs on every startup.
func EnsureIndexes(db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			// Email is optional; the partial filter keeps documents without
			// one from colliding on a null key.
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$exists": true}})},
		},
		"products": {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		"categories": {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"cart_items": {
			{Keys: bson.D{{Key: "sessionId", Value: 1}}},
		},
		"orders": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"order_items": {
			{Keys: bson.D{{Key: "orderId", Value: 1}}},
		},
		"product_reviews": {
			{Keys: bson.D{{Key: "productId", Value: 1}}},
		},
		"wishlist_items": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"coupons": {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			log.Printf("[DB] [ERROR] Failed to create indexes for %s: %v", coll, err)
			continue
		}
		log.Printf("[DB] [INFO] Indexes ensured for %s", coll)
	}
}
