package store

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

/* =========================
   USERS
========================= */

func (s *Mongo) CreateUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = time.Now()

	res, err := s.db.Collection("users").InsertOne(ctx, u)
	if err != nil {
		return err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Mongo) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Mongo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.Collection("users").FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Mongo) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.db.Collection("users").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Mongo) UpdateUser(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error) {
	updateSet := bson.M{}
	if upd.Email != nil {
		updateSet["email"] = strings.TrimSpace(*upd.Email)
	}
	if upd.PasswordHash != nil {
		updateSet["passwordHash"] = *upd.PasswordHash
	}
	if upd.Role != nil {
		updateSet["role"] = *upd.Role
	}
	if len(updateSet) == 0 {
		return s.GetUser(ctx, id)
	}

	res := s.db.Collection("users").FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": updateSet},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var updated models.User
	err := res.Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Mongo) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection("users").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

/* =========================
   CATEGORIES
========================= */

func (s *Mongo) ListCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := s.db.Collection("categories").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := make([]models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Mongo) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.db.Collection("categories").FindOne(ctx, bson.M{"slug": slug}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Mongo) CreateCategory(ctx context.Context, c *models.Category) error {
	c.CreatedAt = time.Now()

	res, err := s.db.Collection("categories").InsertOne(ctx, c)
	if err != nil {
		return err
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Mongo) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection("categories").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

/* =========================
   REVIEWS
========================= */

func (s *Mongo) ListProductReviews(ctx context.Context, productID primitive.ObjectID) ([]models.ProductReviewWithUser, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.db.Collection("product_reviews").Find(ctx, bson.M{"productId": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []models.ProductReview
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}

	joined := make([]models.ProductReviewWithUser, 0, len(reviews))
	for _, review := range reviews {
		reviewer := models.ReviewUser{Username: "Unknown User"}
		if user, err := s.GetUser(ctx, review.UserID); err == nil {
			reviewer = models.ReviewUser{ID: user.ID, Username: user.Username}
		}
		joined = append(joined, models.ProductReviewWithUser{ProductReview: review, User: reviewer})
	}
	return joined, nil
}

func (s *Mongo) CreateReview(ctx context.Context, r *models.ProductReview) error {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	res, err := s.db.Collection("product_reviews").InsertOne(ctx, r)
	if err != nil {
		return err
	}
	r.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Mongo) ListUserReviews(ctx context.Context, userID primitive.ObjectID) ([]models.ProductReview, error) {
	cursor, err := s.db.Collection("product_reviews").Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := make([]models.ProductReview, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *Mongo) IncrementReviewHelpful(ctx context.Context, id primitive.ObjectID) (*models.ProductReview, error) {
	res := s.db.Collection("product_reviews").FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"helpful": 1}, "$set": bson.M{"updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var updated models.ProductReview
	err := res.Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

/* =========================
   WISHLIST
========================= */

func (s *Mongo) ListWishlist(ctx context.Context, userID primitive.ObjectID) ([]models.WishlistItemWithProduct, error) {
	cursor, err := s.db.Collection("wishlist_items").Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.WishlistItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	joined := make([]models.WishlistItemWithProduct, 0, len(items))
	for _, item := range items {
		product, err := s.GetProduct(ctx, item.ProductID)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		joined = append(joined, models.WishlistItemWithProduct{WishlistItem: item, Product: *product})
	}
	return joined, nil
}

func (s *Mongo) AddWishlistItem(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	filter := bson.M{"userId": item.UserID, "productId": item.ProductID}

	var existing models.WishlistItem
	err := s.db.Collection("wishlist_items").FindOne(ctx, filter).Decode(&existing)
	if err == nil {
		return &existing, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	item.CreatedAt = time.Now()
	res, err := s.db.Collection("wishlist_items").InsertOne(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return item, nil
}

func (s *Mongo) RemoveWishlistItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := s.db.Collection("wishlist_items").DeleteOne(ctx, bson.M{
		"userId":    userID,
		"productId": productID,
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
