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

// Mongo is the production Store backed by a MongoDB database.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

// WithTransaction runs fn inside a server session transaction. Store calls
// made with the context fn receives join the transaction.
func (s *Mongo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

/* =========================
   PRODUCTS
========================= */

func (s *Mongo) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query["category"] = category
	}
	if subcategory := strings.TrimSpace(filter.Subcategory); subcategory != "" {
		query["subcategory"] = subcategory
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.db.Collection("products").Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Mongo) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Mongo) CreateProduct(ctx context.Context, p *models.Product) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := s.db.Collection("products").InsertOne(ctx, p)
	if err != nil {
		return err
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Mongo) UpdateProduct(ctx context.Context, id primitive.ObjectID, upd ProductUpdate) (*models.Product, error) {
	updateSet := bson.M{"updatedAt": time.Now()}

	if upd.Name != nil {
		updateSet["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		updateSet["description"] = strings.TrimSpace(*upd.Description)
	}
	if upd.Price != nil {
		updateSet["price"] = *upd.Price
	}
	if upd.Category != nil {
		updateSet["category"] = strings.TrimSpace(*upd.Category)
	}
	if upd.Subcategory != nil {
		updateSet["subcategory"] = strings.TrimSpace(*upd.Subcategory)
	}
	if upd.ImageURL != nil {
		updateSet["imageUrl"] = strings.TrimSpace(*upd.ImageURL)
	}
	if upd.Inventory != nil {
		updateSet["inventory"] = *upd.Inventory
		if *upd.Inventory != nil && upd.InStock == nil {
			updateSet["inStock"] = **upd.Inventory > 0
		}
	}
	if upd.InStock != nil {
		updateSet["inStock"] = *upd.InStock
	}

	res, err := s.db.Collection("products").UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updateSet})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.GetProduct(ctx, id)
}

func (s *Mongo) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection("products").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementInventory uses an aggregation-pipeline update so the subtract,
// the floor at zero and the inStock recompute happen in one atomic document
// write. Concurrent checkouts against the same product cannot lose updates.
func (s *Mongo) DecrementInventory(ctx context.Context, id primitive.ObjectID, qty int) error {
	filter := bson.M{
		"_id":       id,
		"inventory": bson.M{"$type": "number"},
	}
	update := bson.A{
		bson.M{"$set": bson.M{
			"inventory": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$inventory", qty}}}},
		}},
		bson.M{"$set": bson.M{
			"inStock":   bson.M{"$gt": bson.A{"$inventory", 0}},
			"updatedAt": time.Now(),
		}},
	}

	// No match means the product vanished or its inventory is untracked;
	// neither fails the checkout.
	_, err := s.db.Collection("products").UpdateOne(ctx, filter, update)
	return err
}

/* =========================
   CART
========================= */

func (s *Mongo) ListCartItems(ctx context.Context, sessionID string) ([]models.CartItemWithProduct, error) {
	cursor, err := s.db.Collection("cart_items").Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	joined := make([]models.CartItemWithProduct, 0, len(items))
	for _, item := range items {
		product, err := s.GetProduct(ctx, item.ProductID)
		if err == ErrNotFound {
			// Product deleted between add-to-cart and now: drop the line.
			continue
		}
		if err != nil {
			return nil, err
		}
		joined = append(joined, models.CartItemWithProduct{CartItem: item, Product: *product})
	}
	return joined, nil
}

func (s *Mongo) GetCartItem(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.Collection("cart_items").FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Mongo) AddCartItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	filter := bson.M{
		"productId": item.ProductID,
		"sessionId": item.SessionID,
	}

	var existing models.CartItem
	err := s.db.Collection("cart_items").FindOne(ctx, filter).Decode(&existing)
	if err == nil {
		res := s.db.Collection("cart_items").FindOneAndUpdate(ctx, bson.M{"_id": existing.ID},
			bson.M{"$inc": bson.M{"quantity": item.Quantity}},
			options.FindOneAndUpdate().SetReturnDocument(options.After))
		var updated models.CartItem
		if err := res.Decode(&updated); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	item.CreatedAt = time.Now()
	insertRes, err := s.db.Collection("cart_items").InsertOne(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = insertRes.InsertedID.(primitive.ObjectID)
	return item, nil
}

func (s *Mongo) UpdateCartItem(ctx context.Context, id primitive.ObjectID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		if err := s.RemoveCartItem(ctx, id); err != nil && err != ErrNotFound {
			return nil, err
		}
		return nil, ErrNotFound
	}

	res := s.db.Collection("cart_items").FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"quantity": quantity}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var updated models.CartItem
	err := res.Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Mongo) RemoveCartItem(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection("cart_items").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) ClearCart(ctx context.Context, sessionID string) error {
	_, err := s.db.Collection("cart_items").DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}

var _ Store = (*Mongo)(nil)
