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
   ORDERS
========================= */

func (s *Mongo) CreateOrder(ctx context.Context, o *models.Order) error {
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	res, err := s.db.Collection("orders").InsertOne(ctx, o)
	if err != nil {
		return err
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Mongo) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Mongo) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{"userId": userID})
}

func (s *Mongo) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{})
}

func (s *Mongo) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.db.Collection("orders").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Mongo) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	res := s.db.Collection("orders").FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var updated models.Order
	err := res.Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Mongo) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection("orders").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

/* =========================
   ORDER ITEMS
========================= */

func (s *Mongo) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	res, err := s.db.Collection("order_items").InsertOne(ctx, item)
	if err != nil {
		return err
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Mongo) ListOrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	cursor, err := s.db.Collection("order_items").Find(ctx, bson.M{"orderId": orderID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.OrderItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

/* =========================
   COUPONS
========================= */

func (s *Mongo) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	var coupon models.Coupon
	err := s.db.Collection("coupons").FindOne(ctx, bson.M{"code": normalized}).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (s *Mongo) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	now := time.Now()
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := s.db.Collection("coupons").InsertOne(ctx, c)
	if err != nil {
		return err
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Mongo) IncrementCouponUsage(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection("coupons").UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"usedCount": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
