package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// ErrNotFound is returned by lookups and targeted updates when no document
// matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by the Memory store when an insert violates a
// uniqueness rule. The Mongo store surfaces the driver's duplicate key error
// instead; callers should check for both.
var ErrDuplicate = errors.New("duplicate")

// ProductFilter narrows product listings. Empty fields match everything.
type ProductFilter struct {
	Category    string
	Subcategory string
	Search      string
}

// ProductUpdate carries a partial product edit; nil fields are left untouched.
// Setting Inventory keeps InStock in sync unless InStock is set explicitly.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Subcategory *string
	ImageURL    *string
	InStock     *bool
	Inventory   **int
}

// UserUpdate carries a partial user edit; nil fields are left untouched.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	Role         *string
}

type ProductStore interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id primitive.ObjectID, upd ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error

	// DecrementInventory atomically reduces a product's tracked inventory by
	// qty, floored at zero, and recomputes inStock. Products with untracked
	// (nil) inventory are left untouched.
	DecrementInventory(ctx context.Context, id primitive.ObjectID, qty int) error
}

type CartStore interface {
	// ListCartItems returns the session's lines joined with their current
	// product snapshots. Lines whose product no longer exists are omitted.
	ListCartItems(ctx context.Context, sessionID string) ([]models.CartItemWithProduct, error)
	GetCartItem(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error)
	// AddCartItem inserts a line, or increments quantity when the session
	// already holds the product.
	AddCartItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	// UpdateCartItem sets a line's quantity; qty <= 0 removes the line and
	// returns ErrNotFound.
	UpdateCartItem(ctx context.Context, id primitive.ObjectID, quantity int) (*models.CartItem, error)
	RemoveCartItem(ctx context.Context, id primitive.ObjectID) error
	ClearCart(ctx context.Context, sessionID string) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error
}

type OrderItemStore interface {
	CreateOrderItem(ctx context.Context, item *models.OrderItem) error
	ListOrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}

type ReviewStore interface {
	ListProductReviews(ctx context.Context, productID primitive.ObjectID) ([]models.ProductReviewWithUser, error)
	CreateReview(ctx context.Context, r *models.ProductReview) error
	ListUserReviews(ctx context.Context, userID primitive.ObjectID) ([]models.ProductReview, error)
	IncrementReviewHelpful(ctx context.Context, id primitive.ObjectID) (*models.ProductReview, error)
}

type WishlistStore interface {
	ListWishlist(ctx context.Context, userID primitive.ObjectID) ([]models.WishlistItemWithProduct, error)
	AddWishlistItem(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error)
	RemoveWishlistItem(ctx context.Context, userID, productID primitive.ObjectID) error
}

type CouponStore interface {
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	CreateCoupon(ctx context.Context, c *models.Coupon) error
	IncrementCouponUsage(ctx context.Context, id primitive.ObjectID) error
}

// Store is the persistence boundary the handlers and the checkout pipeline
// depend on. Implementations: Mongo (production) and Memory (tests, dev).
type Store interface {
	ProductStore
	CartStore
	OrderStore
	OrderItemStore
	UserStore
	CategoryStore
	ReviewStore
	WishlistStore
	CouponStore

	// WithTransaction runs fn inside the implementation's transactional
	// boundary, if it has one. The checkout pipeline wraps its mutations in
	// this so a mid-sequence failure cannot leave half an order behind.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
