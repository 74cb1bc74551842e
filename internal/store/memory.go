package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// Memory is a map-backed Store for tests and the STORE_DRIVER=memory dev
// mode. It mirrors the Mongo implementation's semantics, including the
// floored inventory decrement and the cart join that drops lines whose
// product is gone.
type Memory struct {
	mu sync.RWMutex
	// txnMu serializes WithTransaction blocks so two concurrent checkouts
	// cannot interleave their read-then-write sequences.
	txnMu sync.Mutex

	products   map[primitive.ObjectID]models.Product
	cartItems  map[primitive.ObjectID]models.CartItem
	orders     map[primitive.ObjectID]models.Order
	orderItems map[primitive.ObjectID]models.OrderItem
	users      map[primitive.ObjectID]models.User
	categories map[primitive.ObjectID]models.Category
	reviews    map[primitive.ObjectID]models.ProductReview
	wishlist   map[primitive.ObjectID]models.WishlistItem
	coupons    map[primitive.ObjectID]models.Coupon
}

func NewMemory() *Memory {
	return &Memory{
		products:   make(map[primitive.ObjectID]models.Product),
		cartItems:  make(map[primitive.ObjectID]models.CartItem),
		orders:     make(map[primitive.ObjectID]models.Order),
		orderItems: make(map[primitive.ObjectID]models.OrderItem),
		users:      make(map[primitive.ObjectID]models.User),
		categories: make(map[primitive.ObjectID]models.Category),
		reviews:    make(map[primitive.ObjectID]models.ProductReview),
		wishlist:   make(map[primitive.ObjectID]models.WishlistItem),
		coupons:    make(map[primitive.ObjectID]models.Coupon),
	}
}

func (s *Memory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txnMu.Lock()
	defer s.txnMu.Unlock()
	return fn(ctx)
}

/* =========================
   PRODUCTS
========================= */

func (s *Memory) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.Product, 0)
	for _, p := range s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Subcategory != "" && p.Subcategory != filter.Subcategory {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *Memory) CreateProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products[p.ID] = *p
	return nil
}

func (s *Memory) UpdateProduct(ctx context.Context, id primitive.ObjectID, upd ProductUpdate) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}

	if upd.Name != nil {
		p.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		p.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Category != nil {
		p.Category = strings.TrimSpace(*upd.Category)
	}
	if upd.Subcategory != nil {
		p.Subcategory = strings.TrimSpace(*upd.Subcategory)
	}
	if upd.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*upd.ImageURL)
	}
	if upd.Inventory != nil {
		p.Inventory = *upd.Inventory
		if p.Inventory != nil && upd.InStock == nil {
			p.InStock = *p.Inventory > 0
		}
	}
	if upd.InStock != nil {
		p.InStock = *upd.InStock
	}
	p.UpdatedAt = time.Now()

	s.products[id] = p
	return &p, nil
}

func (s *Memory) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Memory) DecrementInventory(ctx context.Context, id primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.Inventory == nil {
		return nil
	}

	next := *p.Inventory - qty
	if next < 0 {
		next = 0
	}
	p.Inventory = &next
	p.InStock = next > 0
	p.UpdatedAt = time.Now()
	s.products[id] = p
	return nil
}

/* =========================
   CART
========================= */

func (s *Memory) ListCartItems(ctx context.Context, sessionID string) ([]models.CartItemWithProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	joined := make([]models.CartItemWithProduct, 0)
	for _, item := range s.cartItems {
		if item.SessionID != sessionID {
			continue
		}
		product, ok := s.products[item.ProductID]
		if !ok {
			continue
		}
		joined = append(joined, models.CartItemWithProduct{CartItem: item, Product: product})
	}
	sort.Slice(joined, func(i, j int) bool { return joined[i].CreatedAt.Before(joined[j].CreatedAt) })
	return joined, nil
}

func (s *Memory) GetCartItem(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.cartItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *Memory) AddCartItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	for id, existing := range s.cartItems {
		if existing.ProductID == item.ProductID && existing.SessionID == item.SessionID {
			existing.Quantity += item.Quantity
			s.cartItems[id] = existing
			return &existing, nil
		}
	}

	item.ID = primitive.NewObjectID()
	item.CreatedAt = time.Now()
	s.cartItems[item.ID] = *item
	return item, nil
}

func (s *Memory) UpdateCartItem(ctx context.Context, id primitive.ObjectID, quantity int) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	if quantity <= 0 {
		delete(s.cartItems, id)
		return nil, ErrNotFound
	}

	item.Quantity = quantity
	s.cartItems[id] = item
	return &item, nil
}

func (s *Memory) RemoveCartItem(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cartItems[id]; !ok {
		return ErrNotFound
	}
	delete(s.cartItems, id)
	return nil
}

func (s *Memory) ClearCart(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.cartItems {
		if item.SessionID == sessionID {
			delete(s.cartItems, id)
		}
	}
	return nil
}

/* =========================
   ORDERS
========================= */

func (s *Memory) CreateOrder(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = now
	o.UpdatedAt = now
	s.orders[o.ID] = *o
	return nil
}

func (s *Memory) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *Memory) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) ListOrders(ctx context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	s.orders[id] = o
	return &o, nil
}

func (s *Memory) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *Memory) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = primitive.NewObjectID()
	s.orderItems[item.ID] = *item
	return nil
}

func (s *Memory) ListOrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.OrderItem, 0)
	for _, item := range s.orderItems {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

/* =========================
   USERS
========================= */

func (s *Memory) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username || (u.Email != "" && existing.Email == u.Email) {
			return ErrDuplicate
		}
	}

	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

func (s *Memory) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *Memory) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *Memory) UpdateUser(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil {
		u.Email = strings.TrimSpace(*upd.Email)
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	s.users[id] = u
	return &u, nil
}

func (s *Memory) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

/* =========================
   CATEGORIES
========================= */

func (s *Memory) ListCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Memory) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) CreateCategory(ctx context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Slug == c.Slug {
			return ErrDuplicate
		}
	}

	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	s.categories[c.ID] = *c
	return nil
}

func (s *Memory) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

/* =========================
   REVIEWS
========================= */

func (s *Memory) ListProductReviews(ctx context.Context, productID primitive.ObjectID) ([]models.ProductReviewWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	joined := make([]models.ProductReviewWithUser, 0)
	for _, r := range s.reviews {
		if r.ProductID != productID {
			continue
		}
		reviewer := models.ReviewUser{Username: "Unknown User"}
		if u, ok := s.users[r.UserID]; ok {
			reviewer = models.ReviewUser{ID: u.ID, Username: u.Username}
		}
		joined = append(joined, models.ProductReviewWithUser{ProductReview: r, User: reviewer})
	}
	sort.Slice(joined, func(i, j int) bool { return joined[i].CreatedAt.Before(joined[j].CreatedAt) })
	return joined, nil
}

func (s *Memory) CreateReview(ctx context.Context, r *models.ProductReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	r.ID = primitive.NewObjectID()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.reviews[r.ID] = *r
	return nil
}

func (s *Memory) ListUserReviews(ctx context.Context, userID primitive.ObjectID) ([]models.ProductReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ProductReview, 0)
	for _, r := range s.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Memory) IncrementReviewHelpful(ctx context.Context, id primitive.ObjectID) (*models.ProductReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Helpful++
	r.UpdatedAt = time.Now()
	s.reviews[id] = r
	return &r, nil
}

/* =========================
   WISHLIST
========================= */

func (s *Memory) ListWishlist(ctx context.Context, userID primitive.ObjectID) ([]models.WishlistItemWithProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	joined := make([]models.WishlistItemWithProduct, 0)
	for _, item := range s.wishlist {
		if item.UserID != userID {
			continue
		}
		product, ok := s.products[item.ProductID]
		if !ok {
			continue
		}
		joined = append(joined, models.WishlistItemWithProduct{WishlistItem: item, Product: product})
	}
	sort.Slice(joined, func(i, j int) bool { return joined[i].CreatedAt.Before(joined[j].CreatedAt) })
	return joined, nil
}

func (s *Memory) AddWishlistItem(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.wishlist {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			return &existing, nil
		}
	}

	item.ID = primitive.NewObjectID()
	item.CreatedAt = time.Now()
	s.wishlist[item.ID] = *item
	return item, nil
}

func (s *Memory) RemoveWishlistItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.wishlist {
		if item.UserID == userID && item.ProductID == productID {
			delete(s.wishlist, id)
			return nil
		}
	}
	return ErrNotFound
}

/* =========================
   COUPONS
========================= */

func (s *Memory) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, c := range s.coupons {
		if c.Code == normalized {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := strings.ToUpper(strings.TrimSpace(c.Code))
	for _, existing := range s.coupons {
		if existing.Code == normalized {
			return ErrDuplicate
		}
	}

	now := time.Now()
	c.ID = primitive.NewObjectID()
	c.Code = normalized
	c.CreatedAt = now
	c.UpdatedAt = now
	s.coupons[c.ID] = *c
	return nil
}

func (s *Memory) IncrementCouponUsage(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.coupons[id]
	if !ok {
		return ErrNotFound
	}
	c.UsedCount++
	c.UpdatedAt = time.Now()
	s.coupons[id] = c
	return nil
}

var _ Store = (*Memory)(nil)
