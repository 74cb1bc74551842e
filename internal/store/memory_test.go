package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func intPtr(n int) *int { return &n }

func seedProduct(t *testing.T, s *Memory, name string, price float64, inventory *int) models.Product {
	t.Helper()
	p := models.Product{
		Name:      name,
		Price:     price,
		Category:  "gadgets",
		InStock:   true,
		Inventory: inventory,
	}
	require.NoError(t, s.CreateProduct(context.Background(), &p))
	return p
}

func TestAddCartItemUpsertsQuantity(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	product := seedProduct(t, s, "Widget", 2.00, nil)

	first, err := s.AddCartItem(ctx, &models.CartItem{
		ProductID: product.ID, Quantity: 2, SessionID: "sess", CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	second, err := s.AddCartItem(ctx, &models.CartItem{
		ProductID: product.ID, Quantity: 3, SessionID: "sess", CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	lines, err := s.ListCartItems(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestCartSessionsAreIsolated(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	product := seedProduct(t, s, "Widget", 2.00, nil)

	_, err := s.AddCartItem(ctx, &models.CartItem{
		ProductID: product.ID, Quantity: 1, SessionID: "a", CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	lines, err := s.ListCartItems(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestUpdateCartItemZeroQuantityRemovesLine(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	product := seedProduct(t, s, "Widget", 2.00, nil)

	item, err := s.AddCartItem(ctx, &models.CartItem{
		ProductID: product.ID, Quantity: 2, SessionID: "sess", CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = s.UpdateCartItem(ctx, item.ID, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	lines, err := s.ListCartItems(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestListCartItemsDropsDeletedProducts(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	kept := seedProduct(t, s, "Kept", 2.00, nil)
	gone := seedProduct(t, s, "Gone", 3.00, nil)

	for _, p := range []models.Product{kept, gone} {
		_, err := s.AddCartItem(ctx, &models.CartItem{
			ProductID: p.ID, Quantity: 1, SessionID: "sess", CreatedAt: time.Now(),
		})
		require.NoError(t, err)
	}
	require.NoError(t, s.DeleteProduct(ctx, gone.ID))

	lines, err := s.ListCartItems(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, kept.ID, lines[0].ProductID)
}

func TestClearCartOnlyTouchesSession(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	product := seedProduct(t, s, "Widget", 2.00, nil)

	for _, sess := range []string{"a", "b"} {
		_, err := s.AddCartItem(ctx, &models.CartItem{
			ProductID: product.ID, Quantity: 1, SessionID: sess, CreatedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	require.NoError(t, s.ClearCart(ctx, "a"))

	linesA, err := s.ListCartItems(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, linesA)

	linesB, err := s.ListCartItems(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, linesB, 1)
}

func TestDecrementInventoryFloorsAtZero(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	product := seedProduct(t, s, "Widget", 2.00, intPtr(3))

	require.NoError(t, s.DecrementInventory(ctx, product.ID, 10))

	updated, err := s.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Inventory)
	assert.Equal(t, 0, *updated.Inventory)
	assert.False(t, updated.InStock)
}

func TestDecrementInventorySkipsUntracked(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	product := seedProduct(t, s, "Widget", 2.00, nil)

	require.NoError(t, s.DecrementInventory(ctx, product.ID, 10))

	updated, err := s.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.Inventory)
	assert.True(t, updated.InStock)
}

func TestUpdateProductInventorySyncsInStock(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	product := seedProduct(t, s, "Widget", 2.00, intPtr(5))

	zero := intPtr(0)
	updated, err := s.UpdateProduct(ctx, product.ID, ProductUpdate{Inventory: &zero})
	require.NoError(t, err)
	assert.False(t, updated.InStock)

	five := intPtr(5)
	updated, err = s.UpdateProduct(ctx, product.ID, ProductUpdate{Inventory: &five})
	require.NoError(t, err)
	assert.True(t, updated.InStock)
}

func TestListProductsFilters(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	seedProduct(t, s, "Red Mug", 4.00, nil)
	blue := models.Product{Name: "Blue Mug", Price: 5.00, Category: "kitchen", InStock: true}
	require.NoError(t, s.CreateProduct(ctx, &blue))

	byCategory, err := s.ListProducts(ctx, ProductFilter{Category: "kitchen"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Blue Mug", byCategory[0].Name)

	bySearch, err := s.ListProducts(ctx, ProductFilter{Search: "mug"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "alice", Email: "a@example.com"}))
	err := s.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateUserAllowsMultipleUsersWithoutEmail(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "alice"}))
	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "bob"}))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestGetCouponByCodeIsCaseInsensitive(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.CreateCoupon(ctx, &models.Coupon{
		Code: "save10", Name: "Save 10", Type: models.CouponPercentage, Value: 10, IsActive: true,
	}))

	coupon, err := s.GetCouponByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", coupon.Code)

	_, err = s.GetCouponByCode(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncrementCouponUsage(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	coupon := models.Coupon{Code: "SAVE5", Name: "Save 5", Type: models.CouponFixed, Value: 5, IsActive: true}
	require.NoError(t, s.CreateCoupon(ctx, &coupon))

	require.NoError(t, s.IncrementCouponUsage(ctx, coupon.ID))
	require.NoError(t, s.IncrementCouponUsage(ctx, coupon.ID))

	updated, err := s.GetCouponByCode(ctx, "SAVE5")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.UsedCount)

	assert.ErrorIs(t, s.IncrementCouponUsage(ctx, primitive.NewObjectID()), ErrNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	order := models.Order{UserID: primitive.NewObjectID(), Status: models.StatusProcessing, Total: 10}
	require.NoError(t, s.CreateOrder(ctx, &order))

	updated, err := s.UpdateOrderStatus(ctx, order.ID, models.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, updated.Status)

	_, err = s.UpdateOrderStatus(ctx, primitive.NewObjectID(), models.StatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}
