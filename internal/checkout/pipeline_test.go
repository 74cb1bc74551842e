package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/store"
)

func intPtr(n int) *int { return &n }

func seedProduct(t *testing.T, st store.Store, price float64, inventory *int) models.Product {
	t.Helper()
	p := models.Product{
		Name:      "Widget",
		Price:     price,
		Category:  "gadgets",
		InStock:   true,
		Inventory: inventory,
	}
	require.NoError(t, st.CreateProduct(context.Background(), &p))
	return p
}

func seedCartLine(t *testing.T, st store.Store, sessionID string, productID primitive.ObjectID, qty int) {
	t.Helper()
	_, err := st.AddCartItem(context.Background(), &models.CartItem{
		ProductID: productID,
		Quantity:  qty,
		SessionID: sessionID,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func newTestPipeline() (*Pipeline, *store.Memory) {
	st := store.NewMemory()
	return New(st, NewMemoryGuard(), events.NopPublisher{}), st
}

func TestCheckoutRequiresAuthentication(t *testing.T) {
	p, _ := newTestPipeline()

	_, err := p.Checkout(context.Background(), primitive.NilObjectID, "1 Main St", "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCheckoutRequiresShippingAddress(t *testing.T) {
	p, _ := newTestPipeline()

	_, err := p.Checkout(context.Background(), primitive.NewObjectID(), "   ", "")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestCheckoutEmptyCart(t *testing.T) {
	p, _ := newTestPipeline()

	_, err := p.Checkout(context.Background(), primitive.NewObjectID(), "1 Main St", "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutCreatesOrderWithSnapshot(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	book := seedProduct(t, st, 10.50, intPtr(10))
	pen := seedProduct(t, st, 5.00, intPtr(10))
	seedCartLine(t, st, session, book.ID, 2)
	seedCartLine(t, st, session, pen.ID, 1)

	order, err := p.Checkout(ctx, userID, "1 Main St", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, userID, order.UserID)
	assert.InDelta(t, 26.00, order.Total, 0.001)

	items, err := st.ListOrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		switch item.ProductID {
		case book.ID:
			assert.Equal(t, 2, item.Quantity)
			assert.Equal(t, 10.50, item.Price)
		case pen.ID:
			assert.Equal(t, 1, item.Quantity)
			assert.Equal(t, 5.00, item.Price)
		default:
			t.Fatalf("unexpected product in order items: %s", item.ProductID.Hex())
		}
	}
}

func TestCheckoutSnapshotSurvivesPriceChange(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	product := seedProduct(t, st, 10.00, intPtr(5))
	seedCartLine(t, st, session, product.ID, 1)

	order, err := p.Checkout(ctx, userID, "1 Main St", "")
	require.NoError(t, err)

	newPrice := 99.99
	_, err = st.UpdateProduct(ctx, product.ID, store.ProductUpdate{Price: &newPrice})
	require.NoError(t, err)

	items, err := st.ListOrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 10.00, items[0].Price)

	persisted, err := st.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10.00, persisted.Total, 0.001)
}

func TestCheckoutDecrementsInventoryFlooredAtZero(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	product := seedProduct(t, st, 3.00, intPtr(1))
	seedCartLine(t, st, session, product.ID, 5)

	_, err := p.Checkout(ctx, userID, "1 Main St", "")
	require.NoError(t, err)

	updated, err := st.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Inventory)
	assert.Equal(t, 0, *updated.Inventory)
	assert.False(t, updated.InStock)
}

func TestCheckoutLeavesUntrackedInventoryAlone(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	product := seedProduct(t, st, 3.00, nil)
	seedCartLine(t, st, session, product.ID, 2)

	_, err := p.Checkout(ctx, userID, "1 Main St", "")
	require.NoError(t, err)

	updated, err := st.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.Inventory)
	assert.True(t, updated.InStock)
}

func TestCheckoutClearsCart(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	product := seedProduct(t, st, 3.00, intPtr(10))
	seedCartLine(t, st, session, product.ID, 2)

	_, err := p.Checkout(ctx, userID, "1 Main St", "")
	require.NoError(t, err)

	lines, err := st.ListCartItems(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// The cart is now empty, so a second checkout has nothing to order.
	_, err = p.Checkout(ctx, userID, "1 Main St", "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutDropsLinesForDeletedProducts(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	kept := seedProduct(t, st, 4.00, intPtr(10))
	gone := seedProduct(t, st, 9.00, intPtr(10))
	seedCartLine(t, st, session, kept.ID, 1)
	seedCartLine(t, st, session, gone.ID, 1)

	require.NoError(t, st.DeleteProduct(ctx, gone.ID))

	order, err := p.Checkout(ctx, userID, "1 Main St", "")
	require.NoError(t, err)
	assert.InDelta(t, 4.00, order.Total, 0.001)

	items, err := st.ListOrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kept.ID, items[0].ProductID)
}

func TestCheckoutCartWithOnlyDeletedProductsIsEmpty(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	gone := seedProduct(t, st, 9.00, intPtr(10))
	seedCartLine(t, st, session, gone.ID, 1)
	require.NoError(t, st.DeleteProduct(ctx, gone.ID))

	_, err := p.Checkout(ctx, userID, "1 Main St", "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

// blockedGuard never grants the key, standing in for a concurrent checkout
// that already holds it.
type blockedGuard struct{}

func (blockedGuard) Acquire(ctx context.Context, key string) (bool, error) { return false, nil }
func (blockedGuard) Release(ctx context.Context, key string)               {}

func TestCheckoutDuplicateInFlight(t *testing.T) {
	st := store.NewMemory()
	p := New(st, blockedGuard{}, events.NopPublisher{})
	userID := primitive.NewObjectID()

	product := seedProduct(t, st, 3.00, intPtr(10))
	seedCartLine(t, st, SessionKeyFor(userID), product.ID, 1)

	_, err := p.Checkout(context.Background(), userID, "1 Main St", "")
	assert.ErrorIs(t, err, ErrDuplicateCheckout)
}

func TestCheckoutGuardReleasedAfterSuccess(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	product := seedProduct(t, st, 3.00, intPtr(10))
	seedCartLine(t, st, session, product.ID, 1)

	_, err := p.Checkout(ctx, userID, "1 Main St", "")
	require.NoError(t, err)

	// A fresh cart can check out again immediately.
	seedCartLine(t, st, session, product.ID, 1)
	_, err = p.Checkout(ctx, userID, "1 Main St", "")
	assert.NoError(t, err)
}

func seedCoupon(t *testing.T, st store.Store, coupon models.Coupon) models.Coupon {
	t.Helper()
	coupon.IsActive = true
	coupon.ValidFrom = time.Now().Add(-time.Hour)
	require.NoError(t, st.CreateCoupon(context.Background(), &coupon))
	return coupon
}

func TestCheckoutRedeemsCoupon(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	product := seedProduct(t, st, 50.00, intPtr(10))
	seedCartLine(t, st, session, product.ID, 2)
	seedCoupon(t, st, models.Coupon{Code: "SAVE10", Name: "Save 10", Type: models.CouponPercentage, Value: 10})

	order, err := p.Checkout(ctx, userID, "1 Main St", "SAVE10")
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.InDelta(t, 10.00, order.Discount, 0.001)
	assert.InDelta(t, 90.00, order.Total, 0.001)

	redeemed, err := st.GetCouponByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, redeemed.UsedCount)
}

func TestCheckoutRejectsUnknownCoupon(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	product := seedProduct(t, st, 5.00, intPtr(10))
	seedCartLine(t, st, session, product.ID, 1)

	_, err := p.Checkout(ctx, userID, "1 Main St", "NOPE")
	assert.ErrorIs(t, err, ErrInvalidCoupon)

	// The failed attempt left the cart and inventory untouched.
	lines, err := st.ListCartItems(ctx, session)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	updated, err := st.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, *updated.Inventory)
}

func TestCheckoutEnforcesCouponUsageLimit(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	session := func(id primitive.ObjectID) string { return SessionKeyFor(id) }

	product := seedProduct(t, st, 5.00, intPtr(10))
	coupon := seedCoupon(t, st, models.Coupon{Code: "ONCE", Name: "Single use", Type: models.CouponFixed, Value: 1, UsageLimit: intPtr(1)})

	first := primitive.NewObjectID()
	seedCartLine(t, st, session(first), product.ID, 1)
	_, err := p.Checkout(ctx, first, "1 Main St", coupon.Code)
	require.NoError(t, err)

	second := primitive.NewObjectID()
	seedCartLine(t, st, session(second), product.ID, 1)
	_, err = p.Checkout(ctx, second, "1 Main St", coupon.Code)
	assert.ErrorIs(t, err, ErrInvalidCoupon)
}

func TestCheckoutCouponBelowMinimumRejected(t *testing.T) {
	p, st := newTestPipeline()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	session := SessionKeyFor(userID)

	product := seedProduct(t, st, 5.00, intPtr(10))
	seedCartLine(t, st, session, product.ID, 1)
	seedCoupon(t, st, models.Coupon{Code: "BIG", Name: "Big carts", Type: models.CouponFixed, Value: 2, MinimumAmount: 100})

	_, err := p.Checkout(ctx, userID, "1 Main St", "BIG")
	assert.ErrorIs(t, err, ErrInvalidCoupon)
}
