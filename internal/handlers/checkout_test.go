package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/checkout"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/store"
)

func newCheckoutContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("POST", "/api/checkout", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestCheckoutHandlerUnauthenticated(t *testing.T) {
	st := store.NewMemory()
	pipeline := checkout.New(st, checkout.NewMemoryGuard(), events.NopPublisher{})

	c, rec := newCheckoutContext(t, `{"shippingAddress":"1 Main St"}`)
	Checkout(pipeline)(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCheckoutHandlerMissingAddress(t *testing.T) {
	st := store.NewMemory()
	pipeline := checkout.New(st, checkout.NewMemoryGuard(), events.NopPublisher{})

	c, rec := newCheckoutContext(t, `{}`)
	c.Set("userId", primitive.NewObjectID())
	Checkout(pipeline)(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCheckoutHandlerEmptyCart(t *testing.T) {
	st := store.NewMemory()
	pipeline := checkout.New(st, checkout.NewMemoryGuard(), events.NopPublisher{})

	c, rec := newCheckoutContext(t, `{"shippingAddress":"1 Main St"}`)
	c.Set("userId", primitive.NewObjectID())
	Checkout(pipeline)(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCheckoutHandlerCreatesOrder(t *testing.T) {
	st := store.NewMemory()
	pipeline := checkout.New(st, checkout.NewMemoryGuard(), events.NopPublisher{})
	ctx := context.Background()

	userID := primitive.NewObjectID()
	product := models.Product{Name: "Widget", Price: 12.75, Category: "gadgets", InStock: true}
	if err := st.CreateProduct(ctx, &product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if _, err := st.AddCartItem(ctx, &models.CartItem{
		ProductID: product.ID,
		Quantity:  2,
		SessionID: checkout.SessionKeyFor(userID),
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	c, rec := newCheckoutContext(t, `{"shippingAddress":"1 Main St"}`)
	c.Set("userId", userID)
	Checkout(pipeline)(c)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var order models.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if order.Status != models.StatusProcessing {
		t.Fatalf("expected status processing, got %s", order.Status)
	}
	if order.Total != 25.50 {
		t.Fatalf("expected total 25.50, got %v", order.Total)
	}
}

func TestCheckoutHandlerAppliesCoupon(t *testing.T) {
	st := store.NewMemory()
	pipeline := checkout.New(st, checkout.NewMemoryGuard(), events.NopPublisher{})
	ctx := context.Background()

	userID := primitive.NewObjectID()
	product := models.Product{Name: "Widget", Price: 100.00, Category: "gadgets", InStock: true}
	if err := st.CreateProduct(ctx, &product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if _, err := st.AddCartItem(ctx, &models.CartItem{
		ProductID: product.ID,
		Quantity:  1,
		SessionID: checkout.SessionKeyFor(userID),
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if err := st.CreateCoupon(ctx, &models.Coupon{
		Code: "SAVE10", Name: "Save 10", Type: models.CouponPercentage, Value: 10,
		IsActive: true, ValidFrom: time.Now().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed coupon: %v", err)
	}

	c, rec := newCheckoutContext(t, `{"shippingAddress":"1 Main St","couponCode":"SAVE10"}`)
	c.Set("userId", userID)
	Checkout(pipeline)(c)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var order models.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if order.Total != 90.00 || order.Discount != 10.00 {
		t.Fatalf("expected total 90 with discount 10, got total=%v discount=%v", order.Total, order.Discount)
	}

	redeemed, err := st.GetCouponByCode(ctx, "SAVE10")
	if err != nil {
		t.Fatalf("lookup coupon: %v", err)
	}
	if redeemed.UsedCount != 1 {
		t.Fatalf("expected usedCount 1, got %d", redeemed.UsedCount)
	}
}

func TestCheckoutHandlerRejectsUnknownCoupon(t *testing.T) {
	st := store.NewMemory()
	pipeline := checkout.New(st, checkout.NewMemoryGuard(), events.NopPublisher{})
	ctx := context.Background()

	userID := primitive.NewObjectID()
	product := models.Product{Name: "Widget", Price: 10.00, Category: "gadgets", InStock: true}
	if err := st.CreateProduct(ctx, &product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if _, err := st.AddCartItem(ctx, &models.CartItem{
		ProductID: product.ID,
		Quantity:  1,
		SessionID: checkout.SessionKeyFor(userID),
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	c, rec := newCheckoutContext(t, `{"shippingAddress":"1 Main St","couponCode":"NOPE"}`)
	c.Set("userId", userID)
	Checkout(pipeline)(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
