// Package checkout converts a session's cart into a durable order: it
// computes the total, creates the order and its item snapshots, decrements
// product inventory and clears the cart as one unit of work.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/store"
)

var (
	// ErrUnauthenticated means no verified caller identity was supplied.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidAddress means the shipping address was empty after trimming.
	ErrInvalidAddress = errors.New("shipping address is required")
	// ErrEmptyCart means the session's cart resolved to zero usable lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrDuplicateCheckout means another checkout for the same user is still
	// in flight.
	ErrDuplicateCheckout = errors.New("checkout already in progress")
	// ErrInvalidCoupon means the supplied coupon code does not exist or
	// cannot apply to this cart.
	ErrInvalidCoupon = errors.New("invalid coupon")
)

// SessionKeyFor derives the cart session identifier for a logged-in user.
// It is computed from the verified identity, never taken from the client.
func SessionKeyFor(userID primitive.ObjectID) string {
	return "user-" + userID.Hex()
}

type Pipeline struct {
	store  store.Store
	guard  Guard
	events events.Publisher
}

func New(s store.Store, guard Guard, publisher events.Publisher) *Pipeline {
	return &Pipeline{store: s, guard: guard, events: publisher}
}

// Checkout places an order for the user's cart. couponCode is optional; when
// given it is redeemed against the order total. All precondition checks run
// before any mutation; the mutations themselves, coupon redemption included,
// run inside the store's transactional boundary.
func (p *Pipeline) Checkout(ctx context.Context, userID primitive.ObjectID, shippingAddress, couponCode string) (*models.Order, error) {
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}

	address := strings.TrimSpace(shippingAddress)
	if address == "" {
		return nil, ErrInvalidAddress
	}

	// One checkout per user at a time. A retried request that races its
	// predecessor cannot double-decrement inventory or duplicate the order.
	key := "checkout:" + userID.Hex()
	acquired, err := p.guard.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrDuplicateCheckout
	}
	defer p.guard.Release(ctx, key)

	sessionKey := SessionKeyFor(userID)

	// Lines whose product was deleted since add-to-cart are dropped by the
	// join rather than failing the whole checkout.
	lines, err := p.store.ListCartItems(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	total := 0.0
	for _, line := range lines {
		total += line.Product.Price * float64(line.Quantity)
	}

	order := &models.Order{
		UserID: userID,
		// The demo payment flow marks a placed order as immediately paid.
		Status:          models.StatusProcessing,
		Total:           total,
		ShippingAddress: address,
	}
	items := make([]models.OrderItem, 0, len(lines))

	err = p.store.WithTransaction(ctx, func(txCtx context.Context) error {
		// Coupon state is re-checked here so a usage limit cannot be
		// oversubscribed by concurrent checkouts.
		if code := strings.TrimSpace(couponCode); code != "" {
			coupon, err := p.store.GetCouponByCode(txCtx, code)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("%w: unknown code", ErrInvalidCoupon)
				}
				return err
			}
			ok, reason := ValidateCoupon(coupon, total, time.Now())
			if !ok {
				return fmt.Errorf("%w: %s", ErrInvalidCoupon, reason)
			}

			discount := CouponDiscount(coupon, total)
			order.CouponCode = coupon.Code
			order.Discount = discount
			order.Total = total - discount

			if err := p.store.IncrementCouponUsage(txCtx, coupon.ID); err != nil {
				return err
			}
		}

		if err := p.store.CreateOrder(txCtx, order); err != nil {
			return err
		}

		for _, line := range lines {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Product.Price,
			}
			if err := p.store.CreateOrderItem(txCtx, &item); err != nil {
				return err
			}
			items = append(items, item)

			if err := p.store.DecrementInventory(txCtx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		return p.store.ClearCart(txCtx, sessionKey)
	})
	if err != nil {
		return nil, err
	}

	if err := p.events.PublishOrderCreated(ctx, order, items); err != nil {
		log.Println("[CHECKOUT] [ERROR] order created event publish failed:", err)
	}

	log.Printf("[CHECKOUT] [INFO] order %s created for user %s: %d items, total %.2f",
		order.ID.Hex(), userID.Hex(), len(items), order.Total)
	return order, nil
}
