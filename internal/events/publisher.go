// Package events publishes order lifecycle events for downstream consumers
// (fulfilment, notification mails). Publishing is best effort: the checkout
// flow never fails because a broker is down.
package events

import (
	"context"
	"time"

	"storefront/internal/models"
)

const (
	OrderCreatedQueue       = "order.created"
	OrderStatusChangedQueue = "order.status_changed"
)

type OrderLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderCreated struct {
	EventType string      `json:"eventType"`
	OrderID   string      `json:"orderId"`
	UserID    string      `json:"userId"`
	Total     float64     `json:"total"`
	Items     []OrderLine `json:"items"`
	Timestamp time.Time   `json:"timestamp"`
}

type OrderStatusChanged struct {
	EventType string    `json:"eventType"`
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order, items []models.OrderItem) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order) error
	Close() error
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return nil
}

func (NopPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
