package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"storefront/internal/models"
)

// AMQPPublisher publishes order events to RabbitMQ queues.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare queues up front so publish never fails on missing infra.
	for _, queue := range []string{OrderCreatedQueue, OrderStatusChangedQueue} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("declare %s: %w", queue, err)
		}
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

func (p *AMQPPublisher) PublishOrderCreated(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	ev := OrderCreated{
		EventType: "OrderCreated",
		OrderID:   order.ID.Hex(),
		UserID:    order.UserID.Hex(),
		Total:     order.Total,
		Timestamp: time.Now().UTC(),
	}
	for _, item := range items {
		ev.Items = append(ev.Items, OrderLine{
			ProductID: item.ProductID.Hex(),
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	return p.publishJSON(ctx, OrderCreatedQueue, ev)
}

func (p *AMQPPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order) error {
	ev := OrderStatusChanged{
		EventType: "OrderStatusChanged",
		OrderID:   order.ID.Hex(),
		Status:    order.Status,
		Timestamp: time.Now().UTC(),
	}

	return p.publishJSON(ctx, OrderStatusChangedQueue, ev)
}

func (p *AMQPPublisher) publishJSON(ctx context.Context, queue string, ev interface{}) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
