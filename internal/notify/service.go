// Package notify records kitchen notifications for order events. The
// WhatsApp hand-off is fire-and-forget from the browser, so this keeps
// an operator-visible trail of every placed order and status change.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "cloudkitchen/internal/kafka"
	"cloudkitchen/internal/orders"
	"cloudkitchen/internal/redisx"
	"cloudkitchen/internal/whatsapp"
)

type Service struct {
	DB          *pgxpool.Pool
	Redis       *redis.Client
	ServiceName string
}

// HandleEvent is the consumer handler for both order topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event id so consumer retries never double-record
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	var orderID, message string
	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		orderID = p.OrderID
		message = fmt.Sprintf("New %s order %s (%s): %d items, %s",
			p.OrderType, p.OrderID, p.PaymentMethod, len(p.Items), whatsapp.FormatCurrency(p.Total))
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		orderID = p.OrderID
		if p.Override {
			message = fmt.Sprintf("Order %s status overridden: %s -> %s", p.OrderID, p.From, p.To)
		} else {
			message = fmt.Sprintf("Order %s status: %s -> %s", p.OrderID, p.From, p.To)
		}
	default:
		return nil // foreign event type, ignore
	}

	if _, err := s.DB.Exec(ctx, `
		INSERT INTO notifications (event_id, order_id, event_type, message)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING`,
		env.EventID, orderID, env.EventType, message); err != nil {
		return err
	}

	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}
