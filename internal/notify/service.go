package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/chinhon/go-storefront/internal/kafka"
	"github.com/chinhon/go-storefront/internal/orders"
	"github.com/chinhon/go-storefront/internal/redisx"
)

// Service consumes order.status.changed and hands each change to the
// notification sink. The status change itself committed long before the
// event arrives here, so a failed delivery can never roll it back.
type Service struct {
	Redis       *redis.Client
	ServiceName string
	Log         *zap.Logger
}

// HandleStatusChanged is wired as the consumer handler.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil // ignore
	}

	// dedup via Redis on event_id
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	// delivery sink: downstream channels (mail, webhooks) attach here
	s.Log.Info("order status notification",
		zap.String("order_id", p.OrderID),
		zap.String("old", string(p.Old)),
		zap.String("new", string(p.New)),
		zap.String("event_id", env.EventID))
	return nil
}
