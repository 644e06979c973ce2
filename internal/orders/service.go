package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/chinhon/go-storefront/internal/kafka"
	"github.com/chinhon/go-storefront/internal/redisx"
)

// EventPublisher is satisfied by kafka.Producer.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service fronts the transactional store: it validates input, maps the
// error taxonomy, keeps the status cache warm and emits domain events.
// Redis and Publisher may be nil; the cache and events are best-effort
// and never affect the outcome of a committed operation.
type Service struct {
	Store     Store
	Redis     *redis.Client
	Publisher EventPublisher
	Log       *zap.Logger
	Name      string
}

func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (string, error) {
	if len(in.Lines) == 0 {
		return "", ErrEmptyCart
	}
	for _, l := range in.Lines {
		if l.Qty <= 0 {
			return "", fmt.Errorf("%w: item %s", ErrInvalidQty, l.ItemID)
		}
	}

	orderID, err := s.Store.Checkout(ctx, in)
	if err != nil {
		return "", err
	}

	s.cacheStatus(ctx, orderID, StatusIncoming)
	s.Log.Info("checkout committed",
		zap.String("order_id", orderID),
		zap.Int("lines", len(in.Lines)),
		zap.Int("amount_cents", in.AmountCents()))
	return orderID, nil
}

// SetStatus rejects values outside the six-value vocabulary without
// touching storage. The status-changed event is fire-and-forget:
// notification delivery failure never rolls back the change.
func (s *Service) SetStatus(ctx context.Context, orderID string, next Status) error {
	if !Valid(next) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}

	old, err := s.Store.UpdateStatus(ctx, orderID, next)
	if err != nil {
		return err
	}

	s.cacheStatus(ctx, orderID, next)
	s.publishStatusChanged(orderID, old, next)
	s.Log.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("old", string(old)),
		zap.String("new", string(next)))
	return nil
}

// Cancel reverses a committed checkout. Cancelling an already-cancelled
// or unknown order returns ErrOrderNotFound; stock is never credited
// twice.
func (s *Service) Cancel(ctx context.Context, orderID string) error {
	if err := s.Store.Cancel(ctx, orderID); err != nil {
		return err
	}
	if s.Redis != nil {
		_ = s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
	}
	s.Log.Info("order cancelled", zap.String("order_id", orderID))
	return nil
}

// GetStatus serves from the cache when possible and falls back to the
// store, re-warming the cache on a miss.
func (s *Service) GetStatus(ctx context.Context, orderID string) (Status, error) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s.Redis != nil {
		if v, err := s.Redis.Get(ctx, key).Result(); err == nil && v != "" {
			return Status(v), nil
		}
	}
	st, err := s.Store.GetStatus(ctx, orderID)
	if err != nil {
		return "", err
	}
	s.cacheStatus(ctx, orderID, st)
	return st, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (Order, []OrderLine, error) {
	return s.Store.GetOrder(ctx, orderID)
}

func (s *Service) cacheStatus(ctx context.Context, orderID string, st Status) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = s.Redis.Set(ctx, key, string(st), redisx.TTLStatusCache).Err()
}

func (s *Service) publishStatusChanged(orderID string, old, next Status) {
	if s.Publisher == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Name,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(OrderStatusChangedPayload{OrderID: orderID, Old: old, New: next}),
	}
	s.Publisher.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
