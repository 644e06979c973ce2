package orders

import (
	"encoding/json"
	"time"
)

const EventOrderStatusChanged = "OrderStatusChanged"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	Old     Status `json:"old"`
	New     Status `json:"new"`
}
