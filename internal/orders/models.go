package orders

import (
	"errors"
	"time"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrInvalidQty    = errors.New("quantity must be positive")
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

type Order struct {
	ID                string    `json:"id"`
	BuyerRef          string    `json:"buyer_ref"`
	PaymentType       string    `json:"payment_type"`
	FulfillmentMethod string    `json:"fulfillment_method"`
	AmountCents       int       `json:"amount_cents"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// OrderLine snapshots are immutable once written: they stay historically
// accurate even if the referenced stock item is later edited or removed.
type OrderLine struct {
	OrderID        string `json:"order_id"`
	ItemID         string `json:"item_id"`
	DisplayName    string `json:"display_name"`
	SKU            string `json:"sku"`
	Qty            int    `json:"qty"`
	UnitPriceCents int    `json:"unit_price_cents"`
	ImageRef       string `json:"image_ref"`
}

type CartLine struct {
	ItemID         string `json:"item_id"`
	Qty            int    `json:"qty"`
	UnitPriceCents int    `json:"unit_price_cents"`
}

type CheckoutInput struct {
	BuyerRef      string     `json:"buyer_ref"`
	PaymentMethod string     `json:"payment_method"`
	Fulfillment   string     `json:"fulfillment"`
	Lines         []CartLine `json:"lines"`
}

// PaymentLabel is the transaction-log form, e.g. "Credit Card (pickup)".
func (in CheckoutInput) PaymentLabel() string {
	return in.PaymentMethod + " (" + in.Fulfillment + ")"
}

func (in CheckoutInput) AmountCents() int {
	total := 0
	for _, l := range in.Lines {
		total += l.Qty * l.UnitPriceCents
	}
	return total
}
