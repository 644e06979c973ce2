package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chinhon/go-storefront/internal/inventory"
)

// MemStore is an in-process Store over a MemoryLedger, with the same
// all-or-nothing semantics as the Postgres store. Used by tests and
// local tooling that runs without a database.
type MemStore struct {
	mu     sync.Mutex
	Ledger *inventory.MemoryLedger
	items  map[string]inventory.StockItem
	orders map[string]Order
	lines  map[string][]OrderLine
	TxLog  []string // payment labels, one per committed checkout
}

func NewMemStore(items []inventory.StockItem) *MemStore {
	byID := make(map[string]inventory.StockItem, len(items))
	qty := make(map[string]int, len(items))
	for _, it := range items {
		byID[it.ID] = it
		qty[it.ID] = it.Quantity
	}
	return &MemStore{
		Ledger: inventory.NewMemoryLedger(qty),
		items:  byID,
		orders: map[string]Order{},
		lines:  map[string][]OrderLine{},
	}
}

func (s *MemStore) Checkout(ctx context.Context, in CheckoutInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range in.Lines {
		have, err := s.Ledger.GetQuantity(ctx, l.ItemID)
		if err != nil {
			return "", err
		}
		if have < l.Qty {
			return "", &inventory.InsufficientStockError{ItemID: l.ItemID, Requested: l.Qty, Available: have}
		}
	}

	reserved := make([]CartLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if err := s.Ledger.TryReserve(ctx, l.ItemID, l.Qty); err != nil {
			// roll back earlier deductions so nothing is left mutated
			for _, r := range reserved {
				_ = s.Ledger.Release(ctx, r.ItemID, r.Qty)
			}
			return "", err
		}
		reserved = append(reserved, l)
	}

	orderID := uuid.NewString()
	s.orders[orderID] = Order{
		ID:                orderID,
		BuyerRef:          in.BuyerRef,
		PaymentType:       in.PaymentMethod,
		FulfillmentMethod: in.Fulfillment,
		AmountCents:       in.AmountCents(),
		Status:            StatusIncoming,
		CreatedAt:         time.Now().UTC(),
	}
	for _, l := range in.Lines {
		it := s.items[l.ItemID]
		s.lines[orderID] = append(s.lines[orderID], OrderLine{
			OrderID:        orderID,
			ItemID:         l.ItemID,
			DisplayName:    it.DisplayName,
			SKU:            it.SKU,
			Qty:            l.Qty,
			UnitPriceCents: l.UnitPriceCents,
			ImageRef:       it.ImageRef,
		})
	}
	s.TxLog = append(s.TxLog, in.PaymentLabel())
	return orderID, nil
}

func (s *MemStore) Cancel(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return ErrOrderNotFound
	}
	for _, l := range s.lines[orderID] {
		if err := s.Ledger.Release(ctx, l.ItemID, l.Qty); err != nil && !errors.Is(err, inventory.ErrUnknownItem) {
			return err
		}
	}
	delete(s.lines, orderID)
	delete(s.orders, orderID)
	return nil
}

func (s *MemStore) UpdateStatus(_ context.Context, orderID string, next Status) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return "", ErrOrderNotFound
	}
	old := o.Status
	o.Status = next
	s.orders[orderID] = o
	return old, nil
}

func (s *MemStore) GetStatus(_ context.Context, orderID string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return "", ErrOrderNotFound
	}
	return o.Status, nil
}

func (s *MemStore) GetOrder(_ context.Context, orderID string) (Order, []OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return Order{}, nil, ErrOrderNotFound
	}
	lines := append([]OrderLine(nil), s.lines[orderID]...)
	return o, lines, nil
}
