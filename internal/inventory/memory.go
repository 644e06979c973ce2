package inventory

import (
	"context"
	"sync"
)

// MemoryLedger keeps quantities in-process with the same semantics as
// the Postgres ledger. Mutations are immediately visible to readers.
type MemoryLedger struct {
	mu  sync.Mutex
	qty map[string]int
}

func NewMemoryLedger(initial map[string]int) *MemoryLedger {
	qty := make(map[string]int, len(initial))
	for id, n := range initial {
		qty[id] = n
	}
	return &MemoryLedger{qty: qty}
}

func (l *MemoryLedger) GetQuantity(_ context.Context, itemID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.qty[itemID]
	if !ok {
		return 0, ErrUnknownItem
	}
	return n, nil
}

func (l *MemoryLedger) TryReserve(_ context.Context, itemID string, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	have, ok := l.qty[itemID]
	if !ok {
		return ErrUnknownItem
	}
	if have < qty {
		return &InsufficientStockError{ItemID: itemID, Requested: qty, Available: have}
	}
	l.qty[itemID] = have - qty
	return nil
}

func (l *MemoryLedger) Release(_ context.Context, itemID string, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.qty[itemID]; !ok {
		return ErrUnknownItem
	}
	l.qty[itemID] += qty
	return nil
}
