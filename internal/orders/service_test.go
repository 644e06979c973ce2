package orders

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chinhon/go-storefront/internal/inventory"
)

// mockPublisher implements EventPublisher (avoids a running broker in tests).
type mockPublisher struct {
	keys   [][]byte
	values [][]byte
}

func (m *mockPublisher) Publish(key, value []byte, _ ...kafkago.Header) {
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

func testItems() []inventory.StockItem {
	return []inventory.StockItem{
		{ID: "item-42", SKU: "X1", DisplayName: "Engine Oil 5W-30", Category: "Lubricants", Quantity: 5, UnitPriceCents: 2500, ImageRef: "oil.png"},
		{ID: "item-7", SKU: "Y1", DisplayName: "Brake Fluid", Category: "Fluids", Quantity: 2, UnitPriceCents: 1200, ImageRef: "fluid.png"},
	}
}

func newTestService(store Store) (*Service, *mockPublisher) {
	pub := &mockPublisher{}
	return &Service{Store: store, Publisher: pub, Log: zap.NewNop(), Name: "test"}, pub
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _ := newTestService(NewMemStore(testItems()))
	_, err := svc.Checkout(context.Background(), CheckoutInput{BuyerRef: "alice"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_NonPositiveQty(t *testing.T) {
	svc, _ := newTestService(NewMemStore(testItems()))
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		BuyerRef: "alice",
		Lines:    []CartLine{{ItemID: "item-42", Qty: 0, UnitPriceCents: 2500}},
	})
	assert.ErrorIs(t, err, ErrInvalidQty)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore([]inventory.StockItem{
		{ID: "item-42", SKU: "X1", DisplayName: "Engine Oil 5W-30", Quantity: 2, UnitPriceCents: 2500},
	})
	svc, _ := newTestService(store)

	_, err := svc.Checkout(ctx, CheckoutInput{
		BuyerRef: "alice", PaymentMethod: "Credit Card", Fulfillment: "pickup",
		Lines: []CartLine{{ItemID: "item-42", Qty: 3, UnitPriceCents: 2500}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	var ise *inventory.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "item-42", ise.ItemID)

	n, _ := store.Ledger.GetQuantity(ctx, "item-42")
	assert.Equal(t, 2, n, "quantity unchanged after rejected checkout")
	assert.Empty(t, store.TxLog)
}

func TestCheckout_Success(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(testItems())
	svc, _ := newTestService(store)

	orderID, err := svc.Checkout(ctx, CheckoutInput{
		BuyerRef: "alice", PaymentMethod: "Credit Card", Fulfillment: "pickup",
		Lines: []CartLine{{ItemID: "item-42", Qty: 2, UnitPriceCents: 2500}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, orderID)

	n, _ := store.Ledger.GetQuantity(ctx, "item-42")
	assert.Equal(t, 3, n)

	o, lines, err := store.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, StatusIncoming, o.Status)
	assert.Equal(t, 5000, o.AmountCents)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Qty)
	assert.Equal(t, "Engine Oil 5W-30", lines[0].DisplayName)
	assert.Equal(t, "X1", lines[0].SKU)
	assert.Equal(t, 2500, lines[0].UnitPriceCents)

	require.Len(t, store.TxLog, 1)
	assert.Equal(t, "Credit Card (pickup)", store.TxLog[0])
}

func TestCheckout_AtomicAcrossLines(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(testItems())
	svc, _ := newTestService(store)

	// second line exceeds on-hand quantity: nothing may be mutated
	_, err := svc.Checkout(ctx, CheckoutInput{
		BuyerRef: "alice", PaymentMethod: "PayNow", Fulfillment: "delivery",
		Lines: []CartLine{
			{ItemID: "item-42", Qty: 1, UnitPriceCents: 2500},
			{ItemID: "item-7", Qty: 10, UnitPriceCents: 1200},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	n42, _ := store.Ledger.GetQuantity(ctx, "item-42")
	n7, _ := store.Ledger.GetQuantity(ctx, "item-7")
	assert.Equal(t, 5, n42)
	assert.Equal(t, 2, n7)
	assert.Empty(t, store.TxLog)
}

func TestCheckout_UnknownItem(t *testing.T) {
	svc, _ := newTestService(NewMemStore(testItems()))
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		BuyerRef: "alice",
		Lines:    []CartLine{{ItemID: "ghost", Qty: 1, UnitPriceCents: 100}},
	})
	assert.ErrorIs(t, err, inventory.ErrUnknownItem)
}

func TestCancel_RestoresStockAndRemovesOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(testItems())
	svc, _ := newTestService(store)

	orderID, err := svc.Checkout(ctx, CheckoutInput{
		BuyerRef: "alice", PaymentMethod: "Credit Card", Fulfillment: "pickup",
		Lines: []CartLine{{ItemID: "item-42", Qty: 2, UnitPriceCents: 2500}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, orderID))

	n, _ := store.Ledger.GetQuantity(ctx, "item-42")
	assert.Equal(t, 5, n, "compensation restores on-hand quantity")

	_, _, err = store.GetOrder(ctx, orderID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancel_Idempotence_NoDoubleCredit(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(testItems())
	svc, _ := newTestService(store)

	orderID, err := svc.Checkout(ctx, CheckoutInput{
		BuyerRef: "alice", PaymentMethod: "Credit Card", Fulfillment: "pickup",
		Lines: []CartLine{{ItemID: "item-42", Qty: 2, UnitPriceCents: 2500}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, orderID))
	assert.ErrorIs(t, svc.Cancel(ctx, orderID), ErrOrderNotFound)
	assert.ErrorIs(t, svc.Cancel(ctx, "never-existed"), ErrOrderNotFound)

	n, _ := store.Ledger.GetQuantity(ctx, "item-42")
	assert.Equal(t, 5, n, "stock never credited twice")
}

func TestConservation_AcrossCheckoutCancelPairs(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(testItems())
	svc, _ := newTestService(store)

	for i := 0; i < 3; i++ {
		orderID, err := svc.Checkout(ctx, CheckoutInput{
			BuyerRef: "bob", PaymentMethod: "Cash", Fulfillment: "pickup",
			Lines: []CartLine{
				{ItemID: "item-42", Qty: 3, UnitPriceCents: 2500},
				{ItemID: "item-7", Qty: 1, UnitPriceCents: 1200},
			},
		})
		require.NoError(t, err)
		require.NoError(t, svc.Cancel(ctx, orderID))
	}

	n42, _ := store.Ledger.GetQuantity(ctx, "item-42")
	n7, _ := store.Ledger.GetQuantity(ctx, "item-7")
	assert.Equal(t, 5, n42)
	assert.Equal(t, 2, n7)
}

func TestSetStatus_PublishesEvent(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(testItems())
	svc, pub := newTestService(store)

	orderID, err := svc.Checkout(ctx, CheckoutInput{
		BuyerRef: "alice", PaymentMethod: "Credit Card", Fulfillment: "pickup",
		Lines: []CartLine{{ItemID: "item-42", Qty: 1, UnitPriceCents: 2500}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, orderID, StatusInProgress))

	st, err := svc.GetStatus(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, st)

	require.Len(t, pub.values, 1)
	assert.Equal(t, orderID, string(pub.keys[0]))

	var env Envelope
	require.NoError(t, json.Unmarshal(pub.values[0], &env))
	assert.Equal(t, EventOrderStatusChanged, env.EventType)
	assert.Equal(t, orderID, env.CorrelationID)

	var p OrderStatusChangedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, StatusIncoming, p.Old)
	assert.Equal(t, StatusInProgress, p.New)
}

func TestSetStatus_RejectsOutsideVocabulary(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(testItems())
	svc, pub := newTestService(store)

	orderID, err := svc.Checkout(ctx, CheckoutInput{
		BuyerRef: "alice", PaymentMethod: "Credit Card", Fulfillment: "pickup",
		Lines: []CartLine{{ItemID: "item-42", Qty: 1, UnitPriceCents: 2500}},
	})
	require.NoError(t, err)

	err = svc.SetStatus(ctx, orderID, "Shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, pub.values, "no event on rejection")

	st, _ := svc.GetStatus(ctx, orderID)
	assert.Equal(t, StatusIncoming, st, "status unchanged on rejection")
}

func TestSetStatus_OrderNotFound(t *testing.T) {
	svc, pub := newTestService(NewMemStore(testItems()))
	err := svc.SetStatus(context.Background(), "ghost", StatusInProgress)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Empty(t, pub.values)
}

func TestCancellation_PossibleFromAnyState(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(testItems())
	svc, _ := newTestService(store)

	orderID, err := svc.Checkout(ctx, CheckoutInput{
		BuyerRef: "alice", PaymentMethod: "Credit Card", Fulfillment: "delivery",
		Lines: []CartLine{{ItemID: "item-7", Qty: 2, UnitPriceCents: 1200}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, orderID, StatusCompleted))
	require.NoError(t, svc.Cancel(ctx, orderID))

	n, _ := store.Ledger.GetQuantity(ctx, "item-7")
	assert.Equal(t, 2, n)
}
