package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chinhon/go-storefront/internal/inventory"
)

// Store is the transactional persistence contract behind the service.
// Checkout and Cancel are all-or-nothing units of work.
type Store interface {
	Checkout(ctx context.Context, in CheckoutInput) (string, error)
	Cancel(ctx context.Context, orderID string) error
	UpdateStatus(ctx context.Context, orderID string, next Status) (Status, error)
	GetStatus(ctx context.Context, orderID string) (Status, error)
	GetOrder(ctx context.Context, orderID string) (Order, []OrderLine, error)
}

type PGStore struct{ DB *pgxpool.Pool }

type lineSnapshot struct {
	displayName string
	sku         string
	imageRef    string
}

// Checkout validates every cart line against live on-hand quantity,
// then decrements stock, inserts the order with its lines and one
// transaction-log row, all inside a single transaction. Stock rows are
// locked during validation so a concurrent checkout cannot pass against
// the same unit of stock.
func (s *PGStore) Checkout(ctx context.Context, in CheckoutInput) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	// lock and validate all lines before touching anything
	snaps := make([]lineSnapshot, len(in.Lines))
	for i, l := range in.Lines {
		var snap lineSnapshot
		var have int
		err := tx.QueryRow(ctx, `
			SELECT display_name, sku, image_ref, quantity
			FROM stock_items WHERE id=$1 FOR UPDATE`, l.ItemID).
			Scan(&snap.displayName, &snap.sku, &snap.imageRef, &have)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", inventory.ErrUnknownItem
		}
		if err != nil {
			return "", err
		}
		if have < l.Qty {
			return "", &inventory.InsufficientStockError{ItemID: l.ItemID, Requested: l.Qty, Available: have}
		}
		snaps[i] = snap
	}

	// every line passed: deduct through the ledger against the same tx
	for _, l := range in.Lines {
		if err := inventory.TryReserve(ctx, tx, l.ItemID, l.Qty); err != nil {
			return "", err
		}
	}

	orderID := uuid.NewString()
	amount := in.AmountCents()
	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(id, buyer_ref, payment_type, fulfillment_method, amount_cents, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		orderID, in.BuyerRef, in.PaymentMethod, in.Fulfillment, amount, StatusIncoming,
	); err != nil {
		return "", err
	}

	for i, l := range in.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, item_id, display_name, sku, quantity, unit_price_cents, image_ref)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			orderID, l.ItemID, snaps[i].displayName, snaps[i].sku, l.Qty, l.UnitPriceCents, snaps[i].imageRef,
		); err != nil {
			return "", err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO transactions(id, buyer_ref, payment_type, amount_cents)
		VALUES ($1,$2,$3,$4)`,
		uuid.NewString(), in.BuyerRef, in.PaymentLabel(), amount,
	); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return orderID, nil
}

// Cancel restores every line's quantity, then removes the lines and the
// order, in one transaction. Either everything is compensated or
// nothing changes.
func (s *PGStore) Cancel(ctx context.Context, orderID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, orderID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrOrderNotFound
	}

	rows, err := tx.Query(ctx, `SELECT item_id, quantity FROM order_lines WHERE order_id=$1`, orderID)
	if err != nil {
		return err
	}
	type rec struct {
		itemID string
		qty    int
	}
	var recs []rec
	for rows.Next() {
		var x rec
		if err := rows.Scan(&x.itemID, &x.qty); err != nil {
			rows.Close()
			return err
		}
		recs = append(recs, x)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, x := range recs {
		// a line may reference a since-deleted item; its stock is gone
		if err := inventory.Release(ctx, tx, x.itemID, x.qty); err != nil && !errors.Is(err, inventory.ErrUnknownItem) {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id=$1`, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGStore) UpdateStatus(ctx context.Context, orderID string, next Status) (Status, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var old Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&old)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, next); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return old, nil
}

func (s *PGStore) GetStatus(ctx context.Context, orderID string) (Status, error) {
	var st Status
	err := s.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&st)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	return st, err
}

func (s *PGStore) GetOrder(ctx context.Context, orderID string) (Order, []OrderLine, error) {
	var o Order
	err := s.DB.QueryRow(ctx, `
		SELECT id, buyer_ref, payment_type, fulfillment_method, amount_cents, status, created_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.BuyerRef, &o.PaymentType, &o.FulfillmentMethod, &o.AmountCents, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, nil, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, nil, err
	}

	rows, err := s.DB.Query(ctx, `
		SELECT order_id, item_id, display_name, sku, quantity, unit_price_cents, image_ref
		FROM order_lines WHERE order_id=$1`, orderID)
	if err != nil {
		return Order{}, nil, err
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.OrderID, &l.ItemID, &l.DisplayName, &l.SKU, &l.Qty, &l.UnitPriceCents, &l.ImageRef); err != nil {
			return Order{}, nil, err
		}
		lines = append(lines, l)
	}
	return o, lines, rows.Err()
}
