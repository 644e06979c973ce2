package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUnknownItem       = errors.New("unknown stock item")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError names the offending item so callers can render
// an actionable message. It matches ErrInsufficientStock via errors.Is.
type InsufficientStockError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// Ledger holds per-item on-hand quantity. Release performs no
// deduplication; callers must invoke it at most once per reservation.
type Ledger interface {
	GetQuantity(ctx context.Context, itemID string) (int, error)
	TryReserve(ctx context.Context, itemID string, qty int) error
	Release(ctx context.Context, itemID string, qty int) error
}

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the ledger
// operations below compose into a caller-owned transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func GetQuantity(ctx context.Context, q Querier, itemID string) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT quantity FROM stock_items WHERE id=$1`, itemID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUnknownItem
	}
	return n, err
}

// TryReserve locks the stock row, checks the requested quantity against
// the same value it deducts from, and decrements. Run it inside a
// transaction: the row lock is what closes the oversell race.
func TryReserve(ctx context.Context, q Querier, itemID string, qty int) error {
	var have int
	err := q.QueryRow(ctx, `SELECT quantity FROM stock_items WHERE id=$1 FOR UPDATE`, itemID).Scan(&have)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUnknownItem
	}
	if err != nil {
		return err
	}
	if have < qty {
		return &InsufficientStockError{ItemID: itemID, Requested: qty, Available: have}
	}
	_, err = q.Exec(ctx, `UPDATE stock_items SET quantity = quantity - $2, updated_at = now() WHERE id=$1`, itemID, qty)
	return err
}

func Release(ctx context.Context, q Querier, itemID string, qty int) error {
	ct, err := q.Exec(ctx, `UPDATE stock_items SET quantity = quantity + $2, updated_at = now() WHERE id=$1`, itemID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrUnknownItem
	}
	return nil
}

// PGLedger runs each ledger operation in its own transaction. For
// multi-item units of work use the package functions against one tx.
type PGLedger struct{ DB *pgxpool.Pool }

func (l *PGLedger) GetQuantity(ctx context.Context, itemID string) (int, error) {
	return GetQuantity(ctx, l.DB, itemID)
}

func (l *PGLedger) TryReserve(ctx context.Context, itemID string, qty int) error {
	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := TryReserve(ctx, tx, itemID, qty); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (l *PGLedger) Release(ctx context.Context, itemID string, qty int) error {
	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := Release(ctx, tx, itemID, qty); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
