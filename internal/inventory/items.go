package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StockItem struct {
	ID             string    `json:"id"`
	SKU            string    `json:"sku"`
	DisplayName    string    `json:"display_name"`
	Category       string    `json:"category"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
	ImageRef       string    `json:"image_ref"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ItemRepo is the staff-facing stock administration surface. Callers are
// trusted to have passed authorization upstream.
type ItemRepo struct{ DB *pgxpool.Pool }

func (r *ItemRepo) Create(ctx context.Context, it StockItem) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO stock_items(id, sku, display_name, category, quantity, unit_price_cents, image_ref)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, it.SKU, it.DisplayName, it.Category, it.Quantity, it.UnitPriceCents, it.ImageRef,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *ItemRepo) Update(ctx context.Context, it StockItem) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE stock_items
		SET sku=$2, display_name=$3, category=$4, quantity=$5, unit_price_cents=$6, image_ref=$7, updated_at=now()
		WHERE id=$1`,
		it.ID, it.SKU, it.DisplayName, it.Category, it.Quantity, it.UnitPriceCents, it.ImageRef,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrUnknownItem
	}
	return nil
}

func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM stock_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrUnknownItem
	}
	return nil
}

func (r *ItemRepo) Get(ctx context.Context, id string) (StockItem, error) {
	var it StockItem
	err := r.DB.QueryRow(ctx, `
		SELECT id, sku, display_name, category, quantity, unit_price_cents, image_ref, created_at, updated_at
		FROM stock_items WHERE id=$1`, id).
		Scan(&it.ID, &it.SKU, &it.DisplayName, &it.Category, &it.Quantity, &it.UnitPriceCents,
			&it.ImageRef, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockItem{}, ErrUnknownItem
	}
	return it, err
}

func (r *ItemRepo) List(ctx context.Context) ([]StockItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, sku, display_name, category, quantity, unit_price_cents, image_ref, created_at, updated_at
		FROM stock_items ORDER BY display_name ASC, sku ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockItem
	for rows.Next() {
		var it StockItem
		if err := rows.Scan(&it.ID, &it.SKU, &it.DisplayName, &it.Category, &it.Quantity,
			&it.UnitPriceCents, &it.ImageRef, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Categories feeds the catalog filter dropdown.
func (r *ItemRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT DISTINCT category FROM stock_items WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
