package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Query carries the browse filters. Zero price bounds mean unbounded.
type Query struct {
	Search        string
	Category      string
	PriceMinCents int
	PriceMaxCents int
	Page          int
	PerPage       int
}

type Repo struct{ DB *pgxpool.Pool }

// QualifyingRows fetches the typed row set the projector works over:
// in-stock items matching search text (display name or SKU), category
// and price bounds. All filters are parameterized.
func (r *Repo) QualifyingRows(ctx context.Context, q Query) ([]Row, error) {
	sql := `SELECT id, sku, display_name, category, quantity, unit_price_cents, image_ref
	        FROM stock_items WHERE quantity > 0`
	var args []any

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		sql += fmt.Sprintf(" AND (display_name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		sql += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if q.PriceMinCents > 0 {
		args = append(args, q.PriceMinCents)
		sql += fmt.Sprintf(" AND unit_price_cents >= $%d", len(args))
	}
	if q.PriceMaxCents > 0 {
		args = append(args, q.PriceMaxCents)
		sql += fmt.Sprintf(" AND unit_price_cents <= $%d", len(args))
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.SKU, &row.DisplayName, &row.Category,
			&row.Quantity, &row.UnitPriceCents, &row.ImageRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// List runs the full projection: fetch qualifying rows, group, tier and
// paginate. No matches degrade to an empty page, not an error.
func (r *Repo) List(ctx context.Context, q Query) ([]Entry, int, error) {
	rows, err := r.QualifyingRows(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	entries, totalPages := Project(rows, q.Page, q.PerPage)
	return entries, totalPages, nil
}
