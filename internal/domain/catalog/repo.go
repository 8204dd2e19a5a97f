package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Load читает справочник из таблиц stores и catalog_items.
func (r *Repo) Load(ctx context.Context) (*Catalog, error) {
	stores, err := r.listStores(ctx)
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(ctx)
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 || len(items) == 0 {
		return nil, fmt.Errorf("%w: stores=%d items=%d", ErrInvalidCatalog, len(stores), len(items))
	}
	return New(stores, items), nil
}

func (r *Repo) listStores(ctx context.Context) ([]Store, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, COALESCE(name,'')
		FROM stores
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) listItems(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT item_id, display_name, unit, unit_price::text, vendor_id
		FROM catalog_items
		ORDER BY position, item_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ItemID, &it.DisplayName, &it.Unit, &price, &it.VendorID); err != nil {
			return nil, err
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("%w: item %s: bad unit_price %q", ErrInvalidCatalog, it.ItemID, price)
		}
		it.UnitPrice = p
		out = append(out, it)
	}
	return out, rows.Err()
}

// Replace перезаписывает справочник целиком (импорт из xlsx/csv).
func (r *Repo) Replace(ctx context.Context, c *Catalog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `DELETE FROM catalog_items`); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM stores`); err != nil {
		return err
	}
	for i, s := range c.Stores {
		if _, err = tx.Exec(ctx, `
			INSERT INTO stores (id, name, position) VALUES ($1,$2,$3)
		`, s.ID, s.Name, i); err != nil {
			return err
		}
	}
	for i, it := range c.Items {
		if _, err = tx.Exec(ctx, `
			INSERT INTO catalog_items (item_id, display_name, unit, unit_price, vendor_id, position)
			VALUES ($1,$2,$3,$4::numeric,$5,$6)
		`, it.ItemID, it.DisplayName, it.Unit, it.UnitPrice.String(), it.VendorID, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
