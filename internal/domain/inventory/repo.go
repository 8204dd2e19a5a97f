package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo журнал в Postgres (таблица inventory_records); порядок вставки — по id.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Append пишет пачку одной транзакцией: либо все строки, либо ни одной.
func (r *Repo) Append(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rec := range records {
		if _, err = tx.Exec(ctx, `
			INSERT INTO inventory_records
			(record_date, store_id, vendor_id, item_id, display_name, unit,
			 prior_stock, prior_purchase, current_stock, current_purchase, usage,
			 unit_price, total_amount)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12::numeric,$13::numeric)
		`, rec.RecordDate, rec.StoreID, rec.VendorID, rec.ItemID, rec.DisplayName, rec.Unit,
			rec.PriorStock, rec.PriorPurchase, rec.CurrentStock, rec.CurrentPurchase, rec.Usage,
			rec.UnitPrice.String(), rec.TotalAmount.String()); err != nil {
			return fmt.Errorf("%w: insert: %w", ErrSinkUnavailable, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrSinkUnavailable, err)
	}
	return nil
}

func (r *Repo) ReadAll(ctx context.Context) (Table, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT record_date, store_id, vendor_id, item_id, display_name, unit,
		       prior_stock, prior_purchase, current_stock, current_purchase, usage,
		       unit_price::text, total_amount::text
		FROM inventory_records
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	defer rows.Close()

	out := Table{}
	for rows.Next() {
		var (
			rec          Record
			price, total string
		)
		if err := rows.Scan(
			&rec.RecordDate, &rec.StoreID, &rec.VendorID, &rec.ItemID, &rec.DisplayName, &rec.Unit,
			&rec.PriorStock, &rec.PriorPurchase, &rec.CurrentStock, &rec.CurrentPurchase, &rec.Usage,
			&price, &total,
		); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrSinkUnavailable, err)
		}
		rec.RecordDate = Day(rec.RecordDate)
		rec.UnitPrice = parseDecimal(price)
		rec.TotalAmount = parseDecimal(total)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	return out, nil
}
