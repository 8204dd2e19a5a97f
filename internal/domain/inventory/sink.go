package inventory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrSinkUnavailable хранилище не ответило (сеть, доступ). Повторов нет — решает вызывающий.
var ErrSinkUnavailable = errors.New("record sink unavailable")

// Sink append-only журнал записей.
// ReadAll возвращает пустую Table и nil, если записей ещё нет, и ошибку, если прочитать не удалось.
type Sink interface {
	Append(ctx context.Context, records []Record) error
	ReadAll(ctx context.Context) (Table, error)
}

// Columns фиксированный порядок колонок журнала.
var Columns = []string{
	"record_date", "store_id", "vendor_id", "item_id", "display_name", "unit",
	"prior_stock", "prior_purchase", "current_stock", "current_purchase",
	"usage", "unit_price", "total_amount",
}

const (
	colDate = iota
	colStore
	colVendor
	colItem
	colName
	colUnit
	colPriorStock
	colPriorPurchase
	colCurrentStock
	colCurrentPurchase
	colUsage
	colUnitPrice
	colTotalAmount
)

// EncodeRow раскладывает запись по колонкам Columns.
func EncodeRow(r Record) []any {
	return []any{
		r.RecordDate.Format(DateLayout),
		r.StoreID,
		r.VendorID,
		r.ItemID,
		r.DisplayName,
		r.Unit,
		r.PriorStock,
		r.PriorPurchase,
		r.CurrentStock,
		r.CurrentPurchase,
		r.Usage,
		r.UnitPrice.InexactFloat64(),
		r.TotalAmount.InexactFloat64(),
	}
}

var dateLayouts = []string{DateLayout, "2006/01/02", "2006-01-02 15:04:05", time.RFC3339}

// DecodeRow собирает запись из строк таблицы. Битые числа читаются как 0,
// чтобы одна испорченная старая строка не блокировала новый ввод.
// ok=false — строку нельзя использовать (нет даты или ключей).
func DecodeRow(cells []string) (Record, bool) {
	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	date, ok := parseDate(get(colDate))
	if !ok {
		return Record{}, false
	}
	r := Record{
		RecordDate:      date,
		StoreID:         get(colStore),
		VendorID:        get(colVendor),
		ItemID:          get(colItem),
		DisplayName:     get(colName),
		Unit:            get(colUnit),
		PriorStock:      parseNumber(get(colPriorStock)),
		PriorPurchase:   parseNumber(get(colPriorPurchase)),
		CurrentStock:    parseNumber(get(colCurrentStock)),
		CurrentPurchase: parseNumber(get(colCurrentPurchase)),
		Usage:           parseNumber(get(colUsage)),
		UnitPrice:       parseDecimal(get(colUnitPrice)),
		TotalAmount:     parseDecimal(get(colTotalAmount)),
	}
	if r.StoreID == "" || r.ItemID == "" {
		return Record{}, false
	}
	return r, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

func parseNumber(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
