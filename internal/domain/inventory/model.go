package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Record одна строка журнала остатков: (дата, магазин, товар).
// Usage и TotalAmount вычисляются один раз в Reconcile и больше не меняются;
// исправления делаются новой записью, а не правкой старой.
type Record struct {
	RecordDate      time.Time
	StoreID         string
	VendorID        string
	ItemID          string
	DisplayName     string
	Unit            string
	PriorStock      float64
	PriorPurchase   float64
	CurrentStock    float64
	CurrentPurchase float64
	Usage           float64
	UnitPrice       decimal.Decimal
	TotalAmount     decimal.Decimal
}

// Table журнал в порядке вставки: индекс == порядок добавления в sink.
type Table []Record

// AggregateRow итог по (поставщик, товар) за период.
type AggregateRow struct {
	VendorID         string
	ItemID           string
	DisplayName      string
	Unit             string
	TotalUsage       float64
	TotalPurchase    float64
	TotalAmount      decimal.Decimal
	ClosingStock     float64
	ClosingUnitPrice decimal.Decimal
	ClosingValue     decimal.Decimal
	ClosingDate      time.Time
}

// PurchaseOrderLine строка заявки поставщику за день.
type PurchaseOrderLine struct {
	VendorID    string
	ItemID      string
	DisplayName string
	Unit        string
	Quantity    float64
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
}

// Day обрезает время: календарная дата t в полночь UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}
