package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type groupKey struct{ vendor, item string }

// AggregatePeriod сводка по магазину за [start, end] включительно.
// Перевёрнутый диапазон даёт пустой результат, не ошибку.
func AggregatePeriod(t Table, storeID string, start, end time.Time) []AggregateRow {
	from, to := Day(start), Day(end)
	if to.Before(from) {
		return nil
	}

	groups := map[groupKey]*AggregateRow{}
	closing := map[groupKey]*Record{}

	for i := range t {
		r := &t[i]
		if r.StoreID != storeID || r.RecordDate.Before(from) || r.RecordDate.After(to) {
			continue
		}
		k := groupKey{r.VendorID, r.ItemID}
		g, ok := groups[k]
		if !ok {
			g = &AggregateRow{VendorID: r.VendorID, ItemID: r.ItemID, TotalAmount: decimal.Zero}
			groups[k] = g
		}
		g.TotalUsage += r.Usage
		g.TotalPurchase += r.CurrentPurchase
		g.TotalAmount = g.TotalAmount.Add(r.TotalAmount)

		// последняя по дате, при равенстве — последняя добавленная
		if c := closing[k]; c == nil || !r.RecordDate.Before(c.RecordDate) {
			closing[k] = r
		}
	}

	out := make([]AggregateRow, 0, len(groups))
	for k, g := range groups {
		c := closing[k]
		g.DisplayName = c.DisplayName
		g.Unit = c.Unit
		g.ClosingStock = c.CurrentStock
		g.ClosingUnitPrice = c.UnitPrice
		g.ClosingValue = decimal.NewFromFloat(c.CurrentStock).Mul(c.UnitPrice)
		g.ClosingDate = c.RecordDate
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VendorID != out[j].VendorID {
			return out[i].VendorID < out[j].VendorID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// PurchaseOrders заявки магазина за день: записи с ненулевой закупкой в порядке добавления.
func PurchaseOrders(t Table, storeID string, day time.Time) []PurchaseOrderLine {
	d := Day(day)
	var out []PurchaseOrderLine
	for _, r := range t {
		if r.StoreID != storeID || !r.RecordDate.Equal(d) || r.CurrentPurchase <= 0 {
			continue
		}
		out = append(out, PurchaseOrderLine{
			VendorID:    r.VendorID,
			ItemID:      r.ItemID,
			DisplayName: r.DisplayName,
			Unit:        r.Unit,
			Quantity:    r.CurrentPurchase,
			UnitPrice:   r.UnitPrice,
			TotalAmount: r.TotalAmount,
		})
	}
	return out
}
