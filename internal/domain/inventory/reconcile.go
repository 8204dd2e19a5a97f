package inventory

import (
	"time"

	"github.com/Spok95/stock-intake/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// Reconcile строит запись за текущий период из ввода сотрудника и предыдущей записи.
//
//	usage = prior_stock + prior_purchase - observed_stock (может быть < 0, не обрезаем)
//	total = round(observed_purchase * unit_price, 1)
//
// prior == nil означает «истории нет»: prior_stock = prior_purchase = 0.
// Отрицательные observed* — нарушение контракта, проверяет вызывающий.
func Reconcile(entry catalog.Item, prior *Record, observedStock, observedPurchase float64,
	storeID, vendorID string, recordDate time.Time) Record {

	var priorStock, priorPurchase float64
	if prior != nil {
		priorStock, priorPurchase = prior.CurrentStock, prior.CurrentPurchase
	}

	return Record{
		RecordDate:      Day(recordDate),
		StoreID:         storeID,
		VendorID:        vendorID,
		ItemID:          entry.ItemID,
		DisplayName:     entry.DisplayName,
		Unit:            entry.Unit,
		PriorStock:      priorStock,
		PriorPurchase:   priorPurchase,
		CurrentStock:    observedStock,
		CurrentPurchase: observedPurchase,
		Usage:           priorStock + priorPurchase - observedStock,
		UnitPrice:       entry.UnitPrice,
		TotalAmount:     TotalAmount(observedPurchase, entry.UnitPrice),
	}
}

// TotalAmount сумма закупки, округлённая до одного знака.
func TotalAmount(purchase float64, unitPrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(purchase).Mul(unitPrice).Round(1)
}

// ShouldPersist false только если сотрудник ничего не ввёл (оба значения нулевые).
// Отчёты рассчитывают на то, что строк 0/0 в журнале нет.
func ShouldPersist(r Record) bool {
	return !(r.CurrentStock == 0 && r.CurrentPurchase == 0)
}
