package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Spok95/stock-intake/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	KindOrders = "orders"
	KindPeriod = "period"
)

// OrdersWorkbook xlsx с заявками за день: заголовок, строки, итог.
func OrdersWorkbook(store string, day time.Time, lines []inventory.PurchaseOrderLine) ([]byte, error) {
	header := []any{"store_id", "record_date", "vendor_id", "item_id", "display_name", "unit", "quantity", "unit_price", "total_amount"}
	rows := make([][]any, 0, len(lines)+1)
	total := decimal.Zero
	for _, l := range lines {
		rows = append(rows, []any{
			store, day.Format(inventory.DateLayout), l.VendorID, l.ItemID, l.DisplayName, l.Unit,
			l.Quantity, l.UnitPrice.InexactFloat64(), l.TotalAmount.InexactFloat64(),
		})
		total = total.Add(l.TotalAmount)
	}
	rows = append(rows, []any{"Итого", "", "", "", "", "", "", "", total.InexactFloat64()})
	return workbook(KindOrders, header, rows)
}

// PeriodWorkbook xlsx со сводкой за период.
func PeriodWorkbook(store string, from, to time.Time, agg []inventory.AggregateRow) ([]byte, error) {
	header := []any{"store_id", "from", "to", "vendor_id", "item_id", "display_name", "unit",
		"total_usage", "total_purchase", "total_amount", "closing_stock", "closing_unit_price", "closing_value", "closing_date"}
	rows := make([][]any, 0, len(agg)+1)
	spend, value := decimal.Zero, decimal.Zero
	for _, r := range agg {
		rows = append(rows, []any{
			store, from.Format(inventory.DateLayout), to.Format(inventory.DateLayout),
			r.VendorID, r.ItemID, r.DisplayName, r.Unit,
			r.TotalUsage, r.TotalPurchase, r.TotalAmount.InexactFloat64(),
			r.ClosingStock, r.ClosingUnitPrice.InexactFloat64(), r.ClosingValue.InexactFloat64(),
			r.ClosingDate.Format(inventory.DateLayout),
		})
		spend = spend.Add(r.TotalAmount)
		value = value.Add(r.ClosingValue)
	}
	rows = append(rows, []any{"Итого", "", "", "", "", "", "", "", "", spend.InexactFloat64(), "", "", value.InexactFloat64(), ""})
	return workbook(KindPeriod, header, rows)
}

func workbook(sheetName string, header []any, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName имя файла выгрузки: orders_<store>_<date>.xlsx.
func FileName(kind, store string, day time.Time) string {
	return fmt.Sprintf("%s_%s_%s.xlsx", kind, store, day.Format("20060102"))
}
