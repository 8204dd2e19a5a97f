package report

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Spok95/stock-intake/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// OrdersText заявки магазина за день в виде текстовой таблицы.
func OrdersText(store string, day time.Time, lines []inventory.PurchaseOrderLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Заявки: %s, %s\n", store, day.Format(inventory.DateLayout))
	if len(lines) == 0 {
		b.WriteString("За этот день заявок нет.\n")
		return b.String()
	}

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Поставщик\tТовар\tКол-во\tСумма")
	total := decimal.Zero
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\n", l.VendorID, l.DisplayName, Qty(l.Quantity), l.Unit, l.TotalAmount.StringFixed(1))
		total = total.Add(l.TotalAmount)
	}
	fmt.Fprintf(tw, "Итого\t\t\t%s\n", total.StringFixed(1))
	_ = tw.Flush()
	return b.String()
}

// PeriodText сводка расхода/закупок за период.
func PeriodText(store string, from, to time.Time, rows []inventory.AggregateRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Сводка: %s, %s — %s\n", store, from.Format(inventory.DateLayout), to.Format(inventory.DateLayout))
	if len(rows) == 0 {
		b.WriteString("Нет записей за период.\n")
		return b.String()
	}

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Поставщик\tТовар\tРасход\tЗакуплено\tСумма\tОстаток\tСтоимость остатка")
	spend, value := decimal.Zero, decimal.Zero
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s %s\t%s\n",
			r.VendorID, r.DisplayName, Qty(r.TotalUsage), Qty(r.TotalPurchase),
			r.TotalAmount.StringFixed(1), Qty(r.ClosingStock), r.Unit, r.ClosingValue.StringFixed(1))
		spend = spend.Add(r.TotalAmount)
		value = value.Add(r.ClosingValue)
	}
	fmt.Fprintf(tw, "Итого\t\t\t\t%s\t\t%s\n", spend.StringFixed(1), value.StringFixed(1))
	_ = tw.Flush()
	return b.String()
}

// Qty печатает количество без лишних нулей: 3, 2.5, -1.25.
func Qty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
