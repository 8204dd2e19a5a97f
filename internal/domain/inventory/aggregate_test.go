package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priced(r Record, vendor, price, total string, usage float64) Record {
	r.VendorID = vendor
	r.UnitPrice = decimal.RequireFromString(price)
	r.TotalAmount = decimal.RequireFromString(total)
	r.Usage = usage
	return r
}

func TestAggregatePeriod_ClosingStock(t *testing.T) {
	tbl := Table{
		priced(rec("2024-01-01", "s", "milk", 10, 6), "dairy", "2", "12", -10),
		priced(rec("2024-01-05", "s", "milk", 4, 0), "dairy", "2.5", "0", 12),
	}

	rows := AggregatePeriod(tbl, "s", day("2024-01-01"), day("2024-01-10"))
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "dairy", r.VendorID)
	assert.Equal(t, "milk", r.ItemID)
	assert.Equal(t, 4.0, r.ClosingStock)
	assert.Equal(t, 2.0, r.TotalUsage)
	assert.Equal(t, 6.0, r.TotalPurchase)
	assert.True(t, r.TotalAmount.Equal(decimal.RequireFromString("12")))
	assert.True(t, r.ClosingUnitPrice.Equal(decimal.RequireFromString("2.5")), "price of the closing record")
	assert.True(t, r.ClosingValue.Equal(decimal.RequireFromString("10")))
	assert.Equal(t, day("2024-01-05"), r.ClosingDate)
}

func TestAggregatePeriod_Filtering(t *testing.T) {
	tbl := Table{
		priced(rec("2023-12-31", "s", "milk", 99, 99), "dairy", "1", "99", 1000),
		priced(rec("2024-01-01", "s", "milk", 3, 1), "dairy", "1", "1", 1),
		priced(rec("2024-01-10", "s", "milk", 2, 1), "dairy", "1", "1", 2),
		priced(rec("2024-01-11", "s", "milk", 99, 99), "dairy", "1", "99", 1000),
		priced(rec("2024-01-05", "other", "milk", 99, 99), "dairy", "1", "99", 1000),
	}

	rows := AggregatePeriod(tbl, "s", day("2024-01-01"), day("2024-01-10"))
	require.Len(t, rows, 1)
	assert.Equal(t, 3.0, rows[0].TotalUsage, "bounds are inclusive")
	assert.Equal(t, 2.0, rows[0].TotalPurchase)
	assert.Equal(t, 2.0, rows[0].ClosingStock)
}

func TestAggregatePeriod_InvertedRange(t *testing.T) {
	tbl := Table{priced(rec("2024-01-05", "s", "milk", 1, 1), "dairy", "1", "1", 0)}
	assert.Empty(t, AggregatePeriod(tbl, "s", day("2024-01-10"), day("2024-01-01")))
}

func TestAggregatePeriod_GroupsAndTies(t *testing.T) {
	tbl := Table{
		priced(rec("2024-01-02", "s", "egg", 7, 0), "farm", "3", "0", 1),
		priced(rec("2024-01-02", "s", "milk", 1, 0), "dairy", "1", "0", 1),
		priced(rec("2024-01-03", "s", "egg", 6, 0), "farm", "3", "0", 1),
		priced(rec("2024-01-03", "s", "egg", 5, 0), "farm", "3", "0", 1),
	}

	rows := AggregatePeriod(tbl, "s", day("2024-01-01"), day("2024-01-31"))
	require.Len(t, rows, 2)
	assert.Equal(t, "dairy", rows[0].VendorID)
	assert.Equal(t, "farm", rows[1].VendorID)
	assert.Equal(t, 3.0, rows[1].TotalUsage)
	assert.Equal(t, 5.0, rows[1].ClosingStock, "same closing date: last inserted wins")
	assert.True(t, rows[1].ClosingValue.Equal(decimal.RequireFromString("15")))
}

func TestPurchaseOrders(t *testing.T) {
	tbl := Table{
		priced(rec("2024-01-05", "s", "milk", 3, 2), "dairy", "10", "20", 0),
		priced(rec("2024-01-05", "s", "egg", 3, 0), "farm", "1", "0", 0),
		priced(rec("2024-01-04", "s", "egg", 3, 5), "farm", "1", "5", 0),
		priced(rec("2024-01-05", "other", "egg", 3, 5), "farm", "1", "5", 0),
		priced(rec("2024-01-05", "s", "butter", 0, 1), "dairy", "4", "4", 0),
	}

	lines := PurchaseOrders(tbl, "s", day("2024-01-05"))
	require.Len(t, lines, 2)
	assert.Equal(t, "milk", lines[0].ItemID)
	assert.Equal(t, 2.0, lines[0].Quantity)
	assert.True(t, lines[0].TotalAmount.Equal(decimal.RequireFromString("20")))
	assert.Equal(t, "butter", lines[1].ItemID)
}
