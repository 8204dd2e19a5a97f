package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(date, store, item string, stock, purchase float64) Record {
	return Record{
		RecordDate:      day(date),
		StoreID:         store,
		VendorID:        "v",
		ItemID:          item,
		CurrentStock:    stock,
		CurrentPurchase: purchase,
	}
}

func TestFindLatestPrior_Empty(t *testing.T) {
	assert.Nil(t, FindLatestPrior(nil, "s", "i"))
	assert.Nil(t, FindLatestPrior(Table{rec("2024-01-01", "other", "i", 1, 1)}, "s", "i"))
	assert.Nil(t, FindLatestPrior(Table{rec("2024-01-01", "s", "other", 1, 1)}, "s", "i"))
}

func TestFindLatestPrior_LatestDateWins(t *testing.T) {
	tbl := Table{
		rec("2024-01-01", "s", "i", 1, 0),
		rec("2024-01-02", "s", "i", 2, 0),
		rec("2024-01-03", "s", "i", 3, 0),
	}
	got := FindLatestPrior(tbl, "s", "i")
	require.NotNil(t, got)
	assert.Equal(t, 3.0, got.CurrentStock)

	// поздняя вставка задним числом не становится «последней»
	tbl = append(tbl, rec("2024-01-01", "s", "i", 100, 0))
	got = FindLatestPrior(tbl, "s", "i")
	require.NotNil(t, got)
	assert.Equal(t, 3.0, got.CurrentStock)
}

func TestFindLatestPrior_SameDateLastInsertedWins(t *testing.T) {
	tbl := Table{
		rec("2024-01-03", "s", "i", 50, 9),
		rec("2024-01-03", "s", "i", 5, 1),
		rec("2024-01-02", "s", "i", 70, 0),
	}
	got := FindLatestPrior(tbl, "s", "i")
	require.NotNil(t, got)
	assert.Equal(t, 5.0, got.CurrentStock, "never the largest value, never a sum")
	assert.Equal(t, 1.0, got.CurrentPurchase)
}

func TestFindLatestPrior_ReturnsCopy(t *testing.T) {
	tbl := Table{rec("2024-01-01", "s", "i", 1, 0)}
	got := FindLatestPrior(tbl, "s", "i")
	got.CurrentStock = 99
	assert.Equal(t, 1.0, tbl[0].CurrentStock)
}

func TestFindLatestPriorBefore(t *testing.T) {
	tbl := Table{
		rec("2024-01-01", "s", "i", 1, 0),
		rec("2024-01-05", "s", "i", 5, 0),
		rec("2024-01-10", "s", "i", 10, 0),
	}

	got := FindLatestPriorBefore(tbl, "s", "i", day("2024-01-10"))
	require.NotNil(t, got)
	assert.Equal(t, 5.0, got.CurrentStock, "same-day record is not a prior")

	got = FindLatestPriorBefore(tbl, "s", "i", day("2024-01-11"))
	require.NotNil(t, got)
	assert.Equal(t, 10.0, got.CurrentStock)

	assert.Nil(t, FindLatestPriorBefore(tbl, "s", "i", day("2024-01-01")))
}
