package inventory

import (
	"testing"
	"time"

	"github.com/Spok95/stock-intake/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(id, vendor, price string) catalog.Item {
	return catalog.Item{
		ItemID:      id,
		DisplayName: "name-" + id,
		Unit:        "box",
		UnitPrice:   decimal.RequireFromString(price),
		VendorID:    vendor,
	}
}

func day(s string) time.Time {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestReconcile_NoHistory(t *testing.T) {
	for _, stock := range []float64{0, 1, 7.5, 1e9} {
		r := Reconcile(item("milk", "dairy", "10"), nil, stock, 2, "s1", "dairy", day("2024-01-05"))
		assert.Zero(t, r.PriorStock)
		assert.Zero(t, r.PriorPurchase)
		assert.Equal(t, -stock, r.Usage)
	}
}

func TestReconcile_Fields(t *testing.T) {
	prior := &Record{CurrentStock: 8, CurrentPurchase: 4}
	at := time.Date(2024, 3, 2, 17, 45, 0, 0, time.FixedZone("CST", 8*3600))

	r := Reconcile(item("milk", "dairy", "12.5"), prior, 5, 2, "s1", "dairy", at)

	assert.Equal(t, day("2024-03-02"), r.RecordDate, "time of day is dropped")
	assert.Equal(t, "s1", r.StoreID)
	assert.Equal(t, "dairy", r.VendorID)
	assert.Equal(t, "milk", r.ItemID)
	assert.Equal(t, "name-milk", r.DisplayName)
	assert.Equal(t, "box", r.Unit)
	assert.Equal(t, 8.0, r.PriorStock)
	assert.Equal(t, 4.0, r.PriorPurchase)
	assert.Equal(t, 5.0, r.CurrentStock)
	assert.Equal(t, 2.0, r.CurrentPurchase)
	assert.Equal(t, 7.0, r.Usage)
	assert.True(t, r.UnitPrice.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, r.TotalAmount.Equal(decimal.RequireFromString("25")))
}

func TestReconcile_UsageIdentity(t *testing.T) {
	tests := []struct {
		name                                 string
		priorStock, priorPurchase, observed float64
		want                                 float64
	}{
		{"consumption", 10, 5, 3, 12},
		{"nothing used", 10, 0, 10, 0},
		{"negative usage is kept", 5, 0, 10, -5},
		{"fractional", 1.5, 0.25, 0.5, 1.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prior := &Record{CurrentStock: tt.priorStock, CurrentPurchase: tt.priorPurchase}
			r := Reconcile(item("x", "v", "1"), prior, tt.observed, 0, "s", "v", day("2024-01-01"))
			assert.Equal(t, tt.want, r.Usage)
			assert.Equal(t, tt.priorStock+tt.priorPurchase-tt.observed, r.Usage)
		})
	}
}

func TestReconcile_TotalAmountRounding(t *testing.T) {
	tests := []struct {
		purchase float64
		price    string
		want     string
	}{
		{3, "12.33", "37"},
		{0, "12.33", "0"},
		{2, "0.04", "0.1"},
		{1, "0.04", "0"},
		{10, "9.99", "99.9"},
		{1.5, "3.3", "5"},
	}
	for _, tt := range tests {
		r := Reconcile(item("x", "v", tt.price), nil, 0, tt.purchase, "s", "v", day("2024-01-01"))
		assert.Truef(t, r.TotalAmount.Equal(decimal.RequireFromString(tt.want)),
			"%v * %s = %s, want %s", tt.purchase, tt.price, r.TotalAmount, tt.want)
	}
}

func TestShouldPersist(t *testing.T) {
	tests := []struct {
		stock, purchase float64
		want            bool
	}{
		{0, 0, false},
		{1, 0, true},
		{0, 1, true},
		{3, 4, true},
		{0.001, 0, true},
	}
	for _, tt := range tests {
		r := Reconcile(item("x", "v", "1"), &Record{CurrentStock: 9}, tt.stock, tt.purchase, "s", "v", day("2024-01-01"))
		assert.Equalf(t, tt.want, ShouldPersist(r), "stock=%v purchase=%v", tt.stock, tt.purchase)
	}
}
