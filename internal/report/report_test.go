package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Spok95/stock-intake/internal/domain/inventory"
	"github.com/Spok95/stock-intake/internal/infra/logger"
	"github.com/Spok95/stock-intake/internal/infra/objstore/mocks"
	"github.com/minio/minio-go/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func d(s string) time.Time {
	t, _ := inventory.ParseDay(s)
	return t
}

var orderLines = []inventory.PurchaseOrderLine{
	{VendorID: "dairy", ItemID: "milk", DisplayName: "鮮奶", Unit: "瓶", Quantity: 3,
		UnitPrice: decimal.RequireFromString("12.33"), TotalAmount: decimal.RequireFromString("37")},
	{VendorID: "farm", ItemID: "egg", DisplayName: "雞蛋", Unit: "盒", Quantity: 2.5,
		UnitPrice: decimal.RequireFromString("60"), TotalAmount: decimal.RequireFromString("150")},
}

var periodRows = []inventory.AggregateRow{
	{VendorID: "dairy", ItemID: "milk", DisplayName: "鮮奶", Unit: "瓶", TotalUsage: -2, TotalPurchase: 6,
		TotalAmount: decimal.RequireFromString("74"), ClosingStock: 4,
		ClosingUnitPrice: decimal.RequireFromString("12.33"), ClosingValue: decimal.RequireFromString("49.32"),
		ClosingDate: d("2024-01-05")},
}

func TestOrdersText(t *testing.T) {
	out := OrdersText("台北店", d("2024-01-05"), orderLines)
	assert.Contains(t, out, "Заявки: 台北店, 2024-01-05")
	assert.Contains(t, out, "鮮奶")
	assert.Contains(t, out, "3 瓶")
	assert.Contains(t, out, "2.5 盒")
	assert.Contains(t, out, "187.0")

	empty := OrdersText("台北店", d("2024-01-05"), nil)
	assert.Contains(t, empty, "заявок нет")
}

func TestPeriodText(t *testing.T) {
	out := PeriodText("台北店", d("2024-01-01"), d("2024-01-10"), periodRows)
	assert.Contains(t, out, "2024-01-01 — 2024-01-10")
	assert.Contains(t, out, "-2")
	assert.Contains(t, out, "49.3")

	assert.Contains(t, PeriodText("x", d("2024-01-01"), d("2024-01-02"), nil), "Нет записей")
}

func readSheet(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestOrdersWorkbook(t *testing.T) {
	data, err := OrdersWorkbook("taipei", d("2024-01-05"), orderLines)
	require.NoError(t, err)

	rows := readSheet(t, data, KindOrders)
	require.Len(t, rows, 4)
	assert.Equal(t, "store_id", rows[0][0])
	assert.Equal(t, "milk", rows[1][3])
	assert.Equal(t, "37", rows[1][8])
	assert.Equal(t, "Итого", rows[3][0])
	assert.Equal(t, "187", rows[3][8])
}

func TestPeriodWorkbook(t *testing.T) {
	data, err := PeriodWorkbook("taipei", d("2024-01-01"), d("2024-01-10"), periodRows)
	require.NoError(t, err)

	rows := readSheet(t, data, KindPeriod)
	require.Len(t, rows, 3)
	assert.Equal(t, "closing_stock", rows[0][10])
	assert.Equal(t, "4", rows[1][10])
	assert.Equal(t, "2024-01-05", rows[1][13])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "orders_taipei_20240105.xlsx", FileName(KindOrders, "taipei", d("2024-01-05")))
}

func TestArchiver(t *testing.T) {
	ctx := context.Background()
	client := &mocks.Client{}
	a := NewArchiver(client, "intake-reports", logger.Discard())

	client.On("BucketExists", ctx, "intake-reports").Return(false, nil).Once()
	client.On("MakeBucket", ctx, "intake-reports", minio.MakeBucketOptions{}).Return(nil).Once()
	require.NoError(t, a.EnsureBucket(ctx))

	data := []byte("xlsx")
	client.On("PutObject", ctx, "intake-reports", "reports/taipei/orders.xlsx", mock.Anything, int64(4),
		minio.PutObjectOptions{ContentType: ContentTypeXLSX}).
		Return(minio.UploadInfo{Key: "reports/taipei/orders.xlsx"}, nil).Once()

	key, err := a.Archive(ctx, "taipei", "orders.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, "reports/taipei/orders.xlsx", key)

	client.On("PutObject", ctx, "intake-reports", "reports/taipei/broken.xlsx", mock.Anything, int64(4), mock.Anything).
		Return(minio.UploadInfo{}, errors.New("boom")).Once()
	_, err = a.Archive(ctx, "taipei", "broken.xlsx", data)
	assert.Error(t, err)

	client.AssertExpectations(t)
}
