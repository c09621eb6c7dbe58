package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func sampleOrder(number, status, paymentStatus string, total int64) models.Order {
	o := models.Order{
		OrderNumber:     number,
		CustomerName:    "Nguyễn Văn An",
		CustomerEmail:   "an@example.com",
		CustomerPhone:   "0912345678",
		ShippingAddress: "10 Nguyễn Huệ, Quận 1, Hồ Chí Minh",
		PaymentMethod:   models.PaymentMethodCOD,
		PaymentStatus:   paymentStatus,
		Status:          status,
		Subtotal:        decimal.NewFromInt(total),
		Total:           decimal.NewFromInt(total),
		Items: []models.OrderItem{
			{ProductName: "Vợt Yonex Astrox 88D", Quantity: 2, Price: decimal.NewFromInt(total / 2), Total: decimal.NewFromInt(total)},
		},
	}
	o.ID = 7
	o.CreatedAt = time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	return o
}

func TestFormatVND(t *testing.T) {
	cases := map[int64]string{
		0:       "0 VND",
		500:     "500 VND",
		30000:   "30.000 VND",
		1250000: "1.250.000 VND",
		-100000: "-100.000 VND",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatVND(decimal.NewFromInt(in)))
	}
}

func TestWriteInvoice(t *testing.T) {
	order := sampleOrder("SH-260301-0001", models.OrderStatusDelivered, models.PaymentStatusPaid, 1000000)
	order.Discount = decimal.NewFromInt(100000)
	order.DiscountCode = "SUMMER10"
	order.PointsUsed = decimal.NewFromInt(50000)

	var buf bytes.Buffer
	err := WriteInvoice(&buf, &order, InvoiceOptions{StoreName: "ShuttleHub", FrontendURL: "https://shop.example.com"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	var plain bytes.Buffer
	require.NoError(t, WriteInvoice(&plain, &order, InvoiceOptions{StoreName: "ShuttleHub"}))
	assert.Less(t, plain.Len(), buf.Len(), "the qr image adds to the document")
}

func TestSummarize(t *testing.T) {
	orders := []models.Order{
		sampleOrder("A", models.OrderStatusDelivered, models.PaymentStatusPaid, 600000),
		sampleOrder("B", models.OrderStatusProcessing, models.PaymentStatusPending, 200000),
		sampleOrder("C", models.OrderStatusCancelled, models.PaymentStatusFailed, 900000),
	}
	orders[0].Discount = decimal.NewFromInt(60000)

	s := Summarize(orders)
	assert.Equal(t, 3, s.Orders)
	assert.Equal(t, 1, s.Paid)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, 4, s.Items)
	assert.True(t, s.Revenue.Equal(decimal.NewFromInt(600000)))
	assert.True(t, s.Discounts.Equal(decimal.NewFromInt(60000)))
}

func TestWriteOrdersReport(t *testing.T) {
	orders := []models.Order{
		sampleOrder("A", models.OrderStatusDelivered, models.PaymentStatusPaid, 600000),
		sampleOrder("B", models.OrderStatusCancelled, models.PaymentStatusFailed, 200000),
	}
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteOrdersReport(&buf, orders, "ShuttleHub", loc))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	byKey := map[string]*xlsx.Row{}
	for _, row := range file.Sheets[0].Rows {
		if row != nil && len(row.Cells) > 0 && row.Cells[0] != nil {
			byKey[row.Cells[0].Value] = row
		}
	}
	require.Contains(t, byKey, "ShuttleHub - Orders")
	require.Contains(t, byKey, "Order")
	require.Contains(t, byKey, "A")
	require.Contains(t, byKey, "B")
	assert.Equal(t, "2026-03-01 10:00", byKey["A"].Cells[1].Value)
	assert.Equal(t, "600000", byKey["A"].Cells[9].Value)
	assert.Equal(t, models.OrderStatusCancelled, byKey["B"].Cells[12].Value)

	require.Contains(t, byKey, "Revenue (paid)")
	revenue := byKey["Revenue (paid)"].Cells[1].Value
	assert.Equal(t, "600000", revenue)
}
