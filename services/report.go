package services

import (
	"io"
	"time"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// OrderSummary aggregates an export
type OrderSummary struct {
	Orders    int
	Paid      int
	Cancelled int
	Items     int
	Revenue   decimal.Decimal
	Discounts decimal.Decimal
	Points    decimal.Decimal
}

// Summarize counts revenue from paid orders only
func Summarize(orders []models.Order) OrderSummary {
	s := OrderSummary{Orders: len(orders)}
	for _, o := range orders {
		if o.Status == models.OrderStatusCancelled {
			s.Cancelled++
			continue
		}
		for _, item := range o.Items {
			s.Items += item.Quantity
		}
		s.Discounts = s.Discounts.Add(o.Discount)
		s.Points = s.Points.Add(o.PointsUsed)
		if o.PaymentStatus == models.PaymentStatusPaid {
			s.Paid++
			s.Revenue = s.Revenue.Add(o.Total)
		}
	}
	return s
}

func boldStyle() *xlsx.Style {
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	return style
}

// WriteOrdersReport writes an XLSX sheet of orders followed by a summary block
func WriteOrdersReport(w io.Writer, orders []models.Order, storeName string, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return errors.Wrap(err, "add sheet")
	}

	title := sheet.AddRow()
	title.AddCell().SetString(storeName + " - Orders")
	title.Cells[0].SetStyle(boldStyle())
	sheet.AddRow()

	headers := []string{"Order", "Date", "Customer", "Email", "Items", "Subtotal", "Discount", "Points", "Shipping", "Total", "Payment", "Payment Status", "Status"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		cell.SetStyle(boldStyle())
	}

	for _, o := range orders {
		items := 0
		for _, item := range o.Items {
			items += item.Quantity
		}
		row := sheet.AddRow()
		row.AddCell().SetString(o.OrderNumber)
		row.AddCell().SetString(o.CreatedAt.In(loc).Format("2006-01-02 15:04"))
		row.AddCell().SetString(o.CustomerName)
		row.AddCell().SetString(o.CustomerEmail)
		row.AddCell().SetInt(items)
		row.AddCell().SetInt64(o.Subtotal.IntPart())
		row.AddCell().SetInt64(o.Discount.IntPart())
		row.AddCell().SetInt64(o.PointsUsed.IntPart())
		row.AddCell().SetInt64(o.ShippingFee.IntPart())
		row.AddCell().SetInt64(o.Total.IntPart())
		row.AddCell().SetString(o.PaymentMethod)
		row.AddCell().SetString(o.PaymentStatus)
		row.AddCell().SetString(o.Status)
	}

	sheet.AddRow()
	summary := Summarize(orders)
	head := sheet.AddRow()
	head.AddCell().SetString("Summary")
	head.Cells[0].SetStyle(boldStyle())
	for _, kv := range []struct {
		label string
		value int64
	}{
		{"Orders", int64(summary.Orders)},
		{"Paid orders", int64(summary.Paid)},
		{"Cancelled orders", int64(summary.Cancelled)},
		{"Items sold", int64(summary.Items)},
		{"Revenue (paid)", summary.Revenue.IntPart()},
		{"Code discounts", summary.Discounts.IntPart()},
		{"Points redeemed", summary.Points.IntPart()},
	} {
		row := sheet.AddRow()
		row.AddCell().SetString(kv.label)
		row.AddCell().SetInt64(kv.value)
	}

	if err := file.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}
