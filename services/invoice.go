package services

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// InvoiceOptions carries store details printed on invoices
type InvoiceOptions struct {
	StoreName   string
	FrontendURL string
	Location    *time.Location
}

// FormatVND renders an amount as "1.250.000 VND"
func FormatVND(amount decimal.Decimal) string {
	n := amount.Round(0).IntPart()
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + " VND"
}

// WriteInvoice renders a one-page PDF invoice for the order.
// Text goes through ASCII transliteration because the core fonts have no Vietnamese glyphs.
func WriteInvoice(w io.Writer, order *models.Order, opts InvoiceOptions) error {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	txt := utils.ToASCII

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+order.OrderNumber, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(120, 10, txt(opts.StoreName))
	pdf.Ln(12)

	if opts.FrontendURL != "" {
		link := fmt.Sprintf("%s/orders/%d", strings.TrimRight(opts.FrontendURL, "/"), order.ID)
		png, err := qrcode.Encode(link, qrcode.Medium, 256)
		if err != nil {
			return errors.Wrap(err, "encode invoice qr")
		}
		pdf.RegisterImageOptionsReader("order-qr", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		pdf.ImageOptions("order-qr", 165, 10, 30, 30, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "INVOICE")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(90, 7, "Order: "+order.OrderNumber)
	pdf.Cell(90, 7, "Date: "+order.CreatedAt.In(loc).Format("02/01/2006 15:04"))
	pdf.Ln(7)
	pdf.Cell(90, 7, "Payment: "+strings.ToUpper(order.PaymentMethod)+" ("+order.PaymentStatus+")")
	pdf.Cell(90, 7, "Status: "+order.Status)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(100, 7, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(180, 6, txt(order.CustomerName))
	pdf.Ln(6)
	pdf.Cell(180, 6, order.CustomerEmail)
	pdf.Ln(6)
	if order.CustomerPhone != "" {
		pdf.Cell(180, 6, "Phone: "+order.CustomerPhone)
		pdf.Ln(6)
	}
	pdf.MultiCell(180, 6, txt(order.ShippingAddress), "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(90, 8, txt(item.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, FormatVND(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, FormatVND(item.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	line := func(label string, amount decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 11)
		pdf.CellFormat(145, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, FormatVND(amount), "", 1, "R", false, 0, "")
	}
	line("Subtotal:", order.Subtotal, false)
	if order.Discount.IsPositive() {
		line(fmt.Sprintf("Discount (%s):", order.DiscountCode), order.Discount.Neg(), false)
	}
	if order.PointsUsed.IsPositive() {
		line("Points redeemed:", order.PointsUsed.Neg(), false)
	}
	line("Shipping:", order.ShippingFee, false)
	line("Grand Total:", order.Total, true)

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 11)
	pdf.Cell(0, 10, txt("Thank you for shopping with "+opts.StoreName+"!"))

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "render invoice")
	}
	return nil
}
