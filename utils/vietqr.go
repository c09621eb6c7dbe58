package utils

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

// VietQR describes the receiving bank account for transfer payments.
type VietQR struct {
	BankID      string
	AccountNo   string
	AccountName string
	Template    string
}

// ImageURL builds the static img.vietqr.io image for an amount and transfer note.
func (q VietQR) ImageURL(amount decimal.Decimal, addInfo string) string {
	template := q.Template
	if template == "" {
		template = "compact2"
	}

	params := url.Values{}
	params.Set("amount", amount.Round(0).String())
	params.Set("addInfo", addInfo)
	if q.AccountName != "" {
		params.Set("accountName", q.AccountName)
	}

	return fmt.Sprintf("https://img.vietqr.io/image/%s-%s-%s.png?%s",
		url.PathEscape(q.BankID), url.PathEscape(q.AccountNo), template, params.Encode())
}

// Configured reports whether a bank account is set.
func (q VietQR) Configured() bool {
	return q.BankID != "" && q.AccountNo != ""
}
