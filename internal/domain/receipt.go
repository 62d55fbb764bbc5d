package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is a POS receipt after normalization at the adapter boundary.
// Amounts are always in major currency units (THB).
type Receipt struct {
	ID            string          `json:"id"`
	ReceiptNumber string          `json:"receipt_number"`
	CreatedAt     time.Time       `json:"created_at"`
	TotalMoney    decimal.Decimal `json:"total_money"`
	PaymentLabel  string          `json:"payment_label"`
	LineItems     []LineItem      `json:"line_items"`
	RefundedBy    string          `json:"refunded_by,omitempty"`
}

func (r Receipt) IsRefund() bool {
	return r.RefundedBy != ""
}

type LineItem struct {
	ItemName  string              `json:"item_name"`
	Quantity  decimal.NullDecimal `json:"quantity"` // Valid=false when the POS value was missing or not numeric
	LineTotal decimal.Decimal     `json:"line_total"`
	Modifiers []Modifier          `json:"modifiers"`
}

type Modifier struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}
