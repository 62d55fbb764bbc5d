package loyverse

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Number decodes a JSON number or numeric string. Anything else leaves it
// invalid instead of failing the whole record.
type Number struct {
	decimal.NullDecimal
}

func (n *Number) UnmarshalJSON(b []byte) error {
	n.Valid = false
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	if s == "" || s == "null" {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	n.Decimal = v
	n.Valid = true
	return nil
}

func (n Number) OrZero() decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}

type receiptsResponse struct {
	Receipts []json.RawMessage `json:"receipts"`
	Cursor   string            `json:"cursor"`
}

type ReceiptPayload struct {
	ID            string            `json:"id"`
	ReceiptNumber string            `json:"receipt_number" validate:"required"`
	ReceiptType   string            `json:"receipt_type" validate:"omitempty,oneof=SALE REFUND"`
	RefundFor     string            `json:"refund_for"`
	CreatedAt     string            `json:"created_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	ReceiptDate   string            `json:"receipt_date"`
	TotalMoney    Number            `json:"total_money" validate:"required,numeric"`
	StoreID       string            `json:"store_id"`
	LineItems     []LineItemPayload `json:"line_items"`
	Payments      []PaymentPayload  `json:"payments"`
}

type LineItemPayload struct {
	ID            string            `json:"id"`
	ItemName      string            `json:"item_name"`
	VariantName   string            `json:"variant_name"`
	Quantity      Number            `json:"quantity"`
	Price         Number            `json:"price"`
	TotalMoney    Number            `json:"total_money"`
	LineModifiers []ModifierPayload `json:"line_modifiers"`
}

type ModifierPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Option      string `json:"option"`
	Price       Number `json:"price"`
	MoneyAmount Number `json:"money_amount"`
}

type PaymentPayload struct {
	PaymentTypeID string `json:"payment_type_id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	MoneyAmount   Number `json:"money_amount"`
}
