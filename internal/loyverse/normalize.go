package loyverse

import (
	"fmt"
	"strings"
	"time"

	"backoffice-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const ReceiptTypeRefund = "REFUND"

var hundred = decimal.NewFromInt(100)

// normalizer converts POS payloads to domain receipts. This is the only place
// amounts are rescaled.
type normalizer struct {
	minorUnits bool
}

func (n normalizer) money(v Number) decimal.Decimal {
	d := v.OrZero()
	if n.minorUnits {
		return d.Div(hundred)
	}
	return d
}

func (n normalizer) receipt(p ReceiptPayload) (domain.Receipt, error) {
	created, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("created_at: %w", err)
	}

	r := domain.Receipt{
		ID:            PosReceiptID(p),
		ReceiptNumber: strings.TrimSpace(p.ReceiptNumber),
		CreatedAt:     created.UTC(),
		TotalMoney:    n.money(p.TotalMoney),
		PaymentLabel:  paymentLabel(p.Payments),
	}

	if strings.EqualFold(p.ReceiptType, ReceiptTypeRefund) {
		// refunds arrive with positive totals
		r.TotalMoney = r.TotalMoney.Abs().Neg()
		r.RefundedBy = strings.TrimSpace(p.RefundFor)
		if r.RefundedBy == "" {
			r.RefundedBy = r.ReceiptNumber
		}
	}

	for _, li := range p.LineItems {
		r.LineItems = append(r.LineItems, n.lineItem(li))
	}
	return r, nil
}

func (n normalizer) lineItem(li LineItemPayload) domain.LineItem {
	name := strings.TrimSpace(li.ItemName)
	if v := strings.TrimSpace(li.VariantName); name != "" && v != "" {
		name = name + " " + v
	}

	item := domain.LineItem{
		ItemName:  name,
		Quantity:  li.Quantity.NullDecimal,
		LineTotal: n.money(li.TotalMoney),
	}

	units := 1
	if li.Quantity.Valid && li.Quantity.Decimal.IsPositive() {
		units = int(li.Quantity.Decimal.Round(0).IntPart())
	}
	for _, m := range li.LineModifiers {
		modName := strings.TrimSpace(m.Option)
		if modName == "" {
			modName = strings.TrimSpace(m.Name)
		}
		cost := n.money(m.MoneyAmount)
		if !m.MoneyAmount.Valid {
			cost = n.money(m.Price).Mul(decimal.NewFromInt(int64(units)))
		}
		item.Modifiers = append(item.Modifiers, domain.Modifier{
			Name:     modName,
			Quantity: units,
			Cost:     cost,
		})
	}
	return item
}

// PosReceiptID is the stable POS identifier used to deduplicate stored
// receipts. Older payloads carry no id, so the receipt number stands in.
func PosReceiptID(p ReceiptPayload) string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	return strings.TrimSpace(p.ReceiptNumber)
}

func paymentLabel(payments []PaymentPayload) string {
	if len(payments) == 0 {
		return ""
	}
	if name := strings.TrimSpace(payments[0].Name); name != "" {
		return name
	}
	return strings.TrimSpace(payments[0].Type)
}
