package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentBucket struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type ItemTotal struct {
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

type ModifierTotal struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type Refund struct {
	ReceiptNumber string          `json:"receipt_number"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ShiftSummary is the aggregate of every receipt in one shift window.
// There is at most one stored summary per ShiftDate.
type ShiftSummary struct {
	ShiftDate   string    `json:"shift_date"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	FirstReceiptNumber *string `json:"first_receipt_number"`
	LastReceiptNumber  *string `json:"last_receipt_number"`
	TotalReceipts      int     `json:"total_receipts"`

	GrossSales decimal.Decimal `json:"gross_sales"`
	NetSales   decimal.Decimal `json:"net_sales"`

	PaymentBreakdown map[string]PaymentBucket `json:"payment_breakdown"`
	ItemsSold        map[string]ItemTotal     `json:"items_sold"`
	ModifiersSold    map[string]ModifierTotal `json:"modifiers_sold"`
	DrinkQuantities  map[string]int           `json:"drink_quantities"`

	RollsUsed  int             `json:"rolls_used"`
	MeatUsedKg decimal.Decimal `json:"meat_used_kg"`

	Refunds []Refund `json:"refunds"`

	InvalidItems int `json:"invalid_items"`
}

// RefundTotal is the sum of refund amounts (negative for POS refunds).
func (s *ShiftSummary) RefundTotal() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.Refunds {
		total = total.Add(r.Amount)
	}
	return total
}
