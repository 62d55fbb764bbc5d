package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StaffForm holds the totals staff entered by hand at the end of a shift.
// A nil field means the value was not entered.
type StaffForm struct {
	ShiftDate     string           `json:"shift_date"`
	SubmittedBy   string           `json:"submitted_by"`
	SubmittedAt   time.Time        `json:"submitted_at"`
	StartingCash  *decimal.Decimal `json:"starting_cash"`
	CashSales     *decimal.Decimal `json:"cash_sales"`
	QRSales       *decimal.Decimal `json:"qr_sales"`
	GrabSales     *decimal.Decimal `json:"grab_sales"`
	OtherSales    *decimal.Decimal `json:"other_sales"`
	TotalSales    *decimal.Decimal `json:"total_sales"`
	TotalExpenses *decimal.Decimal `json:"total_expenses"`
	EndingCash    *decimal.Decimal `json:"ending_cash"`
	BurgerRolls   *int             `json:"burger_rolls"`
	MeatWeightKg  *decimal.Decimal `json:"meat_weight_kg"`
}
