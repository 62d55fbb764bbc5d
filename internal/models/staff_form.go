package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StaffForm is the end-of-shift sales and cash form entered by staff.
// Nullable amounts distinguish "not entered" from zero.
type StaffForm struct {
	ID            uint                `gorm:"primaryKey"`
	ShiftDate     string              `gorm:"size:10;uniqueIndex;not null"`
	StartingCash  decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	CashSales     decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	QRSales       decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	GrabSales     decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	OtherSales    decimal.NullDecimal `gorm:"type:numeric(14,2)"` // Aroi Dee and other delivery apps
	TotalSales    decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	TotalExpenses decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	EndingCash    decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	BurgerRolls   *int
	MeatWeightKg  decimal.NullDecimal `gorm:"type:numeric(10,3)"`
	SubmittedByID uint                `gorm:"index"`
	SubmittedBy   string              `gorm:"size:100"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
