package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PosReceipt is the raw POS receipt as fetched. Rows are written once and
// never updated.
type PosReceipt struct {
	ID            uint            `gorm:"primaryKey"`
	PosReceiptID  string          `gorm:"size:64;uniqueIndex;not null"`
	ReceiptNumber string          `gorm:"size:50;index;not null"`
	ReceiptDate   time.Time       `gorm:"index;not null"`
	ShiftDate     string          `gorm:"size:10;index"`
	TotalMoney    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PaymentLabel  string          `gorm:"size:100"`
	IsRefund      bool            `gorm:"not null;default:false"`
	RefundFor     string          `gorm:"size:50"`
	Raw           datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt     time.Time
}
