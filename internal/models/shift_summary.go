package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ShiftSummaryRecord is the persisted aggregate of one shift. One row per
// shift date; reprocessing updates the row in place.
type ShiftSummaryRecord struct {
	ID        uint   `gorm:"primaryKey"`
	ShiftDate string `gorm:"size:10;uniqueIndex;not null"` // YYYY-MM-DD, day the shift opened

	WindowStart time.Time `gorm:"not null"`
	WindowEnd   time.Time `gorm:"not null"`

	FirstReceiptNumber *string `gorm:"size:50"`
	LastReceiptNumber  *string `gorm:"size:50"`
	TotalReceipts      int     `gorm:"not null;default:0"`

	GrossSales decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	NetSales   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	RollsUsed  int             `gorm:"not null;default:0"`
	MeatUsedKg decimal.Decimal `gorm:"type:numeric(10,3);not null"`

	PaymentBreakdown datatypes.JSON `gorm:"type:jsonb"`
	ItemsSold        datatypes.JSON `gorm:"type:jsonb"`
	ModifiersSold    datatypes.JSON `gorm:"type:jsonb"`
	DrinkQuantities  datatypes.JSON `gorm:"type:jsonb"`
	Refunds          datatypes.JSON `gorm:"type:jsonb"`
	InvalidItems     int            `gorm:"not null;default:0"`

	ReconciliationStatus string         `gorm:"size:20;index"`
	RequiresReview       bool           `gorm:"not null;default:false"`
	Reconciliation       datatypes.JSON `gorm:"type:jsonb"`

	AnalysisSummary string         `gorm:"type:text"`
	AnalysisDetails datatypes.JSON `gorm:"type:jsonb"`

	LastRunID string `gorm:"size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
