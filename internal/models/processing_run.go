package models

import (
	"time"

	"gorm.io/datatypes"
)

type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusPartial RunStatus = "partial" // summary stored, some receipts or analysis failed
	RunStatusFailed  RunStatus = "failed"
)

type ProcessingRun struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	RunID             string         `gorm:"size:36;uniqueIndex;not null" json:"run_id"`
	ShiftDate         string         `gorm:"size:10;index;not null" json:"shift_date"`
	Trigger           string         `gorm:"size:20" json:"trigger"`
	Status            RunStatus      `gorm:"size:20;index;not null" json:"status"`
	ReceiptsProcessed int            `json:"receipts_processed"`
	ReceiptsStored    int            `json:"receipts_stored"`
	InvalidReceipts   int            `json:"invalid_receipts"`
	InvalidItems      int            `json:"invalid_items"`
	PagesFetched      int            `json:"pages_fetched"`
	AnalysisGenerated bool           `json:"analysis_generated"`
	Errors            datatypes.JSON `gorm:"type:jsonb" json:"errors"`
	StartedAt         time.Time      `gorm:"index" json:"started_at"`
	FinishedAt        time.Time      `json:"finished_at"`
	DurationMs        int64          `json:"duration_ms"`
	CreatedAt         time.Time      `json:"created_at"`
}
