package domain

import "github.com/shopspring/decimal"

type ReconcileStatus string

const (
	StatusMatch       ReconcileStatus = "match"
	StatusDiscrepancy ReconcileStatus = "discrepancy"
	StatusMissing     ReconcileStatus = "missing"
	StatusPartial     ReconcileStatus = "partial"
)

type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Comparison struct {
	Field           string           `json:"field"`
	Label           string           `json:"label"`
	PosValue        decimal.Decimal  `json:"pos_value"`
	StaffValue      *decimal.Decimal `json:"staff_value"`
	Difference      decimal.Decimal  `json:"difference"`
	WithinTolerance bool             `json:"within_tolerance"`
	Status          ReconcileStatus  `json:"status"`
	Severity        Severity         `json:"severity"`
}

type ReportSummary struct {
	Total          int  `json:"total"`
	Matches        int  `json:"matches"`
	Discrepancies  int  `json:"discrepancies"`
	Missing        int  `json:"missing"`
	RequiresReview bool `json:"requires_review"`
}

// StockCheck compares ingredient usage derived from POS item sales with the
// amount staff counted as used. Variance is actual minus expected.
type StockCheck struct {
	Item      string           `json:"item"`
	Unit      string           `json:"unit"`
	Expected  decimal.Decimal  `json:"expected"`
	Actual    *decimal.Decimal `json:"actual"`
	Variance  decimal.Decimal  `json:"variance"`
	Tolerance decimal.Decimal  `json:"tolerance"`
	Status    ReconcileStatus  `json:"status"`
}

// ReconciliationReport is derived from a summary and a staff form; it is
// recomputed on demand rather than treated as primary data.
type ReconciliationReport struct {
	ShiftDate   string          `json:"shift_date"`
	Status      ReconcileStatus `json:"status"`
	Tolerance   decimal.Decimal `json:"tolerance"`
	Comparisons []Comparison    `json:"comparisons"`
	Summary     ReportSummary   `json:"summary"`
	Stock       []StockCheck    `json:"stock"`
}
