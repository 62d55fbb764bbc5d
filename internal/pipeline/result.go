package pipeline

import (
	"context"
	"time"

	"backoffice-backend/internal/analysis"
	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/loyverse"
)

const (
	TriggerManual   = "manual"
	TriggerCron     = "cron"
	TriggerBackfill = "backfill"

	RunSuccess = "success"
	RunPartial = "partial"
	RunFailed  = "failed"
)

type Metadata struct {
	Trigger     string    `json:"trigger"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DurationMs  int64     `json:"duration_ms"`
}

type ProcessingResult struct {
	RunID             string                       `json:"run_id"`
	ShiftDate         string                       `json:"shift_date"`
	Success           bool                         `json:"success"`
	Persisted         bool                         `json:"persisted"`
	ReceiptsProcessed int                          `json:"receipts_processed"`
	ReceiptsStored    int                          `json:"receipts_stored"`
	InvalidReceipts   int                          `json:"invalid_receipts"`
	InvalidItems      int                          `json:"invalid_items"`
	PagesFetched      int                          `json:"pages_fetched"`
	AnalysisGenerated bool                         `json:"analysis_generated"`
	Errors            []string                     `json:"errors"`
	InvalidRecords    []loyverse.InvalidRecord     `json:"invalid_records,omitempty"`
	Summary           *domain.ShiftSummary         `json:"summary,omitempty"`
	Report            *domain.ReconciliationReport `json:"reconciliation,omitempty"`
	Analysis          *analysis.Result             `json:"analysis,omitempty"`
	Metadata          Metadata                     `json:"metadata"`
}

// RunStatus is success when everything completed, partial when the summary
// was stored but some step reported errors, failed otherwise.
func (r *ProcessingResult) RunStatus() string {
	switch {
	case !r.Persisted:
		return RunFailed
	case len(r.Errors) > 0:
		return RunPartial
	}
	return RunSuccess
}

func (r *ProcessingResult) addError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

type triggerKey struct{}

// WithTrigger tags ctx with what started a run. It only feeds run metadata.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

// TriggerFrom returns the trigger set by WithTrigger, manual by default.
func TriggerFrom(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok && t != "" {
		return t
	}
	return TriggerManual
}
