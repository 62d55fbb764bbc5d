package pipeline

import (
	"context"
	"time"

	"backoffice-backend/internal/analysis"
	"backoffice-backend/internal/cache"
	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/loyverse"
)

// ReceiptSource returns one page of POS receipts for a UTC range.
//
//go:generate mockgen -destination=mocks/mock_pipeline.go -package=mock_pipeline -source=interface.go
type ReceiptSource interface {
	FetchReceipts(ctx context.Context, start, end time.Time, cursor string) (*loyverse.Page, error)
}

// Store persists shift summaries, raw receipts and processing runs.
type Store interface {
	FindStaffForm(ctx context.Context, shiftDate string) (*domain.StaffForm, error)
	InsertReceiptIfAbsent(ctx context.Context, shiftDate string, receipt loyverse.RawReceipt) (bool, error)
	UpsertSummary(ctx context.Context, write SummaryWrite) (bool, error)
	RecordRun(ctx context.Context, result *ProcessingResult) error
}

type Analyzer interface {
	Analyze(ctx context.Context, summary *domain.ShiftSummary, report *domain.ReconciliationReport) (*analysis.Result, error)
}

type SummaryCache interface {
	SetLatest(ctx context.Context, entry *cache.Entry) error
}

type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

type Lock interface {
	Release(ctx context.Context) error
}

// SummaryWrite is everything stored with a summary in one upsert.
type SummaryWrite struct {
	RunID    string
	Summary  *domain.ShiftSummary
	Report   *domain.ReconciliationReport
	Analysis *analysis.Result
}
