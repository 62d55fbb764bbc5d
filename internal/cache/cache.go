package cache

import (
	"context"
	"time"

	"backoffice-backend/internal/analysis"
	"backoffice-backend/internal/domain"
)

// Entry is the cached copy of the latest stored shift. It carries the same
// fields the database read returns.
type Entry struct {
	Summary   *domain.ShiftSummary         `json:"summary"`
	Report    *domain.ReconciliationReport `json:"reconciliation,omitempty"`
	Analysis  *analysis.Result             `json:"analysis,omitempty"`
	LastRunID string                       `json:"last_run_id"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

// SummaryCache keeps the most recent shift close at hand for the dashboard.
// The database remains the source of truth.
type SummaryCache interface {
	GetLatest(ctx context.Context) (*Entry, bool, error)
	SetLatest(ctx context.Context, entry *Entry) error
}

type NoopSummaryCache struct{}

func (NoopSummaryCache) GetLatest(_ context.Context) (*Entry, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) SetLatest(_ context.Context, _ *Entry) error {
	return nil
}
