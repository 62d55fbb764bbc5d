package shiftsummary

import (
	"context"
	"time"

	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/pipeline"
	"backoffice-backend/internal/store"
)

type Processor interface {
	ProcessShift(ctx context.Context, date time.Time) (*pipeline.ProcessingResult, error)
	ProcessCurrentShift(ctx context.Context) (*pipeline.ProcessingResult, error)
	Status() pipeline.StatusSnapshot
	Location() *time.Location
}

type Store interface {
	FindSummary(ctx context.Context, shiftDate string) (*store.StoredSummary, error)
	LatestSummary(ctx context.Context) (*store.StoredSummary, error)
	ListSummaries(ctx context.Context, from, to string, limit int) ([]*store.StoredSummary, error)
	FindStaffForm(ctx context.Context, shiftDate string) (*domain.StaffForm, error)
	RecentRuns(ctx context.Context, limit int) ([]models.ProcessingRun, error)
}

type Reconciler interface {
	Reconcile(summary *domain.ShiftSummary, form *domain.StaffForm) *domain.ReconciliationReport
}
