// Package store persists shift summaries, raw POS receipts, staff forms and
// processing runs in Postgres through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice-backend/internal/analysis"
	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/loyverse"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/pipeline"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// StoredSummary is a summary row decoded back into domain values.
type StoredSummary struct {
	Summary   *domain.ShiftSummary         `json:"summary"`
	Report    *domain.ReconciliationReport `json:"reconciliation,omitempty"`
	Analysis  *analysis.Result             `json:"analysis,omitempty"`
	LastRunID string                       `json:"last_run_id"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

type GormStore struct {
	db *gorm.DB
}

var _ pipeline.Store = (*GormStore)(nil)

func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindStaffForm(ctx context.Context, shiftDate string) (*domain.StaffForm, error) {
	var row models.StaffForm
	err := s.db.WithContext(ctx).Where("shift_date = ?", shiftDate).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return staffFormFromRow(&row), nil
}

// InsertReceiptIfAbsent stores the raw receipt once. An existing row with the
// same POS id is left untouched and reported as not inserted.
func (s *GormStore) InsertReceiptIfAbsent(ctx context.Context, shiftDate string, raw loyverse.RawReceipt) (bool, error) {
	row := receiptRow(shiftDate, raw)
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "pos_receipt_id"}}, DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpsertSummary writes the single row for the shift date, creating it on the
// first run. It reports whether a row was created.
func (s *GormStore) UpsertSummary(ctx context.Context, write pipeline.SummaryWrite) (bool, error) {
	row, err := summaryRow(write)
	if err != nil {
		return false, err
	}

	created := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ShiftSummaryRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("shift_date = ?", row.ShiftDate).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			return tx.Create(row).Error
		case err != nil:
			return err
		}
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		return tx.Save(row).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *GormStore) RecordRun(ctx context.Context, result *pipeline.ProcessingResult) error {
	row, err := runRow(result)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *GormStore) FindSummary(ctx context.Context, shiftDate string) (*StoredSummary, error) {
	var row models.ShiftSummaryRecord
	err := s.db.WithContext(ctx).Where("shift_date = ?", shiftDate).First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return summaryFromRow(&row)
}

func (s *GormStore) LatestSummary(ctx context.Context) (*StoredSummary, error) {
	var row models.ShiftSummaryRecord
	err := s.db.WithContext(ctx).Order("shift_date DESC").First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return summaryFromRow(&row)
}

// ListSummaries returns summaries newest first. Empty bounds are open.
func (s *GormStore) ListSummaries(ctx context.Context, from, to string, limit int) ([]*StoredSummary, error) {
	q := s.db.WithContext(ctx).Model(&models.ShiftSummaryRecord{})
	if from != "" {
		q = q.Where("shift_date >= ?", from)
	}
	if to != "" {
		q = q.Where("shift_date <= ?", to)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.ShiftSummaryRecord
	if err := q.Order("shift_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*StoredSummary, 0, len(rows))
	for i := range rows {
		stored, err := summaryFromRow(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("decode summary %s: %w", rows[i].ShiftDate, err)
		}
		out = append(out, stored)
	}
	return out, nil
}

// UpsertStaffForm saves the form for its shift date and returns the form it
// replaced, or nil on first submission.
func (s *GormStore) UpsertStaffForm(ctx context.Context, form domain.StaffForm, submittedByID uint) (*domain.StaffForm, error) {
	row := staffFormRow(form)
	row.SubmittedByID = submittedByID

	var previous *domain.StaffForm
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.StaffForm
		err := tx.Where("shift_date = ?", form.ShiftDate).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&row).Error
		case err != nil:
			return err
		}
		previous = staffFormFromRow(&existing)
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

func (s *GormStore) RecentRuns(ctx context.Context, limit int) ([]models.ProcessingRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.ProcessingRun
	err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
