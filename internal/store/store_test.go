package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/loyverse"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) (*GormStore, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.PosReceipt{}, &models.ShiftSummaryRecord{}, &models.StaffForm{}, &models.ProcessingRun{}))
	return New(db), db
}

func TestUpsertSummary_SameShiftTwiceKeepsOneRow(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	created, err := s.UpsertSummary(ctx, pipeline.SummaryWrite{RunID: "run-1", Summary: sampleSummary()})
	require.NoError(t, err)
	assert.True(t, created)

	again := sampleSummary()
	again.TotalReceipts = 43
	again.GrossSales = decimal.RequireFromString("12600.50")
	created, err = s.UpsertSummary(ctx, pipeline.SummaryWrite{RunID: "run-2", Summary: again})
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&models.ShiftSummaryRecord{}).Where("shift_date = ?", "2025-06-01").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := s.FindSummary(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "run-2", stored.LastRunID)
	assert.Equal(t, 43, stored.Summary.TotalReceipts)
	assert.True(t, decimal.RequireFromString("12600.50").Equal(stored.Summary.GrossSales), stored.Summary.GrossSales.String())
}

func TestUpsertSummary_DistinctShiftsAreSeparateRows(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	next := sampleSummary()
	next.ShiftDate = "2025-06-02"
	for _, sum := range []*domain.ShiftSummary{sampleSummary(), next} {
		_, err := s.UpsertSummary(ctx, pipeline.SummaryWrite{RunID: "run-1", Summary: sum})
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.ShiftSummaryRecord{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	latest, err := s.LatestSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", latest.Summary.ShiftDate)
}

func TestInsertReceiptIfAbsent_SecondInsertLeavesRowUnchanged(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	raw := loyverse.RawReceipt{
		Receipt: domain.Receipt{
			ID:            "rcpt-1",
			ReceiptNumber: "1-1001",
			CreatedAt:     time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
			TotalMoney:    decimal.NewFromInt(300),
			PaymentLabel:  "Cash",
		},
		Payload: json.RawMessage(`{"receipt_number":"1-1001","total_money":300}`),
	}

	inserted, err := s.InsertReceiptIfAbsent(ctx, "2025-06-01", raw)
	require.NoError(t, err)
	assert.True(t, inserted)

	changed := raw
	changed.Receipt.TotalMoney = decimal.NewFromInt(999)
	changed.Receipt.PaymentLabel = "QR"
	inserted, err = s.InsertReceiptIfAbsent(ctx, "2025-06-02", changed)
	require.NoError(t, err)
	assert.False(t, inserted)

	var rows []models.PosReceipt
	require.NoError(t, db.Where("pos_receipt_id = ?", "rcpt-1").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, decimal.NewFromInt(300).Equal(rows[0].TotalMoney), rows[0].TotalMoney.String())
	assert.Equal(t, "Cash", rows[0].PaymentLabel)
	assert.Equal(t, "2025-06-01", rows[0].ShiftDate)
}

func TestFindSummary_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.FindSummary(context.Background(), "2025-06-01")
	assert.ErrorIs(t, err, ErrNotFound)

	form, err := s.FindStaffForm(context.Background(), "2025-06-01")
	assert.NoError(t, err)
	assert.Nil(t, form)
}
