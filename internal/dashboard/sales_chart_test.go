package dashboard_test

import (
	"testing"
	"time"

	"backoffice-backend/internal/dashboard"
	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/reconcile"
	"backoffice-backend/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stored(date string, payments map[string]int64) *store.StoredSummary {
	breakdown := map[string]domain.PaymentBucket{}
	gross := decimal.Zero
	for label, amount := range payments {
		breakdown[label] = domain.PaymentBucket{Count: 1, Amount: decimal.NewFromInt(amount)}
		gross = gross.Add(decimal.NewFromInt(amount))
	}
	return &store.StoredSummary{Summary: &domain.ShiftSummary{
		ShiftDate:        date,
		TotalReceipts:    len(payments),
		GrossSales:       gross,
		PaymentBreakdown: breakdown,
	}}
}

func TestBuildSalesChartDaily(t *testing.T) {
	list := []*store.StoredSummary{
		stored("2025-06-02", map[string]int64{"Cash": 500, "GRAB": 200}),
		stored("2025-06-01", map[string]int64{"Cash": 300, "QR Code": 150, "LINE MAN": 80}),
	}

	chart := dashboard.BuildSalesChart(list, dashboard.PeriodDaily, reconcile.DefaultChannelMatcher())

	require.Len(t, chart.Points, 2)
	first := chart.Points[0]
	assert.Equal(t, "2025-06-01", first.Label)
	assert.True(t, first.Cash.Equal(decimal.NewFromInt(300)))
	assert.True(t, first.QR.Equal(decimal.NewFromInt(150)))
	assert.True(t, first.Other.Equal(decimal.NewFromInt(80)))
	assert.True(t, first.Total.Equal(decimal.NewFromInt(530)))

	assert.True(t, chart.GrandTotals.Cash.Equal(decimal.NewFromInt(800)))
	assert.True(t, chart.GrandTotals.Grab.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 2, chart.GrandTotals.Shifts)
}

func TestBuildSalesChartWeeklyAndMonthly(t *testing.T) {
	list := []*store.StoredSummary{
		stored("2025-06-01", map[string]int64{"Cash": 100}), // Sunday
		stored("2025-06-02", map[string]int64{"Cash": 100}), // Monday
		stored("2025-06-08", map[string]int64{"Cash": 100}), // Sunday
		stored("2025-05-31", map[string]int64{"Cash": 100}),
	}
	matcher := reconcile.DefaultChannelMatcher()

	weekly := dashboard.BuildSalesChart(list, dashboard.PeriodWeekly, matcher)
	require.Len(t, weekly.Points, 2)
	assert.Equal(t, "2025-05-26", weekly.Points[0].Label)
	assert.Equal(t, 2, weekly.Points[0].Shifts)
	assert.Equal(t, "2025-06-02", weekly.Points[1].Label)
	assert.Equal(t, 2, weekly.Points[1].Shifts)

	monthly := dashboard.BuildSalesChart(list, dashboard.PeriodMonthly, matcher)
	require.Len(t, monthly.Points, 2)
	assert.Equal(t, "2025-05-01", monthly.Points[0].Label)
	assert.Equal(t, "2025-06-01", monthly.Points[1].Label)
	assert.Equal(t, 3, monthly.Points[1].Shifts)
}

func TestRange(t *testing.T) {
	latest := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC) // Wednesday

	from, to := dashboard.Range(dashboard.PeriodDaily, 7, latest)
	assert.Equal(t, "2025-06-05", from.Format("2006-01-02"))
	assert.Equal(t, latest, to)

	from, _ = dashboard.Range(dashboard.PeriodWeekly, 2, latest)
	assert.Equal(t, "2025-06-02", from.Format("2006-01-02"))

	from, _ = dashboard.Range(dashboard.PeriodMonthly, 3, latest)
	assert.Equal(t, "2025-04-01", from.Format("2006-01-02"))
}
