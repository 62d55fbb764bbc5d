package dashboard

import (
	"context"
	"sort"
	"time"

	"backoffice-backend/internal/reconcile"
	"backoffice-backend/internal/shift"
	"backoffice-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

type SalesChartPoint struct {
	Label    string          `json:"label"` // shift date, week start or month start
	Cash     decimal.Decimal `json:"cash"`
	QR       decimal.Decimal `json:"qr"`
	Grab     decimal.Decimal `json:"grab"`
	Other    decimal.Decimal `json:"other"`
	Total    decimal.Decimal `json:"total"`
	Receipts int             `json:"receipts"`
	Shifts   int             `json:"shifts"`
}

type SalesChartResponse struct {
	Period      string            `json:"period"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	Points      []SalesChartPoint `json:"points"`
	GrandTotals SalesChartPoint   `json:"grand_totals"`
}

type SummaryLister interface {
	ListSummaries(ctx context.Context, from, to string, limit int) ([]*store.StoredSummary, error)
}

// GET /api/dashboard/sales-chart?period=daily&count=7
func SalesChartHandler(s SummaryLister, loc *time.Location, channels reconcile.ChannelMatcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := c.Query("period", PeriodDaily)
		count := c.QueryInt("count", 0)
		if count < 0 || count > 366 {
			return fiber.NewError(fiber.StatusBadRequest, "count must be between 1 and 366")
		}
		if count == 0 {
			switch period {
			case PeriodWeekly:
				count = 8
			case PeriodMonthly:
				count = 12
			default:
				period = PeriodDaily
				count = 7
			}
		}

		latest := shift.RecentDates(time.Now(), loc, 1)[0]
		start, end := Range(period, count, latest)

		list, err := s.ListSummaries(c.UserContext(), start.Format(shift.DateLayout), end.Format(shift.DateLayout), 0)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load shift summaries")
		}

		resp := BuildSalesChart(list, period, channels)
		resp.From = start.Format(shift.DateLayout)
		resp.To = end.Format(shift.DateLayout)
		return c.JSON(resp)
	}
}

// Range returns the first and last shift date covered by count periods
// ending with the period that contains latest.
func Range(period string, count int, latest time.Time) (time.Time, time.Time) {
	switch period {
	case PeriodWeekly:
		return weekStart(latest).AddDate(0, 0, -7*(count-1)), latest
	case PeriodMonthly:
		first := time.Date(latest.Year(), latest.Month(), 1, 0, 0, 0, 0, latest.Location())
		return first.AddDate(0, -(count - 1), 0), latest
	default:
		return latest.AddDate(0, 0, -(count - 1)), latest
	}
}

// BuildSalesChart buckets summaries by period and splits each bucket by
// payment channel. Points are ordered oldest first.
func BuildSalesChart(list []*store.StoredSummary, period string, channels reconcile.ChannelMatcher) SalesChartResponse {
	buckets := map[string]*SalesChartPoint{}
	grand := newPoint("")

	for _, stored := range list {
		s := stored.Summary
		date, err := time.Parse(shift.DateLayout, s.ShiftDate)
		if err != nil {
			continue
		}
		label := bucketLabel(period, date)
		p, ok := buckets[label]
		if !ok {
			p = newPoint(label)
			buckets[label] = p
		}
		totals := channels.Totals(s.PaymentBreakdown)
		for _, pt := range []*SalesChartPoint{p, grand} {
			pt.Cash = pt.Cash.Add(totals[reconcile.ChannelCash])
			pt.QR = pt.QR.Add(totals[reconcile.ChannelQR])
			pt.Grab = pt.Grab.Add(totals[reconcile.ChannelGrab])
			pt.Other = pt.Other.Add(totals[reconcile.ChannelOther])
			pt.Total = pt.Total.Add(s.GrossSales)
			pt.Receipts += s.TotalReceipts
			pt.Shifts++
		}
	}

	points := make([]SalesChartPoint, 0, len(buckets))
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })

	return SalesChartResponse{Period: period, Points: points, GrandTotals: *grand}
}

func newPoint(label string) *SalesChartPoint {
	return &SalesChartPoint{Label: label, Cash: decimal.Zero, QR: decimal.Zero, Grab: decimal.Zero, Other: decimal.Zero, Total: decimal.Zero}
}

func bucketLabel(period string, date time.Time) string {
	switch period {
	case PeriodWeekly:
		return weekStart(date).Format(shift.DateLayout)
	case PeriodMonthly:
		return date.Format("2006-01") + "-01"
	default:
		return date.Format(shift.DateLayout)
	}
}

// weekStart is the Monday on or before d.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
