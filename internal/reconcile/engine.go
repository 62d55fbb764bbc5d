// Package reconcile compares POS totals for a shift with the staff form.
package reconcile

import (
	"backoffice-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	FieldTotalSales      = "total_sales"
	FieldCashSales       = "cash_sales"
	FieldQRSales         = "qr_sales"
	FieldGrabSales       = "grab_sales"
	FieldOtherSales      = "other_sales"
	FieldRegisterBalance = "register_balance"
)

var (
	DefaultTolerance = decimal.NewFromInt(50)

	// Discrepancies above these are high severity.
	CashHighThreshold  = decimal.NewFromInt(200)
	SalesHighThreshold = decimal.NewFromInt(500)
)

type Engine struct {
	Tolerance decimal.Decimal
	Channels  ChannelMatcher
}

// New returns an engine with the default channel rules. A non-positive
// tolerance falls back to DefaultTolerance.
func New(tolerance decimal.Decimal) *Engine {
	if !tolerance.IsPositive() {
		tolerance = DefaultTolerance
	}
	return &Engine{Tolerance: tolerance, Channels: DefaultChannelMatcher()}
}

type fieldSpec struct {
	field   string
	label   string
	cash    bool
	pos     decimal.Decimal
	staff   *decimal.Decimal
	missing bool
}

// Reconcile never returns an error. A nil form yields a report with status
// missing for every field.
func (e *Engine) Reconcile(summary *domain.ShiftSummary, form *domain.StaffForm) *domain.ReconciliationReport {
	if summary == nil {
		summary = &domain.ShiftSummary{}
	}
	report := &domain.ReconciliationReport{
		ShiftDate: summary.ShiftDate,
		Tolerance: e.Tolerance,
	}

	totals := e.Channels.Totals(summary.PaymentBreakdown)

	var f domain.StaffForm
	if form != nil {
		f = *form
	}

	register := registerSpec(totals[ChannelCash], f)
	fields := []fieldSpec{
		{field: FieldTotalSales, label: "Total Sales", pos: summary.GrossSales, staff: f.TotalSales},
		{field: FieldCashSales, label: "Cash Sales", cash: true, pos: totals[ChannelCash], staff: f.CashSales},
		{field: FieldQRSales, label: "QR Sales", pos: totals[ChannelQR], staff: f.QRSales},
		{field: FieldGrabSales, label: "Grab Sales", pos: totals[ChannelGrab], staff: f.GrabSales},
		{field: FieldOtherSales, label: "Other Sales", pos: totals[ChannelOther], staff: f.OtherSales},
		register,
	}

	for _, fs := range fields {
		c := e.compare(fs)
		report.Comparisons = append(report.Comparisons, c)
		report.Summary.Total++
		switch c.Status {
		case domain.StatusMatch:
			report.Summary.Matches++
		case domain.StatusDiscrepancy:
			report.Summary.Discrepancies++
		case domain.StatusMissing:
			report.Summary.Missing++
		}
	}

	switch {
	case form == nil:
		report.Status = domain.StatusMissing
	case report.Summary.Missing > 0:
		report.Status = domain.StatusPartial
	case report.Summary.Discrepancies > 0:
		report.Status = domain.StatusDiscrepancy
	default:
		report.Status = domain.StatusMatch
	}
	report.Stock = stockChecks(summary, f)
	report.Summary.RequiresReview = report.Summary.Discrepancies > 0 || report.Summary.Missing > 0 ||
		hasStockDiscrepancy(report.Stock)
	return report
}

// registerSpec builds the drawer check: starting cash plus POS cash minus
// expenses paid out should equal the counted ending cash.
func registerSpec(posCash decimal.Decimal, f domain.StaffForm) fieldSpec {
	fs := fieldSpec{field: FieldRegisterBalance, label: "Register Balance", cash: true, staff: f.EndingCash}
	if f.StartingCash == nil {
		fs.missing = true
		fs.pos = posCash
		return fs
	}
	expected := f.StartingCash.Add(posCash)
	if f.TotalExpenses != nil {
		expected = expected.Sub(*f.TotalExpenses)
	}
	fs.pos = expected
	return fs
}

func (e *Engine) compare(fs fieldSpec) domain.Comparison {
	c := domain.Comparison{
		Field:      fs.field,
		Label:      fs.label,
		PosValue:   fs.pos,
		StaffValue: fs.staff,
		Difference: decimal.Zero,
		Severity:   domain.SeverityNone,
	}
	if fs.staff == nil || fs.missing {
		c.Status = domain.StatusMissing
		return c
	}

	c.Difference = fs.pos.Sub(*fs.staff).Abs()
	c.WithinTolerance = c.Difference.LessThanOrEqual(e.Tolerance)
	if c.WithinTolerance {
		c.Status = domain.StatusMatch
		return c
	}

	c.Status = domain.StatusDiscrepancy
	threshold := SalesHighThreshold
	if fs.cash {
		threshold = CashHighThreshold
	}
	if c.Difference.GreaterThan(threshold) {
		c.Severity = domain.SeverityHigh
	} else {
		c.Severity = domain.SeverityMedium
	}
	return c
}
