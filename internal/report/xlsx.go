package report

import (
	"io"
	"time"

	"backoffice-backend/internal/aggregate"
	"backoffice-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary        = "Summary"
	sheetPayments       = "Payments"
	sheetItems          = "Items"
	sheetReconciliation = "Reconciliation"
)

// WriteXLSX writes a workbook with one sheet per section. report may be nil,
// in which case the reconciliation sheet only carries its header.
func WriteXLSX(w io.Writer, s *domain.ShiftSummary, report *domain.ReconciliationReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	for _, name := range []string{sheetPayments, sheetItems, sheetReconciliation} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	summaryRows := [][]any{
		{"Field", "Value"},
		{"Shift date", s.ShiftDate},
		{"Window start", s.WindowStart.UTC().Format(time.RFC3339)},
		{"Window end", s.WindowEnd.UTC().Format(time.RFC3339)},
		{"First receipt", deref(s.FirstReceiptNumber)},
		{"Last receipt", deref(s.LastReceiptNumber)},
		{"Total receipts", s.TotalReceipts},
		{"Gross sales", s.GrossSales.InexactFloat64()},
		{"Net sales", s.NetSales.InexactFloat64()},
		{"Refund total", s.RefundTotal().InexactFloat64()},
		{"Rolls used", s.RollsUsed},
		{"Meat used (kg)", s.MeatUsedKg.InexactFloat64()},
		{"Invalid items", s.InvalidItems},
	}
	if err := writeRows(f, sheetSummary, summaryRows); err != nil {
		return err
	}

	payments := [][]any{{"Payment", "Count", "Amount"}}
	for _, label := range sortedKeys(s.PaymentBreakdown) {
		b := s.PaymentBreakdown[label]
		payments = append(payments, []any{label, b.Count, b.Amount.InexactFloat64()})
	}
	if err := writeRows(f, sheetPayments, payments); err != nil {
		return err
	}

	items := [][]any{{"Item", "Quantity", "Total"}}
	for _, it := range aggregate.TopItems(s, -1) {
		items = append(items, []any{it.Name, it.Quantity, it.Total.InexactFloat64()})
	}
	if err := writeRows(f, sheetItems, items); err != nil {
		return err
	}

	recon := [][]any{{"Field", "POS", "Staff", "Difference", "Status", "Severity"}}
	if report != nil {
		for _, c := range report.Comparisons {
			var staff any = ""
			if c.StaffValue != nil {
				staff = c.StaffValue.InexactFloat64()
			}
			recon = append(recon, []any{
				c.Label, c.PosValue.InexactFloat64(), staff, c.Difference.InexactFloat64(),
				string(c.Status), string(c.Severity),
			})
		}
		if len(report.Stock) > 0 {
			recon = append(recon, []any{"Stock", "Expected", "Counted", "Variance", "Status", "Tolerance"})
		}
		for _, sc := range report.Stock {
			var actual any = ""
			if sc.Actual != nil {
				actual = sc.Actual.InexactFloat64()
			}
			recon = append(recon, []any{
				sc.Item, sc.Expected.InexactFloat64(), actual, sc.Variance.InexactFloat64(),
				string(sc.Status), sc.Tolerance.InexactFloat64(),
			})
		}
	}
	if err := writeRows(f, sheetReconciliation, recon); err != nil {
		return err
	}

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
