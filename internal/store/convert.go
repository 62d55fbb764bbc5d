package store

import (
	"encoding/json"
	"fmt"

	"backoffice-backend/internal/analysis"
	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/loyverse"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/pipeline"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func summaryRow(w pipeline.SummaryWrite) (*models.ShiftSummaryRecord, error) {
	s := w.Summary
	if s == nil {
		return nil, fmt.Errorf("summary is nil")
	}
	row := &models.ShiftSummaryRecord{
		ShiftDate:          s.ShiftDate,
		WindowStart:        s.WindowStart,
		WindowEnd:          s.WindowEnd,
		FirstReceiptNumber: s.FirstReceiptNumber,
		LastReceiptNumber:  s.LastReceiptNumber,
		TotalReceipts:      s.TotalReceipts,
		GrossSales:         s.GrossSales,
		NetSales:           s.NetSales,
		RollsUsed:          s.RollsUsed,
		MeatUsedKg:         s.MeatUsedKg,
		InvalidItems:       s.InvalidItems,
		LastRunID:          w.RunID,
	}

	var err error
	if row.PaymentBreakdown, err = toJSON(s.PaymentBreakdown); err != nil {
		return nil, err
	}
	if row.ItemsSold, err = toJSON(s.ItemsSold); err != nil {
		return nil, err
	}
	if row.ModifiersSold, err = toJSON(s.ModifiersSold); err != nil {
		return nil, err
	}
	if row.DrinkQuantities, err = toJSON(s.DrinkQuantities); err != nil {
		return nil, err
	}
	if row.Refunds, err = toJSON(s.Refunds); err != nil {
		return nil, err
	}

	if w.Report != nil {
		row.ReconciliationStatus = string(w.Report.Status)
		row.RequiresReview = w.Report.Summary.RequiresReview
		if row.Reconciliation, err = toJSON(w.Report); err != nil {
			return nil, err
		}
	}
	if w.Analysis != nil {
		row.AnalysisSummary = w.Analysis.Summary
		if row.AnalysisDetails, err = toJSON(w.Analysis); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func summaryFromRow(row *models.ShiftSummaryRecord) (*StoredSummary, error) {
	s := &domain.ShiftSummary{
		ShiftDate:          row.ShiftDate,
		WindowStart:        row.WindowStart.UTC(),
		WindowEnd:          row.WindowEnd.UTC(),
		FirstReceiptNumber: row.FirstReceiptNumber,
		LastReceiptNumber:  row.LastReceiptNumber,
		TotalReceipts:      row.TotalReceipts,
		GrossSales:         row.GrossSales,
		NetSales:           row.NetSales,
		PaymentBreakdown:   map[string]domain.PaymentBucket{},
		ItemsSold:          map[string]domain.ItemTotal{},
		ModifiersSold:      map[string]domain.ModifierTotal{},
		DrinkQuantities:    map[string]int{},
		RollsUsed:          row.RollsUsed,
		MeatUsedKg:         row.MeatUsedKg,
		Refunds:            []domain.Refund{},
		InvalidItems:       row.InvalidItems,
	}
	for _, f := range []struct {
		name string
		data datatypes.JSON
		dst  any
	}{
		{"payment_breakdown", row.PaymentBreakdown, &s.PaymentBreakdown},
		{"items_sold", row.ItemsSold, &s.ItemsSold},
		{"modifiers_sold", row.ModifiersSold, &s.ModifiersSold},
		{"drink_quantities", row.DrinkQuantities, &s.DrinkQuantities},
		{"refunds", row.Refunds, &s.Refunds},
	} {
		if err := fromJSON(f.data, f.dst); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	out := &StoredSummary{Summary: s, LastRunID: row.LastRunID, UpdatedAt: row.UpdatedAt}
	if len(row.Reconciliation) > 0 {
		var report domain.ReconciliationReport
		if err := fromJSON(row.Reconciliation, &report); err != nil {
			return nil, fmt.Errorf("reconciliation: %w", err)
		}
		out.Report = &report
	}
	if len(row.AnalysisDetails) > 0 {
		var res analysis.Result
		if err := fromJSON(row.AnalysisDetails, &res); err != nil {
			return nil, fmt.Errorf("analysis: %w", err)
		}
		out.Analysis = &res
	}
	return out, nil
}

func receiptRow(shiftDate string, raw loyverse.RawReceipt) models.PosReceipt {
	r := raw.Receipt
	payload := datatypes.JSON(raw.Payload)
	if len(payload) == 0 {
		payload = datatypes.JSON("null")
	}
	return models.PosReceipt{
		PosReceiptID:  r.ID,
		ReceiptNumber: r.ReceiptNumber,
		ReceiptDate:   r.CreatedAt,
		ShiftDate:     shiftDate,
		TotalMoney:    r.TotalMoney,
		PaymentLabel:  r.PaymentLabel,
		IsRefund:      r.IsRefund(),
		RefundFor:     raw.RefundFor,
		Raw:           payload,
	}
}

func runRow(r *pipeline.ProcessingResult) (*models.ProcessingRun, error) {
	errs, err := toJSON(r.Errors)
	if err != nil {
		return nil, err
	}
	return &models.ProcessingRun{
		RunID:             r.RunID,
		ShiftDate:         r.ShiftDate,
		Trigger:           r.Metadata.Trigger,
		Status:            models.RunStatus(r.RunStatus()),
		ReceiptsProcessed: r.ReceiptsProcessed,
		ReceiptsStored:    r.ReceiptsStored,
		InvalidReceipts:   r.InvalidReceipts,
		InvalidItems:      r.InvalidItems,
		PagesFetched:      r.PagesFetched,
		AnalysisGenerated: r.AnalysisGenerated,
		Errors:            errs,
		StartedAt:         r.Metadata.StartedAt,
		FinishedAt:        r.Metadata.FinishedAt,
		DurationMs:        r.Metadata.DurationMs,
	}, nil
}

func staffFormRow(f domain.StaffForm) models.StaffForm {
	return models.StaffForm{
		ShiftDate:     f.ShiftDate,
		StartingCash:  nullDecimal(f.StartingCash),
		CashSales:     nullDecimal(f.CashSales),
		QRSales:       nullDecimal(f.QRSales),
		GrabSales:     nullDecimal(f.GrabSales),
		OtherSales:    nullDecimal(f.OtherSales),
		TotalSales:    nullDecimal(f.TotalSales),
		TotalExpenses: nullDecimal(f.TotalExpenses),
		EndingCash:    nullDecimal(f.EndingCash),
		BurgerRolls:   f.BurgerRolls,
		MeatWeightKg:  nullDecimal(f.MeatWeightKg),
		SubmittedBy:   f.SubmittedBy,
	}
}

func staffFormFromRow(row *models.StaffForm) *domain.StaffForm {
	return &domain.StaffForm{
		ShiftDate:     row.ShiftDate,
		SubmittedBy:   row.SubmittedBy,
		SubmittedAt:   row.UpdatedAt,
		StartingCash:  decimalPtr(row.StartingCash),
		CashSales:     decimalPtr(row.CashSales),
		QRSales:       decimalPtr(row.QRSales),
		GrabSales:     decimalPtr(row.GrabSales),
		OtherSales:    decimalPtr(row.OtherSales),
		TotalSales:    decimalPtr(row.TotalSales),
		TotalExpenses: decimalPtr(row.TotalExpenses),
		EndingCash:    decimalPtr(row.EndingCash),
		BurgerRolls:   row.BurgerRolls,
		MeatWeightKg:  decimalPtr(row.MeatWeightKg),
	}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func decimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func toJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func fromJSON(data datatypes.JSON, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, dst)
}
