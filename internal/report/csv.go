// Package report renders a shift summary for download.
package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"

	"backoffice-backend/internal/aggregate"
	"backoffice-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const TopItemCount = 20

var csvHeader = []string{"Section", "Key", "Value", "Amount"}

// WriteCSV writes the summary as flat rows: shift metadata, then payment
// buckets, drinks and the top items by quantity. Counts go in Value and
// money in Amount.
func WriteCSV(w io.Writer, s *domain.ShiftSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows(s) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func rows(s *domain.ShiftSummary) [][]string {
	out := [][]string{
		{"shift", "shift_date", s.ShiftDate, ""},
		{"shift", "window_start", s.WindowStart.UTC().Format(time.RFC3339), ""},
		{"shift", "window_end", s.WindowEnd.UTC().Format(time.RFC3339), ""},
		{"shift", "first_receipt", deref(s.FirstReceiptNumber), ""},
		{"shift", "last_receipt", deref(s.LastReceiptNumber), ""},
		{"shift", "total_receipts", strconv.Itoa(s.TotalReceipts), ""},
		{"shift", "gross_sales", "", money(s.GrossSales)},
		{"shift", "net_sales", "", money(s.NetSales)},
		{"shift", "refunds", strconv.Itoa(len(s.Refunds)), money(s.RefundTotal())},
		{"shift", "rolls_used", strconv.Itoa(s.RollsUsed), ""},
		{"shift", "meat_used_kg", s.MeatUsedKg.StringFixed(2), ""},
		{"shift", "invalid_items", strconv.Itoa(s.InvalidItems), ""},
	}

	for _, label := range sortedKeys(s.PaymentBreakdown) {
		b := s.PaymentBreakdown[label]
		out = append(out, []string{"payment", label, strconv.Itoa(b.Count), money(b.Amount)})
	}
	for _, name := range sortedKeys(s.DrinkQuantities) {
		out = append(out, []string{"drink", name, strconv.Itoa(s.DrinkQuantities[name]), ""})
	}
	for _, it := range aggregate.TopItems(s, TopItemCount) {
		out = append(out, []string{"item", it.Name, strconv.Itoa(it.Quantity), money(it.Total)})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
