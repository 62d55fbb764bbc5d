package report_test

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"backoffice-backend/internal/domain"
	"backoffice-backend/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func summary() *domain.ShiftSummary {
	first, last := "1-0001", "1-0003"
	return &domain.ShiftSummary{
		ShiftDate:          "2025-06-01",
		WindowStart:        time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		WindowEnd:          time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
		FirstReceiptNumber: &first,
		LastReceiptNumber:  &last,
		TotalReceipts:      3,
		GrossSales:         decimal.NewFromInt(450),
		NetSales:           decimal.NewFromInt(550),
		PaymentBreakdown: map[string]domain.PaymentBucket{
			"QR Code": {Count: 1, Amount: decimal.NewFromInt(150)},
			"Cash":    {Count: 2, Amount: decimal.NewFromInt(300)},
		},
		ItemsSold: map[string]domain.ItemTotal{
			`Burger, "Double"`: {Quantity: 2, Total: decimal.NewFromInt(400)},
			"Coke":             {Quantity: 3, Total: decimal.NewFromInt(150)},
		},
		DrinkQuantities: map[string]int{"Coke": 3},
		RollsUsed:       2,
		MeatUsedKg:      decimal.RequireFromString("0.18"),
		Refunds:         []domain.Refund{{ReceiptNumber: "1-0002", Amount: decimal.NewFromInt(-100)}},
	}
}

func readCSV(t *testing.T, s *domain.ShiftSummary) [][]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, s))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	return records
}

func find(records [][]string, section, key string) []string {
	for _, r := range records {
		if r[0] == section && r[1] == key {
			return r
		}
	}
	return nil
}

func TestWriteCSV(t *testing.T) {
	records := readCSV(t, summary())

	assert.Equal(t, []string{"Section", "Key", "Value", "Amount"}, records[0])
	assert.Equal(t, []string{"shift", "shift_date", "2025-06-01", ""}, find(records, "shift", "shift_date"))
	assert.Equal(t, []string{"shift", "gross_sales", "", "450.00"}, find(records, "shift", "gross_sales"))
	assert.Equal(t, []string{"shift", "refunds", "1", "-100.00"}, find(records, "shift", "refunds"))
	assert.Equal(t, []string{"payment", "Cash", "2", "300.00"}, find(records, "payment", "Cash"))
	assert.Equal(t, []string{"drink", "Coke", "3", ""}, find(records, "drink", "Coke"))
	assert.Equal(t, []string{"item", `Burger, "Double"`, "2", "400.00"}, find(records, "item", `Burger, "Double"`))

	// items ranked by quantity
	var items []string
	for _, r := range records {
		if r[0] == "item" {
			items = append(items, r[1])
		}
	}
	assert.Equal(t, []string{"Coke", `Burger, "Double"`}, items)
}

func TestWriteCSVEscapesValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, summary()))
	assert.Contains(t, buf.String(), `"Burger, ""Double"""`)
}

func TestWriteCSVLimitsItems(t *testing.T) {
	s := summary()
	s.ItemsSold = map[string]domain.ItemTotal{}
	for i := 0; i < 25; i++ {
		s.ItemsSold[fmt.Sprintf("item-%02d", i)] = domain.ItemTotal{Quantity: i + 1, Total: decimal.NewFromInt(int64(i))}
	}

	records := readCSV(t, s)
	count := 0
	for _, r := range records {
		if r[0] == "item" {
			count++
		}
	}
	assert.Equal(t, report.TopItemCount, count)
	assert.NotNil(t, find(records, "item", "item-24"))
	assert.Nil(t, find(records, "item", "item-00"))
}

func TestWriteCSVEmptySummary(t *testing.T) {
	records := readCSV(t, &domain.ShiftSummary{ShiftDate: "2025-06-01"})
	assert.Equal(t, []string{"shift", "first_receipt", "", ""}, find(records, "shift", "first_receipt"))
	for _, r := range records[1:] {
		assert.Equal(t, "shift", r[0])
	}
}

func TestWriteXLSX(t *testing.T) {
	staff := decimal.NewFromInt(300)
	rep := &domain.ReconciliationReport{
		ShiftDate: "2025-06-01",
		Status:    domain.StatusMatch,
		Comparisons: []domain.Comparison{{
			Field: "cash_sales", Label: "Cash sales",
			PosValue: decimal.NewFromInt(300), StaffValue: &staff,
			Status: domain.StatusMatch, Severity: domain.SeverityNone,
		}},
		Stock: []domain.StockCheck{{
			Item: "rolls_used", Unit: "rolls",
			Expected: decimal.NewFromInt(40), Variance: decimal.Zero, Tolerance: decimal.NewFromInt(4),
			Status: domain.StatusMissing,
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, summary(), rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Payments", "Items", "Reconciliation"}, f.GetSheetList())

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Shift date", "2025-06-01"}, rows[1])

	rows, err = f.GetRows("Payments")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Cash", rows[1][0])
	assert.Equal(t, "300", rows[1][2])

	rows, err = f.GetRows("Reconciliation")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Cash sales", rows[1][0])
	assert.Equal(t, "match", rows[1][4])
	assert.Equal(t, "Stock", rows[2][0])
	assert.Equal(t, []string{"rolls_used", "40", "", "0", "missing", "4"}, rows[3])
}

func TestWriteXLSXWithoutReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, summary(), nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Reconciliation")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.True(t, strings.HasPrefix(rows[0][0], "Field"))
}
