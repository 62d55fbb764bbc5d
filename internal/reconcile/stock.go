package reconcile

import (
	"backoffice-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	StockRolls = "rolls_used"
	StockMeat  = "meat_used_kg"
)

// Stock tolerances are the larger of a floor and a share of expected usage.
var (
	RollsToleranceFloor = decimal.NewFromInt(3)
	MeatToleranceFloor  = decimal.RequireFromString("0.2")
	StockToleranceShare = decimal.RequireFromString("0.1")
)

// stockChecks compares derived roll and meat usage with the staff counts.
// Stock results do not change the sales status.
func stockChecks(summary *domain.ShiftSummary, f domain.StaffForm) []domain.StockCheck {
	var rolls *decimal.Decimal
	if f.BurgerRolls != nil {
		v := decimal.NewFromInt(int64(*f.BurgerRolls))
		rolls = &v
	}
	expectedRolls := decimal.NewFromInt(int64(summary.RollsUsed))
	return []domain.StockCheck{
		stockCheck(StockRolls, "rolls", expectedRolls, rolls, stockTolerance(expectedRolls, RollsToleranceFloor).Ceil()),
		stockCheck(StockMeat, "kg", summary.MeatUsedKg, f.MeatWeightKg, stockTolerance(summary.MeatUsedKg, MeatToleranceFloor)),
	}
}

func stockTolerance(expected, floor decimal.Decimal) decimal.Decimal {
	return decimal.Max(floor, expected.Mul(StockToleranceShare))
}

func stockCheck(item, unit string, expected decimal.Decimal, actual *decimal.Decimal, tolerance decimal.Decimal) domain.StockCheck {
	c := domain.StockCheck{
		Item:      item,
		Unit:      unit,
		Expected:  expected,
		Actual:    actual,
		Variance:  decimal.Zero,
		Tolerance: tolerance,
		Status:    domain.StatusMissing,
	}
	if actual == nil {
		return c
	}
	c.Variance = actual.Sub(expected)
	if c.Variance.Abs().GreaterThan(tolerance) {
		c.Status = domain.StatusDiscrepancy
	} else {
		c.Status = domain.StatusMatch
	}
	return c
}

func hasStockDiscrepancy(checks []domain.StockCheck) bool {
	for _, c := range checks {
		if c.Status == domain.StatusDiscrepancy {
			return true
		}
	}
	return false
}
