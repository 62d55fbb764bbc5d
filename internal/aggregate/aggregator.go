// Package aggregate folds the receipts of one shift into a ShiftSummary.
package aggregate

import (
	"sort"
	"strings"

	"backoffice-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	UnknownPayment = "Unknown"
	UnknownItem    = "Unknown Item"
)

type Aggregator struct {
	classifier Classifier
}

func New(classifier Classifier) *Aggregator {
	return &Aggregator{classifier: classifier}
}

// Aggregate never fails. Malformed line items are counted in InvalidItems
// and folded in under a placeholder name with zero quantity. Amounts are
// used as given: they are already in major units.
func (a *Aggregator) Aggregate(receipts []domain.Receipt) *domain.ShiftSummary {
	summary := &domain.ShiftSummary{
		GrossSales:       decimal.Zero,
		NetSales:         decimal.Zero,
		PaymentBreakdown: map[string]domain.PaymentBucket{},
		ItemsSold:        map[string]domain.ItemTotal{},
		ModifiersSold:    map[string]domain.ModifierTotal{},
		DrinkQuantities:  map[string]int{},
		MeatUsedKg:       decimal.Zero,
		Refunds:          []domain.Refund{},
	}
	if len(receipts) == 0 {
		return summary
	}

	ordered := make([]domain.Receipt, len(receipts))
	copy(ordered, receipts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return CompareReceiptNumbers(ordered[i].ReceiptNumber, ordered[j].ReceiptNumber) < 0
	})

	first := ordered[0].ReceiptNumber
	last := ordered[len(ordered)-1].ReceiptNumber
	summary.FirstReceiptNumber = &first
	summary.LastReceiptNumber = &last
	summary.TotalReceipts = len(ordered)

	burgers := 0
	for _, r := range ordered {
		summary.GrossSales = summary.GrossSales.Add(r.TotalMoney)

		label := strings.TrimSpace(r.PaymentLabel)
		if label == "" {
			label = UnknownPayment
		}
		bucket := summary.PaymentBreakdown[label]
		bucket.Count++
		bucket.Amount = bucket.Amount.Add(r.TotalMoney)
		summary.PaymentBreakdown[label] = bucket

		if r.IsRefund() {
			// items were already counted on the original sale
			summary.Refunds = append(summary.Refunds, domain.Refund{
				ReceiptNumber: r.ReceiptNumber,
				Amount:        r.TotalMoney,
				Timestamp:     r.CreatedAt,
			})
			continue
		}
		summary.NetSales = summary.NetSales.Add(r.TotalMoney)

		for _, item := range r.LineItems {
			name, qty, ok := normalizeItem(item)
			if !ok {
				summary.InvalidItems++
			}

			it := summary.ItemsSold[name]
			it.Quantity += qty
			it.Total = it.Total.Add(item.LineTotal)
			summary.ItemsSold[name] = it

			if a.classifier.IsBurger(name) {
				burgers += qty
			}
			if drink, found := a.classifier.Drink(name); found {
				summary.DrinkQuantities[drink] += qty
			}

			for _, m := range item.Modifiers {
				modName := strings.TrimSpace(m.Name)
				if modName == "" {
					summary.InvalidItems++
					modName = UnknownItem
				}
				count := m.Quantity
				if count <= 0 {
					count = 1
				}
				mt := summary.ModifiersSold[modName]
				mt.Count += count
				mt.Total = mt.Total.Add(m.Cost)
				summary.ModifiersSold[modName] = mt
			}
		}
	}

	summary.RollsUsed = burgers * a.classifier.RollsPerBurger
	summary.MeatUsedKg = a.classifier.MeatPerBurgerKg.Mul(decimal.NewFromInt(int64(burgers))).Round(2)
	return summary
}

// normalizeItem returns the name and whole quantity to aggregate under, and
// false when the item had to be patched. A missing or negative quantity
// counts as zero. A fractional quantity is rounded half away from zero and
// reported as patched, so 0.4 adds nothing and 2.5 adds three units.
func normalizeItem(item domain.LineItem) (string, int, bool) {
	ok := true
	name := strings.TrimSpace(item.ItemName)
	if name == "" {
		name = UnknownItem
		ok = false
	}
	qty := 0
	switch {
	case !item.Quantity.Valid:
		ok = false
	case item.Quantity.Decimal.IsNegative():
		ok = false
	default:
		whole := item.Quantity.Decimal.Round(0)
		if !whole.Equal(item.Quantity.Decimal) {
			ok = false
		}
		qty = int(whole.IntPart())
	}
	return name, qty, ok
}

type RankedItem struct {
	Name     string
	Quantity int
	Total    decimal.Decimal
}

// TopItems returns up to n items by quantity, ties broken by name.
func TopItems(summary *domain.ShiftSummary, n int) []RankedItem {
	items := make([]RankedItem, 0, len(summary.ItemsSold))
	for name, it := range summary.ItemsSold {
		items = append(items, RankedItem{Name: name, Quantity: it.Quantity, Total: it.Total})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Quantity != items[j].Quantity {
			return items[i].Quantity > items[j].Quantity
		}
		return items[i].Name < items[j].Name
	})
	if n >= 0 && len(items) > n {
		items = items[:n]
	}
	return items
}
