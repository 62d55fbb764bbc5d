package aggregate_test

import (
	"testing"
	"time"

	"backoffice-backend/internal/aggregate"
	"backoffice-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func qty(n int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(n))
}

func scenarioReceipts() []domain.Receipt {
	base := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	return []domain.Receipt{
		{
			ID: "a", ReceiptNumber: "6-100", CreatedAt: base, TotalMoney: d("300"), PaymentLabel: "Cash",
			LineItems: []domain.LineItem{{ItemName: "Classic Smash Burger", Quantity: qty(2), LineTotal: d("300")}},
		},
		{
			ID: "b", ReceiptNumber: "6-101", CreatedAt: base.Add(time.Hour), TotalMoney: d("150"), PaymentLabel: "QR Code",
			LineItems: []domain.LineItem{{ItemName: "Coke", Quantity: qty(3), LineTotal: d("150")}},
		},
		{
			ID: "c", ReceiptNumber: "6-102", CreatedAt: base.Add(2 * time.Hour), TotalMoney: d("-100"), PaymentLabel: "Cash",
			RefundedBy: "r1",
		},
	}
}

func TestAggregate_Scenario(t *testing.T) {
	agg := aggregate.New(aggregate.DefaultClassifier())

	s := agg.Aggregate(scenarioReceipts())

	assert.True(t, d("350").Equal(s.GrossSales), s.GrossSales.String())
	assert.True(t, d("450").Equal(s.NetSales), s.NetSales.String())
	assert.Equal(t, 2, s.RollsUsed)
	assert.True(t, d("0.18").Equal(s.MeatUsedKg), s.MeatUsedKg.String())
	assert.Equal(t, map[string]int{"Coke": 3}, s.DrinkQuantities)
	require.Len(t, s.Refunds, 1)
	assert.True(t, d("-100").Equal(s.Refunds[0].Amount))
	assert.Equal(t, "6-102", s.Refunds[0].ReceiptNumber)
	assert.Equal(t, 3, s.TotalReceipts)
	assert.Equal(t, "6-100", *s.FirstReceiptNumber)
	assert.Equal(t, "6-102", *s.LastReceiptNumber)

	assert.Equal(t, 2, s.PaymentBreakdown["Cash"].Count)
	assert.True(t, d("200").Equal(s.PaymentBreakdown["Cash"].Amount))
	assert.Equal(t, 1, s.PaymentBreakdown["QR Code"].Count)
	assert.Equal(t, 2, s.ItemsSold["Classic Smash Burger"].Quantity)
	assert.True(t, d("300").Equal(s.ItemsSold["Classic Smash Burger"].Total))
	assert.Equal(t, 0, s.InvalidItems)
}

func TestAggregate_EmptyList(t *testing.T) {
	s := aggregate.New(aggregate.DefaultClassifier()).Aggregate(nil)

	require.NotNil(t, s)
	assert.Nil(t, s.FirstReceiptNumber)
	assert.Nil(t, s.LastReceiptNumber)
	assert.Equal(t, 0, s.TotalReceipts)
	assert.True(t, s.GrossSales.IsZero())
	assert.True(t, s.NetSales.IsZero())
	assert.Empty(t, s.PaymentBreakdown)
	assert.Empty(t, s.ItemsSold)
	assert.Empty(t, s.ModifiersSold)
	assert.Empty(t, s.DrinkQuantities)
	assert.Empty(t, s.Refunds)
	assert.Equal(t, 0, s.RollsUsed)
	assert.True(t, s.MeatUsedKg.IsZero())
}

func TestAggregate_IsDeterministic(t *testing.T) {
	agg := aggregate.New(aggregate.DefaultClassifier())
	receipts := scenarioReceipts()

	first := agg.Aggregate(receipts)
	second := agg.Aggregate(receipts)

	assert.Equal(t, first, second)
}

func TestAggregate_InputOrderDoesNotMatter(t *testing.T) {
	agg := aggregate.New(aggregate.DefaultClassifier())
	receipts := scenarioReceipts()
	reversed := []domain.Receipt{receipts[2], receipts[0], receipts[1]}

	assert.Equal(t, agg.Aggregate(receipts), agg.Aggregate(reversed))
}

func TestAggregate_NetPlusRefundsEqualsGross(t *testing.T) {
	agg := aggregate.New(aggregate.DefaultClassifier())
	batches := [][]domain.Receipt{
		scenarioReceipts(),
		{
			{ReceiptNumber: "1-1", TotalMoney: d("99.50")},
			{ReceiptNumber: "1-2", TotalMoney: d("-20.25"), RefundedBy: "1-1"},
			{ReceiptNumber: "1-3", TotalMoney: d("-5"), RefundedBy: "1-1"},
			{ReceiptNumber: "1-4", TotalMoney: d("1000")},
		},
		{},
	}

	for _, batch := range batches {
		s := agg.Aggregate(batch)
		assert.True(t, s.NetSales.Add(s.RefundTotal()).Equal(s.GrossSales))
	}
}

func TestAggregate_BurgerUsage(t *testing.T) {
	agg := aggregate.New(aggregate.DefaultClassifier())
	receipts := []domain.Receipt{{
		ReceiptNumber: "2-10",
		TotalMoney:    d("1000"),
		LineItems: []domain.LineItem{
			{ItemName: "Single Smash", Quantity: qty(3)},
			{ItemName: "DOUBLE CHEESE", Quantity: qty(2)},
			{ItemName: "Triple Trouble", Quantity: qty(1)},
			{ItemName: "Cheeseburger Kids", Quantity: qty(1)},
			{ItemName: "French Fries", Quantity: qty(4)},
			{ItemName: "Sprite", Quantity: qty(2)},
		},
	}}

	s := agg.Aggregate(receipts)

	assert.Equal(t, 7, s.RollsUsed)
	expectedMeat := d("0.09").Mul(decimal.NewFromInt(int64(s.RollsUsed))).Round(2)
	assert.True(t, expectedMeat.Equal(s.MeatUsedKg), s.MeatUsedKg.String())
	assert.Equal(t, map[string]int{"Sprite": 2}, s.DrinkQuantities)
}

func TestAggregate_DrinksFirstMatchWins(t *testing.T) {
	agg := aggregate.New(aggregate.DefaultClassifier())
	receipts := []domain.Receipt{{
		ReceiptNumber: "2-11",
		LineItems: []domain.LineItem{
			{ItemName: "Soda Water", Quantity: qty(2)},
			{ItemName: "Water", Quantity: qty(1)},
			{ItemName: "Fanta Strawberry", Quantity: qty(4)},
			{ItemName: "Fanta Orange", Quantity: qty(1)},
			{ItemName: "Schweppes Manow", Quantity: qty(1)},
			{ItemName: "Kids Juice (Apple)", Quantity: qty(2)},
		},
	}}

	s := agg.Aggregate(receipts)

	assert.Equal(t, map[string]int{
		"Soda Water":         2,
		"Water":              1,
		"Fanta Strawberry":   4,
		"Fanta Orange":       1,
		"Schweppes Manow":    1,
		"Kids Juice (Apple)": 2,
	}, s.DrinkQuantities)
}

func TestAggregate_CustomClassifier(t *testing.T) {
	c := aggregate.Classifier{
		BurgerKeywords:  []string{"wrap"},
		Drinks:          []aggregate.DrinkRule{{Name: "Tea", Keywords: []string{"tea"}}},
		RollsPerBurger:  2,
		MeatPerBurgerKg: d("0.1"),
	}
	s := aggregate.New(c).Aggregate([]domain.Receipt{{
		ReceiptNumber: "1",
		LineItems: []domain.LineItem{
			{ItemName: "Chicken Wrap", Quantity: qty(3)},
			{ItemName: "Smash Burger", Quantity: qty(5)},
			{ItemName: "Iced Tea", Quantity: qty(1)},
		},
	}})

	assert.Equal(t, 6, s.RollsUsed)
	assert.True(t, d("0.3").Equal(s.MeatUsedKg))
	assert.Equal(t, map[string]int{"Tea": 1}, s.DrinkQuantities)
}

func TestAggregate_MalformedItemsAreCounted(t *testing.T) {
	agg := aggregate.New(aggregate.DefaultClassifier())
	receipts := []domain.Receipt{{
		ReceiptNumber: "3-1",
		TotalMoney:    d("80"),
		LineItems: []domain.LineItem{
			{ItemName: "", Quantity: qty(1), LineTotal: d("30")},
			{ItemName: "Fries", Quantity: decimal.NullDecimal{}, LineTotal: d("50")},
			{ItemName: "Burger", Quantity: decimal.NewNullDecimal(d("-2"))},
		},
	}}

	s := agg.Aggregate(receipts)

	assert.Equal(t, 3, s.InvalidItems)
	assert.Equal(t, 1, s.ItemsSold[aggregate.UnknownItem].Quantity)
	assert.Equal(t, 0, s.ItemsSold["Fries"].Quantity)
	assert.True(t, d("50").Equal(s.ItemsSold["Fries"].Total))
	assert.Equal(t, 0, s.RollsUsed)
	for name, it := range s.ItemsSold {
		assert.GreaterOrEqual(t, it.Quantity, 0, name)
	}
}

func TestAggregate_FractionalQuantitiesAreRoundedAndCounted(t *testing.T) {
	agg := aggregate.New(aggregate.DefaultClassifier())
	receipts := []domain.Receipt{{
		ReceiptNumber: "3-2",
		TotalMoney:    d("200"),
		LineItems: []domain.LineItem{
			{ItemName: "Smash Burger", Quantity: decimal.NewNullDecimal(d("0.4")), LineTotal: d("60")},
			{ItemName: "Coke", Quantity: decimal.NewNullDecimal(d("2.5")), LineTotal: d("75")},
			{ItemName: "Fries", Quantity: decimal.NewNullDecimal(d("2.0")), LineTotal: d("65")},
		},
	}}

	s := agg.Aggregate(receipts)

	assert.Equal(t, 2, s.InvalidItems)
	assert.Equal(t, 0, s.ItemsSold["Smash Burger"].Quantity)
	assert.True(t, d("60").Equal(s.ItemsSold["Smash Burger"].Total))
	assert.Equal(t, 0, s.RollsUsed)
	assert.Equal(t, 3, s.ItemsSold["Coke"].Quantity)
	assert.Equal(t, 3, s.DrinkQuantities["Coke"])
	assert.Equal(t, 2, s.ItemsSold["Fries"].Quantity)
}

func TestAggregate_PaymentLabelDefaultsToUnknown(t *testing.T) {
	s := aggregate.New(aggregate.DefaultClassifier()).Aggregate([]domain.Receipt{
		{ReceiptNumber: "1-1", TotalMoney: d("10")},
		{ReceiptNumber: "1-2", TotalMoney: d("5"), PaymentLabel: "  "},
	})

	assert.Equal(t, 2, s.PaymentBreakdown[aggregate.UnknownPayment].Count)
	assert.True(t, d("15").Equal(s.PaymentBreakdown[aggregate.UnknownPayment].Amount))
}

func TestAggregate_Modifiers(t *testing.T) {
	s := aggregate.New(aggregate.DefaultClassifier()).Aggregate([]domain.Receipt{{
		ReceiptNumber: "1-1",
		LineItems: []domain.LineItem{
			{ItemName: "Smash Burger", Quantity: qty(2), Modifiers: []domain.Modifier{
				{Name: "Extra Cheese", Quantity: 2, Cost: d("40")},
				{Name: "Bacon", Quantity: 0, Cost: d("30")},
			}},
			{ItemName: "Double Smash", Quantity: qty(1), Modifiers: []domain.Modifier{
				{Name: "Extra Cheese", Quantity: 1, Cost: d("20")},
			}},
		},
	}})

	assert.Equal(t, 3, s.ModifiersSold["Extra Cheese"].Count)
	assert.True(t, d("60").Equal(s.ModifiersSold["Extra Cheese"].Total))
	assert.Equal(t, 1, s.ModifiersSold["Bacon"].Count)
}

func TestTopItems(t *testing.T) {
	s := &domain.ShiftSummary{ItemsSold: map[string]domain.ItemTotal{
		"Fries": {Quantity: 10},
		"Coke":  {Quantity: 10},
		"Smash": {Quantity: 25},
		"Water": {Quantity: 1},
	}}

	top := aggregate.TopItems(s, 3)

	require.Len(t, top, 3)
	assert.Equal(t, "Smash", top[0].Name)
	assert.Equal(t, "Coke", top[1].Name)
	assert.Equal(t, "Fries", top[2].Name)
}

func TestAggregate_RefundItemsAreNotCountedAgain(t *testing.T) {
	s := aggregate.New(aggregate.DefaultClassifier()).Aggregate([]domain.Receipt{
		{ReceiptNumber: "1-1", TotalMoney: d("200"), LineItems: []domain.LineItem{{ItemName: "Smash Burger", Quantity: qty(1), LineTotal: d("200")}}},
		{ReceiptNumber: "1-2", TotalMoney: d("-200"), RefundedBy: "1-1", LineItems: []domain.LineItem{{ItemName: "Smash Burger", Quantity: qty(1), LineTotal: d("-200")}}},
	})

	assert.Equal(t, 1, s.ItemsSold["Smash Burger"].Quantity)
	assert.Equal(t, 1, s.RollsUsed)
	assert.True(t, s.GrossSales.IsZero())
	assert.True(t, d("200").Equal(s.NetSales))
}
