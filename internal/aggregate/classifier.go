package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DrinkRule maps any of Keywords (case-insensitive substring) to Name.
type DrinkRule struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Classifier is the keyword table used to derive ingredient usage and drink
// counts from item names. It is an approximation of the menu, not a recipe.
type Classifier struct {
	BurgerKeywords  []string        `json:"burger_keywords"`
	Drinks          []DrinkRule     `json:"drinks"`
	RollsPerBurger  int             `json:"rolls_per_burger"`
	MeatPerBurgerKg decimal.Decimal `json:"meat_per_burger_kg"`
}

// DefaultClassifier returns the current menu table. Drinks are matched in
// order, so specific names must come before generic ones.
func DefaultClassifier() Classifier {
	return Classifier{
		BurgerKeywords: []string{"burger", "smash", "double", "triple", "single", "cheeseburger"},
		Drinks: []DrinkRule{
			{Name: "Coke Zero", Keywords: []string{"coke zero"}},
			{Name: "Coke", Keywords: []string{"coke", "coca cola", "coca-cola"}},
			{Name: "Sprite", Keywords: []string{"sprite"}},
			{Name: "Fanta Strawberry", Keywords: []string{"fanta strawberry"}},
			{Name: "Fanta Orange", Keywords: []string{"fanta orange"}},
			{Name: "Fanta", Keywords: []string{"fanta"}},
			{Name: "Schweppes Manow", Keywords: []string{"schweppes manow", "schweppes"}},
			{Name: "Soda Water", Keywords: []string{"soda water", "soda"}},
			{Name: "Kids Juice (Orange)", Keywords: []string{"kids juice (orange)", "kids orange"}},
			{Name: "Kids Juice (Apple)", Keywords: []string{"kids juice (apple)", "kids apple"}},
			{Name: "Kids Juice", Keywords: []string{"kids juice"}},
			{Name: "Water", Keywords: []string{"water"}},
		},
		RollsPerBurger:  1,
		MeatPerBurgerKg: decimal.RequireFromString("0.09"),
	}
}

func (c Classifier) IsBurger(itemName string) bool {
	name := strings.ToLower(itemName)
	for _, kw := range c.BurgerKeywords {
		if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Drink returns the canonical drink for itemName. First match wins.
func (c Classifier) Drink(itemName string) (string, bool) {
	name := strings.ToLower(itemName)
	for _, rule := range c.Drinks {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
				return rule.Name, true
			}
		}
	}
	return "", false
}
