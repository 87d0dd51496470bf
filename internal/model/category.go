package model

import "strings"

// Category is a spending category assigned to a transaction.
type Category string

// The closed set of spending categories. CategoryOthers is the universal
// fallback when no more specific category can be determined.
const (
	CategoryFood          Category = "FOOD"
	CategoryShopping      Category = "SHOPPING"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryTransport     Category = "TRANSPORT"
	CategoryUtilities     Category = "UTILITIES"
	CategoryOthers        Category = "OTHERS"
)

// Categories lists every valid category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryShopping,
		CategoryEntertainment,
		CategoryTransport,
		CategoryUtilities,
		CategoryOthers,
	}
}

// ParseCategory maps a string to a Category, case-insensitively.
// Unrecognized input yields CategoryOthers and false.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryFood:
		return CategoryFood, true
	case CategoryShopping:
		return CategoryShopping, true
	case CategoryEntertainment:
		return CategoryEntertainment, true
	case CategoryTransport:
		return CategoryTransport, true
	case CategoryUtilities:
		return CategoryUtilities, true
	case CategoryOthers:
		return CategoryOthers, true
	}
	return CategoryOthers, false
}

// IsValid reports whether c is one of the declared categories.
func (c Category) IsValid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}
