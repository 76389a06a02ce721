package model

import (
	"fmt"
	"strings"
)

// Category classifies a transaction. Imported rows may carry free text
// outside the fixed set; the input layer only offers the fixed set.
type Category string

const (
	CategorySalary        Category = "Salary"
	CategoryFreelance     Category = "Freelance"
	CategoryFood          Category = "Food"
	CategoryRent          Category = "Rent"
	CategoryUtilities     Category = "Utilities"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
)

// categoryOrder is the display order for charts and the allowed values for input.
var categoryOrder = [...]Category{
	CategorySalary,
	CategoryFreelance,
	CategoryFood,
	CategoryRent,
	CategoryUtilities,
	CategoryTransport,
	CategoryEntertainment,
	CategoryOther,
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder[:])
	return out
}

// CategoryNames returns the fixed category set as strings, for flag help and prompts.
func CategoryNames() []string {
	names := make([]string, len(categoryOrder))
	for i, c := range categoryOrder {
		names[i] = string(c)
	}
	return names
}

// Valid reports whether c belongs to the fixed set.
func (c Category) Valid() bool {
	for _, known := range categoryOrder {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s against the fixed set, ignoring case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range categoryOrder {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", &ValidationError{
		Field:  "category",
		Reason: fmt.Sprintf("%q is not one of %s", s, strings.Join(CategoryNames(), ", ")),
	}
}
