package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/failvault/internal/common"
)

// Category classifies a record. The set is closed.
type Category string

const (
	CategoryPhysics   Category = "Physics"
	CategoryChemistry Category = "Chemistry"
	CategoryBiology   Category = "Biology"
	CategoryAIML      Category = "AI/ML"

	// CategoryAll is a filter value only; records never carry it.
	CategoryAll Category = "All"

	DefaultCategory = CategoryPhysics
)

var categories = []Category{CategoryPhysics, CategoryChemistry, CategoryBiology, CategoryAIML}

// Categories returns the record categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches s case-insensitively against the known categories
// and returns the canonical spelling.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidCategory, s)
}

// ParseFilter is ParseCategory that also accepts "All" (and empty input).
func ParseFilter(s string) (Category, error) {
	if strings.TrimSpace(s) == "" || strings.EqualFold(strings.TrimSpace(s), string(CategoryAll)) {
		return CategoryAll, nil
	}
	return ParseCategory(s)
}
