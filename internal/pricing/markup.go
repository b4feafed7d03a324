package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is a product category that may carry a minimum markup floor.
type Category struct {
	ID   int64
	Name string
	Type string
	// MinimumMarkupPercent is null when the category enforces no floor.
	MinimumMarkupPercent decimal.NullDecimal
}

// minimumMarkup returns the category floor and whether it is enforced at all.
func (c *Category) minimumMarkup() (decimal.Decimal, bool) {
	if c == nil || !c.MinimumMarkupPercent.Valid || !c.MinimumMarkupPercent.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	return c.MinimumMarkupPercent.Decimal, true
}

// ResolveCategory returns the first category whose type equals serviceType, or whose name
// contains it, ignoring case. It returns nil when nothing matches.
func ResolveCategory(serviceType string, categories []Category) *Category {
	needle := strings.ToLower(strings.TrimSpace(serviceType))
	if needle == "" {
		return nil
	}
	for i := range categories {
		c := categories[i]
		if strings.EqualFold(strings.TrimSpace(c.Type), needle) || strings.Contains(strings.ToLower(c.Name), needle) {
			return &c
		}
	}
	return nil
}

// FindCategory looks a category up by id.
func FindCategory(id int64, categories []Category) *Category {
	if id == 0 {
		return nil
	}
	for i := range categories {
		if categories[i].ID == id {
			c := categories[i]
			return &c
		}
	}
	return nil
}

// ResolveForSource prefers the explicit category reference on src and falls back to
// matching its service type.
func ResolveForSource(src LineItemSource, categories []Category) *Category {
	if c := FindCategory(src.CategoryID, categories); c != nil {
		return c
	}
	return ResolveCategory(src.ServiceType, categories)
}

// MinimumSellPrice is the lowest acceptable sell price for costBasis under category.
// Without an enforced floor it is the cost basis itself.
func MinimumSellPrice(costBasis decimal.Decimal, category *Category) decimal.Decimal {
	pct, ok := category.minimumMarkup()
	if !ok {
		return costBasis
	}
	return applyMarkup(costBasis, pct)
}

// ValidateUnitPrice explains why unitPrice is not acceptable for result, or returns an
// empty string when it is. Only categories with a minimum markup are checked.
func ValidateUnitPrice(unitPrice decimal.Decimal, result PricingResult, category *Category) string {
	if _, ok := category.minimumMarkup(); !ok || !result.Enforced {
		return ""
	}
	if !unitPrice.LessThan(result.SellPrice) {
		return ""
	}
	return fmt.Sprintf(
		"Unit price $%s is below the minimum of $%s for %s (%s%% minimum markup).",
		unitPrice.StringFixed(2),
		result.SellPrice.StringFixed(2),
		category.Name,
		result.EffectiveMinimumMarkupPercent.String(),
	)
}
