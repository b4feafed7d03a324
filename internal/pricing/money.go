// Package pricing turns carrier and catalog costs into customer-facing sell prices.
//
// Every function in this package is pure: it takes plain values, returns plain values and
// never fails. Invalid input degrades to a safe default so a live-editing UI always has a
// number to render.
package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds an amount to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Amount converts an untrusted float into a non-negative amount.
// NaN, infinities and negative values become zero.
func Amount(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// ParseAmount reads a money or percent value typed by a user, such as "$1,250.00" or "12%".
// Anything unparseable or negative is zero.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	raw = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return nonNegative(d)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// applyMarkup returns cost increased by pct percent, rounded to cents.
func applyMarkup(cost, pct decimal.Decimal) decimal.Decimal {
	return Round2(cost.Mul(decimal.NewFromInt(1).Add(pct.Div(hundred))))
}

// percentOver reports how far price sits above cost as a percentage of cost.
// A zero cost yields zero rather than an infinite ratio.
func percentOver(price, cost decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() {
		return decimal.Zero
	}
	return Round2(price.Sub(cost).Div(cost).Mul(hundred))
}
