package pricing

import "github.com/shopspring/decimal"

// Agent is the sales agent a quote is written for.
type Agent struct {
	ID                int64
	Name              string
	MaxCommissionRate decimal.Decimal
}

// Mode selects whether markup rules apply to a pricing request.
type Mode int

const (
	// Governed enforces category floors, relaxed by the commission the agent gives back.
	Governed Mode = iota
	// Unconstrained prices at cost. It is used for privileged callers who set raw cost directly.
	Unconstrained
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Unconstrained {
		return "unconstrained"
	}
	return "governed"
}

// PricingRequest is everything needed to price one line item.
type PricingRequest struct {
	Source         LineItemSource
	Category       *Category
	Agent          Agent
	CommissionRate decimal.Decimal
	Mode           Mode
}

// PricingResult is the recommended price for one line item plus display metrics.
type PricingResult struct {
	Breakdown                     CostBreakdown
	CostBasis                     decimal.Decimal
	SellPrice                     decimal.Decimal
	CommissionRate                decimal.Decimal
	EffectiveMinimumMarkupPercent decimal.Decimal
	CurrentMarkupPercent          decimal.Decimal
	ProfitMarginPercent           decimal.Decimal
	// Enforced is true when a category floor constrained SellPrice.
	Enforced bool
}

// ClampCommission bounds rate to [0, maxRate]. A negative maxRate is treated as zero.
func ClampCommission(rate, maxRate decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	maxRate = nonNegative(maxRate)
	rate = nonNegative(rate)
	if rate.GreaterThan(maxRate) {
		rate = maxRate
	}
	return rate, maxRate
}

// AdjustForCommission derives the sell price for costBasis once the category floor has been
// lowered by the commission the agent declined to take.
func AdjustForCommission(costBasis decimal.Decimal, category *Category, commissionRate, agentMaxRate decimal.Decimal) PricingResult {
	costBasis = nonNegative(costBasis)
	rate, maxRate := ClampCommission(commissionRate, agentMaxRate)

	effective := decimal.Zero
	minimum, enforced := category.minimumMarkup()
	if enforced {
		reduction := maxRate.Sub(rate)
		effective = decimal.Max(decimal.Zero, minimum.Sub(reduction))
	}

	res := PricingResult{
		CostBasis:                     costBasis,
		SellPrice:                     applyMarkup(costBasis, effective),
		CommissionRate:                rate,
		EffectiveMinimumMarkupPercent: effective,
		Enforced:                      enforced,
	}
	return res.WithActualPrice(res.SellPrice)
}

// WithActualPrice recomputes the display metrics against the price actually set on the
// line item, which users may override.
func (r PricingResult) WithActualPrice(unitPrice decimal.Decimal) PricingResult {
	r.CurrentMarkupPercent = percentOver(unitPrice, r.CostBasis)
	r.ProfitMarginPercent = ProfitMarginPercent(unitPrice, r.CostBasis)
	return r
}

// Price runs the whole pipeline for req: term parsing, cost rollup and markup.
func Price(req PricingRequest) PricingResult {
	b := Breakdown(req.Source)

	if req.Mode == Unconstrained {
		res := PricingResult{
			Breakdown:                     b,
			CostBasis:                     b.CostBasis,
			SellPrice:                     b.CostBasis,
			CommissionRate:                decimal.Zero,
			EffectiveMinimumMarkupPercent: decimal.Zero,
		}
		return res.WithActualPrice(res.SellPrice)
	}

	res := AdjustForCommission(b.CostBasis, req.Category, req.CommissionRate, req.Agent.MaxCommissionRate)
	res.Breakdown = b
	return res
}
