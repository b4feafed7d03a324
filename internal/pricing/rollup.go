package pricing

import "github.com/shopspring/decimal"

// LineItemSource holds the facts about one priced thing, assembled from a catalog item
// or a carrier quote result.
type LineItemSource struct {
	BasePrice           decimal.Decimal
	TermLabel           string
	InstallFee          decimal.Decimal
	InstallFeeEnabled   bool
	StaticIPFee         decimal.Decimal
	StaticIPFeeEnabled  bool
	StaticIP5Fee        decimal.Decimal
	StaticIP5FeeEnabled bool
	OtherCosts          decimal.Decimal
	ServiceType         string
	// CategoryID, when non-zero, selects the governing category directly.
	CategoryID int64
}

// CostBreakdown lists every component that went into a cost basis.
type CostBreakdown struct {
	Base             decimal.Decimal
	StaticIP         decimal.Decimal
	StaticIP5        decimal.Decimal
	AmortizedInstall decimal.Decimal
	Other            decimal.Decimal
	TermMonths       int
	CostBasis        decimal.Decimal
}

// Breakdown computes the monthly cost basis of src along with its components.
func Breakdown(src LineItemSource) CostBreakdown {
	b := CostBreakdown{
		Base:             nonNegative(src.BasePrice),
		StaticIP:         decimal.Zero,
		StaticIP5:        decimal.Zero,
		AmortizedInstall: decimal.Zero,
		Other:            nonNegative(src.OtherCosts),
		TermMonths:       ParseTermMonths(src.TermLabel),
	}

	if src.StaticIPFeeEnabled {
		b.StaticIP = nonNegative(src.StaticIPFee)
	}
	if src.StaticIP5FeeEnabled {
		b.StaticIP5 = nonNegative(src.StaticIP5Fee)
	}
	if src.InstallFeeEnabled {
		b.AmortizedInstall = nonNegative(src.InstallFee).Div(decimal.NewFromInt(int64(b.TermMonths)))
	}

	b.CostBasis = Round2(b.Base.Add(b.StaticIP).Add(b.StaticIP5).Add(b.AmortizedInstall).Add(b.Other))
	return b
}

// RollupCost returns the fully loaded monthly cost of src, rounded to cents.
func RollupCost(src LineItemSource) decimal.Decimal {
	return Breakdown(src).CostBasis
}
