package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ChargeType says whether a line item bills every month or once.
type ChargeType string

const (
	MRC ChargeType = "MRC"
	NRC ChargeType = "NRC"
)

// ParseChargeType reads a charge type label. Anything that is not a one-time charge is MRC.
func ParseChargeType(s string) ChargeType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NRC", "ONE-TIME", "ONE_TIME", "ONETIME", "ONE TIME":
		return NRC
	default:
		return MRC
	}
}

// QuoteLineItem is one priced row on a quote.
type QuoteLineItem struct {
	Description   string
	Quantity      int
	UnitCost      decimal.Decimal
	UnitSellPrice decimal.Decimal
	ChargeType    ChargeType
}

// EffectiveQuantity is Quantity with a floor of 1.
func (li QuoteLineItem) EffectiveQuantity() int {
	if li.Quantity < 1 {
		return 1
	}
	return li.Quantity
}

// TotalPrice is quantity times unit sell price.
func (li QuoteLineItem) TotalPrice() decimal.Decimal {
	return li.UnitSellPrice.Mul(decimal.NewFromInt(int64(li.EffectiveQuantity())))
}

// TotalCost is quantity times unit cost.
func (li QuoteLineItem) TotalCost() decimal.Decimal {
	return li.UnitCost.Mul(decimal.NewFromInt(int64(li.EffectiveQuantity())))
}

// ProfitMarginPercent is the margin of the unit sell price over unit cost.
func (li QuoteLineItem) ProfitMarginPercent() decimal.Decimal {
	return ProfitMarginPercent(li.UnitSellPrice, li.UnitCost)
}

// QuoteTotals are quote-level sums partitioned by charge type.
type QuoteTotals struct {
	MRCTotal decimal.Decimal
	NRCTotal decimal.Decimal
	MRCCost  decimal.Decimal
	NRCCost  decimal.Decimal
	Items    int
}

// Aggregate sums items by charge type. The result does not depend on item order.
func Aggregate(items []QuoteLineItem) QuoteTotals {
	t := QuoteTotals{
		MRCTotal: decimal.Zero,
		NRCTotal: decimal.Zero,
		MRCCost:  decimal.Zero,
		NRCCost:  decimal.Zero,
		Items:    len(items),
	}
	for _, li := range items {
		if li.ChargeType == NRC {
			t.NRCTotal = t.NRCTotal.Add(li.TotalPrice())
			t.NRCCost = t.NRCCost.Add(li.TotalCost())
			continue
		}
		t.MRCTotal = t.MRCTotal.Add(li.TotalPrice())
		t.MRCCost = t.MRCCost.Add(li.TotalCost())
	}
	return t
}

// ContractValue is the recurring total over termMonths plus the one-time total.
func (t QuoteTotals) ContractValue(termMonths int) decimal.Decimal {
	if termMonths < 1 {
		termMonths = DefaultTermMonths
	}
	return t.MRCTotal.Mul(decimal.NewFromInt(int64(termMonths))).Add(t.NRCTotal)
}

// ProfitMarginPercent is ((sell - cost) / cost) * 100, or zero when cost is zero.
func ProfitMarginPercent(sell, cost decimal.Decimal) decimal.Decimal {
	return percentOver(sell, cost)
}

// MarginBand classifies a profit margin for display.
type MarginBand string

const (
	BandFavorable  MarginBand = "favorable"
	BandAcceptable MarginBand = "acceptable"
	BandBreakeven  MarginBand = "breakeven"
	BandLoss       MarginBand = "loss"
)

var favorableThreshold = decimal.NewFromInt(20)

// BandFor places a margin percentage in its display band.
func BandFor(pct decimal.Decimal) MarginBand {
	switch {
	case pct.GreaterThan(favorableThreshold):
		return BandFavorable
	case pct.IsPositive():
		return BandAcceptable
	case pct.IsZero():
		return BandBreakeven
	default:
		return BandLoss
	}
}
