package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAdjustForCommission_ReducesFloorByShortfall(t *testing.T) {
	category := &Category{Name: "DIA", MinimumMarkupPercent: pct("20")}

	res := AdjustForCommission(d("100"), category, d("10"), d("15"))

	equalDecimal(t, "effective", res.EffectiveMinimumMarkupPercent, "15")
	equalDecimal(t, "sellPrice", res.SellPrice, "115.00")
	equalDecimal(t, "currentMarkup", res.CurrentMarkupPercent, "15")
	equalDecimal(t, "profitMargin", res.ProfitMarginPercent, "15")
	if !res.Enforced {
		t.Fatalf("expected floor to be enforced")
	}
}

func TestAdjustForCommission_ClampsAboveMax(t *testing.T) {
	category := &Category{MinimumMarkupPercent: pct("20")}
	atMax := AdjustForCommission(d("100"), category, d("15"), d("15"))

	for _, rate := range []string{"15.01", "20", "100"} {
		res := AdjustForCommission(d("100"), category, d(rate), d("15"))
		equalDecimal(t, "commission "+rate, res.CommissionRate, "15")
		equalDecimal(t, "effective "+rate, res.EffectiveMinimumMarkupPercent, atMax.EffectiveMinimumMarkupPercent.String())
		equalDecimal(t, "sellPrice "+rate, res.SellPrice, atMax.SellPrice.String())
	}
}

func TestAdjustForCommission_ClampsNegativeRates(t *testing.T) {
	category := &Category{MinimumMarkupPercent: pct("20")}

	res := AdjustForCommission(d("100"), category, d("-5"), d("15"))
	equalDecimal(t, "commission", res.CommissionRate, "0")
	equalDecimal(t, "effective", res.EffectiveMinimumMarkupPercent, "5")

	res = AdjustForCommission(d("100"), category, d("3"), d("-1"))
	equalDecimal(t, "commission with negative max", res.CommissionRate, "0")
	equalDecimal(t, "effective with negative max", res.EffectiveMinimumMarkupPercent, "20")
}

func TestAdjustForCommission_FloorNeverNegative(t *testing.T) {
	category := &Category{MinimumMarkupPercent: pct("10")}

	for _, tc := range []struct{ rate, max string }{
		{"0", "10"},
		{"0", "25"},
		{"5", "40"},
	} {
		res := AdjustForCommission(d("80"), category, d(tc.rate), d(tc.max))
		if res.EffectiveMinimumMarkupPercent.IsNegative() {
			t.Fatalf("rate=%s max=%s: effective = %s", tc.rate, tc.max, res.EffectiveMinimumMarkupPercent)
		}
		equalDecimal(t, "sellPrice", res.SellPrice, "80")
	}
}

func TestAdjustForCommission_ZeroCost(t *testing.T) {
	category := &Category{MinimumMarkupPercent: pct("20")}
	res := AdjustForCommission(decimal.Zero, category, d("10"), d("15"))

	equalDecimal(t, "sellPrice", res.SellPrice, "0")
	equalDecimal(t, "currentMarkup", res.CurrentMarkupPercent, "0")
	equalDecimal(t, "profitMargin", res.ProfitMarginPercent, "0")

	overridden := res.WithActualPrice(d("50"))
	equalDecimal(t, "overridden markup", overridden.CurrentMarkupPercent, "0")
}

func TestPricingResult_WithActualPrice(t *testing.T) {
	res := AdjustForCommission(d("100"), &Category{MinimumMarkupPercent: pct("20")}, d("15"), d("15"))

	over := res.WithActualPrice(d("150"))
	equalDecimal(t, "sellPrice unchanged", over.SellPrice, "120")
	equalDecimal(t, "currentMarkup", over.CurrentMarkupPercent, "50")

	under := res.WithActualPrice(d("90"))
	equalDecimal(t, "loss markup", under.CurrentMarkupPercent, "-10")
}

func TestPrice_EndToEndCarrierItem(t *testing.T) {
	req := PricingRequest{
		Source: LineItemSource{
			BasePrice:         d("200"),
			InstallFee:        d("600"),
			InstallFeeEnabled: true,
			TermLabel:         "36 Months",
		},
		Category:       &Category{Name: "DIA", MinimumMarkupPercent: pct("10")},
		Agent:          Agent{MaxCommissionRate: d("15")},
		CommissionRate: d("15"),
	}

	res := Price(req)

	equalDecimal(t, "costBasis", res.CostBasis, "216.67")
	equalDecimal(t, "effective", res.EffectiveMinimumMarkupPercent, "10")
	// 216.67 * 1.10 = 238.337
	equalDecimal(t, "sellPrice", res.SellPrice, "238.34")
	if res.Breakdown.TermMonths != 36 {
		t.Fatalf("breakdown term = %d, want 36", res.Breakdown.TermMonths)
	}
}

func TestPrice_UnconstrainedSkipsFloor(t *testing.T) {
	req := PricingRequest{
		Source:         LineItemSource{BasePrice: d("100")},
		Category:       &Category{MinimumMarkupPercent: pct("25")},
		Agent:          Agent{MaxCommissionRate: d("15")},
		CommissionRate: d("5"),
		Mode:           Unconstrained,
	}

	res := Price(req)

	equalDecimal(t, "sellPrice", res.SellPrice, "100")
	equalDecimal(t, "effective", res.EffectiveMinimumMarkupPercent, "0")
	if res.Enforced {
		t.Fatalf("unconstrained pricing must not enforce a floor")
	}
	if msg := ValidateUnitPrice(d("1"), res, req.Category); msg != "" {
		t.Fatalf("unconstrained pricing should not produce a validation message, got %q", msg)
	}
}

func TestPrice_IsIdempotent(t *testing.T) {
	req := PricingRequest{
		Source:         LineItemSource{BasePrice: d("99.99"), StaticIPFee: d("15"), StaticIPFeeEnabled: true},
		Category:       &Category{MinimumMarkupPercent: pct("18")},
		Agent:          Agent{MaxCommissionRate: d("12")},
		CommissionRate: d("9"),
	}
	first, second := Price(req), Price(req)
	if !first.SellPrice.Equal(second.SellPrice) || !first.CostBasis.Equal(second.CostBasis) {
		t.Fatalf("repeated pricing differs: %+v vs %+v", first, second)
	}
}
