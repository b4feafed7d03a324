package pricing

import (
	"math"
	"testing"
)

func TestRollupCost_AmortizesInstallOverTerm(t *testing.T) {
	src := LineItemSource{
		BasePrice:         d("200"),
		TermLabel:         "36 Months",
		InstallFee:        d("600"),
		InstallFeeEnabled: true,
	}

	b := Breakdown(src)

	if b.TermMonths != 36 {
		t.Fatalf("termMonths = %d, want 36", b.TermMonths)
	}
	equalDecimal(t, "costBasis", b.CostBasis, "216.67")
	equalDecimal(t, "RollupCost", RollupCost(src), "216.67")
}

func TestRollupCost_OnlyEnabledFeesCount(t *testing.T) {
	src := LineItemSource{
		BasePrice:    d("100"),
		TermLabel:    "12 Months",
		InstallFee:   d("1200"),
		StaticIPFee:  d("10"),
		StaticIP5Fee: d("25"),
		OtherCosts:   d("5"),
	}
	equalDecimal(t, "all disabled", RollupCost(src), "105")

	src.StaticIPFeeEnabled = true
	equalDecimal(t, "static ip", RollupCost(src), "115")

	src.StaticIP5FeeEnabled = true
	equalDecimal(t, "static ip /5", RollupCost(src), "140")

	src.InstallFeeEnabled = true
	equalDecimal(t, "install", RollupCost(src), "240")
}

func TestRollupCost_NegativeInputsAreZero(t *testing.T) {
	src := LineItemSource{
		BasePrice:          d("-50"),
		InstallFee:         d("-360"),
		InstallFeeEnabled:  true,
		StaticIPFee:        d("-5"),
		StaticIPFeeEnabled: true,
		OtherCosts:         d("-1"),
	}
	equalDecimal(t, "costBasis", RollupCost(src), "0")
}

func TestRollupCost_UnreadableTermUsesDefault(t *testing.T) {
	src := LineItemSource{InstallFee: d("360"), InstallFeeEnabled: true, TermLabel: "whenever"}
	equalDecimal(t, "costBasis", RollupCost(src), "10")
}

func TestRollupCost_MonotonicInEachFee(t *testing.T) {
	base := LineItemSource{
		BasePrice:           d("80"),
		TermLabel:           "24 Months",
		InstallFee:          d("100"),
		InstallFeeEnabled:   true,
		StaticIPFee:         d("7.5"),
		StaticIPFeeEnabled:  true,
		StaticIP5Fee:        d("15"),
		StaticIP5FeeEnabled: true,
		OtherCosts:          d("3"),
	}
	before := RollupCost(base)

	bumps := map[string]func(LineItemSource) LineItemSource{
		"base":    func(s LineItemSource) LineItemSource { s.BasePrice = s.BasePrice.Add(d("0.01")); return s },
		"install": func(s LineItemSource) LineItemSource { s.InstallFee = s.InstallFee.Add(d("0.01")); return s },
		"staticIP": func(s LineItemSource) LineItemSource {
			s.StaticIPFee = s.StaticIPFee.Add(d("1"))
			return s
		},
		"staticIP5": func(s LineItemSource) LineItemSource {
			s.StaticIP5Fee = s.StaticIP5Fee.Add(d("1"))
			return s
		},
		"other": func(s LineItemSource) LineItemSource { s.OtherCosts = s.OtherCosts.Add(d("2")); return s },
	}

	for name, bump := range bumps {
		if after := RollupCost(bump(base)); after.LessThan(before) {
			t.Errorf("%s: cost went from %s to %s", name, before, after)
		}
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"positive", 12.5, "12.5"},
		{"zero", 0, "0"},
		{"negative", -3, "0"},
		{"nan", math.NaN(), "0"},
		{"inf", math.Inf(1), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			equalDecimal(t, "Amount", Amount(tt.in), tt.want)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"$1,250.00", "1250"},
		{" 19.99 ", "19.99"},
		{"12%", "12"},
		{"", "0"},
		{"abc", "0"},
		{"-4", "0"},
	}
	for _, tt := range tests {
		equalDecimal(t, "ParseAmount("+tt.raw+")", ParseAmount(tt.raw), tt.want)
	}
}
