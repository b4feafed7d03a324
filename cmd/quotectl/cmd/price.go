package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/store"
)

type priceOptions struct {
	base          string
	term          string
	install       string
	staticIP      string
	staticIP5     string
	other         string
	serviceType   string
	markup        string
	catalog       bool
	commission    string
	maxCommission string
	privileged    bool
	unitPrice     string
	quantity      int
	chargeType    string
	asJSON        bool
}

func newPriceCmd(root *rootOptions) *cobra.Command {
	opts := &priceOptions{}

	c := &cobra.Command{
		Use:   "price",
		Short: "Price one line item",
		Long: `Price one line item and print its cost breakdown, recommended sell price
and margin.

Fees are included only when their flag is given. The category floor comes from
--markup, or from the database categories matching --service-type when
--catalog is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var categories []pricing.Category
			if opts.catalog {
				database, err := root.openDB(cmd.Context())
				if err != nil {
					return err
				}
				defer database.Close()

				categories, err = store.New(database).ListCategories(cmd.Context())
				if err != nil {
					return err
				}
			}

			out := runPrice(cmd, opts, categories)
			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			printPrice(cmd.OutOrStdout(), out)
			return nil
		},
	}

	f := c.Flags()
	f.StringVar(&opts.base, "base", "0", "monthly base price")
	f.StringVar(&opts.term, "term", "", `contract term, such as "36 months" or "3 years"`)
	f.StringVar(&opts.install, "install", "", "one-time install fee, amortized over the term")
	f.StringVar(&opts.staticIP, "static-ip", "", "monthly static IP fee")
	f.StringVar(&opts.staticIP5, "static-ip5", "", "monthly /29 static IP block fee")
	f.StringVar(&opts.other, "other", "0", "other monthly costs")
	f.StringVar(&opts.serviceType, "service-type", "", "service type used to find the category")
	f.StringVar(&opts.markup, "markup", "", "minimum markup percent of an ad hoc category")
	f.BoolVar(&opts.catalog, "catalog", false, "resolve the category from the database")
	f.StringVar(&opts.commission, "commission", "0", "commission rate percent")
	f.StringVar(&opts.maxCommission, "max-commission", "0", "agent maximum commission rate percent")
	f.BoolVar(&opts.privileged, "privileged", false, "price at cost without category floors")
	f.StringVar(&opts.unitPrice, "unit-price", "", "unit sell price to check against the floor")
	f.IntVar(&opts.quantity, "quantity", 1, "quantity")
	f.StringVar(&opts.chargeType, "charge-type", "MRC", "MRC or NRC")
	f.BoolVar(&opts.asJSON, "json", false, "print JSON")

	return c
}

type priceOutput struct {
	Category                      string          `json:"category,omitempty"`
	ChargeType                    string          `json:"charge_type"`
	TermMonths                    int             `json:"term_months"`
	Base                          decimal.Decimal `json:"base"`
	StaticIP                      decimal.Decimal `json:"static_ip"`
	StaticIP5                     decimal.Decimal `json:"static_ip5"`
	AmortizedInstall              decimal.Decimal `json:"amortized_install"`
	Other                         decimal.Decimal `json:"other"`
	CostBasis                     decimal.Decimal `json:"cost_basis"`
	SellPrice                     decimal.Decimal `json:"sell_price"`
	CommissionRate                decimal.Decimal `json:"commission_rate"`
	EffectiveMinimumMarkupPercent decimal.Decimal `json:"effective_minimum_markup_percent"`
	UnitSellPrice                 decimal.Decimal `json:"unit_sell_price"`
	Quantity                      int             `json:"quantity"`
	TotalPrice                    decimal.Decimal `json:"total_price"`
	MarkupPercent                 decimal.Decimal `json:"markup_percent"`
	ProfitMarginPercent           decimal.Decimal `json:"profit_margin_percent"`
	Band                          string          `json:"band"`
	Validation                    string          `json:"validation,omitempty"`
}

func runPrice(cmd *cobra.Command, opts *priceOptions, categories []pricing.Category) priceOutput {
	src := pricing.LineItemSource{
		BasePrice:           pricing.ParseAmount(opts.base),
		TermLabel:           opts.term,
		InstallFee:          pricing.ParseAmount(opts.install),
		InstallFeeEnabled:   cmd.Flags().Changed("install"),
		StaticIPFee:         pricing.ParseAmount(opts.staticIP),
		StaticIPFeeEnabled:  cmd.Flags().Changed("static-ip"),
		StaticIP5Fee:        pricing.ParseAmount(opts.staticIP5),
		StaticIP5FeeEnabled: cmd.Flags().Changed("static-ip5"),
		OtherCosts:          pricing.ParseAmount(opts.other),
		ServiceType:         opts.serviceType,
	}

	var category *pricing.Category
	switch {
	case cmd.Flags().Changed("markup"):
		name := strings.TrimSpace(opts.serviceType)
		if name == "" {
			name = "ad hoc category"
		}
		category = &pricing.Category{
			Name:                 name,
			Type:                 opts.serviceType,
			MinimumMarkupPercent: decimal.NewNullDecimal(pricing.ParseAmount(opts.markup)),
		}
	case opts.catalog:
		category = pricing.ResolveForSource(src, categories)
	}

	mode := pricing.Governed
	if opts.privileged {
		mode = pricing.Unconstrained
	}

	res := pricing.Price(pricing.PricingRequest{
		Source:         src,
		Category:       category,
		Agent:          pricing.Agent{MaxCommissionRate: pricing.ParseAmount(opts.maxCommission)},
		CommissionRate: pricing.ParseAmount(opts.commission),
		Mode:           mode,
	})

	unit := res.SellPrice
	if cmd.Flags().Changed("unit-price") {
		unit = pricing.ParseAmount(opts.unitPrice)
		res = res.WithActualPrice(unit)
	}

	line := pricing.QuoteLineItem{
		Quantity:      opts.quantity,
		UnitCost:      res.CostBasis,
		UnitSellPrice: unit,
		ChargeType:    pricing.ParseChargeType(opts.chargeType),
	}

	out := priceOutput{
		ChargeType:                    string(line.ChargeType),
		TermMonths:                    res.Breakdown.TermMonths,
		Base:                          res.Breakdown.Base,
		StaticIP:                      res.Breakdown.StaticIP,
		StaticIP5:                     res.Breakdown.StaticIP5,
		AmortizedInstall:              res.Breakdown.AmortizedInstall,
		Other:                         res.Breakdown.Other,
		CostBasis:                     res.CostBasis,
		SellPrice:                     res.SellPrice,
		CommissionRate:                res.CommissionRate,
		EffectiveMinimumMarkupPercent: res.EffectiveMinimumMarkupPercent,
		UnitSellPrice:                 unit,
		Quantity:                      line.EffectiveQuantity(),
		TotalPrice:                    line.TotalPrice(),
		MarkupPercent:                 res.CurrentMarkupPercent,
		ProfitMarginPercent:           res.ProfitMarginPercent,
		Band:                          string(pricing.BandFor(res.ProfitMarginPercent)),
		Validation:                    pricing.ValidateUnitPrice(unit, res, category),
	}
	if category != nil {
		out.Category = category.Name
	}
	return out
}

func printPrice(w io.Writer, out priceOutput) {
	category := out.Category
	if category == "" {
		category = "(none)"
	}

	fmt.Fprintf(w, "Category:            %s\n", category)
	fmt.Fprintf(w, "Term:                %d months\n", out.TermMonths)
	fmt.Fprintf(w, "Base:                %s\n", out.Base.StringFixed(2))
	fmt.Fprintf(w, "Static IP:           %s\n", out.StaticIP.StringFixed(2))
	fmt.Fprintf(w, "Static IP /29:       %s\n", out.StaticIP5.StringFixed(2))
	fmt.Fprintf(w, "Install (amortized): %s\n", out.AmortizedInstall.StringFixed(2))
	fmt.Fprintf(w, "Other:               %s\n", out.Other.StringFixed(2))
	fmt.Fprintf(w, "Cost basis:          %s\n", out.CostBasis.StringFixed(2))
	fmt.Fprintf(w, "Commission:          %s%%\n", out.CommissionRate.String())
	fmt.Fprintf(w, "Minimum markup:      %s%%\n", out.EffectiveMinimumMarkupPercent.String())
	fmt.Fprintf(w, "Recommended price:   %s\n", out.SellPrice.StringFixed(2))
	fmt.Fprintf(w, "Unit price:          %s\n", out.UnitSellPrice.StringFixed(2))
	fmt.Fprintf(w, "Total (%s x%d):     %s\n", out.ChargeType, out.Quantity, out.TotalPrice.StringFixed(2))
	fmt.Fprintf(w, "Margin:              %s%% (%s)\n", out.ProfitMarginPercent.StringFixed(2), out.Band)
	if out.Validation != "" {
		fmt.Fprintf(w, "\nWARNING: %s\n", out.Validation)
	}
}
