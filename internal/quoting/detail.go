package quoting

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/store"
)

// DetailLine is a saved line item with its display metrics.
type DetailLine struct {
	Item          store.LineItem
	TotalPrice    decimal.Decimal
	MarginPercent decimal.Decimal
	Band          pricing.MarginBand
}

// Detail is the internal view of a quote, including costs and margins.
type Detail struct {
	Quote         store.Quote
	Lines         []DetailLine
	Totals        pricing.QuoteTotals
	TermMonths    int
	ContractValue decimal.Decimal
}

// Detail loads a quote with its line items and freshly aggregated totals.
func (s *Service) Detail(ctx context.Context, quoteID int64) (Detail, error) {
	quote, err := s.repo.Quote(ctx, quoteID)
	if err != nil {
		return Detail{}, fmt.Errorf("load quote: %w", err)
	}
	return s.detail(ctx, quote)
}

func (s *Service) detail(ctx context.Context, quote store.Quote) (Detail, error) {
	items, err := s.repo.LineItems(ctx, quote.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("load line items: %w", err)
	}

	lines := make([]DetailLine, 0, len(items))
	for _, li := range items {
		priced := li.Priced()
		margin := priced.ProfitMarginPercent()
		lines = append(lines, DetailLine{
			Item:          li,
			TotalPrice:    priced.TotalPrice(),
			MarginPercent: margin,
			Band:          pricing.BandFor(margin),
		})
	}

	totals := aggregate(items)
	term := pricing.ParseTermMonths(quote.TermLabel)
	return Detail{
		Quote:         quote,
		Lines:         lines,
		Totals:        totals,
		TermMonths:    term,
		ContractValue: totals.ContractValue(term),
	}, nil
}

// CustomerLine is a line item as the customer sees it, without cost.
type CustomerLine struct {
	Description   string
	ChargeType    pricing.ChargeType
	Quantity      int
	UnitSellPrice decimal.Decimal
	TotalPrice    decimal.Decimal
}

// CustomerView is the quote-acceptance page payload.
type CustomerView struct {
	Ref          string
	Title        string
	CustomerName string
	TermLabel    string
	TermMonths   int
	Lines        []CustomerLine
	MRCTotal     decimal.Decimal
	NRCTotal     decimal.Decimal
}

// CustomerView loads the customer-facing view of the quote with public reference ref.
func (s *Service) CustomerView(ctx context.Context, ref string) (CustomerView, error) {
	quote, err := s.repo.QuoteByRef(ctx, ref)
	if err != nil {
		return CustomerView{}, fmt.Errorf("load quote: %w", err)
	}
	d, err := s.detail(ctx, quote)
	if err != nil {
		return CustomerView{}, err
	}

	view := CustomerView{
		Ref:          quote.PublicRef,
		Title:        quote.Title,
		CustomerName: quote.CustomerName,
		TermLabel:    quote.TermLabel,
		TermMonths:   d.TermMonths,
		Lines:        make([]CustomerLine, 0, len(d.Lines)),
		MRCTotal:     d.Totals.MRCTotal,
		NRCTotal:     d.Totals.NRCTotal,
	}
	for _, l := range d.Lines {
		view.Lines = append(view.Lines, CustomerLine{
			Description:   l.Item.Description,
			ChargeType:    l.Item.ChargeType,
			Quantity:      l.Item.Quantity,
			UnitSellPrice: l.Item.UnitSellPrice,
			TotalPrice:    l.TotalPrice,
		})
	}
	return view, nil
}

// Summary renders a quote as plain text for PDF and email generation.
func (s *Service) Summary(ctx context.Context, quoteID int64) (string, error) {
	d, err := s.Detail(ctx, quoteID)
	if err != nil {
		return "", err
	}
	return renderSummary(d), nil
}

var printer = message.NewPrinter(language.AmericanEnglish)

func money(d decimal.Decimal) string {
	return printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

func renderSummary(d Detail) string {
	var b strings.Builder

	title := d.Quote.Title
	if title == "" {
		title = "Untitled quote"
	}
	fmt.Fprintf(&b, "Quote: %s\n", title)
	if d.Quote.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", d.Quote.CustomerName)
	}
	fmt.Fprintf(&b, "Reference: %s\n", d.Quote.PublicRef)
	fmt.Fprintf(&b, "Term: %d months\n", d.TermMonths)

	b.WriteString("\nLine items:\n")
	if len(d.Lines) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, l := range d.Lines {
		fmt.Fprintf(&b, "  [%s] %s x%d @ %s = %s\n",
			l.Item.ChargeType,
			l.Item.Description,
			l.Item.Quantity,
			money(l.Item.UnitSellPrice),
			money(l.TotalPrice),
		)
	}

	b.WriteString("\nTotals:\n")
	fmt.Fprintf(&b, "  Monthly recurring (MRC): %s\n", money(d.Totals.MRCTotal))
	fmt.Fprintf(&b, "  One-time (NRC): %s\n", money(d.Totals.NRCTotal))
	fmt.Fprintf(&b, "  Contract value: %s\n", money(d.ContractValue))

	if d.Quote.Notes != "" {
		fmt.Fprintf(&b, "\nNotes:\n  %s\n", d.Quote.Notes)
	}
	return b.String()
}
