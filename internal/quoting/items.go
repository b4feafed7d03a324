package quoting

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/store"
)

// ItemInput is a new line item for a quote.
type ItemInput struct {
	Description string
	ChargeType  pricing.ChargeType
	Quantity    int
	Source      pricing.LineItemSource
	// UnitSellPrice overrides the recommended price when valid.
	UnitSellPrice decimal.NullDecimal
	// CommissionRate overrides the quote's commission rate when valid.
	CommissionRate decimal.NullDecimal
}

// ItemUpdate holds the editable fields of a saved line item. Nil fields are left alone.
type ItemUpdate struct {
	Description   *string
	Quantity      *int
	UnitSellPrice decimal.NullDecimal
}

// PricedItem is a saved line item with the pricing that produced it.
type PricedItem struct {
	Item    store.LineItem
	Preview Preview
	Totals  pricing.QuoteTotals
}

// AddItem prices in against the quote's agent and commission and appends it to the quote.
// A unit price under the category floor is rejected with a *ValidationError.
func (s *Service) AddItem(ctx context.Context, caller Caller, quoteID int64, in ItemInput) (PricedItem, error) {
	if strings.TrimSpace(in.Description) == "" {
		return PricedItem{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}

	in.ChargeType = pricing.ParseChargeType(string(in.ChargeType))

	quote, err := s.repo.Quote(ctx, quoteID)
	if err != nil {
		return PricedItem{}, fmt.Errorf("load quote: %w", err)
	}

	if in.Source.TermLabel == "" {
		in.Source.TermLabel = quote.TermLabel
	}
	rate := quote.CommissionRate
	if in.CommissionRate.Valid {
		rate = in.CommissionRate.Decimal
	}

	categories, agent, err := s.pricingData(ctx, quote.AgentID)
	if err != nil {
		return PricedItem{}, err
	}
	if in.CommissionRate.Valid {
		if err := CheckCommission(rate, agent); err != nil {
			return PricedItem{}, err
		}
	}

	p := s.preview(caller, PreviewInput{
		Source:         in.Source,
		CommissionRate: rate,
		Quantity:       in.Quantity,
		ChargeType:     in.ChargeType,
		UnitSellPrice:  in.UnitSellPrice,
	}, categories, agent)
	if p.Validation != "" {
		return PricedItem{}, &ValidationError{Message: p.Validation}
	}

	if p.Category != nil {
		in.Source.CategoryID = p.Category.ID
	}
	line := pricing.QuoteLineItem{Quantity: in.Quantity}
	var (
		saved  store.LineItem
		totals pricing.QuoteTotals
	)
	err = s.repo.InTx(ctx, func(tx *store.Store) error {
		var err error
		saved, err = tx.AddLineItem(ctx, store.LineItem{
			QuoteID:        quoteID,
			Description:    in.Description,
			ChargeType:     in.ChargeType,
			Quantity:       line.EffectiveQuantity(),
			Source:         in.Source,
			CommissionRate: rate,
			UnitCost:       p.Result.CostBasis,
			UnitSellPrice:  p.UnitSellPrice,
		})
		if err != nil {
			return fmt.Errorf("save line item: %w", err)
		}
		totals, err = refreshTotals(ctx, tx, quoteID)
		return err
	})
	if err != nil {
		return PricedItem{}, err
	}

	s.logger.Info("line item added",
		zap.Int64("quote_id", quoteID),
		zap.Int64("item_id", saved.ID),
		zap.String("unit_sell_price", saved.UnitSellPrice.String()),
		zap.String("mrc_total", totals.MRCTotal.String()),
		zap.String("nrc_total", totals.NRCTotal.String()),
	)

	return PricedItem{Item: saved, Preview: p, Totals: totals}, nil
}

// UpdateItem applies upd to a saved line item. Price overrides are checked against the
// floor recomputed from the item's stored cost inputs.
func (s *Service) UpdateItem(ctx context.Context, caller Caller, quoteID, itemID int64, upd ItemUpdate) (PricedItem, error) {
	item, err := s.repo.LineItem(ctx, quoteID, itemID)
	if err != nil {
		return PricedItem{}, fmt.Errorf("load line item: %w", err)
	}
	quote, err := s.repo.Quote(ctx, quoteID)
	if err != nil {
		return PricedItem{}, fmt.Errorf("load quote: %w", err)
	}

	if upd.Description != nil {
		if strings.TrimSpace(*upd.Description) == "" {
			return PricedItem{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
		}
		item.Description = *upd.Description
	}
	if upd.Quantity != nil {
		if *upd.Quantity < 1 {
			return PricedItem{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
		}
		item.Quantity = *upd.Quantity
	}

	categories, agent, err := s.pricingData(ctx, quote.AgentID)
	if err != nil {
		return PricedItem{}, err
	}

	unit := decimal.NewNullDecimal(item.UnitSellPrice)
	if upd.UnitSellPrice.Valid {
		unit = upd.UnitSellPrice
	}
	p := s.preview(caller, PreviewInput{
		Source:         item.Source,
		CommissionRate: item.CommissionRate,
		Quantity:       item.Quantity,
		ChargeType:     item.ChargeType,
		UnitSellPrice:  unit,
	}, categories, agent)
	if upd.UnitSellPrice.Valid && p.Validation != "" {
		return PricedItem{}, &ValidationError{Message: p.Validation}
	}

	item.UnitCost = p.Result.CostBasis
	item.UnitSellPrice = p.UnitSellPrice
	var totals pricing.QuoteTotals
	err = s.repo.InTx(ctx, func(tx *store.Store) error {
		if err := tx.UpdateLineItem(ctx, item); err != nil {
			return fmt.Errorf("save line item: %w", err)
		}
		totals, err = refreshTotals(ctx, tx, quoteID)
		return err
	})
	if err != nil {
		return PricedItem{}, err
	}

	return PricedItem{Item: item, Preview: p, Totals: totals}, nil
}

// DeleteItem removes a line item and refreshes the quote totals.
func (s *Service) DeleteItem(ctx context.Context, quoteID, itemID int64) (pricing.QuoteTotals, error) {
	var totals pricing.QuoteTotals
	err := s.repo.InTx(ctx, func(tx *store.Store) error {
		if err := tx.DeleteLineItem(ctx, quoteID, itemID); err != nil {
			return fmt.Errorf("delete line item: %w", err)
		}
		var err error
		totals, err = refreshTotals(ctx, tx, quoteID)
		return err
	})
	return totals, err
}

// Totals aggregates the saved line items of a quote.
func (s *Service) Totals(ctx context.Context, quoteID int64) (pricing.QuoteTotals, error) {
	items, err := s.repo.LineItems(ctx, quoteID)
	if err != nil {
		return pricing.QuoteTotals{}, fmt.Errorf("load line items: %w", err)
	}
	return aggregate(items), nil
}

type totalsWriter interface {
	LineItems(ctx context.Context, quoteID int64) ([]store.LineItem, error)
	SetQuoteTotals(ctx context.Context, id int64, mrc, nrc decimal.Decimal) error
}

// refreshTotals recomputes the quote totals from its saved items and stores them.
func refreshTotals(ctx context.Context, repo totalsWriter, quoteID int64) (pricing.QuoteTotals, error) {
	items, err := repo.LineItems(ctx, quoteID)
	if err != nil {
		return pricing.QuoteTotals{}, fmt.Errorf("load line items: %w", err)
	}
	totals := aggregate(items)
	if err := repo.SetQuoteTotals(ctx, quoteID, totals.MRCTotal, totals.NRCTotal); err != nil {
		return pricing.QuoteTotals{}, fmt.Errorf("save quote totals: %w", err)
	}
	return totals, nil
}

func aggregate(items []store.LineItem) pricing.QuoteTotals {
	lines := make([]pricing.QuoteLineItem, 0, len(items))
	for _, li := range items {
		lines = append(lines, li.Priced())
	}
	return pricing.Aggregate(lines)
}
