package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/pricing"
)

// LineItem is a persisted quote row: the pricing inputs plus the price that was set.
type LineItem struct {
	ID          int64
	QuoteID     int64
	Position    int
	Description string
	ChargeType  pricing.ChargeType
	Quantity    int
	Source      pricing.LineItemSource
	// CommissionRate is the rate the item was priced with.
	CommissionRate decimal.Decimal
	UnitCost       decimal.Decimal
	UnitSellPrice  decimal.Decimal
}

// Priced converts the row into the aggregator's view of it.
func (li LineItem) Priced() pricing.QuoteLineItem {
	return pricing.QuoteLineItem{
		Description:   li.Description,
		Quantity:      li.Quantity,
		UnitCost:      li.UnitCost,
		UnitSellPrice: li.UnitSellPrice,
		ChargeType:    li.ChargeType,
	}
}

// AddLineItem appends li to the end of its quote. The position is assigned by the insert
// itself so concurrent appends never share one.
func (s *Store) AddLineItem(ctx context.Context, li LineItem) (LineItem, error) {
	li.Description = cleanText(li.Description)
	src := li.Source
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO quote_line_items (
			quote_id, position, description, service_type, category_id, charge_type, quantity,
			base_price, term_label,
			install_fee, install_fee_enabled,
			static_ip_fee, static_ip_fee_enabled,
			static_ip5_fee, static_ip5_fee_enabled,
			other_costs, commission_rate, unit_cost, unit_sell_price
		)
		SELECT ?, COALESCE(MAX(position), 0) + 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		FROM quote_line_items
		WHERE quote_id = ?
		RETURNING id, position
	`,
		li.QuoteID, li.Description, src.ServiceType, nullableID(src.CategoryID), string(li.ChargeType), li.Quantity,
		src.BasePrice.String(), src.TermLabel,
		src.InstallFee.String(), src.InstallFeeEnabled,
		src.StaticIPFee.String(), src.StaticIPFeeEnabled,
		src.StaticIP5Fee.String(), src.StaticIP5FeeEnabled,
		src.OtherCosts.String(), li.CommissionRate.String(), li.UnitCost.String(), li.UnitSellPrice.String(),
		li.QuoteID,
	).Scan(&li.ID, &li.Position)
	if err != nil {
		return LineItem{}, fmt.Errorf("insert line item: %w", err)
	}
	return li, nil
}

// UpdateLineItem saves the editable fields of li: description, quantity and prices.
func (s *Store) UpdateLineItem(ctx context.Context, li LineItem) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE quote_line_items
		SET
			description = ?,
			quantity = ?,
			unit_cost = ?,
			unit_sell_price = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quote_id = ?
	`, cleanText(li.Description), li.Quantity, li.UnitCost.String(), li.UnitSellPrice.String(), li.ID, li.QuoteID)
	if err != nil {
		return fmt.Errorf("update line item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update line item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLineItem removes one line item from a quote.
func (s *Store) DeleteLineItem(ctx context.Context, quoteID, itemID int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM quote_line_items WHERE id = ? AND quote_id = ?`, itemID, quoteID)
	if err != nil {
		return fmt.Errorf("delete line item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete line item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const lineItemColumns = `
	id, quote_id, position, description, service_type, category_id, charge_type, quantity,
	base_price, term_label,
	install_fee, install_fee_enabled,
	static_ip_fee, static_ip_fee_enabled,
	static_ip5_fee, static_ip5_fee_enabled,
	other_costs, commission_rate, unit_cost, unit_sell_price
`

// LineItem loads one line item of a quote.
func (s *Store) LineItem(ctx context.Context, quoteID, itemID int64) (LineItem, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+lineItemColumns+` FROM quote_line_items WHERE id = ? AND quote_id = ?`, itemID, quoteID)
	li, err := scanLineItem(row)
	if err != nil {
		return LineItem{}, fmt.Errorf("query line item: %w", notFound(err))
	}
	return li, nil
}

// LineItems returns the line items of a quote in display order.
func (s *Store) LineItems(ctx context.Context, quoteID int64) ([]LineItem, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+lineItemColumns+`
		FROM quote_line_items
		WHERE quote_id = ?
		ORDER BY position ASC, id ASC
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	items := make([]LineItem, 0)
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, li)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}

	return items, nil
}

func scanLineItem(row scanner) (LineItem, error) {
	var (
		li         LineItem
		categoryID sql.NullInt64
		chargeType string
	)
	err := row.Scan(
		&li.ID,
		&li.QuoteID,
		&li.Position,
		&li.Description,
		&li.Source.ServiceType,
		&categoryID,
		&chargeType,
		&li.Quantity,
		&li.Source.BasePrice,
		&li.Source.TermLabel,
		&li.Source.InstallFee,
		&li.Source.InstallFeeEnabled,
		&li.Source.StaticIPFee,
		&li.Source.StaticIPFeeEnabled,
		&li.Source.StaticIP5Fee,
		&li.Source.StaticIP5FeeEnabled,
		&li.Source.OtherCosts,
		&li.CommissionRate,
		&li.UnitCost,
		&li.UnitSellPrice,
	)
	if err != nil {
		return LineItem{}, err
	}
	li.Source.CategoryID = categoryID.Int64
	li.ChargeType = pricing.ParseChargeType(chargeType)
	return li, nil
}
